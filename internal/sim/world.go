package sim

import (
	"strconv"
	"time"

	"run-and-leap/server/logging"
)

const (
	metricCommandsApplied  = "sim_commands_applied_total"
	metricCommandsRejected = "sim_commands_rejected_total"
	metricTicksAdvanced    = "sim_ticks_advanced_total"
	metricTickIgnored      = "sim_tick_regression_ignored_total"
)

// World owns the authoritative simulation state: player records, the
// terrain block sequence, collectible records, and the tick counter. It is
// mutated only by the tick scheduler's goroutine; other readers take
// snapshots.
type World struct {
	players      map[uint64]*playerState
	terrain      []TerrainBlock
	collectibles []Collectible
	currentTick  uint64

	nextPlayerID      uint64
	nextCollectibleID uint64

	rules     Rules
	publisher logging.Publisher
	metrics   *logging.Metrics
	clock     logging.Clock
}

// NewWorld constructs an empty world with the given validation rules.
func NewWorld(rules Rules, deps Deps) *World {
	deps = deps.normalized()
	return &World{
		players:   make(map[uint64]*playerState),
		rules:     rules.normalized(),
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
	}
}

// CurrentTick reports the tick of the last completed advance.
func (w *World) CurrentTick() uint64 {
	if w == nil {
		return 0
	}
	return w.currentTick
}

// Rules returns the active validation bounds.
func (w *World) Rules() Rules {
	if w == nil {
		return DefaultRules()
	}
	return w.rules
}

// HasPlayer reports whether the world currently tracks the given player.
func (w *World) HasPlayer(id uint64) bool {
	if w == nil {
		return false
	}
	_, ok := w.players[id]
	return ok
}

// SpawnPlayer registers a new participant and returns its record.
func (w *World) SpawnPlayer(name string, spawn Vec3) PlayerRecord {
	if w == nil {
		return PlayerRecord{}
	}
	w.nextPlayerID++
	state := &playerState{
		PlayerRecord: PlayerRecord{
			ID:       w.nextPlayerID,
			Name:     name,
			Position: spawn,
			Grounded: true,
		},
		facing:        1,
		lastHeartbeat: w.clock.Now(),
	}
	w.players[state.ID] = state
	return state.record()
}

// RemovePlayer drops a participant and reports whether it was present.
func (w *World) RemovePlayer(id uint64) bool {
	if w == nil {
		return false
	}
	if _, ok := w.players[id]; !ok {
		return false
	}
	delete(w.players, id)
	return true
}

// Player returns a copy of the record for the given id.
func (w *World) Player(id uint64) (PlayerRecord, bool) {
	if w == nil {
		return PlayerRecord{}, false
	}
	state, ok := w.players[id]
	if !ok {
		return PlayerRecord{}, false
	}
	return state.record(), true
}

// PlayerFacing reports the facing sign for the given player.
func (w *World) PlayerFacing(id uint64) (int8, bool) {
	if w == nil {
		return 0, false
	}
	state, ok := w.players[id]
	if !ok {
		return 0, false
	}
	return state.Facing(), true
}

// PlayerHeartbeat reports when the player last heartbeat and its measured
// round trip. The time is seeded at spawn so a silent client still ages out.
func (w *World) PlayerHeartbeat(id uint64) (time.Time, time.Duration, bool) {
	if w == nil {
		return time.Time{}, 0, false
	}
	state, ok := w.players[id]
	if !ok {
		return time.Time{}, 0, false
	}
	return state.lastHeartbeat, state.lastRTT, true
}

// StalePlayers lists players whose last heartbeat predates cutoff. Records
// with no heartbeat time, such as ones restored from a keyframe, are never
// reported stale.
func (w *World) StalePlayers(cutoff time.Time) []uint64 {
	if w == nil {
		return nil
	}
	var stale []uint64
	for id, state := range w.players {
		if state.lastHeartbeat.IsZero() {
			continue
		}
		if state.lastHeartbeat.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}

// BindActor attaches the rendering collaborator driven by a player record.
func (w *World) BindActor(id uint64, actor Actor) bool {
	if w == nil {
		return false
	}
	state, ok := w.players[id]
	if !ok {
		return false
	}
	state.actor = actor
	return true
}

// KillPlayer marks a player dead. A dead record rejects every kinematic
// mutation until RespawnPlayer clears the flag.
func (w *World) KillPlayer(id uint64) bool {
	if w == nil {
		return false
	}
	state, ok := w.players[id]
	if !ok || state.IsDead {
		return false
	}
	state.IsDead = true
	state.Velocity = Vec3{}
	return true
}

// RespawnPlayer clears the death flag and reseats the player's kinematics.
func (w *World) RespawnPlayer(id uint64, spawn Vec3) bool {
	if w == nil {
		return false
	}
	state, ok := w.players[id]
	if !ok || !state.IsDead {
		return false
	}
	state.IsDead = false
	state.Position = spawn
	state.Velocity = Vec3{}
	state.Grounded = true
	return true
}

// SetPlayerKinematics commits an engine-resolved position and velocity for
// a live player. Dead records refuse the write.
func (w *World) SetPlayerKinematics(id uint64, position, velocity Vec3, grounded bool) bool {
	if w == nil {
		return false
	}
	state, ok := w.players[id]
	if !ok || state.IsDead {
		return false
	}
	state.Position = position
	state.Velocity = velocity
	state.Grounded = grounded
	return true
}

// Step advances the simulation by a single tick, applying the staged
// commands in FIFO order. An advance whose tick is not exactly one past the
// current tick is ignored so a regressed scheduler cannot rewind state.
func (w *World) Step(tick uint64, now time.Time, commands []Command) {
	if w == nil {
		return
	}
	if tick != w.currentTick+1 {
		if w.metrics != nil {
			w.metrics.TelemetryAdd(metricTickIgnored, 1)
		}
		return
	}
	w.currentTick = tick

	for _, cmd := range commands {
		switch cmd.Type {
		case CommandMove:
			if cmd.Move == nil {
				continue
			}
			if reason := w.validateMove(cmd, cmd.Move); reason != "" {
				w.rejectCommand(cmd, reason)
				continue
			}
			w.applyMove(cmd, cmd.Move, now)
			w.commandApplied()
		case CommandJump:
			if cmd.Jump == nil {
				continue
			}
			if reason := w.validateJump(cmd, cmd.Jump); reason != "" {
				w.rejectCommand(cmd, reason)
				continue
			}
			w.applyJump(cmd, cmd.Jump)
			w.commandApplied()
		case CommandHeartbeat:
			if cmd.Heartbeat == nil {
				continue
			}
			if state, ok := w.players[cmd.PlayerID]; ok {
				state.lastHeartbeat = cmd.Heartbeat.ReceivedAt
				state.lastRTT = cmd.Heartbeat.RTT
			}
		}
	}

	w.sampleScores()

	if w.metrics != nil {
		w.metrics.TelemetryAdd(metricTicksAdvanced, 1)
	}
}

// sampleScores folds each live player's farthest-forward position into its
// monotonic score.
func (w *World) sampleScores() {
	for _, state := range w.players {
		if state.IsDead {
			continue
		}
		if state.Position.X > state.Score {
			state.Score = state.Position.X
		}
	}
}

func (w *World) commandApplied() {
	if w.metrics != nil {
		w.metrics.TelemetryAdd(metricCommandsApplied, 1)
	}
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
