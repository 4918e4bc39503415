// Package session owns one authoritative game session: the tick loop,
// the keyframe journal, command intake, and progression persistence.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"run-and-leap/server/internal/journal"
	"run-and-leap/server/internal/predict"
	"run-and-leap/server/internal/proto"
	"run-and-leap/server/internal/sim"
	"run-and-leap/server/internal/storage"
	"run-and-leap/server/internal/telemetry"
	"run-and-leap/server/logging"
	"run-and-leap/server/logging/lifecycle"
	loggingsimulation "run-and-leap/server/logging/simulation"
)

// DefaultKeyframeInterval records a keyframe once per second at the
// default tick rate.
const DefaultKeyframeInterval = 60

// DefaultHeartbeatTimeout evicts a player after three missed heartbeats
// at the expected two second cadence.
const DefaultHeartbeatTimeout = 6 * time.Second

var defaultSpawn = sim.Vec3{X: 0, Y: 1, Z: 0}

// Deps carries everything a session needs. Zero fields other than World
// and Loop fall back to quiet defaults.
type Deps struct {
	World     *sim.World
	Loop      *sim.Loop
	Journal   *journal.Journal
	Store     *storage.Store
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Clock     logging.Clock

	// KeyframeInterval is the tick cadence of journal recording.
	KeyframeInterval uint64

	// HeartbeatTimeout evicts players whose last heartbeat is older than
	// this. Zero selects the default; a negative value disables eviction.
	HeartbeatTimeout time.Duration

	// OnResync receives the keyframe to push when the resync policy
	// trips. Called on the loop goroutine while the session lock is
	// held, so it must not call back into the session.
	OnResync func(ResyncBroadcast)
}

// ResyncBroadcast pairs a tripped resync signal with the keyframe that
// should be pushed to clients.
type ResyncBroadcast struct {
	Signal   journal.ResyncSignal
	Keyframe proto.Keyframe
}

// Session is the dependency-injected context for one running game.
// mu serializes every world mutation: loop advances, joins, leaves,
// respawns, and restores all hold it. Command intake stays lock-free
// through the loop's queue.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Time

	mu sync.RWMutex

	world     *sim.World
	loop      *sim.Loop
	journal   *journal.Journal
	store     *storage.Store
	publisher logging.Publisher
	metrics   telemetry.Metrics
	clock     logging.Clock

	keyframeInterval uint64
	keyframeSeq      uint64
	heartbeatTimeout time.Duration
	onResync         func(ResyncBroadcast)

	progression storage.ProgressionSet
	gameData    storage.GameData
	jumpsAtJoin map[uint64]uint32
	coinsAtJoin map[uint64]int32
}

var errNilWorld = errors.New("session: world and loop are required")

func formatPlayerID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// New builds a session around the provided world and loop, loading any
// persisted progression. The store may be nil for ephemeral sessions.
func New(ctx context.Context, deps Deps) (*Session, error) {
	if deps.World == nil || deps.Loop == nil {
		return nil, errNilWorld
	}
	if deps.Clock == nil {
		deps.Clock = logging.SystemClock{}
	}
	if deps.Publisher == nil {
		deps.Publisher = logging.NopPublisher()
	}
	if deps.KeyframeInterval == 0 {
		deps.KeyframeInterval = DefaultKeyframeInterval
	}
	if deps.Journal == nil {
		deps.Journal = journal.New(32, 30*time.Second)
	}
	if deps.HeartbeatTimeout == 0 {
		deps.HeartbeatTimeout = DefaultHeartbeatTimeout
	}

	s := &Session{
		ID:               uuid.New(),
		StartedAt:        deps.Clock.Now(),
		world:            deps.World,
		loop:             deps.Loop,
		journal:          deps.Journal,
		store:            deps.Store,
		publisher:        deps.Publisher,
		metrics:          deps.Metrics,
		clock:            deps.Clock,
		keyframeInterval: deps.KeyframeInterval,
		heartbeatTimeout: deps.HeartbeatTimeout,
		onResync:         deps.OnResync,
		progression:      storage.ProgressionSet{},
		jumpsAtJoin:      make(map[uint64]uint32),
		coinsAtJoin:      make(map[uint64]int32),
	}

	if s.store != nil {
		progression, err := s.store.LoadProgression(ctx)
		if err != nil {
			return nil, err
		}
		s.progression = progression
		gameData, err := s.store.LoadGameData(ctx)
		if err != nil {
			return nil, err
		}
		s.gameData = gameData
	}
	s.gameData.SessionCount++

	s.loop.SetHooks(sim.LoopHooks{AfterStep: s.afterStep})
	return s, nil
}

// Run drives the fixed-rate loop until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(s.loop.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Advance(s.clock.Now())
		}
	}
}

// Advance steps real time into the loop. Exposed for deterministic
// drivers; Run uses it internally.
func (s *Session) Advance(now time.Time) int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop.Advance(now)
}

// CurrentTick reports the last completed tick.
func (s *Session) CurrentTick() uint64 {
	if s == nil {
		return 0
	}
	return s.loop.CurrentTick()
}

// HasPlayer reports whether id names a live participant.
func (s *Session) HasPlayer(id uint64) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.HasPlayer(id)
}

// Join spawns a player and seeds its record. Names are clamped to the
// wire string limit before they enter world state. Prior progression for
// the same display name is surfaced in the join event, not replayed into
// the run.
func (s *Session) Join(ctx context.Context, name string) sim.PlayerRecord {
	if len(name) > proto.MaxStringLen {
		name = name[:proto.MaxStringLen]
	}

	s.mu.Lock()
	record := s.world.SpawnPlayer(name, defaultSpawn)
	s.jumpsAtJoin[record.ID] = record.JumpCount
	s.coinsAtJoin[record.ID] = record.Coins
	tick := s.world.CurrentTick()

	extra := map[string]any{"sessionId": s.ID.String()}
	if prior, ok := s.progression[name]; ok {
		extra["bestScore"] = prior.BestScore
		extra["runs"] = prior.Runs
	}
	s.mu.Unlock()

	lifecycle.PlayerJoined(ctx, s.publisher, tick,
		logging.EntityRef{ID: formatPlayerID(record.ID), Kind: logging.EntityKindPlayer},
		lifecycle.PlayerJoinedPayload{
			Name:   name,
			SpawnX: float64(record.Position.X),
			SpawnY: float64(record.Position.Y),
		}, extra)
	return record
}

// Leave removes a player, folds the finished run into persisted
// progression, and publishes the departure.
func (s *Session) Leave(ctx context.Context, id uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked(ctx, id, reason)
}

// leaveLocked is the Leave body. Callers hold mu; afterStep reuses it for
// heartbeat eviction on the loop goroutine.
func (s *Session) leaveLocked(ctx context.Context, id uint64, reason string) bool {
	record, ok := s.world.Player(id)
	if !ok {
		return false
	}
	lastBeat, rtt, _ := s.world.PlayerHeartbeat(id)
	if !s.world.RemovePlayer(id) {
		return false
	}

	jumps := record.JumpCount - s.jumpsAtJoin[id]
	coins := record.Coins - s.coinsAtJoin[id]
	delete(s.jumpsAtJoin, id)
	delete(s.coinsAtJoin, id)

	s.progression.Merge(record.Name, record.Score, int64(coins), uint64(jumps))
	if record.Score > s.gameData.Highscore {
		s.gameData.Highscore = record.Score
		s.gameData.HighscoreName = record.Name
	}
	s.persist(ctx)

	extra := map[string]any{"score": record.Score, "coins": record.Coins}
	if !lastBeat.IsZero() {
		extra["lastHeartbeat"] = lastBeat
	}
	if rtt > 0 {
		extra["rtt"] = rtt.String()
	}
	lifecycle.PlayerLeft(ctx, s.publisher, s.world.CurrentTick(),
		logging.EntityRef{ID: formatPlayerID(id), Kind: logging.EntityKindPlayer},
		lifecycle.PlayerLeftPayload{Reason: reason},
		extra)
	return true
}

// Respawn reseats a dead player at the spawn point.
func (s *Session) Respawn(ctx context.Context, id uint64) bool {
	s.mu.Lock()
	ok := s.world.RespawnPlayer(id, defaultSpawn)
	tick := s.world.CurrentTick()
	s.mu.Unlock()
	if !ok {
		return false
	}
	lifecycle.PlayerRespawned(ctx, s.publisher, tick,
		logging.EntityRef{ID: formatPlayerID(id), Kind: logging.EntityKindPlayer}, nil)
	return true
}

// ReportReconciliation feeds one client reconciliation result into the
// resync policy. Hard snaps count as desyncs and are logged.
func (s *Session) ReportReconciliation(ctx context.Context, playerID uint64, outcome predict.Outcome, drift float32) {
	policy := s.journal.Resync()
	policy.NoteSample()
	if outcome != predict.OutcomeSnapped {
		return
	}
	policy.NoteDesync(journal.DesyncKindHardSnap, playerID)
	s.mu.RLock()
	tick := s.world.CurrentTick()
	s.mu.RUnlock()
	lifecycle.PlayerDesynced(ctx, s.publisher, tick,
		logging.EntityRef{ID: formatPlayerID(playerID), Kind: logging.EntityKindPlayer},
		lifecycle.PlayerDesyncedPayload{Distance: float64(drift)}, nil)
}

// ReportDecodeFailure counts a client-side keyframe decode failure as a
// desync.
func (s *Session) ReportDecodeFailure(playerID uint64) {
	policy := s.journal.Resync()
	policy.NoteSample()
	policy.NoteDesync(journal.DesyncKindDecodeFailed, playerID)
}

// LatestKeyframe exposes the most recent journal entry.
func (s *Session) LatestKeyframe() (proto.Keyframe, bool) {
	return s.journal.Latest()
}

// RestoreLatest rewinds the world to the newest recorded keyframe. The
// world is untouched when no keyframe exists or decoding fails.
func (s *Session) RestoreLatest(ctx context.Context) bool {
	frame, ok := s.journal.Latest()
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if derr := proto.RestoreKeyframe(s.world, frame); derr != nil {
		loggingsimulation.KeyframeRestoreFailed(ctx, s.publisher, s.world.CurrentTick(),
			loggingsimulation.RestoreFailedPayload{Error: derr.Error()})
		return false
	}
	return true
}

// afterStep runs on the loop goroutine after every completed tick, inside
// the Advance lock. It evicts silent players, then handles keyframe
// cadence and resync consumption.
func (s *Session) afterStep(result sim.LoopStepResult) {
	s.gameData.LastTick = result.Tick

	if s.heartbeatTimeout > 0 {
		cutoff := result.Now.Add(-s.heartbeatTimeout)
		for _, id := range s.world.StalePlayers(cutoff) {
			s.leaveLocked(context.Background(), id, "timeout")
		}
	}

	if result.Tick%s.keyframeInterval == 0 {
		s.keyframeSeq++
		frame := proto.BuildKeyframe(s.world.Snapshot(), s.keyframeSeq, result.Now)
		record := s.journal.Record(frame)
		if s.metrics != nil {
			s.metrics.Store("journal_keyframe_window", uint64(record.Size))
		}
	}

	if signal, tripped := s.journal.Resync().Consume(); tripped {
		frame, ok := s.journal.Latest()
		if !ok {
			s.keyframeSeq++
			frame = proto.BuildKeyframe(s.world.Snapshot(), s.keyframeSeq, result.Now)
			s.journal.Record(frame)
		}
		if s.metrics != nil {
			s.metrics.Add("session_resyncs_total", 1)
		}
		if s.onResync != nil {
			s.onResync(ResyncBroadcast{Signal: signal, Keyframe: frame})
		}
	}
}

// Close persists the final progression and world documents.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveProgression(ctx, s.progression); err != nil {
		return err
	}
	return s.store.SaveGameData(ctx, s.gameData)
}
