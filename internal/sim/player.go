package sim

import "time"

// PlayerRecord is the authoritative per-participant state. It is owned by
// the world; the rendering actor references it and never copies it.
type PlayerRecord struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Position     Vec3    `json:"position"`
	Velocity     Vec3    `json:"velocity"`
	Grounded     bool    `json:"grounded"`
	Score        float32 `json:"score"`
	Coins        int32   `json:"coins"`
	IsDead       bool    `json:"isDead"`
	LastJumpTick uint64  `json:"lastJumpTick"`
	JumpCount    uint32  `json:"jumpCount"`
}

// playerState wraps the record with runtime-only fields that never cross
// the wire.
type playerState struct {
	PlayerRecord

	actor         Actor
	facing        int8
	lastInput     time.Time
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

func (s *playerState) record() PlayerRecord {
	return s.PlayerRecord
}

// groundState resolves the authoritative grounded check. Without a bound
// actor the record's own flag is the best available authority.
func (s *playerState) groundState() GroundState {
	if s.actor != nil {
		return s.actor.GroundState()
	}
	return GroundState{Grounded: s.Grounded, Source: GroundSourceNetwork}
}

// Facing reports the horizontal facing sign, +1 or -1.
func (s *playerState) Facing() int8 {
	if s.facing == 0 {
		return 1
	}
	return s.facing
}
