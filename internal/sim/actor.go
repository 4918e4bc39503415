package sim

// Vec3 is the kinematic vector shared by records and actors. Components are
// 32-bit so state round-trips bit-for-bit through the wire codec.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// GroundSource tags where a ground determination came from.
type GroundSource string

const (
	// GroundSourcePhysics means the collider detected contact.
	GroundSourcePhysics GroundSource = "physics"
	// GroundSourceNetwork means an authoritative update forced the flag.
	GroundSourceNetwork GroundSource = "network"
)

// GroundState is the authoritative grounded determination for an actor.
type GroundState struct {
	Grounded bool
	Source   GroundSource
}

// Actor is the rendering-side collaborator a player record drives. The
// simulation only reads queries and fires triggers on it; it never renders.
type Actor interface {
	// GroundState reports the authoritative grounded determination.
	GroundState() GroundState
	// SetGroundState overrides the grounded flag, tagged with its source.
	SetGroundState(GroundState)
	// RunSpeed reports the actor's configured horizontal speed.
	RunSpeed() float32
	// TriggerJump fires the jump animation and audio side effects.
	TriggerJump()
}

const defaultRunSpeed = 10.0

// actorRunSpeed resolves the run speed, falling back when no actor is bound.
func actorRunSpeed(actor Actor) float32 {
	if actor == nil {
		return defaultRunSpeed
	}
	speed := actor.RunSpeed()
	if speed <= 0 {
		return defaultRunSpeed
	}
	return speed
}
