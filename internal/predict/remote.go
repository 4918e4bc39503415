package predict

import (
	"time"

	"run-and-leap/server/internal/sim"
)

// RemoteView smooths the displayed position of a non-local actor between
// authoritative updates. Fresh updates extrapolate along the last known
// velocity; stale ones freeze the target so the actor glides to its last
// confirmed position instead of running away.
type RemoteView struct {
	cfg Config

	lastPosition sim.Vec3
	lastVelocity sim.Vec3
	lastUpdate   time.Time

	displayed sim.Vec3
	seeded    bool
}

// NewRemoteView constructs a view for one remote actor.
func NewRemoteView(cfg Config) *RemoteView {
	return &RemoteView{cfg: cfg.normalized()}
}

// Observe records an authoritative kinematic update.
func (r *RemoteView) Observe(position, velocity sim.Vec3, at time.Time) {
	if r == nil {
		return
	}
	r.lastPosition = position
	r.lastVelocity = velocity
	r.lastUpdate = at
	if !r.seeded {
		r.displayed = position
		r.seeded = true
	}
}

// Displayed returns the current smoothed position.
func (r *RemoteView) Displayed() sim.Vec3 {
	if r == nil {
		return sim.Vec3{}
	}
	return r.displayed
}

// Advance moves the displayed position one frame toward the extrapolated
// target and returns it.
func (r *RemoteView) Advance(now time.Time, frameDelta float32) sim.Vec3 {
	if r == nil {
		return sim.Vec3{}
	}
	if !r.seeded || frameDelta <= 0 {
		return r.displayed
	}

	target := r.lastPosition
	elapsed := now.Sub(r.lastUpdate)
	if elapsed > 0 && elapsed <= r.cfg.ExtrapolationLimit {
		seconds := float32(elapsed.Seconds())
		target = sim.Vec3{
			X: r.lastPosition.X + r.lastVelocity.X*seconds,
			Y: r.lastPosition.Y + r.lastVelocity.Y*seconds,
			Z: r.lastPosition.Z + r.lastVelocity.Z*seconds,
		}
	}

	t := r.cfg.InterpolationSpeed * frameDelta
	if t > 1 {
		t = 1
	}
	r.displayed = lerpVec(r.displayed, target, t)
	return r.displayed
}
