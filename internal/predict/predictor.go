// Package predict hides input latency for the locally controlled player by
// applying commands optimistically, then corrects the result toward
// authoritative updates with bounded interpolation.
package predict

import (
	"math"
	"time"

	"run-and-leap/server/internal/sim"
)

// Config tunes prediction and reconciliation behavior.
type Config struct {
	// RunSpeed mirrors the actor's horizontal speed used by command execution.
	RunSpeed float32
	// BlendThreshold is the drift distance past which a damped correction
	// applies instead of leaving the prediction alone.
	BlendThreshold float32
	// BlendFactor is the fraction moved toward authority per correction.
	BlendFactor float32
	// SnapThreshold is the drift distance treated as a desynchronization;
	// past it the predictor teleports to the authoritative state.
	SnapThreshold float32
	// ExtrapolationLimit bounds dead-reckoning for remote actors.
	ExtrapolationLimit time.Duration
	// InterpolationSpeed scales the per-frame lerp factor for remote actors.
	InterpolationSpeed float32
}

// DefaultConfig returns the tuning used in production sessions.
func DefaultConfig() Config {
	return Config{
		RunSpeed:           10,
		BlendThreshold:     0.5,
		BlendFactor:        0.5,
		SnapThreshold:      5,
		ExtrapolationLimit: 500 * time.Millisecond,
		InterpolationSpeed: 15,
	}
}

func (c Config) normalized() Config {
	defaults := DefaultConfig()
	if c.RunSpeed <= 0 {
		c.RunSpeed = defaults.RunSpeed
	}
	if c.BlendThreshold <= 0 {
		c.BlendThreshold = defaults.BlendThreshold
	}
	if c.BlendFactor <= 0 || c.BlendFactor > 1 {
		c.BlendFactor = defaults.BlendFactor
	}
	if c.SnapThreshold <= c.BlendThreshold {
		c.SnapThreshold = defaults.SnapThreshold
	}
	if c.ExtrapolationLimit <= 0 {
		c.ExtrapolationLimit = defaults.ExtrapolationLimit
	}
	if c.InterpolationSpeed <= 0 {
		c.InterpolationSpeed = defaults.InterpolationSpeed
	}
	return c
}

// State is the kinematic pair the predictor tracks and corrects.
type State struct {
	Position sim.Vec3
	Velocity sim.Vec3
	Facing   int8
}

// Outcome classifies a reconciliation pass.
type Outcome string

const (
	// OutcomeAligned means drift stayed under the blend threshold.
	OutcomeAligned Outcome = "aligned"
	// OutcomeBlended means a damped correction was applied.
	OutcomeBlended Outcome = "blended"
	// OutcomeSnapped means drift exceeded the desync threshold and the
	// state teleported to authority.
	OutcomeSnapped Outcome = "snapped"
)

// Predictor mirrors command execution for the local player ahead of
// authoritative confirmation.
type Predictor struct {
	cfg   Config
	state State
}

// NewPredictor seeds a predictor at the given starting state.
func NewPredictor(cfg Config, initial State) *Predictor {
	if initial.Facing == 0 {
		initial.Facing = 1
	}
	return &Predictor{cfg: cfg.normalized(), state: initial}
}

// State returns the current predicted kinematics.
func (p *Predictor) State() State {
	if p == nil {
		return State{}
	}
	return p.state
}

// ApplyInput duplicates the effect command execution would have on the
// authoritative record, then integrates one frame so the predicted
// position stays ahead of the round trip.
func (p *Predictor) ApplyInput(horizontal float32, jumpPressed bool, jumpStrength float32, dt float32) {
	if p == nil || dt <= 0 {
		return
	}
	if horizontal > 1 {
		horizontal = 1
	} else if horizontal < -1 {
		horizontal = -1
	}

	p.state.Velocity.X = p.cfg.RunSpeed * horizontal
	if horizontal > 0.1 {
		p.state.Facing = 1
	} else if horizontal < -0.1 {
		p.state.Facing = -1
	}
	if jumpPressed {
		p.state.Velocity.Y = jumpStrength
	}

	p.state.Position.X += p.state.Velocity.X * dt
	p.state.Position.Y += p.state.Velocity.Y * dt
	p.state.Position.Z += p.state.Velocity.Z * dt
}

// Reconcile corrects the prediction toward an authoritative update. Drift
// under the blend threshold is left alone; moderate drift blends halfway;
// drift past the snap threshold teleports, which callers should treat as a
// desync worth reporting.
func (p *Predictor) Reconcile(authoritative State) (Outcome, float32) {
	if p == nil {
		return OutcomeAligned, 0
	}
	drift := distance(p.state.Position, authoritative.Position)
	switch {
	case drift > p.cfg.SnapThreshold:
		p.state.Position = authoritative.Position
		p.state.Velocity = authoritative.Velocity
		return OutcomeSnapped, drift
	case drift > p.cfg.BlendThreshold:
		p.state.Position = lerpVec(p.state.Position, authoritative.Position, p.cfg.BlendFactor)
		p.state.Velocity = lerpVec(p.state.Velocity, authoritative.Velocity, p.cfg.BlendFactor)
		return OutcomeBlended, drift
	default:
		return OutcomeAligned, drift
	}
}

func distance(a, b sim.Vec3) float32 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return float32(math.Sqrt(dx*dx + dy*dy + dz*dz))
}

func lerpVec(from, to sim.Vec3, t float32) sim.Vec3 {
	return sim.Vec3{
		X: from.X + (to.X-from.X)*t,
		Y: from.Y + (to.Y-from.Y)*t,
		Z: from.Z + (to.Z-from.Z)*t,
	}
}
