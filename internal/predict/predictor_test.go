package predict

import (
	"testing"

	"run-and-leap/server/internal/sim"
)

const floatTolerance = 1e-4

func approx(a, b float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= floatTolerance
}

func TestApplyInputMirrorsCommandExecution(t *testing.T) {
	p := NewPredictor(DefaultConfig(), State{})

	p.ApplyInput(0.8, false, 0, 0.1)

	state := p.State()
	if !approx(state.Velocity.X, 8) {
		t.Fatalf("expected velocity 8, got %v", state.Velocity.X)
	}
	if !approx(state.Position.X, 0.8) {
		t.Fatalf("expected position 0.8 after one frame, got %v", state.Position.X)
	}
	if state.Facing != 1 {
		t.Fatalf("expected facing +1, got %d", state.Facing)
	}
}

func TestApplyInputClampsAxisAndFlipsFacing(t *testing.T) {
	p := NewPredictor(DefaultConfig(), State{})

	p.ApplyInput(-3, false, 0, 0.016)

	state := p.State()
	if !approx(state.Velocity.X, -10) {
		t.Fatalf("expected clamped velocity -10, got %v", state.Velocity.X)
	}
	if state.Facing != -1 {
		t.Fatalf("expected facing -1, got %d", state.Facing)
	}
}

func TestApplyInputJumpSetsVerticalVelocity(t *testing.T) {
	p := NewPredictor(DefaultConfig(), State{})

	p.ApplyInput(0, true, 12, 0.016)

	state := p.State()
	if state.Velocity.Y != 12 {
		t.Fatalf("expected vertical velocity 12, got %v", state.Velocity.Y)
	}
	if state.Position.Y <= 0 {
		t.Fatalf("jump frame must integrate upward, got %v", state.Position.Y)
	}
}

func TestReconcileAlignedLeavesPredictionAlone(t *testing.T) {
	p := NewPredictor(DefaultConfig(), State{Position: sim.Vec3{X: 10}})

	outcome, drift := p.Reconcile(State{Position: sim.Vec3{X: 10.3}})

	if outcome != OutcomeAligned {
		t.Fatalf("expected aligned, got %s", outcome)
	}
	if !approx(drift, 0.3) {
		t.Fatalf("expected drift 0.3, got %v", drift)
	}
	if p.State().Position.X != 10 {
		t.Fatalf("aligned reconcile must not move the prediction, got %v", p.State().Position.X)
	}
}

func TestReconcileBlendsModerateDrift(t *testing.T) {
	p := NewPredictor(DefaultConfig(), State{Position: sim.Vec3{X: 10}})

	outcome, drift := p.Reconcile(State{Position: sim.Vec3{X: 12}, Velocity: sim.Vec3{X: 10}})

	if outcome != OutcomeBlended {
		t.Fatalf("expected blended, got %s", outcome)
	}
	if !approx(drift, 2) {
		t.Fatalf("expected drift 2, got %v", drift)
	}
	if !approx(p.State().Position.X, 11) {
		t.Fatalf("blend must move halfway, got %v", p.State().Position.X)
	}
	if !approx(p.State().Velocity.X, 5) {
		t.Fatalf("blend must damp velocity halfway, got %v", p.State().Velocity.X)
	}
}

func TestReconcileSnapsLargeDrift(t *testing.T) {
	p := NewPredictor(DefaultConfig(), State{Position: sim.Vec3{X: 10}})
	authority := State{Position: sim.Vec3{X: 20, Y: 2}, Velocity: sim.Vec3{X: 10}}

	outcome, drift := p.Reconcile(authority)

	if outcome != OutcomeSnapped {
		t.Fatalf("expected snapped, got %s", outcome)
	}
	if drift <= 5 {
		t.Fatalf("snap implies drift beyond 5, got %v", drift)
	}
	if p.State().Position != authority.Position || p.State().Velocity != authority.Velocity {
		t.Fatalf("snap must adopt the authoritative state, got %+v", p.State())
	}
}

func TestReconcileBoundaryUsesBlendNotSnap(t *testing.T) {
	p := NewPredictor(DefaultConfig(), State{})

	// Exactly at the snap threshold stays a blend.
	outcome, _ := p.Reconcile(State{Position: sim.Vec3{X: 5}})
	if outcome != OutcomeBlended {
		t.Fatalf("drift at the snap threshold must blend, got %s", outcome)
	}
}

func TestConfigNormalizationFillsDefaults(t *testing.T) {
	cfg := Config{}.normalized()
	defaults := DefaultConfig()
	if cfg != defaults {
		t.Fatalf("zero config must normalize to defaults:\nwant %+v\ngot  %+v", defaults, cfg)
	}

	cfg = Config{SnapThreshold: 0.1, BlendThreshold: 0.5}.normalized()
	if cfg.SnapThreshold <= cfg.BlendThreshold {
		t.Fatalf("inverted thresholds must be repaired, got %+v", cfg)
	}
}
