package predict

import (
	"testing"
	"time"

	"run-and-leap/server/internal/sim"
)

func TestRemoteViewSeedsOnFirstObserve(t *testing.T) {
	view := NewRemoteView(DefaultConfig())
	base := time.Now()

	view.Observe(sim.Vec3{X: 4, Y: 1}, sim.Vec3{X: 10}, base)

	if got := view.Displayed(); got != (sim.Vec3{X: 4, Y: 1}) {
		t.Fatalf("first observe must seed the displayed position, got %+v", got)
	}
}

func TestRemoteViewExtrapolatesFreshUpdate(t *testing.T) {
	view := NewRemoteView(DefaultConfig())
	base := time.Now()
	view.Observe(sim.Vec3{}, sim.Vec3{X: 10}, base)

	// Large frame delta clamps the lerp factor to 1, so the displayed
	// position lands on the extrapolated target.
	got := view.Advance(base.Add(100*time.Millisecond), 0.1)

	if !approx(got.X, 1) {
		t.Fatalf("expected extrapolated x near 1.0, got %v", got.X)
	}
}

func TestRemoteViewFreezesStaleTarget(t *testing.T) {
	view := NewRemoteView(DefaultConfig())
	base := time.Now()
	view.Observe(sim.Vec3{X: 2}, sim.Vec3{X: 10}, base)

	// Beyond the extrapolation limit the target falls back to the last
	// confirmed position instead of running away.
	got := view.Advance(base.Add(2*time.Second), 0.1)

	if !approx(got.X, 2) {
		t.Fatalf("stale target must glide to the confirmed position, got %v", got.X)
	}
}

func TestRemoteViewInterpolatesTowardTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InterpolationSpeed = 5
	view := NewRemoteView(cfg)
	base := time.Now()
	view.Observe(sim.Vec3{}, sim.Vec3{}, base)
	view.Observe(sim.Vec3{X: 10}, sim.Vec3{}, base.Add(10*time.Millisecond))

	// t = 5 * 0.1 = 0.5, so the view covers half the gap per frame.
	got := view.Advance(base.Add(20*time.Millisecond), 0.1)
	if !approx(got.X, 5) {
		t.Fatalf("expected halfway interpolation, got %v", got.X)
	}
	got = view.Advance(base.Add(30*time.Millisecond), 0.1)
	if !approx(got.X, 7.5) {
		t.Fatalf("expected three-quarter interpolation, got %v", got.X)
	}
}

func TestRemoteViewIgnoresNonPositiveFrameDelta(t *testing.T) {
	view := NewRemoteView(DefaultConfig())
	base := time.Now()
	view.Observe(sim.Vec3{X: 1}, sim.Vec3{X: 10}, base)

	got := view.Advance(base.Add(50*time.Millisecond), 0)
	if got != (sim.Vec3{X: 1}) {
		t.Fatalf("zero frame delta must leave the view unchanged, got %+v", got)
	}
}
