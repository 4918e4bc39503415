package sim

import (
	"testing"
	"time"
)

const floatTolerance = 1e-4

func newTestWorld() *World {
	return NewWorld(DefaultRules(), Deps{})
}

func stepOnce(w *World, commands ...Command) {
	w.Step(w.CurrentTick()+1, time.Now(), commands)
}

func approx(a, b float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= floatTolerance
}

type stubActor struct {
	grounded   GroundState
	runSpeed   float32
	jumpsFired int
}

func (a *stubActor) GroundState() GroundState         { return a.grounded }
func (a *stubActor) SetGroundState(state GroundState) { a.grounded = state }
func (a *stubActor) RunSpeed() float32                { return a.runSpeed }
func (a *stubActor) TriggerJump()                     { a.jumpsFired++ }

func TestMoveCommandSetsVelocityAndFacing(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{Y: 1})

	stepOnce(w, Command{
		PlayerID: record.ID,
		Type:     CommandMove,
		Move:     &MoveCommand{Horizontal: 0.8, DeltaTime: 0.016},
	})

	got, ok := w.Player(record.ID)
	if !ok {
		t.Fatalf("player %d missing after step", record.ID)
	}
	if !approx(got.Velocity.X, 8.0) {
		t.Fatalf("expected horizontal velocity 8.0, got %v", got.Velocity.X)
	}
	facing, _ := w.PlayerFacing(record.ID)
	if facing != 1 {
		t.Fatalf("expected facing +1, got %d", facing)
	}
}

func TestMoveCommandFlipsFacingLeft(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{})

	stepOnce(w, Command{
		PlayerID: record.ID,
		Type:     CommandMove,
		Move:     &MoveCommand{Horizontal: -1, DeltaTime: 0.016},
	})

	got, _ := w.Player(record.ID)
	if !approx(got.Velocity.X, -10.0) {
		t.Fatalf("expected horizontal velocity -10, got %v", got.Velocity.X)
	}
	facing, _ := w.PlayerFacing(record.ID)
	if facing != -1 {
		t.Fatalf("expected facing -1, got %d", facing)
	}
}

func TestMoveCommandRejectedOutsideAxisTolerance(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{})

	stepOnce(w, Command{
		PlayerID: record.ID,
		Type:     CommandMove,
		Move:     &MoveCommand{Horizontal: 1.5, DeltaTime: 0.016},
	})

	got, _ := w.Player(record.ID)
	if got.Velocity.X != 0 {
		t.Fatalf("rejected move must not change velocity, got %v", got.Velocity.X)
	}
}

func TestMoveCommandRejectedOutsideDeltaWindow(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{})

	for _, dt := range []float32{0.001, 0.5} {
		stepOnce(w, Command{
			PlayerID: record.ID,
			Type:     CommandMove,
			Move:     &MoveCommand{Horizontal: 0.5, DeltaTime: dt},
		})
		got, _ := w.Player(record.ID)
		if got.Velocity.X != 0 {
			t.Fatalf("dt=%v: rejected move must not change velocity, got %v", dt, got.Velocity.X)
		}
	}
}

func TestJumpRejectedDuringCooldown(t *testing.T) {
	w := newTestWorld()
	w.ReplaceState(99, []PlayerRecord{{
		ID:           1,
		Name:         "runner",
		Grounded:     true,
		LastJumpTick: 95,
	}}, nil, nil)

	w.Step(100, time.Now(), []Command{{
		PlayerID: 1,
		Type:     CommandJump,
		Jump:     &JumpCommand{Strength: 12},
	}})

	got, _ := w.Player(1)
	if got.JumpCount != 0 {
		t.Fatalf("cooldown jump must be rejected, jump count %d", got.JumpCount)
	}
	if got.Velocity.Y != 0 {
		t.Fatalf("cooldown jump must not set vertical velocity, got %v", got.Velocity.Y)
	}
	if got.LastJumpTick != 95 {
		t.Fatalf("rejected jump must not update last jump tick, got %d", got.LastJumpTick)
	}
}

func TestJumpAcceptedAfterCooldown(t *testing.T) {
	w := newTestWorld()
	w.ReplaceState(105, []PlayerRecord{{
		ID:           1,
		Name:         "runner",
		Grounded:     true,
		LastJumpTick: 95,
	}}, nil, nil)

	w.Step(106, time.Now(), []Command{{
		PlayerID: 1,
		Type:     CommandJump,
		Jump:     &JumpCommand{Strength: 12},
	}})

	got, _ := w.Player(1)
	if got.Velocity.Y != 12 {
		t.Fatalf("expected vertical velocity 12, got %v", got.Velocity.Y)
	}
	if got.JumpCount != 1 {
		t.Fatalf("expected jump count 1, got %d", got.JumpCount)
	}
	if got.LastJumpTick != 106 {
		t.Fatalf("expected last jump tick 106, got %d", got.LastJumpTick)
	}
}

func TestJumpRejectedOutsideStrengthBounds(t *testing.T) {
	w := newTestWorld()
	w.ReplaceState(50, []PlayerRecord{{ID: 1, Name: "runner", Grounded: true}}, nil, nil)

	for _, strength := range []float32{4.9, 20.1} {
		w.Step(w.CurrentTick()+1, time.Now(), []Command{{
			PlayerID: 1,
			Type:     CommandJump,
			Jump:     &JumpCommand{Strength: strength},
		}})
		got, _ := w.Player(1)
		if got.JumpCount != 0 {
			t.Fatalf("strength=%v: expected rejection, jump count %d", strength, got.JumpCount)
		}
	}
}

func TestJumpAuthoritativeGroundCheckWins(t *testing.T) {
	w := newTestWorld()
	w.ReplaceState(50, []PlayerRecord{{ID: 1, Name: "runner", Grounded: true}}, nil, nil)

	actor := &stubActor{grounded: GroundState{Grounded: false, Source: GroundSourcePhysics}, runSpeed: 10}
	if !w.BindActor(1, actor) {
		t.Fatalf("failed to bind actor")
	}

	// The client insists it is grounded; the bound actor says otherwise.
	stepOnce(w, Command{
		PlayerID: 1,
		Type:     CommandJump,
		Jump:     &JumpCommand{Strength: 12, ClientGrounded: true},
	})

	got, _ := w.Player(1)
	if got.JumpCount != 0 {
		t.Fatalf("airborne jump must be rejected, jump count %d", got.JumpCount)
	}
	if actor.jumpsFired != 0 {
		t.Fatalf("rejected jump must not fire the actor trigger")
	}
}

func TestJumpFiresActorTrigger(t *testing.T) {
	w := newTestWorld()
	w.ReplaceState(50, []PlayerRecord{{ID: 1, Name: "runner", Grounded: true}}, nil, nil)

	actor := &stubActor{grounded: GroundState{Grounded: true, Source: GroundSourcePhysics}, runSpeed: 10}
	w.BindActor(1, actor)

	stepOnce(w, Command{
		PlayerID: 1,
		Type:     CommandJump,
		Jump:     &JumpCommand{Strength: 12},
	})

	if actor.jumpsFired != 1 {
		t.Fatalf("expected one jump trigger, got %d", actor.jumpsFired)
	}
}

func TestStepIgnoresNonMonotonicTick(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{})

	w.Step(1, time.Now(), nil)
	if w.CurrentTick() != 1 {
		t.Fatalf("expected tick 1, got %d", w.CurrentTick())
	}

	// Same tick again and a skipped-ahead tick are both ignored.
	w.Step(1, time.Now(), []Command{{
		PlayerID: record.ID,
		Type:     CommandMove,
		Move:     &MoveCommand{Horizontal: 1, DeltaTime: 0.016},
	}})
	w.Step(5, time.Now(), nil)

	if w.CurrentTick() != 1 {
		t.Fatalf("non-monotonic advances must not move the tick, got %d", w.CurrentTick())
	}
	got, _ := w.Player(record.ID)
	if got.Velocity.X != 0 {
		t.Fatalf("ignored step must not apply commands, got velocity %v", got.Velocity.X)
	}
}

func TestStepAppliesCommandsInQueueOrder(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{})

	stepOnce(w,
		Command{PlayerID: record.ID, Type: CommandMove, Move: &MoveCommand{Horizontal: 0.5, DeltaTime: 0.016}},
		Command{PlayerID: record.ID, Type: CommandMove, Move: &MoveCommand{Horizontal: -1, DeltaTime: 0.016}},
	)

	got, _ := w.Player(record.ID)
	if !approx(got.Velocity.X, -10.0) {
		t.Fatalf("later command must win, got velocity %v", got.Velocity.X)
	}
	facing, _ := w.PlayerFacing(record.ID)
	if facing != -1 {
		t.Fatalf("expected facing -1 after second command, got %d", facing)
	}
}

func TestScoreTracksFarthestForwardPosition(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{})

	w.SetPlayerKinematics(record.ID, Vec3{X: 12}, Vec3{}, true)
	stepOnce(w)
	got, _ := w.Player(record.ID)
	if got.Score != 12 {
		t.Fatalf("expected score 12, got %v", got.Score)
	}

	// Moving backward never lowers the score.
	w.SetPlayerKinematics(record.ID, Vec3{X: 5}, Vec3{}, true)
	stepOnce(w)
	got, _ = w.Player(record.ID)
	if got.Score != 12 {
		t.Fatalf("score must be monotonic, got %v", got.Score)
	}
}

func TestDeadPlayerRefusesCommandsAndWrites(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{})
	if !w.KillPlayer(record.ID) {
		t.Fatalf("kill failed")
	}

	stepOnce(w, Command{
		PlayerID: record.ID,
		Type:     CommandMove,
		Move:     &MoveCommand{Horizontal: 1, DeltaTime: 0.016},
	})
	got, _ := w.Player(record.ID)
	if got.Velocity.X != 0 {
		t.Fatalf("dead player must reject moves, got velocity %v", got.Velocity.X)
	}

	if w.SetPlayerKinematics(record.ID, Vec3{X: 3}, Vec3{}, true) {
		t.Fatalf("dead player must refuse kinematic writes")
	}

	if !w.RespawnPlayer(record.ID, Vec3{Y: 1}) {
		t.Fatalf("respawn failed")
	}
	got, _ = w.Player(record.ID)
	if got.IsDead {
		t.Fatalf("respawned player still flagged dead")
	}
	if got.Position.Y != 1 {
		t.Fatalf("respawn must reseat position, got %+v", got.Position)
	}
}

func TestUndoJumpRestoresCounter(t *testing.T) {
	w := newTestWorld()
	w.ReplaceState(50, []PlayerRecord{{ID: 1, Name: "runner", Grounded: true}}, nil, nil)

	cmd := Command{PlayerID: 1, Type: CommandJump, Jump: &JumpCommand{Strength: 10}}
	stepOnce(w, cmd)
	got, _ := w.Player(1)
	if got.JumpCount != 1 {
		t.Fatalf("expected jump count 1, got %d", got.JumpCount)
	}

	w.Undo(cmd)
	got, _ = w.Player(1)
	if got.JumpCount != 0 {
		t.Fatalf("undo must give the counter back, got %d", got.JumpCount)
	}

	// A second undo never underflows.
	w.Undo(cmd)
	got, _ = w.Player(1)
	if got.JumpCount != 0 {
		t.Fatalf("repeated undo must not underflow, got %d", got.JumpCount)
	}
}

func TestHeartbeatUpdatesConnectivity(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{Y: 1})
	seeded, _, ok := w.PlayerHeartbeat(record.ID)
	if !ok || seeded.IsZero() {
		t.Fatalf("spawn must seed the heartbeat time")
	}

	beat := time.Now().Add(50 * time.Millisecond)
	stepOnce(w, Command{
		PlayerID:  record.ID,
		Type:      CommandHeartbeat,
		Heartbeat: &HeartbeatCommand{ReceivedAt: beat, RTT: 30 * time.Millisecond},
	})

	last, rtt, ok := w.PlayerHeartbeat(record.ID)
	if !ok {
		t.Fatalf("player %d missing after step", record.ID)
	}
	if !last.Equal(beat) {
		t.Fatalf("expected heartbeat time %v, got %v", beat, last)
	}
	if rtt != 30*time.Millisecond {
		t.Fatalf("expected rtt 30ms, got %v", rtt)
	}
}

func TestStalePlayersReportsOnlyAgedHeartbeats(t *testing.T) {
	w := newTestWorld()
	record := w.SpawnPlayer("runner", Vec3{Y: 1})

	if stale := w.StalePlayers(time.Now().Add(-time.Hour)); len(stale) != 0 {
		t.Fatalf("fresh player reported stale: %v", stale)
	}
	stale := w.StalePlayers(time.Now().Add(time.Hour))
	if len(stale) != 1 || stale[0] != record.ID {
		t.Fatalf("expected player %d stale, got %v", record.ID, stale)
	}
}

func TestRestoredPlayersAreNeverStale(t *testing.T) {
	w := newTestWorld()
	w.ReplaceState(5, []PlayerRecord{{ID: 1, Name: "restored", Position: Vec3{Y: 1}}}, nil, nil)

	if stale := w.StalePlayers(time.Now().Add(time.Hour)); len(stale) != 0 {
		t.Fatalf("restored player must not report stale: %v", stale)
	}
}
