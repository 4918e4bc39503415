package sim

import (
	"context"

	loggingsimulation "run-and-leap/server/logging/simulation"
)

// Rejection reasons surfaced to intake callers and telemetry.
const (
	RejectUnknownPlayer = "unknown_player"
	RejectPlayerDead    = "player_dead"
	RejectAxisRange     = "axis_out_of_range"
	RejectDeltaRange    = "delta_out_of_range"
	RejectStrengthRange = "strength_out_of_range"
	RejectJumpCooldown  = "jump_cooldown"
	RejectAirborne      = "airborne"
)

// validateMove applies the movement anti-cheat rules. An empty reason means
// the command may execute.
func (w *World) validateMove(cmd Command, move *MoveCommand) string {
	state, ok := w.players[cmd.PlayerID]
	if !ok {
		return RejectUnknownPlayer
	}
	if state.IsDead {
		return RejectPlayerDead
	}
	horizontal := move.Horizontal
	if horizontal < 0 {
		horizontal = -horizontal
	}
	if horizontal > w.rules.AxisTolerance {
		return RejectAxisRange
	}
	if move.DeltaTime < w.rules.MinDeltaTime || move.DeltaTime > w.rules.MaxDeltaTime {
		return RejectDeltaRange
	}
	return ""
}

// validateJump applies the jump anti-cheat rules. The client-reported
// grounded flag is never trusted; the authoritative check always decides.
func (w *World) validateJump(cmd Command, jump *JumpCommand) string {
	state, ok := w.players[cmd.PlayerID]
	if !ok {
		return RejectUnknownPlayer
	}
	if state.IsDead {
		return RejectPlayerDead
	}
	if jump.Strength < w.rules.MinJumpStrength || jump.Strength > w.rules.MaxJumpStrength {
		return RejectStrengthRange
	}
	if w.currentTick-state.LastJumpTick < w.rules.JumpCooldownTicks {
		return RejectJumpCooldown
	}
	if !state.groundState().Grounded {
		return RejectAirborne
	}
	return ""
}

func (w *World) rejectCommand(cmd Command, reason string) {
	if w.metrics != nil {
		w.metrics.TelemetryAdd(metricCommandsRejected, 1)
	}
	loggingsimulation.CommandRejected(context.Background(), w.publisher, w.currentTick,
		playerRef(cmd.PlayerID),
		loggingsimulation.CommandRejectedPayload{Kind: string(cmd.Type), Reason: reason},
		cmd.Sequence)
}
