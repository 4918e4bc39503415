package sim

import "time"

// applyMove sets the player's horizontal velocity from the clamped axis and
// flips facing when the axis is deliberate. No other actor is touched.
func (w *World) applyMove(cmd Command, move *MoveCommand, now time.Time) {
	state, ok := w.players[cmd.PlayerID]
	if !ok {
		return
	}
	horizontal := move.Horizontal
	if horizontal > 1 {
		horizontal = 1
	} else if horizontal < -1 {
		horizontal = -1
	}
	state.Velocity.X = actorRunSpeed(state.actor) * horizontal
	if horizontal > 0.1 {
		state.facing = 1
	} else if horizontal < -0.1 {
		state.facing = -1
	}
	if !cmd.IssuedAt.IsZero() {
		state.lastInput = cmd.IssuedAt
	} else {
		state.lastInput = now
	}
}

// applyJump sets the vertical impulse, bumps the jump counter, and fires
// the actor's jump trigger as a side effect.
func (w *World) applyJump(cmd Command, jump *JumpCommand) {
	state, ok := w.players[cmd.PlayerID]
	if !ok {
		return
	}
	state.Velocity.Y = jump.Strength
	state.JumpCount++
	state.LastJumpTick = w.currentTick
	if state.actor != nil {
		state.actor.TriggerJump()
	}
}

// Undo reverts what a command's execution can be reverted. The rollback is
// intentionally partial: horizontal movement is corrected by newer commands
// rather than unwound, and a jump only gives back its counter increment.
func (w *World) Undo(cmd Command) {
	if w == nil {
		return
	}
	switch cmd.Type {
	case CommandMove:
		// Corrective commands supersede rollback for horizontal motion.
	case CommandJump:
		state, ok := w.players[cmd.PlayerID]
		if !ok {
			return
		}
		if state.JumpCount > 0 {
			state.JumpCount--
		}
	}
}
