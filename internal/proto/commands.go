package proto

import (
	"run-and-leap/server/internal/sim"
)

// EncodeCommand renders a command for wire transport. The layout is the
// shared command header followed by the kind-specific fields in
// declaration order.
func EncodeCommand(cmd sim.Command) ([]byte, bool) {
	switch cmd.Type {
	case sim.CommandMove:
		if cmd.Move == nil {
			return nil, false
		}
		w := newWriter(Version, KindMoveCommand)
		writeCommandHeader(w, cmd)
		w.f32(cmd.Move.Horizontal)
		w.f32(cmd.Move.InputX)
		w.f32(cmd.Move.InputY)
		w.f32(cmd.Move.DeltaTime)
		return w.bytes(), true
	case sim.CommandJump:
		if cmd.Jump == nil {
			return nil, false
		}
		w := newWriter(Version, KindJumpCommand)
		writeCommandHeader(w, cmd)
		w.f32(cmd.Jump.InputX)
		w.f32(cmd.Jump.InputY)
		w.f32(cmd.Jump.Strength)
		w.boolean(cmd.Jump.ClientGrounded)
		return w.bytes(), true
	case sim.CommandHeartbeat:
		if cmd.Heartbeat == nil {
			return nil, false
		}
		w := newWriter(Version, KindHeartbeatCommand)
		writeCommandHeader(w, cmd)
		w.i64(cmd.Heartbeat.ClientSent)
		return w.bytes(), true
	default:
		return nil, false
	}
}

// DecodeCommand parses a wire command. Malformed or truncated buffers
// return a DecodeError; the returned command is zero in that case.
func DecodeCommand(buf []byte) (sim.Command, *DecodeError) {
	var cmd sim.Command
	if len(buf) < 2 {
		return cmd, decodeErr("command", ErrShortBuffer)
	}
	if buf[0] != Version {
		return cmd, decodeErr("command", ErrVersion)
	}

	r := newReader(buf)
	switch buf[1] {
	case KindMoveCommand:
		r.header(KindMoveCommand, "move command")
		readCommandHeader(r, &cmd, "move command")
		move := sim.MoveCommand{
			Horizontal: r.f32("move horizontal"),
			InputX:     r.f32("move inputX"),
			InputY:     r.f32("move inputY"),
			DeltaTime:  r.f32("move deltaTime"),
		}
		if err := r.finish("move command"); err != nil {
			return sim.Command{}, err
		}
		cmd.Type = sim.CommandMove
		cmd.Move = &move
		return cmd, nil
	case KindJumpCommand:
		r.header(KindJumpCommand, "jump command")
		readCommandHeader(r, &cmd, "jump command")
		jump := sim.JumpCommand{
			InputX:         r.f32("jump inputX"),
			InputY:         r.f32("jump inputY"),
			Strength:       r.f32("jump strength"),
			ClientGrounded: r.boolean("jump grounded"),
		}
		if err := r.finish("jump command"); err != nil {
			return sim.Command{}, err
		}
		cmd.Type = sim.CommandJump
		cmd.Jump = &jump
		return cmd, nil
	case KindHeartbeatCommand:
		r.header(KindHeartbeatCommand, "heartbeat command")
		readCommandHeader(r, &cmd, "heartbeat command")
		heartbeat := sim.HeartbeatCommand{
			ClientSent: r.i64("heartbeat clientSent"),
		}
		if err := r.finish("heartbeat command"); err != nil {
			return sim.Command{}, err
		}
		cmd.Type = sim.CommandHeartbeat
		cmd.Heartbeat = &heartbeat
		return cmd, nil
	default:
		return cmd, decodeErr("command", ErrUnknownKind)
	}
}

func writeCommandHeader(w *writer, cmd sim.Command) {
	w.u64(cmd.Sequence)
	w.u64(cmd.OriginTick)
	w.u64(cmd.PlayerID)
}

func readCommandHeader(r *reader, cmd *sim.Command, what string) {
	cmd.Sequence = r.u64(what + " sequence")
	cmd.OriginTick = r.u64(what + " tick")
	cmd.PlayerID = r.u64(what + " playerId")
}
