package session

import (
	"time"

	"run-and-leap/server/internal/sim"
)

// Reject reasons returned by StageCommand before a command ever reaches
// the queue. Queue-level reasons come from sim.Loop.
const (
	CommandRejectInvalidAction = "invalid_action"
	CommandRejectUnknownActor  = "unknown_actor"
)

// StageCommand validates a client command's shape, stamps its actor and
// issue time, and hands it to the loop. It returns the assigned
// sequence, whether the command was accepted, and a reject reason for
// refusals. Safe to call from any goroutine.
func (s *Session) StageCommand(playerID uint64, cmd sim.Command) (uint64, bool, string) {
	if s == nil || s.loop == nil {
		return 0, false, sim.CommandRejectQueueFull
	}

	switch cmd.Type {
	case sim.CommandMove:
		if cmd.Move == nil {
			return 0, false, CommandRejectInvalidAction
		}
	case sim.CommandJump:
		if cmd.Jump == nil {
			return 0, false, CommandRejectInvalidAction
		}
	case sim.CommandHeartbeat:
		if cmd.Heartbeat == nil {
			cmd.Heartbeat = &sim.HeartbeatCommand{}
		}
		// Wire heartbeats carry no server receive time; stamp it here so
		// staleness tracking sees every beat.
		if cmd.Heartbeat.ReceivedAt.IsZero() {
			cmd.Heartbeat.ReceivedAt = s.now()
		}
	default:
		return 0, false, CommandRejectInvalidAction
	}

	if !s.HasPlayer(playerID) {
		return 0, false, CommandRejectUnknownActor
	}

	cmd.PlayerID = playerID
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = s.now()
	}

	return s.loop.Enqueue(cmd)
}

func (s *Session) now() time.Time {
	if s.clock != nil {
		return s.clock.Now()
	}
	return time.Now()
}
