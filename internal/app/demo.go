package app

import (
	"context"
	"time"

	"run-and-leap/server/internal/session"
	"run-and-leap/server/internal/sim"
	"run-and-leap/server/internal/telemetry"
)

const (
	demoPlayerName   = "demo-runner"
	demoMoveAxis     = 0.8
	demoJumpStrength = 12
	demoJumpPeriod   = time.Second
	demoHeartbeatGap = 2 * time.Second
)

// demoScript generates the scripted input stream a headless run feeds its
// local player: steady forward movement, a jump every second, and
// heartbeats at the cadence a real client would send.
type demoScript struct {
	interval time.Duration
	frame    uint64
}

func newDemoScript(interval time.Duration) *demoScript {
	if interval <= 0 {
		interval = time.Second / sim.DefaultTickRate
	}
	return &demoScript{interval: interval}
}

func (d *demoScript) framesPer(period time.Duration) uint64 {
	frames := uint64(period / d.interval)
	if frames == 0 {
		frames = 1
	}
	return frames
}

// next returns the commands to stage for one input frame, in order.
func (d *demoScript) next(now time.Time) []sim.Command {
	d.frame++
	cmds := []sim.Command{{
		Type: sim.CommandMove,
		Move: &sim.MoveCommand{
			Horizontal: demoMoveAxis,
			DeltaTime:  float32(d.interval.Seconds()),
		},
	}}
	if d.frame%d.framesPer(demoJumpPeriod) == 0 {
		cmds = append(cmds, sim.Command{
			Type: sim.CommandJump,
			Jump: &sim.JumpCommand{
				Strength:       demoJumpStrength,
				ClientGrounded: true,
			},
		})
	}
	if d.frame%d.framesPer(demoHeartbeatGap) == 0 {
		cmds = append(cmds, sim.Command{
			Type:      sim.CommandHeartbeat,
			Heartbeat: &sim.HeartbeatCommand{ReceivedAt: now},
		})
	}
	return cmds
}

// runDemoDriver joins one scripted player and stages its inputs at the
// tick cadence until ctx is cancelled, then leaves cleanly.
func runDemoDriver(ctx context.Context, sess *session.Session, interval time.Duration, logger telemetry.Logger) {
	record := sess.Join(ctx, demoPlayerName)
	logger.Printf("demo player %d joined", record.ID)

	script := newDemoScript(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sess.Leave(context.Background(), record.ID, "shutdown")
			return
		case now := <-ticker.C:
			for _, cmd := range script.next(now) {
				if _, ok, reason := sess.StageCommand(record.ID, cmd); !ok {
					logger.Printf("demo command %s refused: %s", cmd.Type, reason)
				}
			}
		}
	}
}
