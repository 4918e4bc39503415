package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"run-and-leap/server/logging"
	loggingsimulation "run-and-leap/server/logging/simulation"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to
	// per-player queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is saturated.
	CommandRejectQueueFull = "queue_full"

	// DefaultTickRate drives the fixed-step loop when none is configured.
	DefaultTickRate = 60
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerPlayerLimit  int
}

func (c LoopConfig) normalized() LoopConfig {
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	if c.CatchupMaxTicks <= 0 {
		c.CatchupMaxTicks = 4
	}
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = 256
	}
	if c.PerPlayerLimit <= 0 {
		c.PerPlayerLimit = 16
	}
	return c
}

// LoopStepResult describes a single completed tick.
type LoopStepResult struct {
	Tick     uint64
	Now      time.Time
	Commands []Command
	Duration time.Duration
	Budget   time.Duration
}

// LoopHooks lets the owning session observe the loop without reaching into it.
type LoopHooks struct {
	AfterStep     func(LoopStepResult)
	OnCommandDrop func(reason string, cmd Command)
}

// Loop wraps a world with a ring-buffer command queue and an
// accumulator-driven fixed-timestep scheduler. Producers enqueue from any
// goroutine; Advance and Run must stay on a single consumer goroutine.
type Loop struct {
	world     *World
	buffer    *CommandBuffer
	hooks     LoopHooks
	config    LoopConfig
	clock     logging.Clock
	metrics   *logging.Metrics
	publisher logging.Publisher

	queueMu        sync.Mutex
	perPlayerCount map[uint64]int

	sequence    atomic.Uint64
	tickMirror  atomic.Uint64
	accumulator time.Duration
	last        time.Time
}

// NewLoop wraps the provided world with a queue and scheduler.
func NewLoop(world *World, cfg LoopConfig) *Loop {
	if world == nil {
		return nil
	}
	cfg = cfg.normalized()
	return &Loop{
		world:          world,
		buffer:         NewCommandBuffer(cfg.CommandCapacity, world.metrics),
		config:         cfg,
		clock:          world.clock,
		metrics:        world.metrics,
		publisher:      world.publisher,
		perPlayerCount: make(map[uint64]int),
	}
}

// SetHooks installs the observer callbacks. Call before Run.
func (l *Loop) SetHooks(hooks LoopHooks) {
	if l == nil {
		return
	}
	l.hooks = hooks
}

// World exposes the underlying authoritative state. Callers outside the
// loop goroutine must treat it as read-only.
func (l *Loop) World() *World {
	if l == nil {
		return nil
	}
	return l.world
}

// TickInterval reports the fixed simulation step duration.
func (l *Loop) TickInterval() time.Duration {
	if l == nil {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(l.config.TickRate)
}

// CurrentTick reports the last completed tick, safe from any goroutine.
func (l *Loop) CurrentTick() uint64 {
	if l == nil {
		return 0
	}
	return l.tickMirror.Load()
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Enqueue stages a command, assigning its session-monotonic sequence and
// origin tick. It returns the assigned sequence and a reject reason when
// throttling or capacity refuses the command.
func (l *Loop) Enqueue(cmd Command) (uint64, bool, string) {
	if l == nil {
		return 0, false, CommandRejectQueueFull
	}
	l.queueMu.Lock()
	if l.config.PerPlayerLimit > 0 && cmd.PlayerID != 0 {
		if l.perPlayerCount[cmd.PlayerID] >= l.config.PerPlayerLimit {
			l.queueMu.Unlock()
			l.reportDrop(CommandRejectQueueLimit, cmd)
			return 0, false, CommandRejectQueueLimit
		}
	}
	cmd.Sequence = l.sequence.Add(1)
	if cmd.OriginTick == 0 {
		cmd.OriginTick = l.tickMirror.Load()
	}
	if !l.buffer.Push(cmd) {
		l.queueMu.Unlock()
		l.reportDrop(CommandRejectQueueFull, cmd)
		return 0, false, CommandRejectQueueFull
	}
	if cmd.PlayerID != 0 {
		l.perPlayerCount[cmd.PlayerID]++
	}
	l.queueMu.Unlock()
	return cmd.Sequence, true, ""
}

// Advance feeds real elapsed time into the accumulator and steps the world
// once per whole tick interval, draining the queue in FIFO order each step.
// It returns the number of ticks executed.
func (l *Loop) Advance(now time.Time) int {
	if l == nil {
		return 0
	}
	if l.last.IsZero() {
		l.last = now
		return 0
	}
	elapsed := now.Sub(l.last)
	l.last = now
	if elapsed < 0 {
		elapsed = 0
	}

	interval := l.TickInterval()
	l.accumulator += elapsed
	if max := interval * time.Duration(l.config.CatchupMaxTicks); l.accumulator > max {
		l.accumulator = max
	}

	steps := 0
	for l.accumulator >= interval {
		l.accumulator -= interval
		l.step(now, interval)
		steps++
	}
	return steps
}

func (l *Loop) step(now time.Time, budget time.Duration) {
	commands := l.drainCommands()
	tick := l.world.CurrentTick() + 1

	start := l.clock.Now()
	l.world.Step(tick, now, commands)
	duration := l.clock.Now().Sub(start)

	l.tickMirror.Store(l.world.CurrentTick())

	if duration > budget {
		loggingsimulation.TickBudgetExceeded(context.Background(), l.publisher, tick,
			loggingsimulation.TickBudgetPayload{Duration: duration, Budget: budget})
	}
	if l.hooks.AfterStep != nil {
		l.hooks.AfterStep(LoopStepResult{
			Tick:     l.world.CurrentTick(),
			Now:      now,
			Commands: commands,
			Duration: duration,
			Budget:   budget,
		})
	}
}

// Run drives the fixed-rate loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(l.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.Advance(l.clock.Now())
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perPlayerCount) > 0 {
		l.perPlayerCount = make(map[uint64]int)
	}
	return commands
}

func (l *Loop) reportDrop(reason string, cmd Command) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
}
