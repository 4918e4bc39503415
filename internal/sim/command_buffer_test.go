package sim

import "testing"

func TestCommandBufferDrainPreservesFIFO(t *testing.T) {
	buffer := NewCommandBuffer(4, nil)
	for i := uint64(1); i <= 3; i++ {
		if !buffer.Push(Command{Sequence: i, Type: CommandMove}) {
			t.Fatalf("push %d failed", i)
		}
	}

	commands := buffer.Drain()
	if len(commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(commands))
	}
	for i, cmd := range commands {
		if cmd.Sequence != uint64(i+1) {
			t.Fatalf("expected sequence %d at index %d, got %d", i+1, i, cmd.Sequence)
		}
	}
	if buffer.Len() != 0 {
		t.Fatalf("drain must empty the buffer, len %d", buffer.Len())
	}
}

func TestCommandBufferRejectsWhenFull(t *testing.T) {
	buffer := NewCommandBuffer(2, nil)
	buffer.Push(Command{Sequence: 1})
	buffer.Push(Command{Sequence: 2})

	if buffer.Push(Command{Sequence: 3}) {
		t.Fatalf("push into a full buffer must fail")
	}

	commands := buffer.Drain()
	if len(commands) != 2 || commands[0].Sequence != 1 || commands[1].Sequence != 2 {
		t.Fatalf("overflowing push must not disturb staged commands: %+v", commands)
	}
}

func TestCommandBufferWrapsAround(t *testing.T) {
	buffer := NewCommandBuffer(3, nil)

	// Fill, drain, and refill so the ring indices wrap.
	for i := uint64(1); i <= 3; i++ {
		buffer.Push(Command{Sequence: i})
	}
	buffer.Drain()
	for i := uint64(4); i <= 6; i++ {
		if !buffer.Push(Command{Sequence: i}) {
			t.Fatalf("push %d after drain failed", i)
		}
	}

	commands := buffer.Drain()
	for i, cmd := range commands {
		if cmd.Sequence != uint64(i+4) {
			t.Fatalf("wraparound broke ordering: got %d at index %d", cmd.Sequence, i)
		}
	}
}

func TestCommandBufferDrainEmptyReturnsNil(t *testing.T) {
	buffer := NewCommandBuffer(2, nil)
	if commands := buffer.Drain(); commands != nil {
		t.Fatalf("empty drain must return nil, got %+v", commands)
	}
}

func TestCommandBufferMinimumCapacity(t *testing.T) {
	buffer := NewCommandBuffer(0, nil)
	if buffer.Capacity() != 1 {
		t.Fatalf("capacity must be clamped to 1, got %d", buffer.Capacity())
	}
}
