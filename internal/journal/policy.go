package journal

import (
	"fmt"
	"sync"
)

// Desync kinds fed into the policy.
const (
	DesyncKindHardSnap     = "hard_snap"
	DesyncKindDecodeFailed = "decode_failed"
)

type ResyncReason struct {
	Kind     string
	PlayerID uint64
}

type ResyncSignal struct {
	Desyncs      uint64
	TotalSamples uint64
	Reasons      []ResyncReason
}

// Policy decides when accumulated desync evidence warrants pushing a full
// keyframe resync. Reconciliation samples drive the denominator; hard
// snaps and decode failures drive the numerator.
type Policy struct {
	mu           sync.Mutex
	totalSamples uint64
	desyncs      uint64
	pending      bool
	reasons      []ResyncReason
}

const desyncThresholdPerTenThousand = 1
const resyncReasonLimit = 8

func NewPolicy() *Policy {
	return &Policy{reasons: make([]ResyncReason, 0, resyncReasonLimit)}
}

// NoteSample counts one reconciliation sample.
func (p *Policy) NoteSample() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.totalSamples == ^uint64(0) {
		p.totalSamples = p.totalSamples / 2
		p.desyncs = p.desyncs / 2
	}
	p.totalSamples++
}

// NoteDesync counts one desync occurrence and re-evaluates the threshold.
func (p *Policy) NoteDesync(kind string, playerID uint64) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.desyncs++
	if len(p.reasons) < resyncReasonLimit {
		p.reasons = append(p.reasons, ResyncReason{Kind: kind, PlayerID: playerID})
	}
	p.evaluate()
}

func (p *Policy) evaluate() {
	if p == nil || p.pending || p.desyncs == 0 {
		return
	}
	total := p.totalSamples
	if total == 0 {
		total = 1
	}
	if p.desyncs*10000 >= total*desyncThresholdPerTenThousand {
		p.pending = true
	}
}

// Consume returns the pending signal, if any, and resets the counters.
func (p *Policy) Consume() (ResyncSignal, bool) {
	if p == nil {
		return ResyncSignal{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.pending {
		return ResyncSignal{}, false
	}
	signal := ResyncSignal{
		Desyncs:      p.desyncs,
		TotalSamples: p.totalSamples,
		Reasons:      append([]ResyncReason(nil), p.reasons...),
	}
	p.pending = false
	p.totalSamples = 0
	p.desyncs = 0
	if len(p.reasons) > 0 {
		p.reasons = p.reasons[:0]
	}
	return signal, true
}

func (s ResyncSignal) Summary() string {
	if s.Desyncs == 0 && s.TotalSamples == 0 {
		return ""
	}
	return fmt.Sprintf("desyncs=%d total_samples=%d reasons=%v", s.Desyncs, s.TotalSamples, s.Reasons)
}
