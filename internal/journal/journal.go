// Package journal keeps a rolling buffer of recent keyframes so the
// session can rehydrate state after rollback or a scheduled resync.
package journal

import (
	"sync"
	"time"

	"run-and-leap/server/internal/proto"
)

// Telemetry captures the metrics adapter used by the journal to report drops.
type Telemetry interface {
	RecordJournalDrop(metric string)
}

const (
	// EvictReasonCapacity marks a keyframe displaced by the size bound.
	EvictReasonCapacity = "capacity"
	// EvictReasonAge marks a keyframe older than the retention window.
	EvictReasonAge = "age"
)

// Eviction describes a keyframe removed from the buffer and why.
type Eviction struct {
	Sequence uint64 `json:"sequence"`
	Tick     uint64 `json:"tick"`
	Reason   string `json:"reason,omitempty"`
}

// RecordResult reports buffer state after storing a keyframe.
type RecordResult struct {
	Size           int        `json:"size"`
	OldestSequence uint64     `json:"oldestSequence"`
	NewestSequence uint64     `json:"newestSequence"`
	Evicted        []Eviction `json:"evicted,omitempty"`
}

// Journal is a bounded, age-limited ring of keyframes. It is safe for
// concurrent use.
type Journal struct {
	mu        sync.RWMutex
	keyframes []proto.Keyframe
	maxFrames int
	maxAge    time.Duration
	telemetry Telemetry
	resync    *Policy
}

// New constructs a journal with storage for the configured number of
// keyframes and retention window.
func New(keyframeCapacity int, maxAge time.Duration) *Journal {
	if keyframeCapacity < 1 {
		keyframeCapacity = 1
	}
	if maxAge < 0 {
		maxAge = 0
	}
	return &Journal{
		keyframes: make([]proto.Keyframe, 0, keyframeCapacity),
		maxFrames: keyframeCapacity,
		maxAge:    maxAge,
		resync:    NewPolicy(),
	}
}

// SetTelemetry installs the drop-reporting adapter.
func (j *Journal) SetTelemetry(t Telemetry) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.telemetry = t
	j.mu.Unlock()
}

// Resync exposes the desync escalation policy owned by the journal.
func (j *Journal) Resync() *Policy {
	if j == nil {
		return nil
	}
	return j.resync
}

// Record stores a keyframe, evicting by age and then capacity.
func (j *Journal) Record(frame proto.Keyframe) RecordResult {
	if j == nil {
		return RecordResult{}
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	evicted := make([]Eviction, 0)

	if j.maxAge > 0 && !frame.RecordedAt.IsZero() {
		cutoff := frame.RecordedAt.Add(-j.maxAge)
		kept := j.keyframes[:0]
		for _, existing := range j.keyframes {
			if !existing.RecordedAt.IsZero() && existing.RecordedAt.Before(cutoff) {
				evicted = append(evicted, Eviction{Sequence: existing.Sequence, Tick: existing.Tick, Reason: EvictReasonAge})
				continue
			}
			kept = append(kept, existing)
		}
		j.keyframes = kept
	}

	for len(j.keyframes) >= j.maxFrames {
		oldest := j.keyframes[0]
		evicted = append(evicted, Eviction{Sequence: oldest.Sequence, Tick: oldest.Tick, Reason: EvictReasonCapacity})
		j.keyframes = j.keyframes[1:]
	}

	j.keyframes = append(j.keyframes, frame)

	if j.telemetry != nil {
		for range evicted {
			j.telemetry.RecordJournalDrop("journal_keyframe_evicted")
		}
	}

	return RecordResult{
		Size:           len(j.keyframes),
		OldestSequence: j.keyframes[0].Sequence,
		NewestSequence: frame.Sequence,
		Evicted:        evicted,
	}
}

// BySequence returns the stored keyframe with the given sequence.
func (j *Journal) BySequence(sequence uint64) (proto.Keyframe, bool) {
	if j == nil {
		return proto.Keyframe{}, false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, frame := range j.keyframes {
		if frame.Sequence == sequence {
			return frame, true
		}
	}
	return proto.Keyframe{}, false
}

// Latest returns the newest stored keyframe.
func (j *Journal) Latest() (proto.Keyframe, bool) {
	if j == nil {
		return proto.Keyframe{}, false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.keyframes) == 0 {
		return proto.Keyframe{}, false
	}
	return j.keyframes[len(j.keyframes)-1], true
}

// Window reports the buffer size and oldest/newest sequences.
func (j *Journal) Window() (int, uint64, uint64) {
	if j == nil {
		return 0, 0, 0
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.keyframes) == 0 {
		return 0, 0, 0
	}
	return len(j.keyframes), j.keyframes[0].Sequence, j.keyframes[len(j.keyframes)-1].Sequence
}
