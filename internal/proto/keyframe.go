package proto

import (
	"time"

	"run-and-leap/server/internal/sim"
)

// Keyframe is a complete serialized copy of the authoritative state at one
// tick: one blob per player keyed by id, one terrain blob, and one blob per
// collectible. It backs rollback and full resync.
type Keyframe struct {
	Tick         uint64            `json:"tick"`
	Sequence     uint64            `json:"sequence"`
	RecordedAt   time.Time         `json:"recordedAt"`
	Players      map[uint64][]byte `json:"players,omitempty"`
	Terrain      []byte            `json:"terrain,omitempty"`
	Collectibles [][]byte          `json:"collectibles,omitempty"`
}

// BuildKeyframe serializes a state snapshot into a keyframe.
func BuildKeyframe(snapshot sim.Snapshot, sequence uint64, recordedAt time.Time) Keyframe {
	frame := Keyframe{
		Tick:       snapshot.Tick,
		Sequence:   sequence,
		RecordedAt: recordedAt,
		Players:    make(map[uint64][]byte, len(snapshot.Players)),
		Terrain:    EncodeTerrainState(snapshot.Terrain),
	}
	for _, record := range snapshot.Players {
		frame.Players[record.ID] = EncodePlayerRecord(record)
	}
	if len(snapshot.Collectibles) > 0 {
		frame.Collectibles = make([][]byte, 0, len(snapshot.Collectibles))
		for _, record := range snapshot.Collectibles {
			frame.Collectibles = append(frame.Collectibles, EncodeCollectible(record))
		}
	}
	return frame
}

// DecodeKeyframe parses every blob back into a state snapshot. The first
// malformed blob aborts the whole decode so a restore is all or nothing.
func DecodeKeyframe(frame Keyframe) (sim.Snapshot, *DecodeError) {
	snapshot := sim.Snapshot{Tick: frame.Tick}

	if len(frame.Players) > 0 {
		snapshot.Players = make([]sim.PlayerRecord, 0, len(frame.Players))
		for _, blob := range frame.Players {
			record, err := DecodePlayerRecord(blob)
			if err != nil {
				return sim.Snapshot{}, err
			}
			snapshot.Players = append(snapshot.Players, record)
		}
	}

	terrain, err := DecodeTerrainState(frame.Terrain)
	if err != nil {
		return sim.Snapshot{}, err
	}
	snapshot.Terrain = terrain

	if len(frame.Collectibles) > 0 {
		snapshot.Collectibles = make([]sim.Collectible, 0, len(frame.Collectibles))
		for _, blob := range frame.Collectibles {
			record, err := DecodeCollectible(blob)
			if err != nil {
				return sim.Snapshot{}, err
			}
			snapshot.Collectibles = append(snapshot.Collectibles, record)
		}
	}

	return snapshot, nil
}

// RestoreKeyframe replaces the world's state with a decoded keyframe. On a
// decode failure the world is left untouched.
func RestoreKeyframe(world *sim.World, frame Keyframe) *DecodeError {
	snapshot, err := DecodeKeyframe(frame)
	if err != nil {
		return err
	}
	world.ReplaceState(snapshot.Tick, snapshot.Players, snapshot.Terrain, snapshot.Collectibles)
	return nil
}
