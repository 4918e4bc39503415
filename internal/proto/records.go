package proto

import (
	"run-and-leap/server/internal/sim"
)

// EncodePlayerRecord renders a player record snapshot.
func EncodePlayerRecord(record sim.PlayerRecord) []byte {
	w := newWriter(Version, KindPlayerRecord)
	w.u64(record.ID)
	w.str(record.Name)
	writeVec3(w, record.Position)
	writeVec3(w, record.Velocity)
	w.boolean(record.Grounded)
	w.f32(record.Score)
	w.i32(record.Coins)
	w.boolean(record.IsDead)
	w.u64(record.LastJumpTick)
	w.u32(record.JumpCount)
	return w.bytes()
}

// DecodePlayerRecord parses a player record snapshot.
func DecodePlayerRecord(buf []byte) (sim.PlayerRecord, *DecodeError) {
	r := newReader(buf)
	r.header(KindPlayerRecord, "player record")
	record := sim.PlayerRecord{
		ID:       r.u64("player id"),
		Name:     r.str("player name"),
		Position: readVec3(r, "player position"),
		Velocity: readVec3(r, "player velocity"),
		Grounded: r.boolean("player grounded"),
		Score:    r.f32("player score"),
		Coins:    r.i32("player coins"),
		IsDead:   r.boolean("player isDead"),
	}
	record.LastJumpTick = r.u64("player lastJumpTick")
	record.JumpCount = r.u32("player jumpCount")
	if err := r.finish("player record"); err != nil {
		return sim.PlayerRecord{}, err
	}
	return record, nil
}

// EncodeCollectible renders a collectible record snapshot.
func EncodeCollectible(record sim.Collectible) []byte {
	w := newWriter(Version, KindCollectibleRecord)
	w.u64(record.ID)
	writeVec3(w, record.Position)
	w.str(record.Type)
	w.i32(record.Value)
	w.boolean(record.Collected)
	w.u64(record.CollectedBy)
	w.u64(record.CollectedTick)
	return w.bytes()
}

// DecodeCollectible parses a collectible record snapshot.
func DecodeCollectible(buf []byte) (sim.Collectible, *DecodeError) {
	r := newReader(buf)
	r.header(KindCollectibleRecord, "collectible record")
	record := sim.Collectible{
		ID:            r.u64("collectible id"),
		Position:      readVec3(r, "collectible position"),
		Type:          r.str("collectible type"),
		Value:         r.i32("collectible value"),
		Collected:     r.boolean("collectible collected"),
		CollectedBy:   r.u64("collectible collectedBy"),
		CollectedTick: r.u64("collectible collectedTick"),
	}
	if err := r.finish("collectible record"); err != nil {
		return sim.Collectible{}, err
	}
	return record, nil
}

// EncodeTerrainState renders the whole terrain block sequence as one blob,
// preserving generation order.
func EncodeTerrainState(blocks []sim.TerrainBlock) []byte {
	w := newWriter(Version, KindTerrainState)
	w.u32(uint32(len(blocks)))
	for _, block := range blocks {
		writeVec3(w, block.Position)
		w.str(block.Type)
		w.f32(block.Width)
		w.u64(block.SpawnTick)
	}
	return w.bytes()
}

// terrainBlockMinSize is the smallest possible encoded block: a 12-byte
// position, a 2-byte empty type prefix, a 4-byte width, and an 8-byte
// spawn tick. The declared count is bounded against it before allocating.
const terrainBlockMinSize = 26

// DecodeTerrainState parses a terrain blob back into its ordered sequence.
func DecodeTerrainState(buf []byte) ([]sim.TerrainBlock, *DecodeError) {
	r := newReader(buf)
	r.header(KindTerrainState, "terrain state")
	count := int(r.u32("terrain count"))
	if r.err != nil {
		return nil, r.err
	}
	if count > r.remaining()/terrainBlockMinSize {
		return nil, decodeErr("terrain count", ErrShortBuffer)
	}
	blocks := make([]sim.TerrainBlock, 0, count)
	for i := 0; i < count; i++ {
		block := sim.TerrainBlock{
			Position:  readVec3(r, "terrain position"),
			Type:      r.str("terrain type"),
			Width:     r.f32("terrain width"),
			SpawnTick: r.u64("terrain spawnTick"),
		}
		if r.err != nil {
			return nil, r.err
		}
		blocks = append(blocks, block)
	}
	if err := r.finish("terrain state"); err != nil {
		return nil, err
	}
	return blocks, nil
}

func writeVec3(w *writer, v sim.Vec3) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

func readVec3(r *reader, what string) sim.Vec3 {
	return sim.Vec3{
		X: r.f32(what + " x"),
		Y: r.f32(what + " y"),
		Z: r.f32(what + " z"),
	}
}
