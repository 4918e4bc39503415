package sim

// TerrainBlock is one active generated course segment. Generation appends
// blocks in increasing x order; the slice itself does not enforce it.
type TerrainBlock struct {
	Position  Vec3    `json:"position"`
	Type      string  `json:"type"`
	Width     float32 `json:"width"`
	SpawnTick uint64  `json:"spawnTick"`
}

// RegisterTerrainBlock appends a streamed-in block.
func (w *World) RegisterTerrainBlock(block TerrainBlock) {
	if w == nil {
		return
	}
	if block.SpawnTick == 0 {
		block.SpawnTick = w.currentTick
	}
	w.terrain = append(w.terrain, block)
}

// TerrainBlocks returns a copy of the active block sequence in order.
func (w *World) TerrainBlocks() []TerrainBlock {
	if w == nil {
		return nil
	}
	copied := make([]TerrainBlock, len(w.terrain))
	copy(copied, w.terrain)
	return copied
}

// PruneTerrainBehind drops blocks whose far edge has scrolled behind x and
// reports how many were removed.
func (w *World) PruneTerrainBehind(x float32) int {
	if w == nil || len(w.terrain) == 0 {
		return 0
	}
	kept := w.terrain[:0]
	removed := 0
	for _, block := range w.terrain {
		if block.Position.X+block.Width < x {
			removed++
			continue
		}
		kept = append(kept, block)
	}
	w.terrain = kept
	return removed
}
