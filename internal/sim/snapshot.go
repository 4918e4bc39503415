package sim

// Snapshot captures the state exposed to non-simulation callers. Player
// order is unspecified; terrain keeps its generation order.
type Snapshot struct {
	Tick         uint64         `json:"tick"`
	Players      []PlayerRecord `json:"players,omitempty"`
	Terrain      []TerrainBlock `json:"terrain,omitempty"`
	Collectibles []Collectible  `json:"collectibles,omitempty"`
}

// Snapshot copies the complete authoritative state.
func (w *World) Snapshot() Snapshot {
	if w == nil {
		return Snapshot{}
	}
	players := make([]PlayerRecord, 0, len(w.players))
	for _, state := range w.players {
		players = append(players, state.record())
	}
	return Snapshot{
		Tick:         w.currentTick,
		Players:      players,
		Terrain:      w.TerrainBlocks(),
		Collectibles: w.Collectibles(),
	}
}

// ReplaceState swaps in a restored snapshot wholesale. Players and
// collectibles absent from the snapshot are discarded; actor bindings
// survive for ids present on both sides.
func (w *World) ReplaceState(tick uint64, players []PlayerRecord, terrain []TerrainBlock, collectibles []Collectible) {
	if w == nil {
		return
	}
	actors := make(map[uint64]Actor, len(w.players))
	facings := make(map[uint64]int8, len(w.players))
	for id, state := range w.players {
		actors[id] = state.actor
		facings[id] = state.facing
	}

	w.players = make(map[uint64]*playerState, len(players))
	for _, record := range players {
		state := &playerState{PlayerRecord: record, facing: 1}
		if actor, ok := actors[record.ID]; ok {
			state.actor = actor
		}
		if facing, ok := facings[record.ID]; ok && facing != 0 {
			state.facing = facing
		}
		w.players[record.ID] = state
		if record.ID > w.nextPlayerID {
			w.nextPlayerID = record.ID
		}
	}

	w.terrain = append(w.terrain[:0:0], terrain...)

	w.collectibles = append(w.collectibles[:0:0], collectibles...)
	for _, record := range collectibles {
		if record.ID > w.nextCollectibleID {
			w.nextCollectibleID = record.ID
		}
	}

	w.currentTick = tick
}
