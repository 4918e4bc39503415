package sim

import (
	"context"

	"run-and-leap/server/logging"
	loggingsimulation "run-and-leap/server/logging/simulation"
)

// Collectible is one spawned pickup. Once Collected flips true the value
// can never be granted again.
type Collectible struct {
	ID            uint64 `json:"id"`
	Position      Vec3   `json:"position"`
	Type          string `json:"type"`
	Value         int32  `json:"value"`
	Collected     bool   `json:"collected"`
	CollectedBy   uint64 `json:"collectedBy,omitempty"`
	CollectedTick uint64 `json:"collectedTick,omitempty"`
}

const metricCollectibleDuplicateID = "sim_collectible_duplicate_id_total"

// SpawnCollectible registers a pickup with a world-assigned id and returns it.
func (w *World) SpawnCollectible(position Vec3, typeTag string, value int32) Collectible {
	if w == nil {
		return Collectible{}
	}
	w.nextCollectibleID++
	collectible := Collectible{
		ID:       w.nextCollectibleID,
		Position: position,
		Type:     typeTag,
		Value:    value,
	}
	w.collectibles = append(w.collectibles, collectible)
	return collectible
}

// RegisterCollectible adds an externally built record, rejecting duplicate ids.
func (w *World) RegisterCollectible(collectible Collectible) bool {
	if w == nil || collectible.ID == 0 {
		return false
	}
	for _, existing := range w.collectibles {
		if existing.ID == collectible.ID {
			if w.metrics != nil {
				w.metrics.TelemetryAdd(metricCollectibleDuplicateID, 1)
			}
			return false
		}
	}
	if collectible.ID > w.nextCollectibleID {
		w.nextCollectibleID = collectible.ID
	}
	w.collectibles = append(w.collectibles, collectible)
	return true
}

// Collect grants a pickup's value to the player at most once. The second
// and later attempts on the same id are refused.
func (w *World) Collect(collectibleID, playerID uint64) bool {
	if w == nil {
		return false
	}
	player, ok := w.players[playerID]
	if !ok || player.IsDead {
		return false
	}
	for i := range w.collectibles {
		record := &w.collectibles[i]
		if record.ID != collectibleID {
			continue
		}
		if record.Collected {
			return false
		}
		record.Collected = true
		record.CollectedBy = playerID
		record.CollectedTick = w.currentTick
		player.Coins += record.Value
		loggingsimulation.CollectibleCollected(context.Background(), w.publisher, w.currentTick,
			playerRef(playerID),
			loggingsimulation.CollectibleCollectedPayload{CollectibleID: record.ID, Value: int(record.Value)})
		return true
	}
	return false
}

// DespawnCollectible removes a pickup, typically after pooling reclaims it.
func (w *World) DespawnCollectible(collectibleID uint64) bool {
	if w == nil {
		return false
	}
	for i := range w.collectibles {
		if w.collectibles[i].ID == collectibleID {
			w.collectibles = append(w.collectibles[:i], w.collectibles[i+1:]...)
			return true
		}
	}
	return false
}

// Collectibles returns a copy of every registered pickup.
func (w *World) Collectibles() []Collectible {
	if w == nil {
		return nil
	}
	copied := make([]Collectible, len(w.collectibles))
	copy(copied, w.collectibles)
	return copied
}

func playerRef(id uint64) logging.EntityRef {
	return logging.EntityRef{ID: formatID(id), Kind: logging.EntityKindPlayer}
}
