package storage

import (
	"context"
	"time"
)

// GameData is the world-level document persisted across restarts.
type GameData struct {
	SessionCount  uint64    `json:"sessionCount"`
	LastTick      uint64    `json:"lastTick"`
	HighscoreName string    `json:"highscoreName,omitempty"`
	Highscore     float32   `json:"highscore"`
	SavedAt       time.Time `json:"savedAt"`
}

// PlayerProgression is the per-player document keyed by display name.
type PlayerProgression struct {
	Name       string    `json:"name"`
	BestScore  float32   `json:"bestScore"`
	TotalCoins int64     `json:"totalCoins"`
	TotalJumps uint64    `json:"totalJumps"`
	Runs       uint64    `json:"runs"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ProgressionSet is the full progression document: one record per
// player name.
type ProgressionSet map[string]PlayerProgression

// LoadGameData returns the persisted world document, or a zero value
// when none exists yet.
func (s *Store) LoadGameData(ctx context.Context) (GameData, error) {
	var data GameData
	if _, err := s.LoadDocument(ctx, DocGameData, &data); err != nil {
		return GameData{}, err
	}
	return data, nil
}

// SaveGameData replaces the persisted world document.
func (s *Store) SaveGameData(ctx context.Context, data GameData) error {
	data.SavedAt = time.Now().UTC()
	return s.SaveDocument(ctx, DocGameData, data)
}

// LoadProgression returns the persisted per-player records. A missing
// document yields an empty, usable set.
func (s *Store) LoadProgression(ctx context.Context) (ProgressionSet, error) {
	set := ProgressionSet{}
	if _, err := s.LoadDocument(ctx, DocPlayerProgress, &set); err != nil {
		return nil, err
	}
	if set == nil {
		set = ProgressionSet{}
	}
	return set, nil
}

// SaveProgression replaces the persisted per-player records.
func (s *Store) SaveProgression(ctx context.Context, set ProgressionSet) error {
	return s.SaveDocument(ctx, DocPlayerProgress, set)
}

// Merge folds a finished run into the set, keeping best score and
// accumulating totals.
func (set ProgressionSet) Merge(name string, score float32, coins int64, jumps uint64) PlayerProgression {
	record := set[name]
	record.Name = name
	if score > record.BestScore {
		record.BestScore = score
	}
	record.TotalCoins += coins
	record.TotalJumps += jumps
	record.Runs++
	record.UpdatedAt = time.Now().UTC()
	set[name] = record
	return record
}
