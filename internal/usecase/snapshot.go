package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/eslsoft/flashdeck/internal/entity"
)

const (
	snapshotVersion = 1
	progressKey     = "flashcards_progress"
)

// snapshot is the persisted progress blob stored under <namespace>flashcards_progress.
type snapshot struct {
	Version       int                          `json:"version"`
	Cards         map[string]entity.CardRecord `json:"cards"`
	Stats         snapshotStats                `json:"stats"`
	LastStudyDate *entity.Date                 `json:"last_study_date"`
}

type snapshotStats struct {
	Learned   int `json:"learned"`
	ToReview  int `json:"to_review"`
	Difficult int `json:"difficult"`
	Mastery   int `json:"mastery"`
}

func encodeSnapshot(records map[string]entity.CardRecord, stats entity.DeckStats, lastStudy *entity.Date) ([]byte, error) {
	payload := snapshot{
		Version: snapshotVersion,
		Cards:   records,
		Stats: snapshotStats{
			Learned:   stats.LearnedCount,
			ToReview:  stats.ToReviewCount,
			Difficult: stats.DifficultCount,
			Mastery:   stats.MasteryPercent,
		},
		LastStudyDate: lastStudy,
	}
	if payload.Cards == nil {
		payload.Cards = map[string]entity.CardRecord{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode progress snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (*snapshot, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode progress snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnsupportedSnapshot, snap.Version)
	}
	if snap.Cards == nil {
		snap.Cards = map[string]entity.CardRecord{}
	}
	for id, rec := range snap.Cards {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("decode progress snapshot: card %s: %w", id, err)
		}
	}
	return &snap, nil
}
