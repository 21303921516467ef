package repository

import (
	"context"

	"github.com/eslsoft/flashdeck/internal/entity"
)

// StudyRecorder receives fire-and-forget study notifications for dashboards and analytics.
type StudyRecorder interface {
	CardStudied(ctx context.Context, category entity.Category, difficulty entity.Difficulty)
	SessionStats(ctx context.Context, stats entity.SessionStats)
}
