package recorder

import (
	"context"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/repository"
)

// Multi fans every event out to each recorder in order.
type Multi []repository.StudyRecorder

var _ repository.StudyRecorder = Multi(nil)

// NewMulti drops nil recorders.
func NewMulti(recorders ...repository.StudyRecorder) Multi {
	out := make(Multi, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m Multi) CardStudied(ctx context.Context, category entity.Category, difficulty entity.Difficulty) {
	for _, r := range m {
		r.CardStudied(ctx, category, difficulty)
	}
}

func (m Multi) SessionStats(ctx context.Context, stats entity.SessionStats) {
	for _, r := range m {
		r.SessionStats(ctx, stats)
	}
}
