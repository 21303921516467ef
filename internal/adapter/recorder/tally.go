package recorder

import (
	"context"
	"maps"
	"math"
	"sync"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/repository"
)

const (
	DefaultDailyGoal = 5
	categoryStep     = 2
	categoryMax      = 100
)

// Tally is a dashboard-style running count of studied cards.
//
// Every studied card is bucketed by the difficulty it ended with: easy counts
// as learned, medium as to review and hard as difficult. Category scores grow
// by two points per studied card, capped at 100.
type Tally struct {
	mu        sync.Mutex
	dailyGoal int
	snapshot  TallySnapshot
}

// TallySnapshot is a point-in-time copy of a Tally.
type TallySnapshot struct {
	Studied        int
	Learned        int
	ToReview       int
	Difficult      int
	Mastery        int
	DailyGoal      int
	GoalPercent    int
	CategoryScores map[entity.Category]int
	Sessions       int
	LastSession    *entity.SessionStats
}

var _ repository.StudyRecorder = (*Tally)(nil)

// NewTally returns an empty tally. A non-positive goal falls back to DefaultDailyGoal.
func NewTally(dailyGoal int) *Tally {
	if dailyGoal <= 0 {
		dailyGoal = DefaultDailyGoal
	}
	return &Tally{
		dailyGoal: dailyGoal,
		snapshot: TallySnapshot{
			DailyGoal:      dailyGoal,
			CategoryScores: map[entity.Category]int{},
		},
	}
}

func (t *Tally) CardStudied(_ context.Context, category entity.Category, difficulty entity.Difficulty) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.snapshot
	s.Studied++
	s.CategoryScores[category] = min(categoryMax, s.CategoryScores[category]+categoryStep)

	switch difficulty {
	case entity.DifficultyEasy:
		s.Learned++
	case entity.DifficultyMedium:
		s.ToReview++
	case entity.DifficultyHard:
		s.Difficult++
	}
	if total := s.Learned + s.ToReview + s.Difficult; total > 0 {
		s.Mastery = int(math.Round(100 * float64(s.Learned) / float64(total)))
	}
	s.GoalPercent = min(100, int(math.Round(100*float64(s.Studied)/float64(t.dailyGoal))))
}

func (t *Tally) SessionStats(_ context.Context, stats entity.SessionStats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats.ByCategory = maps.Clone(stats.ByCategory)
	t.snapshot.Sessions++
	t.snapshot.LastSession = &stats
}

// Snapshot returns a copy of the current counts.
func (t *Tally) Snapshot() TallySnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.snapshot
	out.CategoryScores = maps.Clone(t.snapshot.CategoryScores)
	if t.snapshot.LastSession != nil {
		last := *t.snapshot.LastSession
		out.LastSession = &last
	}
	return out
}

// GoalReached reports whether today's study count met the daily goal.
func (t *Tally) GoalReached() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot.Studied >= t.dailyGoal
}
