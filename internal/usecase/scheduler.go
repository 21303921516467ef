package usecase

import (
	"cmp"
	"iter"
	"math"
	"slices"

	"github.com/eslsoft/flashdeck/internal/entity"
)

// DueQuery selects the cards to study on a given day.
type DueQuery struct {
	Category entity.Category
	Today    entity.Date
}

// RecordLookup resolves the learning record of a card by ID.
type RecordLookup func(id string) (entity.CardRecord, bool)

// IsDue reports whether a card with the given record should be studied on today.
// New and learning cards are always due; others once their next review date has arrived.
func IsDue(rec entity.CardRecord, today entity.Date) bool {
	if rec.State == entity.CardStateNew || rec.State == entity.CardStateLearning {
		return true
	}
	return rec.NextReviewDate != nil && !rec.NextReviewDate.After(today)
}

type dueItem struct {
	card entity.Card
	rec  entity.CardRecord
}

// DueCards returns the due subset of deck in study order.
//
// Reviewing cards come first, most overdue first. New and learning cards
// follow, easiest base difficulty first. Ties are broken by card ID. The
// sequence holds no cursor: every range over it recomputes the selection from
// the records lookup currently returns.
func DueCards(deck []entity.Card, lookup RecordLookup, query DueQuery) iter.Seq[entity.Card] {
	return func(yield func(entity.Card) bool) {
		for _, item := range selectDue(deck, lookup, query) {
			if !yield(item.card) {
				return
			}
		}
	}
}

func selectDue(deck []entity.Card, lookup RecordLookup, query DueQuery) []dueItem {
	items := make([]dueItem, 0, len(deck))
	for _, card := range deck {
		if !query.Category.Matches(card.Category) {
			continue
		}
		rec, ok := lookup(card.ID)
		if !ok || !IsDue(rec, query.Today) {
			continue
		}
		items = append(items, dueItem{card: card, rec: rec})
	}
	slices.SortStableFunc(items, compareDue)
	return items
}

func compareDue(a, b dueItem) int {
	aReviewing := a.rec.State == entity.CardStateReviewing
	bReviewing := b.rec.State == entity.CardStateReviewing
	switch {
	case aReviewing && !bReviewing:
		return -1
	case !aReviewing && bReviewing:
		return 1
	case aReviewing:
		if c := compareDates(a.rec.NextReviewDate, b.rec.NextReviewDate); c != 0 {
			return c
		}
	default:
		if c := cmp.Compare(a.card.BaseDifficulty.OrDefault().Rank(), b.card.BaseDifficulty.OrDefault().Rank()); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.card.ID, b.card.ID)
}

// compareDates orders nil dates after any concrete date.
func compareDates(a, b *entity.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// NextEaseFactor applies the SM-2 ease update for a passing quality, floored at MinEaseFactor.
func NextEaseFactor(ease float64, quality entity.Quality) float64 {
	d := float64(entity.MaxQuality - quality)
	return math.Max(entity.MinEaseFactor, ease+(0.1-d*(0.08+d*0.02)))
}

// ApplyAnswer returns rec advanced by one graded review taken on today.
// The input record is not mutated; an invalid quality returns rec unchanged with ErrInvalidQuality.
func ApplyAnswer(rec entity.CardRecord, quality entity.Quality, today entity.Date) (entity.CardRecord, error) {
	if err := quality.Validate(); err != nil {
		return rec, err
	}

	next := rec.Clone()
	next.Repetitions++
	next.LastQuality = quality
	reviewed := today
	next.LastReviewDate = &reviewed

	if quality.Passed() {
		switch next.Repetitions {
		case 1:
			next.IntervalDays = 1
			next.State = entity.CardStateLearning
		case 2:
			next.IntervalDays = 6
			next.State = entity.CardStateReviewing
		default:
			next.EaseFactor = NextEaseFactor(next.EaseFactor, quality)
			interval := int(math.Round(float64(next.IntervalDays) * next.EaseFactor))
			next.IntervalDays = min(entity.MaxIntervalDays, interval)
			if next.IntervalDays > entity.LearnedAfterDays {
				next.State = entity.CardStateLearned
			} else {
				next.State = entity.CardStateReviewing
			}
		}
		if quality >= 4 {
			next.Difficulty = entity.DifficultyEasy
		} else {
			next.Difficulty = entity.DifficultyMedium
		}
	} else {
		next.IntervalDays = 1
		next.EaseFactor = math.Max(entity.MinEaseFactor, next.EaseFactor-0.2)
		next.State = entity.CardStateLearning
		if quality <= 1 {
			next.Difficulty = entity.DifficultyHard
		} else {
			next.Difficulty = entity.DifficultyMedium
		}
	}

	due := reviewed.AddDays(next.IntervalDays)
	next.NextReviewDate = &due
	return next, nil
}

// ComputeStats classifies every record into at most one bucket: learned,
// then reviewing, then hard.
func ComputeStats(records iter.Seq[entity.CardRecord]) entity.DeckStats {
	var stats entity.DeckStats
	for rec := range records {
		stats.Total++
		switch {
		case rec.State == entity.CardStateLearned:
			stats.LearnedCount++
		case rec.State == entity.CardStateReviewing:
			stats.ToReviewCount++
		case rec.Difficulty == entity.DifficultyHard:
			stats.DifficultCount++
		}
	}
	if stats.Total > 0 {
		stats.MasteryPercent = int(math.Round(100 * float64(stats.LearnedCount) / float64(stats.Total)))
	}
	return stats
}
