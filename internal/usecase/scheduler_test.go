package usecase

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/eslsoft/flashdeck/internal/entity"
)

var day0 = entity.NewDate(2024, 3, 10)

func datePtr(d entity.Date) *entity.Date { return &d }

func cardIDs(cards []entity.Card) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}

func lookupFrom(records map[string]entity.CardRecord) RecordLookup {
	return func(id string) (entity.CardRecord, bool) {
		rec, ok := records[id]
		return rec, ok
	}
}

func TestApplyAnswerScenario(t *testing.T) {
	card := entity.Card{ID: "X", Category: "pain", BaseDifficulty: entity.DifficultyMedium}
	rec := entity.NewCardRecord(card)

	rec, err := ApplyAnswer(rec, 3, day0)
	if err != nil {
		t.Fatalf("first answer failed: %v", err)
	}
	if rec.Repetitions != 1 || rec.IntervalDays != 1 || rec.State != entity.CardStateLearning {
		t.Fatalf("after first pass got reps=%d interval=%d state=%s", rec.Repetitions, rec.IntervalDays, rec.State)
	}
	if rec.Difficulty != entity.DifficultyMedium {
		t.Errorf("quality 3 should yield medium, got %s", rec.Difficulty)
	}

	rec, err = ApplyAnswer(rec, 3, day0.AddDays(1))
	if err != nil {
		t.Fatalf("second answer failed: %v", err)
	}
	if rec.Repetitions != 2 || rec.IntervalDays != 6 || rec.State != entity.CardStateReviewing {
		t.Fatalf("after second pass got reps=%d interval=%d state=%s", rec.Repetitions, rec.IntervalDays, rec.State)
	}

	rec, err = ApplyAnswer(rec, 5, day0.AddDays(7))
	if err != nil {
		t.Fatalf("third answer failed: %v", err)
	}
	if rec.Repetitions != 3 {
		t.Errorf("expected 3 repetitions, got %d", rec.Repetitions)
	}
	if rec.EaseFactor <= entity.DefaultEaseFactor {
		t.Errorf("expected ease factor to grow beyond 2.5, got %v", rec.EaseFactor)
	}
	wantInterval := int(math.Round(6 * rec.EaseFactor))
	if rec.IntervalDays != wantInterval {
		t.Errorf("expected interval %d, got %d", wantInterval, rec.IntervalDays)
	}
	wantState := entity.CardStateReviewing
	if wantInterval > entity.LearnedAfterDays {
		wantState = entity.CardStateLearned
	}
	if rec.State != wantState {
		t.Errorf("expected state %s, got %s", wantState, rec.State)
	}
	if rec.Difficulty != entity.DifficultyEasy {
		t.Errorf("quality 5 should yield easy, got %s", rec.Difficulty)
	}
	if want := day0.AddDays(7 + wantInterval); !rec.NextReviewDate.Equal(want) {
		t.Errorf("expected next review %s, got %s", want, rec.NextReviewDate)
	}
}

func TestApplyAnswerFailOnLearnedCard(t *testing.T) {
	rec := entity.CardRecord{
		State:        entity.CardStateLearned,
		EaseFactor:   2.7,
		IntervalDays: 43,
		Repetitions:  4,
		Difficulty:   entity.DifficultyEasy,
	}
	got, err := ApplyAnswer(rec, 1, day0)
	if err != nil {
		t.Fatalf("ApplyAnswer failed: %v", err)
	}
	if got.State != entity.CardStateLearning || got.IntervalDays != 1 {
		t.Fatalf("expected learning/1, got %s/%d", got.State, got.IntervalDays)
	}
	if math.Abs(got.EaseFactor-2.5) > 1e-9 {
		t.Errorf("expected ease factor 2.5, got %v", got.EaseFactor)
	}
	if got.Difficulty != entity.DifficultyHard {
		t.Errorf("quality 1 should yield hard, got %s", got.Difficulty)
	}
	if got.Repetitions != 5 {
		t.Errorf("repetitions must keep counting on failure, got %d", got.Repetitions)
	}
	if !got.NextReviewDate.Equal(day0.AddDays(1)) {
		t.Errorf("expected next review tomorrow, got %s", got.NextReviewDate)
	}

	floored, _ := ApplyAnswer(entity.CardRecord{State: entity.CardStateReviewing, EaseFactor: 1.4, IntervalDays: 6, Repetitions: 2, Difficulty: entity.DifficultyMedium}, 2, day0)
	if floored.EaseFactor != entity.MinEaseFactor {
		t.Errorf("expected ease factor floored at 1.3, got %v", floored.EaseFactor)
	}
	if floored.Difficulty != entity.DifficultyMedium {
		t.Errorf("quality 2 should yield medium, got %s", floored.Difficulty)
	}
}

func TestApplyAnswerRejectsInvalidQuality(t *testing.T) {
	rec := entity.NewCardRecord(entity.Card{ID: "a", Category: "pain"})
	for _, q := range []entity.Quality{-1, 6, 42} {
		got, err := ApplyAnswer(rec, q, day0)
		if err == nil {
			t.Fatalf("quality %d: expected error", q)
		}
		if got.Repetitions != 0 || got.LastReviewDate != nil {
			t.Errorf("quality %d: record mutated on error: %+v", q, got)
		}
	}
}

func TestApplyAnswerDoesNotMutateInput(t *testing.T) {
	last := day0
	rec := entity.CardRecord{State: entity.CardStateReviewing, EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2, LastReviewDate: &last, Difficulty: entity.DifficultyMedium}
	if _, err := ApplyAnswer(rec, 4, day0.AddDays(6)); err != nil {
		t.Fatal(err)
	}
	if rec.Repetitions != 2 || !rec.LastReviewDate.Equal(day0) {
		t.Fatalf("input record mutated: %+v", rec)
	}
}

func TestApplyAnswerInvariantsHoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		rec := entity.NewCardRecord(entity.Card{ID: "r", Category: "pain"})
		today := day0
		prevPassInterval := -1
		for step := 0; step < 60; step++ {
			q := entity.Quality(rng.Intn(6))
			next, err := ApplyAnswer(rec, q, today)
			if err != nil {
				t.Fatalf("run %d step %d: %v", run, step, err)
			}
			if next.EaseFactor < entity.MinEaseFactor {
				t.Fatalf("ease factor %v below floor", next.EaseFactor)
			}
			if next.IntervalDays > entity.MaxIntervalDays {
				t.Fatalf("interval %d above cap", next.IntervalDays)
			}
			if !next.NextReviewDate.Equal(next.LastReviewDate.AddDays(next.IntervalDays)) {
				t.Fatalf("next review %s != last %s + %d", next.NextReviewDate, next.LastReviewDate, next.IntervalDays)
			}
			if q.Passed() {
				if prevPassInterval >= 0 && next.IntervalDays < prevPassInterval {
					t.Fatalf("interval shrank across passes: %d -> %d", prevPassInterval, next.IntervalDays)
				}
				prevPassInterval = next.IntervalDays
			} else {
				if next.IntervalDays != 1 || next.State != entity.CardStateLearning {
					t.Fatalf("fail must reset to learning/1, got %s/%d", next.State, next.IntervalDays)
				}
				prevPassInterval = -1
			}
			rec = next
			today = today.AddDays(next.IntervalDays)
		}
	}
}

func TestNextEaseFactor(t *testing.T) {
	cases := []struct {
		ease    float64
		quality entity.Quality
		want    float64
	}{
		{2.5, 5, 2.6},
		{2.5, 4, 2.5},
		{2.5, 3, 2.36},
		{1.3, 3, 1.3},
	}
	for _, c := range cases {
		if got := NextEaseFactor(c.ease, c.quality); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NextEaseFactor(%v, %d) = %v, want %v", c.ease, c.quality, got, c.want)
		}
	}
}

func TestApplyAnswerCapsInterval(t *testing.T) {
	rec := entity.CardRecord{State: entity.CardStateLearned, EaseFactor: 2.5, IntervalDays: 300, Repetitions: 6, Difficulty: entity.DifficultyEasy}
	got, err := ApplyAnswer(rec, 5, day0)
	if err != nil {
		t.Fatal(err)
	}
	if got.IntervalDays != entity.MaxIntervalDays {
		t.Errorf("expected interval capped at 365, got %d", got.IntervalDays)
	}
	if got.State != entity.CardStateLearned {
		t.Errorf("expected learned, got %s", got.State)
	}
}

func TestDueCardsSelection(t *testing.T) {
	today := day0
	deck := []entity.Card{
		{ID: "yesterday", Category: "pain", BaseDifficulty: entity.DifficultyMedium},
		{ID: "today", Category: "pain", BaseDifficulty: entity.DifficultyMedium},
		{ID: "tomorrow", Category: "pain", BaseDifficulty: entity.DifficultyMedium},
	}
	records := map[string]entity.CardRecord{
		"yesterday": {State: entity.CardStateReviewing, NextReviewDate: datePtr(today.AddDays(-1))},
		"today":     {State: entity.CardStateReviewing, NextReviewDate: datePtr(today)},
		"tomorrow":  {State: entity.CardStateReviewing, NextReviewDate: datePtr(today.AddDays(1))},
	}

	got := cardIDs(slices.Collect(DueCards(deck, lookupFrom(records), DueQuery{Category: entity.CategoryAll, Today: today})))
	want := []string{"yesterday", "today"}
	if !slices.Equal(got, want) {
		t.Fatalf("DueCards = %v, want %v", got, want)
	}
}

func TestDueCardsOrdering(t *testing.T) {
	deck := []entity.Card{
		{ID: "new-hard", Category: "pain", BaseDifficulty: entity.DifficultyHard},
		{ID: "rev-day3", Category: "pain", BaseDifficulty: entity.DifficultyEasy},
		{ID: "learn-easy", Category: "digestive", BaseDifficulty: entity.DifficultyEasy},
		{ID: "new-easy-b", Category: "pain", BaseDifficulty: entity.DifficultyEasy},
		{ID: "rev-day1", Category: "digestive", BaseDifficulty: entity.DifficultyHard},
		{ID: "new-medium", Category: "pain", BaseDifficulty: entity.DifficultyMedium},
		{ID: "learned-due", Category: "pain", BaseDifficulty: entity.DifficultyEasy},
		{ID: "rev-day1-a", Category: "pain", BaseDifficulty: entity.DifficultyMedium},
	}
	records := map[string]entity.CardRecord{
		"new-hard":    {State: entity.CardStateNew},
		"rev-day3":    {State: entity.CardStateReviewing, NextReviewDate: datePtr(day0.AddDays(-1))},
		"learn-easy":  {State: entity.CardStateLearning, NextReviewDate: datePtr(day0.AddDays(1))},
		"new-easy-b":  {State: entity.CardStateNew},
		"rev-day1":    {State: entity.CardStateReviewing, NextReviewDate: datePtr(day0.AddDays(-3))},
		"new-medium":  {State: entity.CardStateNew},
		"learned-due": {State: entity.CardStateLearned, NextReviewDate: datePtr(day0)},
		"rev-day1-a":  {State: entity.CardStateReviewing, NextReviewDate: datePtr(day0.AddDays(-3))},
	}

	query := DueQuery{Category: entity.CategoryAll, Today: day0}
	want := []string{"rev-day1", "rev-day1-a", "rev-day3", "learn-easy", "learned-due", "new-easy-b", "new-medium", "new-hard"}
	got := cardIDs(slices.Collect(DueCards(deck, lookupFrom(records), query)))
	if !slices.Equal(got, want) {
		t.Fatalf("DueCards order = %v, want %v", got, want)
	}

	reversed := slices.Clone(deck)
	slices.Reverse(reversed)
	again := cardIDs(slices.Collect(DueCards(reversed, lookupFrom(records), query)))
	if !slices.Equal(again, want) {
		t.Fatalf("order depends on deck order: %v", again)
	}

	pain := cardIDs(slices.Collect(DueCards(deck, lookupFrom(records), DueQuery{Category: "pain", Today: day0})))
	wantPain := []string{"rev-day1-a", "rev-day3", "learned-due", "new-easy-b", "new-medium", "new-hard"}
	if !slices.Equal(pain, wantPain) {
		t.Fatalf("pain category = %v, want %v", pain, wantPain)
	}

	none := slices.Collect(DueCards(deck, lookupFrom(records), DueQuery{Category: "respiratory", Today: day0}))
	if len(none) != 0 {
		t.Fatalf("expected empty due set for unmatched category, got %v", cardIDs(none))
	}
}

func TestDueCardsSequenceIsRestartable(t *testing.T) {
	deck := []entity.Card{{ID: "a", Category: "pain"}, {ID: "b", Category: "pain"}}
	records := map[string]entity.CardRecord{
		"a": {State: entity.CardStateNew},
		"b": {State: entity.CardStateNew},
	}
	seq := DueCards(deck, lookupFrom(records), DueQuery{Category: entity.CategoryAll, Today: day0})

	for card := range seq {
		if card.ID != "a" {
			t.Fatalf("expected a first, got %s", card.ID)
		}
		break
	}

	records["a"] = entity.CardRecord{State: entity.CardStateReviewing, NextReviewDate: datePtr(day0.AddDays(5))}
	if got := cardIDs(slices.Collect(seq)); !slices.Equal(got, []string{"b"}) {
		t.Fatalf("sequence should recompute from current records, got %v", got)
	}
}

func TestComputeStats(t *testing.T) {
	records := []entity.CardRecord{
		{State: entity.CardStateLearned, Difficulty: entity.DifficultyHard},
		{State: entity.CardStateReviewing, Difficulty: entity.DifficultyMedium},
		{State: entity.CardStateLearning, Difficulty: entity.DifficultyHard},
		{State: entity.CardStateNew, Difficulty: entity.DifficultyHard},
		{State: entity.CardStateNew, Difficulty: entity.DifficultyEasy},
		{State: entity.CardStateLearned, Difficulty: entity.DifficultyEasy},
	}
	got := ComputeStats(slices.Values(records))
	want := entity.DeckStats{Total: 6, LearnedCount: 2, ToReviewCount: 1, DifficultCount: 2, MasteryPercent: 33}
	if got != want {
		t.Fatalf("ComputeStats = %+v, want %+v", got, want)
	}

	if empty := ComputeStats(slices.Values([]entity.CardRecord(nil))); empty != (entity.DeckStats{}) {
		t.Fatalf("expected zero stats for no records, got %+v", empty)
	}
}
