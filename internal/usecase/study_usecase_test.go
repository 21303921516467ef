package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/eslsoft/flashdeck/internal/entity"
)

type studyFixture struct {
	uc       *studyUsecase
	store    *CardStore
	kv       *fakeKV
	recorder *fakeRecorder
}

func newStudyFixture(t *testing.T, deck []entity.Card) studyFixture {
	t.Helper()
	kv := newFakeKV()
	store := newTestStore(t, kv)
	recorder := &fakeRecorder{}
	uc := NewStudyUsecase(store, recorder, nil)
	impl := uc.(*studyUsecase)
	impl.clock = func() time.Time { return time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC) }
	impl.newID = func() string { return "session-1" }
	if err := uc.LoadDeck(context.Background(), deck); err != nil {
		t.Fatalf("LoadDeck: %v", err)
	}
	return studyFixture{uc: impl, store: store, kv: kv, recorder: recorder}
}

func (f studyFixture) answer(t *testing.T, id string, q entity.Quality, today entity.Date) entity.CardRecord {
	t.Helper()
	rec, err := f.uc.ProcessAnswer(context.Background(), id, q, today)
	if err != nil {
		t.Fatalf("ProcessAnswer(%s, %d): %v", id, q, err)
	}
	return rec
}

func TestStudyUsecaseThreePassingAnswers(t *testing.T) {
	f := newStudyFixture(t, []entity.Card{
		{ID: "X", Category: "pain", BaseDifficulty: entity.DifficultyMedium},
		{ID: "B", Category: "digestive"},
	})

	f.answer(t, "X", 3, day0)
	f.answer(t, "X", 3, day0.AddDays(1))
	rec := f.answer(t, "X", 4, day0.AddDays(7))

	if math.Abs(rec.EaseFactor-2.5) > 1e-9 || rec.IntervalDays != 15 || rec.State != entity.CardStateReviewing {
		t.Fatalf("unexpected record %+v", rec)
	}
	stats := f.uc.Stats(context.Background())
	if stats.Total != 2 || stats.MasteryPercent != 0 || stats.ToReviewCount != 1 || stats.LearnedCount != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestStudyUsecaseLearnedThenForgotten(t *testing.T) {
	f := newStudyFixture(t, []entity.Card{{ID: "X", Category: "pain"}, {ID: "B", Category: "digestive"}})

	today := day0
	var rec entity.CardRecord
	for range 4 {
		rec = f.answer(t, "X", 5, today)
		today = today.AddDays(rec.IntervalDays)
	}
	if rec.IntervalDays != 43 || rec.State != entity.CardStateLearned || math.Abs(rec.EaseFactor-2.7) > 1e-9 {
		t.Fatalf("expected learned card with interval 43 and ease 2.7, got %+v", rec)
	}
	if stats := f.uc.Stats(context.Background()); stats.Total != 2 || stats.MasteryPercent != 50 || stats.LearnedCount != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = f.answer(t, "X", 1, today)
	if rec.State != entity.CardStateLearning || rec.IntervalDays != 1 || math.Abs(rec.EaseFactor-2.5) > 1e-9 {
		t.Fatalf("unexpected record after failure %+v", rec)
	}
	if stats := f.uc.Stats(context.Background()); stats.DifficultCount != 1 || stats.LearnedCount != 0 || stats.MasteryPercent != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if b, err := f.store.Record("B"); err != nil || b.State != entity.CardStateNew || b.Repetitions != 0 {
		t.Fatalf("untouched card changed: %+v, %v", b, err)
	}
}

func TestStudyUsecaseProcessAnswerErrors(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	ctx := context.Background()

	if _, err := f.uc.ProcessAnswer(ctx, "X", 6, day0); !errors.Is(err, entity.ErrInvalidQuality) {
		t.Fatalf("expected ErrInvalidQuality, got %v", err)
	}
	if _, err := f.uc.ProcessAnswer(ctx, "nope", 4, day0); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	rec, _ := f.store.Record("X")
	if rec.Repetitions != 0 {
		t.Fatalf("rejected answer mutated record: %+v", rec)
	}
	if len(f.recorder.studied) != 0 {
		t.Fatalf("rejected answers must not reach the recorder, got %d events", len(f.recorder.studied))
	}

	f.kv.setFailing(true)
	if _, err := f.uc.ProcessAnswer(ctx, "X", 4, day0); !errors.Is(err, errStorageDown) {
		t.Fatalf("expected storage error, got %v", err)
	}
	f.kv.setFailing(false)
	if rec, _ := f.store.Record("X"); rec.Repetitions != 0 {
		t.Fatalf("failed persistence mutated record: %+v", rec)
	}
}

func TestStudyUsecaseProcessAnswerDefaultsToClock(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	rec := f.answer(t, "Y", 4, entity.Date{})
	if !rec.LastReviewDate.Equal(day0) || !rec.NextReviewDate.Equal(day0.AddDays(1)) {
		t.Fatalf("expected review dated by clock, got last=%s next=%s", rec.LastReviewDate, rec.NextReviewDate)
	}
}

func TestStudyUsecaseDueCards(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	ctx := context.Background()

	due, err := f.uc.DueCards(ctx, DueRequest{Today: day0})
	if err != nil {
		t.Fatalf("DueCards: %v", err)
	}
	if got := cardIDs(due); len(got) != 3 || got[0] != "Y" || got[1] != "X" || got[2] != "Z" {
		t.Fatalf("unexpected due order %v", got)
	}
	if last := f.store.LastStudyDate(); last == nil || !last.Equal(day0) {
		t.Fatalf("expected last study date recorded, got %v", last)
	}

	f.answer(t, "X", 3, day0)
	f.answer(t, "X", 3, day0)
	due, err = f.uc.DueCards(ctx, DueRequest{Category: "pain", Today: day0})
	if err != nil {
		t.Fatal(err)
	}
	if got := cardIDs(due); len(got) != 1 || got[0] != "Z" {
		t.Fatalf("expected only Z due in pain, got %v", got)
	}

	due, err = f.uc.DueCards(ctx, DueRequest{Category: "pain", Today: day0.AddDays(6)})
	if err != nil {
		t.Fatal(err)
	}
	if got := cardIDs(due); len(got) != 2 || got[0] != "X" || got[1] != "Z" {
		t.Fatalf("expected reviewing X before new Z, got %v", got)
	}

	due, err = f.uc.DueCards(ctx, DueRequest{Today: day0, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Fatalf("expected limit applied, got %v", cardIDs(due))
	}
}

func TestStudyUsecaseDueCardsFilter(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	ctx := context.Background()

	due, err := f.uc.DueCards(ctx, DueRequest{Today: day0, Filter: `difficulty == "hard" || base_difficulty == "easy"`})
	if err != nil {
		t.Fatalf("DueCards: %v", err)
	}
	if got := cardIDs(due); len(got) != 2 || got[0] != "Y" || got[1] != "Z" {
		t.Fatalf("unexpected filtered due set %v", got)
	}

	if _, err := f.uc.DueCards(ctx, DueRequest{Today: day0, Filter: "repetitions >"}); !errors.Is(err, entity.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestStudyUsecaseInspect(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	card, rec, err := f.uc.Inspect(context.Background(), "Z")
	if err != nil {
		t.Fatal(err)
	}
	if card.Front != "Tramadol class?" || rec.Difficulty != entity.DifficultyHard {
		t.Fatalf("unexpected inspect result %+v %+v", card, rec)
	}
	if _, _, err := f.uc.Inspect(context.Background(), "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStudyUsecaseSessionTracking(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	ctx := context.Background()

	empty := f.uc.FinishSession(ctx)
	if empty.Studied != 0 || len(f.recorder.sessions) != 0 {
		t.Fatalf("finishing without answers must not emit a session, got %+v", empty)
	}

	f.answer(t, "X", 4, day0)
	f.answer(t, "Y", 1, day0)
	f.answer(t, "Z", 3, day0)

	if len(f.recorder.studied) != 3 {
		t.Fatalf("expected 3 studied events, got %d", len(f.recorder.studied))
	}
	if ev := f.recorder.studied[1]; ev.category != "digestive" || ev.difficulty != entity.DifficultyHard {
		t.Fatalf("unexpected studied event %+v", ev)
	}

	session := f.uc.FinishSession(ctx)
	if session.SessionID != "session-1" || session.Studied != 3 || session.Passed != 2 || session.Failed != 1 {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.ByCategory["pain"] != 2 || session.ByCategory["digestive"] != 1 {
		t.Fatalf("unexpected category breakdown %v", session.ByCategory)
	}
	if session.Deck.Total != 3 || session.Deck.DifficultCount != 1 {
		t.Fatalf("unexpected deck stats %+v", session.Deck)
	}
	if len(f.recorder.sessions) != 1 {
		t.Fatalf("expected session reported once, got %d", len(f.recorder.sessions))
	}
}

func TestStudyUsecaseReset(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	ctx := context.Background()
	f.answer(t, "X", 5, day0)

	if err := f.uc.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if rec, _ := f.store.Record("X"); rec.Repetitions != 0 || rec.State != entity.CardStateNew {
		t.Fatalf("record not reset: %+v", rec)
	}
	if session := f.uc.FinishSession(ctx); session.Studied != 0 {
		t.Fatalf("reset should drop the running session, got %+v", session)
	}
}

func TestStudyUsecaseListCards(t *testing.T) {
	f := newStudyFixture(t, sampleDeck())
	ctx := context.Background()

	items, err := f.uc.ListCards(ctx, ListRequest{Category: "pain"})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(items) != 2 || items[0].Card.ID != "X" || items[1].Card.ID != "Z" {
		t.Fatalf("unexpected pain listing %+v", items)
	}
	if f.store.LastStudyDate() != nil {
		t.Fatal("listing must not record a study date")
	}

	f.answer(t, "Y", 5, day0)
	items, err = f.uc.ListCards(ctx, ListRequest{OrderBy: "repetitions desc"})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	var ids []string
	for _, it := range items {
		ids = append(ids, it.Card.ID)
	}
	if len(ids) != 3 || ids[0] != "Y" || ids[1] != "X" || ids[2] != "Z" {
		t.Fatalf("unexpected ordering %v", ids)
	}

	items, err = f.uc.ListCards(ctx, ListRequest{Filter: `state == "new"`, OrderBy: "id desc"})
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(items) != 2 || items[0].Card.ID != "Z" || items[1].Card.ID != "X" {
		t.Fatalf("unexpected filtered listing %+v", items)
	}

	if _, err := f.uc.ListCards(ctx, ListRequest{OrderBy: "front"}); !errors.Is(err, entity.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter for bad order, got %v", err)
	}
}
