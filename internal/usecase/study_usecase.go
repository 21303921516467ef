package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/repository"
	"github.com/eslsoft/flashdeck/pkg/cardfilter"
)

// DueRequest describes a study queue request.
type DueRequest struct {
	Category entity.Category
	// Filter is an optional CEL expression, see package cardfilter.
	Filter string
	// Today defaults to the usecase clock when zero.
	Today entity.Date
	// Limit caps the number of cards returned; zero means no limit.
	Limit int
}

// ListRequest selects deck cards for browsing, without touching the study date.
type ListRequest struct {
	Category entity.Category
	Filter   string
	// OrderBy follows cardfilter.ParseOrder, e.g. "ease_factor desc, id".
	OrderBy string
}

// StudyUsecase drives study sessions over a deck.
type StudyUsecase interface {
	LoadDeck(ctx context.Context, cards []entity.Card) error
	DueCards(ctx context.Context, req DueRequest) ([]entity.Card, error)
	ProcessAnswer(ctx context.Context, id string, quality entity.Quality, today entity.Date) (entity.CardRecord, error)
	Inspect(ctx context.Context, id string) (entity.Card, entity.CardRecord, error)
	ListCards(ctx context.Context, req ListRequest) ([]cardfilter.Item, error)
	Stats(ctx context.Context) entity.DeckStats
	Reset(ctx context.Context) error
	FinishSession(ctx context.Context) entity.SessionStats
}

// NewStudyUsecase wires the card store with a recorder. A nil recorder discards notifications.
func NewStudyUsecase(store *CardStore, recorder repository.StudyRecorder, logger logrus.FieldLogger) StudyUsecase {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &studyUsecase{
		store:    store,
		recorder: recorder,
		logger:   logger,
		clock:    time.Now,
		newID:    uuid.NewString,
	}
}

type studyUsecase struct {
	store    *CardStore
	recorder repository.StudyRecorder
	logger   logrus.FieldLogger
	clock    func() time.Time
	newID    func() string

	mu      sync.Mutex
	session *entity.SessionStats
}

func (u *studyUsecase) LoadDeck(ctx context.Context, cards []entity.Card) error {
	if err := u.store.LoadDeck(ctx, cards); err != nil {
		return err
	}
	u.logger.WithField("cards", len(u.store.Deck())).Debug("deck loaded")
	return nil
}

func (u *studyUsecase) DueCards(ctx context.Context, req DueRequest) ([]entity.Card, error) {
	category := req.Category
	if category == "" {
		category = entity.CategoryAll
	}
	filter, err := cardfilter.Compile(req.Filter)
	if err != nil {
		return nil, err
	}
	today := req.Today
	if today.IsZero() {
		today = entity.DateOf(u.clock())
	}

	if err := u.store.MarkStudied(ctx, today); err != nil {
		return nil, err
	}

	var due []entity.Card
	for card := range DueCards(u.store.Deck(), u.store.Lookup, DueQuery{Category: category, Today: today}) {
		if filter != nil {
			rec, _ := u.store.Lookup(card.ID)
			ok, err := filter.Match(card, rec)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		due = append(due, card)
		if req.Limit > 0 && len(due) >= req.Limit {
			break
		}
	}

	u.logger.WithFields(logrus.Fields{
		"category": category,
		"filter":   filter.String(),
		"today":    today.String(),
		"due":      len(due),
	}).Debug("due cards selected")
	return due, nil
}

func (u *studyUsecase) ProcessAnswer(ctx context.Context, id string, quality entity.Quality, today entity.Date) (entity.CardRecord, error) {
	if err := quality.Validate(); err != nil {
		return entity.CardRecord{}, err
	}
	card, err := u.store.Card(id)
	if err != nil {
		return entity.CardRecord{}, err
	}
	if today.IsZero() {
		today = entity.DateOf(u.clock())
	}

	updated, err := u.store.Update(ctx, id, func(rec entity.CardRecord) (entity.CardRecord, error) {
		return ApplyAnswer(rec, quality, today)
	})
	if err != nil {
		return entity.CardRecord{}, err
	}

	u.trackAnswer(card, quality)
	u.recorder.CardStudied(ctx, card.Category, updated.Difficulty)

	u.logger.WithFields(logrus.Fields{
		"card":        id,
		"quality":     int(quality),
		"state":       updated.State,
		"interval":    updated.IntervalDays,
		"ease_factor": updated.EaseFactor,
		"next_review": updated.NextReviewDate.String(),
	}).Info("answer processed")
	return updated, nil
}

func (u *studyUsecase) Inspect(_ context.Context, id string) (entity.Card, entity.CardRecord, error) {
	card, err := u.store.Card(id)
	if err != nil {
		return entity.Card{}, entity.CardRecord{}, err
	}
	rec, err := u.store.Record(id)
	if err != nil {
		return entity.Card{}, entity.CardRecord{}, err
	}
	return card, rec, nil
}

func (u *studyUsecase) ListCards(_ context.Context, req ListRequest) ([]cardfilter.Item, error) {
	category := req.Category
	if category == "" {
		category = entity.CategoryAll
	}
	order, err := cardfilter.ParseOrder(req.OrderBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	filter, err := cardfilter.Compile(req.Filter)
	if err != nil {
		return nil, err
	}

	var items []cardfilter.Item
	for _, card := range u.store.Deck() {
		if !category.Matches(card.Category) {
			continue
		}
		rec, ok := u.store.Lookup(card.ID)
		if !ok {
			continue
		}
		if filter != nil {
			matched, err := filter.Match(card, rec)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
		}
		items = append(items, cardfilter.Item{Card: card, Record: rec})
	}
	order.Sort(items)
	return items, nil
}

func (u *studyUsecase) Stats(_ context.Context) entity.DeckStats {
	return u.store.ComputeStats()
}

func (u *studyUsecase) Reset(ctx context.Context) error {
	if err := u.store.ResetAll(ctx); err != nil {
		return err
	}
	u.mu.Lock()
	u.session = nil
	u.mu.Unlock()
	u.logger.Warn("all card progress reset")
	return nil
}

// FinishSession closes the running session, if any, and reports it to the recorder.
func (u *studyUsecase) FinishSession(ctx context.Context) entity.SessionStats {
	u.mu.Lock()
	session := u.session
	u.session = nil
	u.mu.Unlock()

	if session == nil {
		return entity.SessionStats{ByCategory: map[entity.Category]int{}, Deck: u.store.ComputeStats()}
	}
	session.FinishedAt = u.clock()
	session.Deck = u.store.ComputeStats()
	u.recorder.SessionStats(ctx, *session)
	return *session
}

func (u *studyUsecase) trackAnswer(card entity.Card, quality entity.Quality) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.session == nil {
		u.session = &entity.SessionStats{
			SessionID:  u.newID(),
			StartedAt:  u.clock(),
			ByCategory: map[entity.Category]int{},
		}
	}
	u.session.Studied++
	if quality.Passed() {
		u.session.Passed++
	} else {
		u.session.Failed++
	}
	u.session.ByCategory[card.Category]++
}

type noopRecorder struct{}

func (noopRecorder) CardStudied(context.Context, entity.Category, entity.Difficulty) {}
func (noopRecorder) SessionStats(context.Context, entity.SessionStats)             {}

// IsNotFound reports whether err marks an unknown card.
func IsNotFound(err error) bool {
	return errors.Is(err, entity.ErrCardNotFound)
}
