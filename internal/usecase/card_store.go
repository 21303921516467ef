package usecase

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/eslsoft/flashdeck/internal/entity"
	"github.com/eslsoft/flashdeck/internal/repository"
)

// DefaultNamespace prefixes every key the card store writes.
const DefaultNamespace = "flashdeck_"

// CardStore owns the learning record of every card in a deck and persists
// them as a single snapshot through a KVStore.
//
// Every mutation is applied to a copy, persisted, and only then committed in
// memory, so a failed write leaves the store unchanged.
type CardStore struct {
	kv  repository.KVStore
	key string

	mu        sync.RWMutex
	deck      []entity.Card
	cards     map[string]entity.Card
	records   map[string]entity.CardRecord
	lastStudy *entity.Date
}

// NewCardStore binds a store to kv. Keys are prefixed with namespace (DefaultNamespace when empty).
func NewCardStore(kv repository.KVStore, namespace string) (*CardStore, error) {
	if kv == nil {
		return nil, errors.New("card store: kv store is required")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CardStore{
		kv:      kv,
		key:     namespace + progressKey,
		cards:   map[string]entity.Card{},
		records: map[string]entity.CardRecord{},
	}, nil
}

// Key returns the namespaced key the progress snapshot is stored under.
func (s *CardStore) Key() string { return s.key }

// Open loads previously persisted progress. A missing snapshot leaves the store empty.
func (s *CardStore) Open(ctx context.Context) error {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	if !ok {
		return nil
	}
	snap, err := decodeSnapshot(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = snap.Cards
	s.lastStudy = snap.LastStudyDate
	return nil
}

// LoadDeck registers the deck and creates default records for cards seen for
// the first time. Existing progress is never overwritten. Duplicate IDs keep
// their first occurrence.
func (s *CardStore) LoadDeck(ctx context.Context, cards []entity.Card) error {
	deck := make([]entity.Card, 0, len(cards))
	for _, card := range cards {
		card.Normalize()
		if err := card.Validate(); err != nil {
			return err
		}
		deck = append(deck, card)
	}
	deck = lo.UniqBy(deck, func(c entity.Card) string { return c.ID })

	s.mu.Lock()
	defer s.mu.Unlock()

	records := maps.Clone(s.records)
	for _, card := range deck {
		if _, ok := records[card.ID]; !ok {
			records[card.ID] = entity.NewCardRecord(card)
		}
	}
	if err := s.persistLocked(ctx, records, s.lastStudy); err != nil {
		return err
	}

	s.deck = deck
	s.cards = lo.KeyBy(deck, func(c entity.Card) string { return c.ID })
	s.records = records
	return nil
}

// Deck returns the loaded cards in load order.
func (s *CardStore) Deck() []entity.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.deck)
}

// Card returns the deck entry for id.
func (s *CardStore) Card(id string) (entity.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return entity.Card{}, fmt.Errorf("%w: %s", entity.ErrCardNotFound, id)
	}
	return card, nil
}

// Record returns a copy of the learning record for id.
func (s *CardStore) Record(id string) (entity.CardRecord, error) {
	rec, ok := s.Lookup(id)
	if !ok {
		return entity.CardRecord{}, fmt.Errorf("%w: %s", entity.ErrCardNotFound, id)
	}
	return rec, nil
}

// Lookup is the RecordLookup view of the store.
func (s *CardStore) Lookup(id string) (entity.CardRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return entity.CardRecord{}, false
	}
	return rec.Clone(), true
}

// Records returns a copy of every record, including records of cards no longer in the deck.
func (s *CardStore) Records() map[string]entity.CardRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]entity.CardRecord, len(s.records))
	for id, rec := range s.records {
		out[id] = rec.Clone()
	}
	return out
}

// ComputeStats aggregates the current records. It does not touch persistence.
func (s *CardStore) ComputeStats() entity.DeckStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(maps.Values(s.records))
}

// LastStudyDate returns the last day the study queue was requested, or nil.
func (s *CardStore) LastStudyDate() *entity.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastStudy == nil {
		return nil
	}
	d := *s.lastStudy
	return &d
}

// MarkStudied records day as the last study date.
func (s *CardStore) MarkStudied(ctx context.Context, day entity.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastStudy != nil && s.lastStudy.Equal(day) {
		return nil
	}
	if err := s.persistLocked(ctx, s.records, &day); err != nil {
		return err
	}
	s.lastStudy = &day
	return nil
}

// Update applies fn to the record of id and persists the result atomically.
func (s *CardStore) Update(ctx context.Context, id string, fn func(entity.CardRecord) (entity.CardRecord, error)) (entity.CardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return entity.CardRecord{}, fmt.Errorf("%w: %s", entity.ErrCardNotFound, id)
	}
	next, err := fn(current.Clone())
	if err != nil {
		return entity.CardRecord{}, err
	}

	records := maps.Clone(s.records)
	records[id] = next
	if err := s.persistLocked(ctx, records, s.lastStudy); err != nil {
		return entity.CardRecord{}, err
	}
	s.records = records
	return next.Clone(), nil
}

// ResetAll reinitialises every deck card to its default record, discarding all history.
func (s *CardStore) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make(map[string]entity.CardRecord, len(s.deck))
	for _, card := range s.deck {
		records[card.ID] = entity.NewCardRecord(card)
	}
	if err := s.persistLocked(ctx, records, nil); err != nil {
		return err
	}
	s.records = records
	s.lastStudy = nil
	return nil
}

// Replace swaps in a full set of records, e.g. from a backup. Deck cards
// missing from records get default records.
func (s *CardStore) Replace(ctx context.Context, records map[string]entity.CardRecord) error {
	next := make(map[string]entity.CardRecord, len(records))
	for id, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("card %s: %w", id, err)
		}
		next[id] = rec.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range s.deck {
		if _, ok := next[card.ID]; !ok {
			next[card.ID] = entity.NewCardRecord(card)
		}
	}
	if err := s.persistLocked(ctx, next, s.lastStudy); err != nil {
		return err
	}
	s.records = next
	return nil
}

func (s *CardStore) persistLocked(ctx context.Context, records map[string]entity.CardRecord, lastStudy *entity.Date) error {
	data, err := encodeSnapshot(records, ComputeStats(maps.Values(records)), lastStudy)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
