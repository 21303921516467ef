package backup

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/flashdeck/internal/entity"
)

const formatVersion = 1

const (
	recordTypeMeta = "meta"
	recordTypeCard = "card"
)

var errNoCardsSelected = errors.New("backup: no cards selected")

// Store is the slice of the card store the backup service needs.
type Store interface {
	Deck() []entity.Card
	Records() map[string]entity.CardRecord
	Replace(ctx context.Context, records map[string]entity.CardRecord) error
}

type ProgressReporter interface {
	Start(total int)
	Increment(delta int)
	Finish()
}

type noopProgress struct{}

func (noopProgress) Start(int)     {}
func (noopProgress) Increment(int) {}
func (noopProgress) Finish()       {}

// Service streams learning records to and from NDJSON: one meta line followed by one line per card.
type Service struct {
	store Store
	clock func() time.Time
}

// NewService constructs a backup service bound to the provided store.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("backup: store is required")
	}
	return &Service{store: store, clock: time.Now}, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	categories []entity.Category
	reporter   ProgressReporter
}

// WithCategories restricts export to cards of the given categories.
func WithCategories(categories []string) ExportOption {
	return func(cfg *exportConfig) {
		for _, c := range categories {
			if cat := entity.NormalizeCategory(c); cat != "" {
				cfg.categories = append(cfg.categories, cat)
			}
		}
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	merge bool
}

// WithMerge keeps records of cards absent from the backup instead of resetting them.
func WithMerge(merge bool) ImportOption {
	return func(cfg *importConfig) {
		cfg.merge = merge
	}
}

type record struct {
	Type       string     `json:"type"`
	Version    int        `json:"version,omitempty"`
	ExportedAt *time.Time `json:"exported_at,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	CardCount  int        `json:"card_count,omitempty"`
	Payload    any        `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	Categories []string        `json:"categories"`
	CardCount  int             `json:"card_count"`
	Payload    json.RawMessage `json:"payload"`
}

type cardPayload struct {
	ID       string            `json:"id"`
	Category entity.Category   `json:"category,omitempty"`
	Record   entity.CardRecord `json:"record"`
}

// Export writes every selected record in card ID order.
func (s *Service) Export(_ context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	payloads := s.selectCards(cfg.categories)
	if len(payloads) == 0 && len(cfg.categories) > 0 {
		return errNoCardsSelected
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.clock().UTC()
	meta := record{
		Type:       recordTypeMeta,
		Version:    formatVersion,
		ExportedAt: &now,
		Categories: lo.Map(cfg.categories, func(c entity.Category, _ int) string { return c.Code() }),
		CardCount:  len(payloads),
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	reporter.Start(len(payloads))
	for _, p := range payloads {
		if err := writeRecord(writer, record{Type: recordTypeCard, Payload: p}); err != nil {
			return err
		}
		reporter.Increment(1)
	}
	reporter.Finish()
	return writer.Flush()
}

func (s *Service) selectCards(categories []entity.Category) []cardPayload {
	cardCategory := lo.SliceToMap(s.store.Deck(), func(c entity.Card) (string, entity.Category) {
		return c.ID, c.Category
	})
	records := s.store.Records()

	payloads := make([]cardPayload, 0, len(records))
	for _, id := range slices.Sorted(maps.Keys(records)) {
		category := cardCategory[id]
		if len(categories) > 0 && !slices.Contains(categories, category) {
			continue
		}
		payloads = append(payloads, cardPayload{ID: id, Category: category, Record: records[id]})
	}
	return payloads
}

// Import reads a backup and swaps its records into the store in one step.
// Nothing is written unless the whole stream decodes and validates.
// A backup limited to some categories is always merged, so cards outside
// those categories keep their progress.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (int, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	br := bufio.NewReader(r)
	var (
		metaSeen bool
		meta     rawRecord
		imported = make(map[string]entity.CardRecord)
	)

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return 0, fmt.Errorf("decode record: %w", err)
			}

			switch rec.Type {
			case recordTypeMeta:
				metaSeen = true
				meta = rec
			case recordTypeCard:
				if len(rec.Payload) == 0 {
					return 0, errors.New("backup: missing payload for card record")
				}
				var p cardPayload
				if err := json.Unmarshal(rec.Payload, &p); err != nil {
					return 0, fmt.Errorf("decode card payload: %w", err)
				}
				if p.ID == "" {
					return 0, fmt.Errorf("backup: %w", entity.ErrInvalidCardID)
				}
				if err := p.Record.Validate(); err != nil {
					return 0, fmt.Errorf("backup: card %s: %w", p.ID, err)
				}
				imported[p.ID] = p.Record
			default:
				// Unknown record types from newer writers are skipped.
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return 0, errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return 0, fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}
	if meta.CardCount != len(imported) {
		return 0, fmt.Errorf("backup: expected %d cards, found %d", meta.CardCount, len(imported))
	}

	next := imported
	if cfg.merge || len(meta.Categories) > 0 {
		next = s.store.Records()
		maps.Copy(next, imported)
	}
	if err := s.store.Replace(ctx, next); err != nil {
		return 0, fmt.Errorf("apply backup: %w", err)
	}
	return len(imported), nil
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
