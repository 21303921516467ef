package cardfilter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/eslsoft/flashdeck/internal/entity"
)

// Item pairs a card with its learning record for ordering.
type Item struct {
	Card   entity.Card
	Record entity.CardRecord
}

type compareFunc func(a, b Item) int

var orderFields = map[string]compareFunc{
	"id": func(a, b Item) int { return cmp.Compare(a.Card.ID, b.Card.ID) },
	"category": func(a, b Item) int {
		return cmp.Compare(a.Card.Category.Code(), b.Card.Category.Code())
	},
	"state": func(a, b Item) int { return cmp.Compare(stateRank(a.Record.State), stateRank(b.Record.State)) },
	"difficulty": func(a, b Item) int {
		return cmp.Compare(a.Record.Difficulty.Rank(), b.Record.Difficulty.Rank())
	},
	"base_difficulty": func(a, b Item) int {
		return cmp.Compare(a.Card.BaseDifficulty.OrDefault().Rank(), b.Card.BaseDifficulty.OrDefault().Rank())
	},
	"next_review":   func(a, b Item) int { return compareDates(a.Record.NextReviewDate, b.Record.NextReviewDate) },
	"last_review":   func(a, b Item) int { return compareDates(a.Record.LastReviewDate, b.Record.LastReviewDate) },
	"interval_days": func(a, b Item) int { return cmp.Compare(a.Record.IntervalDays, b.Record.IntervalDays) },
	"repetitions":   func(a, b Item) int { return cmp.Compare(a.Record.Repetitions, b.Record.Repetitions) },
	"ease_factor":   func(a, b Item) int { return cmp.Compare(a.Record.EaseFactor, b.Record.EaseFactor) },
}

const (
	defaultOrderKey  = "next_review"
	fallbackOrderKey = "id"
)

// Order is a parsed "key [asc|desc], key [asc|desc]" clause.
type Order struct {
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

// ParseOrder parses an order clause of at most two keys. Empty input orders by
// next review date, then id. The secondary key defaults to id.
func ParseOrder(raw string) (Order, error) {
	ord := Order{PrimaryKey: defaultOrderKey, SecondaryKey: fallbackOrderKey}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ord, nil
	}

	seen := map[string]struct{}{}
	idx := 0
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		key := strings.ToLower(parts[0])
		if _, ok := orderFields[key]; !ok {
			return Order{}, fmt.Errorf("field %q cannot be used for ordering", parts[0])
		}

		var desc bool
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return Order{}, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
			}
		default:
			return Order{}, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}

		if _, dup := seen[key]; dup {
			return Order{}, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = struct{}{}

		switch idx {
		case 0:
			ord.PrimaryKey, ord.PrimaryDesc = key, desc
			ord.SecondaryKey, ord.SecondaryDesc = fallbackOrderKey, false
		case 1:
			ord.SecondaryKey, ord.SecondaryDesc = key, desc
		default:
			return Order{}, errors.New("order supports at most two keys")
		}
		idx++
	}

	if ord.SecondaryKey == ord.PrimaryKey {
		ord.SecondaryKey, ord.SecondaryDesc = "", false
	}
	return ord, nil
}

// Compare orders a before b by the primary key, then the secondary key, then card id.
func (o Order) Compare(a, b Item) int {
	if c := applyDirection(orderFields[o.PrimaryKey], o.PrimaryDesc)(a, b); c != 0 {
		return c
	}
	if o.SecondaryKey != "" {
		if c := applyDirection(orderFields[o.SecondaryKey], o.SecondaryDesc)(a, b); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Card.ID, b.Card.ID)
}

// Sort orders items in place.
func (o Order) Sort(items []Item) {
	slices.SortStableFunc(items, o.Compare)
}

func (o Order) String() string {
	s := o.PrimaryKey + direction(o.PrimaryDesc)
	if o.SecondaryKey != "" {
		s += ", " + o.SecondaryKey + direction(o.SecondaryDesc)
	}
	return s
}

func direction(desc bool) string {
	if desc {
		return " desc"
	}
	return " asc"
}

func applyDirection(f compareFunc, desc bool) compareFunc {
	if f == nil {
		return func(Item, Item) int { return 0 }
	}
	if !desc {
		return f
	}
	return func(a, b Item) int { return f(b, a) }
}

func stateRank(s entity.CardState) int {
	switch s {
	case entity.CardStateNew:
		return 0
	case entity.CardStateLearning:
		return 1
	case entity.CardStateReviewing:
		return 2
	case entity.CardStateLearned:
		return 3
	default:
		return 4
	}
}

// compareDates orders nil (never reviewed) before any concrete date.
func compareDates(a, b *entity.Date) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
