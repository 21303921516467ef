package deckfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eslsoft/flashdeck/internal/entity"
)

const sampleDeck = `
name: pharmacology
cards:
  - id: ibuprofen
    category: Pain
    difficulty: easy
    front: Ibuprofen drug class?
    back: NSAID
  - id: omeprazole
    category: digestive
    front: Omeprazole drug class?
    back: PPI
  - id: ibuprofen
    category: pain
    difficulty: hard
`

func TestParseMapping(t *testing.T) {
	deck, err := Parse(strings.NewReader(sampleDeck))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if deck.Name != "pharmacology" || len(deck.Cards) != 2 {
		t.Fatalf("unexpected deck %+v", deck)
	}
	first := deck.Cards[0]
	if first.ID != "ibuprofen" || first.Category != "pain" || first.BaseDifficulty != entity.DifficultyEasy || first.Back != "NSAID" {
		t.Fatalf("unexpected first card %+v", first)
	}
	if deck.Cards[1].BaseDifficulty != entity.DifficultyMedium {
		t.Fatalf("missing difficulty should default to medium, got %s", deck.Cards[1].BaseDifficulty)
	}
	if len(deck.Duplicates) != 1 || deck.Duplicates[0] != "ibuprofen" {
		t.Fatalf("unexpected duplicates %v", deck.Duplicates)
	}
}

func TestParseListAndJSON(t *testing.T) {
	list := "- {id: a, category: pain}\n- {id: b, category: respiratory, difficulty: HARD}\n"
	deck, err := Parse(strings.NewReader(list))
	if err != nil {
		t.Fatalf("Parse list: %v", err)
	}
	if len(deck.Cards) != 2 || deck.Cards[1].BaseDifficulty != entity.DifficultyHard {
		t.Fatalf("unexpected list deck %+v", deck.Cards)
	}

	js := `{"cards":[{"id":"c","category":"pain","difficulty":"medium"}]}`
	deck, err = Parse(strings.NewReader(js))
	if err != nil {
		t.Fatalf("Parse json: %v", err)
	}
	if len(deck.Cards) != 1 || deck.Cards[0].ID != "c" {
		t.Fatalf("unexpected json deck %+v", deck.Cards)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "   \n", nil},
		{"scalar", "just text", nil},
		{"bad difficulty", "- {id: a, category: pain, difficulty: brutal}", entity.ErrInvalidDifficulty},
		{"missing id", "- {category: pain}", entity.ErrInvalidCardID},
		{"missing category", "- {id: a}", entity.ErrInvalidCategory},
		{"malformed", "cards: [", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(c.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if c.want != nil && !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	if err := os.WriteFile(path, []byte(sampleDeck), 0o600); err != nil {
		t.Fatal(err)
	}
	deck, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(deck.Cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(deck.Cards))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
