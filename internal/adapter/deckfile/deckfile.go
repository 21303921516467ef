// Package deckfile reads card decks from YAML (or JSON) files.
//
// A deck is either a bare list of cards or a mapping with a "cards" list:
//
//	name: pharmacology
//	cards:
//	  - id: ibuprofen
//	    category: pain
//	    difficulty: easy
//	    front: Ibuprofen drug class?
//	    back: NSAID
package deckfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/eslsoft/flashdeck/internal/entity"
)

type yamlDeck struct {
	Name  string     `yaml:"name"`
	Cards []yamlCard `yaml:"cards"`
}

type yamlCard struct {
	ID         string `yaml:"id"`
	Category   string `yaml:"category"`
	Difficulty string `yaml:"difficulty"`
	Front      string `yaml:"front"`
	Back       string `yaml:"back"`
}

// Deck is a parsed deck file.
type Deck struct {
	Name  string
	Cards []entity.Card
	// Duplicates lists IDs that appeared more than once; only the first occurrence is kept.
	Duplicates []string
}

// Load reads and parses the deck at path.
func Load(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a deck document.
func Parse(r io.Reader) (*Deck, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("deck: empty document")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}

	var doc yamlDeck
	body := &root
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		body = root.Content[0]
	}
	switch body.Kind {
	case yaml.SequenceNode:
		err = body.Decode(&doc.Cards)
	case yaml.MappingNode:
		err = body.Decode(&doc)
	default:
		err = fmt.Errorf("expected a list of cards or a mapping with cards at line %d", body.Line)
	}
	if err != nil {
		return nil, fmt.Errorf("decode deck: %w", err)
	}
	return buildDeck(doc)
}

func buildDeck(doc yamlDeck) (*Deck, error) {
	cards := make([]entity.Card, 0, len(doc.Cards))
	for i, raw := range doc.Cards {
		difficulty, err := entity.ParseDifficulty(raw.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("card %d (%s): %w", i+1, raw.ID, err)
		}
		card := entity.Card{
			ID:             raw.ID,
			Category:       entity.Category(raw.Category),
			BaseDifficulty: difficulty,
			Front:          raw.Front,
			Back:           raw.Back,
		}
		card.Normalize()
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("card %d: %w", i+1, err)
		}
		cards = append(cards, card)
	}

	byID := func(c entity.Card) string { return c.ID }
	duplicates := lo.Map(lo.FindDuplicatesBy(cards, byID), func(c entity.Card, _ int) string { return c.ID })
	return &Deck{
		Name:       doc.Name,
		Cards:      lo.UniqBy(cards, byID),
		Duplicates: duplicates,
	}, nil
}
