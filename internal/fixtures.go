package internal

import (
	"fmt"
	"testing"

	"github.com/minaorangina/shift/catalog"
)

// OrderedRNG never swaps during a shuffle, so decks keep catalog order
type OrderedRNG struct{}

func (OrderedRNG) Intn(n int) int { return n - 1 }

// PlainCard is a card with labelled choices and no effects
func PlainCard(id string) catalog.Card {
	return catalog.Card{
		ID:    id,
		Title: "Title of " + id,
		Text:  "Text of " + id,
		Choices: catalog.Choices{
			Left:  catalog.Choice{Label: "left"},
			Right: catalog.Choice{Label: "right"},
		},
	}
}

// PlainCards returns n plain cards with ids prefix-1 ... prefix-n
func PlainCards(prefix string, n int) []catalog.Card {
	cards := make([]catalog.Card, n)
	for i := range n {
		cards[i] = PlainCard(fmt.Sprintf("%s-%d", prefix, i+1))
	}
	return cards
}

// NewCatalog builds a catalog or fails the test
func NewCatalog(t *testing.T, ordinary, stories []catalog.Card) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(ordinary, stories)
	AssertNoError(t, err)
	return c
}

// StaticSource serves a fixed catalog, or a fixed error
type StaticSource struct {
	Catalog *catalog.Catalog
	Err     error
}

func (s StaticSource) Load() (*catalog.Catalog, error) {
	return s.Catalog, s.Err
}
