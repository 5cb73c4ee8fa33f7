package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("catalog unavailable")
	ErrNoCards      = errors.New("catalog has no ordinary cards")
	ErrMissingID    = errors.New("card is missing an id")
	ErrDuplicateID  = errors.New("duplicate card id")
	ErrMissingLabel = errors.New("card choice is missing a label")
)

// Catalog is the immutable set of ordinary and story cards.
// It is safe to share between goroutines once built.
type Catalog struct {
	ordinary []Card
	stories  []Card
	byID     map[string]Card
	isStory  map[string]struct{}
}

// New builds a Catalog from the two card pools.
// Ids must be unique across both pools.
func New(ordinary, stories []Card) (*Catalog, error) {
	if len(ordinary) == 0 {
		return nil, ErrNoCards
	}

	c := &Catalog{
		ordinary: make([]Card, 0, len(ordinary)),
		stories:  make([]Card, 0, len(stories)),
		byID:     make(map[string]Card, len(ordinary)+len(stories)),
		isStory:  make(map[string]struct{}, len(stories)),
	}

	for _, card := range ordinary {
		if err := c.add(card); err != nil {
			return nil, err
		}
		c.ordinary = append(c.ordinary, card)
	}

	for _, card := range stories {
		if err := c.add(card); err != nil {
			return nil, err
		}
		c.stories = append(c.stories, card)
		c.isStory[card.ID] = struct{}{}
	}

	return c, nil
}

func (c *Catalog) add(card Card) error {
	if card.ID == "" {
		return ErrMissingID
	}
	if _, exists := c.byID[card.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, card.ID)
	}
	if card.Choices.Left.Label == "" || card.Choices.Right.Label == "" {
		return fmt.Errorf("%w: %q", ErrMissingLabel, card.ID)
	}
	c.byID[card.ID] = card
	return nil
}

// Card looks up a card in either pool
func (c *Catalog) Card(id string) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Ordinary looks up a card that may live in the deck.
// Story ids are not ordinary and report false.
func (c *Catalog) Ordinary(id string) (Card, bool) {
	if c.IsStory(id) {
		return Card{}, false
	}
	return c.Card(id)
}

// IsStory reports whether id belongs to the story pool
func (c *Catalog) IsStory(id string) bool {
	_, ok := c.isStory[id]
	return ok
}

// Story returns the story card in slot i
func (c *Catalog) Story(i int) (Card, bool) {
	if i < 0 || i >= len(c.stories) {
		return Card{}, false
	}
	return c.stories[i], true
}

// StoryCount is the number of story cards needed for victory
func (c *Catalog) StoryCount() int {
	return len(c.stories)
}

// OrdinaryIDs returns the ids of every ordinary card in catalog order
func (c *Catalog) OrdinaryIDs() []string {
	ids := make([]string, len(c.ordinary))
	for i, card := range c.ordinary {
		ids[i] = card.ID
	}
	return ids
}
