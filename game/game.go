package game

import (
	"errors"
	"sync/atomic"

	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/deck"
)

var (
	ErrNilCatalog     = errors.New("game has no catalog")
	ErrGameOver       = errors.New("game is already over")
	ErrNoCurrentCard  = errors.New("no card is showing")
	ErrUnknownSide    = errors.New("unknown choice side")
	ErrTurnInProgress = errors.New("a turn is already being resolved")
	ErrNotPaused      = errors.New("game is not paused")
)

// Saver persists a snapshot of the state. Saving is best-effort.
type Saver interface {
	Save(*State)
}

// GameOpts configures a Game. A nil State starts a fresh run.
type GameOpts struct {
	Catalog *catalog.Catalog
	State   *State
	RNG     deck.RNG
	Saver   Saver
}

// Outcome describes one resolved turn
type Outcome struct {
	Card    catalog.Card
	Side    catalog.Side
	Applied map[Resource]int
	Phase   Phase
}

// Game is the turn state machine. It is the only writer of its State.
// Game is not safe for concurrent use; overlapping Choose calls are
// rejected with ErrTurnInProgress.
type Game struct {
	catalog   *catalog.Catalog
	state     *State
	rng       deck.RNG
	saver     Saver
	resolving atomic.Bool
}

// New restores or starts a run and makes sure a card is showing if one can be
func New(opts GameOpts) (*Game, error) {
	if opts.Catalog == nil {
		return nil, ErrNilCatalog
	}
	if opts.RNG == nil {
		opts.RNG = deck.NewRNG(0)
	}

	g := &Game{
		catalog: opts.Catalog,
		state:   opts.State,
		rng:     opts.RNG,
		saver:   opts.Saver,
	}

	if g.state == nil {
		g.state = NewState(g.catalog.OrdinaryIDs(), g.rng)
	}
	g.state.fill()

	if _, ok := g.catalog.Card(g.state.CurrentCardID); !ok {
		g.state.CurrentCardID = ""
	}
	if !g.state.GameOver && g.state.CurrentCardID == "" {
		g.selectNext()
	}
	g.save()

	return g, nil
}

// Phase derives the lifecycle phase from the state
func (g *Game) Phase() Phase {
	switch {
	case g.state.GameOver && g.state.Victory:
		return Victorious
	case g.state.GameOver:
		return Defeated
	case g.state.CurrentCardID == "":
		return Paused
	}
	return Playing
}

// Current returns the card waiting for a choice
func (g *Game) Current() (catalog.Card, bool) {
	if g.state.GameOver {
		return catalog.Card{}, false
	}
	return g.catalog.Card(g.state.CurrentCardID)
}

// State returns a copy of the state
func (g *Game) State() *State {
	return g.state.Clone()
}

// Catalog returns the catalog the game draws from
func (g *Game) Catalog() *catalog.Catalog {
	return g.catalog
}

// Choose resolves the current card with the choice on side:
// effects, flags and deck changes are applied, the counters advance,
// victory is checked before defeat, and the next card is selected.
func (g *Game) Choose(side catalog.Side) (Outcome, error) {
	if !g.resolving.CompareAndSwap(false, true) {
		return Outcome{}, ErrTurnInProgress
	}
	defer g.resolving.Store(false)

	st := g.state
	if st.GameOver {
		return Outcome{}, ErrGameOver
	}
	card, ok := g.catalog.Card(st.CurrentCardID)
	if !ok {
		return Outcome{}, ErrNoCurrentCard
	}
	choice, ok := card.Choice(side)
	if !ok {
		return Outcome{}, ErrUnknownSide
	}

	applied := st.Resources.ApplyEffects(choice.Effects)
	for flag, value := range choice.FlagsSet {
		st.Flags[flag] = value
	}
	st.Deck.Add(choice.Adds...)
	st.Deck.Remove(choice.Removes...)

	st.CardsPlayed++
	st.Day++
	st.CurrentCardID = ""

	storyCount := g.catalog.StoryCount()
	isStory := g.catalog.IsStory(card.ID)
	if isStory && st.StoryIndex < storyCount {
		st.StoryIndex++
	}

	if isStory && st.StoryIndex >= storyCount {
		st.GameOver = true
		st.Victory = true
	} else if depleted, ok := st.Resources.Depleted(); ok {
		st.GameOver = true
		st.DefeatReason = depleted
	} else {
		g.selectNext()
	}

	g.save()

	return Outcome{
		Card:    card,
		Side:    side,
		Applied: applied,
		Phase:   g.Phase(),
	}, nil
}

// Retry lets a day pass while paused and looks for a card again
func (g *Game) Retry() (Phase, error) {
	if g.state.GameOver {
		return g.Phase(), ErrGameOver
	}
	if g.Phase() != Paused {
		return g.Phase(), ErrNotPaused
	}

	g.state.Day++
	g.selectNext()
	g.save()

	return g.Phase(), nil
}

// Reset throws the run away and starts a fresh one
func (g *Game) Reset() Phase {
	g.state = NewState(g.catalog.OrdinaryIDs(), g.rng)
	g.selectNext()
	g.save()
	return g.Phase()
}

// Preview looks ahead to the card after the current one without
// changing anything. Flags and deck changes from the pending choice are
// not known yet, and an empty deck means a reshuffle is pending, so the
// preview is a best guess and may be missing.
func (g *Game) Preview() (catalog.Card, bool) {
	st := g.state
	if st.GameOver {
		return catalog.Card{}, false
	}

	// a turn and a retry both advance the day before drawing
	position := st.CardsPlayed + 1
	day := st.Day + 1
	storyIndex := st.StoryIndex
	if st.CurrentCardID != "" {
		position++
		if g.catalog.IsStory(st.CurrentCardID) {
			storyIndex++
			if storyIndex >= g.catalog.StoryCount() {
				return catalog.Card{}, false
			}
		}
	}

	if slot, ok := DueStory(position, storyIndex, g.catalog.StoryCount()); ok {
		return g.catalog.Story(slot)
	}

	id, ok := st.Deck.Peek(g.judge(day, st.Flags))
	if !ok {
		return catalog.Card{}, false
	}
	return g.catalog.Card(id)
}

// selectNext serves a due story card, otherwise draws from the deck.
// Leaves CurrentCardID empty when nothing is eligible.
func (g *Game) selectNext() {
	st := g.state
	position := st.CardsPlayed + 1

	if slot, ok := DueStory(position, st.StoryIndex, g.catalog.StoryCount()); ok {
		card, _ := g.catalog.Story(slot)
		st.CurrentCardID = card.ID
		return
	}

	all := g.catalog.OrdinaryIDs()
	st.Deck.EnsureNonEmpty(all, g.rng)
	id, ok := st.Deck.Draw(g.judge(st.Day, st.Flags))
	if !ok && len(st.Deck) == 0 {
		// every id was stale
		st.Deck.EnsureNonEmpty(all, g.rng)
		id, _ = st.Deck.Draw(g.judge(st.Day, st.Flags))
	}
	st.CurrentCardID = id
}

func (g *Game) judge(day int, flags Flags) func(string) deck.Verdict {
	return func(id string) deck.Verdict {
		card, ok := g.catalog.Ordinary(id)
		if !ok {
			return deck.Unknown
		}
		if !IsEligible(card, day, flags) {
			return deck.Ineligible
		}
		return deck.Eligible
	}
}

func (g *Game) save() {
	if g.saver == nil {
		return
	}
	g.saver.Save(g.state.Clone())
}
