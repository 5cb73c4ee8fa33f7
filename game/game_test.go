package game

import (
	"testing"

	"github.com/minaorangina/shift/catalog"
	utils "github.com/minaorangina/shift/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spySaver struct {
	saved  []*State
	onSave func(*State)
}

func (s *spySaver) Save(st *State) {
	s.saved = append(s.saved, st)
	if s.onSave != nil {
		s.onSave(st)
	}
}

func (s *spySaver) last() *State {
	return s.saved[len(s.saved)-1]
}

func newTestGame(t *testing.T, ordinary, stories []catalog.Card) (*Game, *spySaver) {
	t.Helper()

	saver := &spySaver{}
	g, err := New(GameOpts{
		Catalog: utils.NewCatalog(t, ordinary, stories),
		RNG:     utils.OrderedRNG{},
		Saver:   saver,
	})
	require.NoError(t, err)
	return g, saver
}

func playLeft(t *testing.T, g *Game, turns int) {
	t.Helper()
	for i := 0; i < turns; i++ {
		_, err := g.Choose(catalog.Left)
		require.NoError(t, err, "turn %d", i+1)
	}
}

func TestNewGame(t *testing.T) {
	t.Run("fresh game shows the first card", func(t *testing.T) {
		g, saver := newTestGame(t, utils.PlainCards("c", 3), nil)

		st := g.State()
		utils.AssertEqual(t, st.Day, 1)
		utils.AssertEqual(t, st.CardsPlayed, 0)
		utils.AssertEqual(t, st.StoryIndex, 0)
		utils.AssertDeepEqual(t, st.Resources, NewLedger())
		utils.AssertEqual(t, st.CurrentCardID, "c-1")
		utils.AssertEqual(t, g.Phase(), Playing)
		utils.AssertEqual(t, len(saver.saved), 1)
	})

	t.Run("requires a catalog", func(t *testing.T) {
		_, err := New(GameOpts{})
		assert.ErrorIs(t, err, ErrNilCatalog)
	})

	t.Run("drops a current card the catalog no longer has", func(t *testing.T) {
		c := utils.NewCatalog(t, utils.PlainCards("c", 2), nil)
		st := NewState(c.OrdinaryIDs(), utils.OrderedRNG{})
		st.CurrentCardID = "retired"

		g, err := New(GameOpts{Catalog: c, State: st, RNG: utils.OrderedRNG{}})
		require.NoError(t, err)

		current, ok := g.Current()
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, current.ID, "c-1")
	})

	t.Run("keeps a restored current card", func(t *testing.T) {
		c := utils.NewCatalog(t, utils.PlainCards("c", 3), nil)
		st := NewState(c.OrdinaryIDs(), utils.OrderedRNG{})
		st.CurrentCardID = "c-3"
		st.Deck.Remove("c-3")

		g, err := New(GameOpts{Catalog: c, State: st})
		require.NoError(t, err)

		current, _ := g.Current()
		utils.AssertEqual(t, current.ID, "c-3")
	})

	t.Run("does not draw for a finished run", func(t *testing.T) {
		c := utils.NewCatalog(t, utils.PlainCards("c", 3), nil)
		st := NewState(c.OrdinaryIDs(), utils.OrderedRNG{})
		st.GameOver = true
		st.DefeatReason = Order

		g, err := New(GameOpts{Catalog: c, State: st})
		require.NoError(t, err)

		utils.AssertEqual(t, g.Phase(), Defeated)
		utils.AssertEqual(t, g.State().CurrentCardID, "")
		utils.AssertEqual(t, len(g.State().Deck), 3)
	})
}

func TestGameChoose(t *testing.T) {
	t.Run("applies effects, flags and deck changes", func(t *testing.T) {
		cards := utils.PlainCards("c", 3)
		cards[0].Choices.Right = catalog.Choice{
			Label:    "right",
			Effects:  map[string]int{"revenue": 2, "energy": -1},
			FlagsSet: map[string]bool{"opened": true},
			Adds:     []string{"c-1"},
			Removes:  []string{"c-2"},
		}
		g, saver := newTestGame(t, cards, nil)

		outcome, err := g.Choose(catalog.Right)
		require.NoError(t, err)

		st := g.State()
		utils.AssertEqual(t, st.Resources[Revenue], 7)
		utils.AssertEqual(t, st.Resources[Energy], 4)
		utils.AssertDeepEqual(t, st.Flags, Flags{"opened": true})
		utils.AssertEqual(t, st.Day, 2)
		utils.AssertEqual(t, st.CardsPlayed, 1)
		utils.AssertEqual(t, outcome.Card.ID, "c-1")
		utils.AssertEqual(t, outcome.Phase, Playing)
		utils.AssertDeepEqual(t, outcome.Applied, map[Resource]int{Revenue: 2, Energy: -1})

		// c-2 was removed, so c-3 is next and c-1 waits behind it
		utils.AssertEqual(t, st.CurrentCardID, "c-3")
		assert.Equal(t, []string{"c-1"}, []string(st.Deck))

		utils.AssertEqual(t, len(saver.saved), 2)
		utils.AssertDeepEqual(t, saver.last(), st)
	})

	t.Run("depleting a resource ends the run", func(t *testing.T) {
		cards := utils.PlainCards("c", 3)
		cards[0].Choices.Left.Effects = map[string]int{"service": -5}
		g, saver := newTestGame(t, cards, nil)

		outcome, err := g.Choose(catalog.Left)
		require.NoError(t, err)

		st := g.State()
		utils.AssertEqual(t, st.Resources[Service], 0)
		utils.AssertTrue(t, st.GameOver)
		utils.AssertEqual(t, st.DefeatReason, Service)
		utils.AssertFalse(t, st.Victory)
		utils.AssertEqual(t, outcome.Phase, Defeated)
		utils.AssertTrue(t, saver.last().GameOver)

		_, err = g.Choose(catalog.Left)
		assert.ErrorIs(t, err, ErrGameOver)
		_, ok := g.Current()
		utils.AssertFalse(t, ok)
	})

	t.Run("rejects an unknown side", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 2), nil)
		_, err := g.Choose(catalog.Side("up"))
		assert.ErrorIs(t, err, ErrUnknownSide)
		utils.AssertEqual(t, g.State().CardsPlayed, 0)
	})

	t.Run("rejects a choice made while another is resolving", func(t *testing.T) {
		g, saver := newTestGame(t, utils.PlainCards("c", 3), nil)

		var nested error
		saver.onSave = func(*State) {
			saver.onSave = nil
			_, nested = g.Choose(catalog.Left)
		}

		_, err := g.Choose(catalog.Left)
		require.NoError(t, err)
		assert.ErrorIs(t, nested, ErrTurnInProgress)
		utils.AssertEqual(t, g.State().CardsPlayed, 1)
	})

	t.Run("replenishes the deck when it runs out", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 2), nil)
		playLeft(t, g, 2)

		utils.AssertEqual(t, g.State().CurrentCardID, "c-1")
		utils.AssertEqual(t, g.Phase(), Playing)
	})
}

func TestGameStory(t *testing.T) {
	t.Run("story cards arrive every fifth card", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 3), utils.PlainCards("s", 3))

		playLeft(t, g, 4)
		current, _ := g.Current()
		utils.AssertEqual(t, current.ID, "s-1")

		playLeft(t, g, 1)
		st := g.State()
		utils.AssertEqual(t, st.StoryIndex, 1)
		utils.AssertTrue(t, st.CurrentCardID != "s-2")

		playLeft(t, g, 4)
		current, _ = g.Current()
		utils.AssertEqual(t, current.ID, "s-2")
	})

	t.Run("story cards are never put in the deck", func(t *testing.T) {
		cards := utils.PlainCards("c", 2)
		cards[0].Choices.Left.Adds = []string{"s-1"}
		g, _ := newTestGame(t, cards, utils.PlainCards("s", 1))

		playLeft(t, g, 1)
		for i := 0; i < 2; i++ {
			assert.NotEqual(t, "s-1", g.State().CurrentCardID)
			playLeft(t, g, 1)
		}
	})

	t.Run("playing the last story card wins even when a resource runs out", func(t *testing.T) {
		stories := utils.PlainCards("s", 2)
		stories[1].Choices.Right.Effects = map[string]int{"service": -5}
		g, _ := newTestGame(t, utils.PlainCards("c", 3), stories)

		playLeft(t, g, 9)
		current, _ := g.Current()
		require.Equal(t, "s-2", current.ID)

		outcome, err := g.Choose(catalog.Right)
		require.NoError(t, err)

		st := g.State()
		utils.AssertEqual(t, st.Resources[Service], 0)
		utils.AssertEqual(t, st.StoryIndex, 2)
		utils.AssertTrue(t, st.Victory)
		utils.AssertTrue(t, st.GameOver)
		utils.AssertEqual(t, st.DefeatReason, Resource(""))
		utils.AssertEqual(t, outcome.Phase, Victorious)
	})
}

func TestGamePause(t *testing.T) {
	late := utils.PlainCard("late")
	late.Conditions = &catalog.Conditions{DayMin: 3}
	gated := utils.PlainCard("gated")
	gated.Conditions = &catalog.Conditions{RequiresFlags: map[string]bool{"key": true}}

	t.Run("no eligible card pauses instead of ending the run", func(t *testing.T) {
		g, _ := newTestGame(t, []catalog.Card{late, gated}, nil)

		utils.AssertEqual(t, g.Phase(), Paused)
		utils.AssertFalse(t, g.State().GameOver)
		utils.AssertEqual(t, len(g.State().Deck), 2)

		_, err := g.Choose(catalog.Left)
		assert.ErrorIs(t, err, ErrNoCurrentCard)
	})

	t.Run("waiting lets days pass until a card is eligible", func(t *testing.T) {
		g, _ := newTestGame(t, []catalog.Card{late, gated}, nil)

		phase, err := g.Retry()
		require.NoError(t, err)
		utils.AssertEqual(t, phase, Paused)
		utils.AssertEqual(t, g.State().Day, 2)

		phase, err = g.Retry()
		require.NoError(t, err)
		utils.AssertEqual(t, phase, Playing)

		current, _ := g.Current()
		utils.AssertEqual(t, current.ID, "late")
	})

	t.Run("retry is only for a paused game", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 2), nil)
		_, err := g.Retry()
		assert.ErrorIs(t, err, ErrNotPaused)
	})
}

func TestGameReset(t *testing.T) {
	cards := utils.PlainCards("c", 3)
	cards[0].Choices.Left = catalog.Choice{
		Label:    "left",
		Effects:  map[string]int{"order": -5},
		FlagsSet: map[string]bool{"x": true},
	}
	g, saver := newTestGame(t, cards, utils.PlainCards("s", 1))

	_, err := g.Choose(catalog.Left)
	require.NoError(t, err)
	require.Equal(t, Defeated, g.Phase())

	saves := len(saver.saved)
	phase := g.Reset()

	st := g.State()
	utils.AssertEqual(t, phase, Playing)
	utils.AssertEqual(t, st.Day, 1)
	utils.AssertEqual(t, st.CardsPlayed, 0)
	utils.AssertEqual(t, st.StoryIndex, 0)
	utils.AssertFalse(t, st.GameOver)
	utils.AssertEqual(t, st.DefeatReason, Resource(""))
	utils.AssertDeepEqual(t, st.Flags, Flags{})
	utils.AssertDeepEqual(t, st.Resources, NewLedger())
	utils.AssertEqual(t, st.CurrentCardID, "c-1")
	utils.AssertEqual(t, len(saver.saved), saves+1)
}

func TestGamePreview(t *testing.T) {
	t.Run("shows the card that will be drawn next", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 3), nil)
		before := g.State()

		preview, ok := g.Preview()
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, preview.ID, "c-2")
		utils.AssertDeepEqual(t, g.State(), before)

		playLeft(t, g, 1)
		utils.AssertEqual(t, g.State().CurrentCardID, preview.ID)
	})

	t.Run("shows the story card when one is due next", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 5), utils.PlainCards("s", 2))
		playLeft(t, g, 3)

		preview, ok := g.Preview()
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, preview.ID, "s-1")

		playLeft(t, g, 1)
		utils.AssertEqual(t, g.State().CurrentCardID, "s-1")

		preview, ok = g.Preview()
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, preview.ID, "c-5")
	})

	t.Run("uses the day the next card will be drawn on", func(t *testing.T) {
		tomorrow := utils.PlainCard("tomorrow")
		tomorrow.Conditions = &catalog.Conditions{DayMin: 2}
		g, _ := newTestGame(t, []catalog.Card{utils.PlainCard("today"), tomorrow}, nil)

		preview, ok := g.Preview()
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, preview.ID, "tomorrow")
	})

	t.Run("while paused shows the card the next day brings", func(t *testing.T) {
		late := utils.PlainCard("late")
		late.Conditions = &catalog.Conditions{DayMin: 2}
		g, _ := newTestGame(t, []catalog.Card{late}, nil)
		require.Equal(t, Paused, g.Phase())

		preview, ok := g.Preview()
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, preview.ID, "late")

		_, err := g.Retry()
		require.NoError(t, err)
		utils.AssertEqual(t, g.State().CurrentCardID, preview.ID)
	})

	t.Run("nothing after the final story card", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 5), utils.PlainCards("s", 1))
		playLeft(t, g, 4)
		require.Equal(t, "s-1", g.State().CurrentCardID)

		_, ok := g.Preview()
		utils.AssertFalse(t, ok)
	})

	t.Run("nothing when the deck needs a reshuffle", func(t *testing.T) {
		g, _ := newTestGame(t, utils.PlainCards("c", 1), nil)
		_, ok := g.Preview()
		utils.AssertFalse(t, ok)
	})
}
