package engine

import (
	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/game"
	"github.com/minaorangina/shift/protocol"
)

var phaseModes = map[game.Phase]protocol.Mode{
	game.Playing:    protocol.Playing,
	game.Paused:     protocol.Paused,
	game.Defeated:   protocol.Defeated,
	game.Victorious: protocol.Victorious,
}

// View is a snapshot of what the player should see
func (s *Session) View() protocol.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := protocol.View{
		Mode:      protocol.Loading,
		Resources: resourceViews(game.NewLedger()),
		Status:    s.status,
		Busy:      s.busy.Load(),
	}

	switch {
	case s.loadErr != nil:
		view.Mode = protocol.Unavailable
		return view
	case s.game == nil:
		return view
	}

	st := s.game.State()
	cat := s.game.Catalog()

	view.Mode = phaseModes[s.game.Phase()]
	view.Resources = resourceViews(st.Resources)
	view.Day = st.Day
	view.CardsPlayed = st.CardsPlayed
	view.StoryIndex = st.StoryIndex
	view.StoryCount = cat.StoryCount()
	if st.GameOver && !st.Victory {
		view.DefeatReason = st.DefeatReason.Label()
	}

	if card, ok := s.game.Current(); ok {
		view.Card = cardView(cat, card)
	}
	if card, ok := s.game.Preview(); ok {
		view.Preview = cardView(cat, card)
	}

	return view
}

func cardView(cat *catalog.Catalog, card catalog.Card) *protocol.CardView {
	return &protocol.CardView{
		ID:    card.ID,
		Title: card.Title,
		Text:  card.Text,
		Image: card.Image,
		Story: cat.IsStory(card.ID),
		Left:  card.Choices.Left.Label,
		Right: card.Choices.Right.Label,
	}
}

func resourceViews(ledger game.Ledger) []protocol.ResourceView {
	views := make([]protocol.ResourceView, 0, len(game.Resources))
	for _, r := range game.Resources {
		value := ledger[r]
		views = append(views, protocol.ResourceView{
			Key:     string(r),
			Label:   r.Label(),
			Value:   value,
			Percent: value * 100 / game.MaxResource,
		})
	}
	return views
}
