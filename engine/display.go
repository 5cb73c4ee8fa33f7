package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/minaorangina/shift/protocol"
)

const (
	welcomeText     = "Welcome to the café. Keep it running.\n"
	unavailableText = "\nThe cards could not be loaded. Please try again later.\n"
	playPromptText  = "\n[l] %s   [r] %s   [n] new run   [q] quit\n> "
	pausePromptText = "\n[w] wait a day   [n] new run   [q] quit\n> "
	overPromptText  = "\n[n] new run   [q] quit\n> "
	retryInputText  = "Sorry, I didn't get that.\n"
	defeatText      = "\nThe café closes. You ran out of %s after %d cards.\n"
	victoryText     = "\nThe café made it through the year after %d cards.\n"
	goodbyeText     = "\nSee you tomorrow.\n"
	gaugeWidth      = 10
)

func SendText(w io.Writer, text string, a ...interface{}) {
	fmt.Fprintf(w, text, a...)
}

func buildResourcesText(resources []protocol.ResourceView) string {
	var b strings.Builder
	for _, r := range resources {
		filled := r.Percent * gaugeWidth / 100
		fmt.Fprintf(&b, "%-8s [%s%s] %d\n", r.Label, strings.Repeat("#", filled), strings.Repeat(".", gaugeWidth-filled), r.Value)
	}
	return b.String()
}

func buildCardText(view protocol.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nDay %d  ·  cards played %d  ·  chapter %d/%d\n", view.Day, view.CardsPlayed, view.StoryIndex, view.StoryCount)
	b.WriteString(buildResourcesText(view.Resources))

	if view.Status != "" {
		b.WriteString("\n" + view.Status + "\n")
	}

	if card := view.Card; card != nil {
		title := card.Title
		if card.Story {
			title = "★ " + title
		}
		fmt.Fprintf(&b, "\n%s\n%s\n", title, card.Text)
	}
	if preview := view.Preview; preview != nil {
		fmt.Fprintf(&b, "\n(next up: %s)\n", preview.Title)
	}
	return b.String()
}

func buildOverText(view protocol.View) string {
	if view.Mode == protocol.Victorious {
		return fmt.Sprintf(victoryText, view.CardsPlayed)
	}
	return fmt.Sprintf(defeatText, strings.ToLower(view.DefeatReason), view.CardsPlayed)
}
