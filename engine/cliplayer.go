package engine

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/minaorangina/shift/catalog"
	"github.com/minaorangina/shift/protocol"
)

type conn struct {
	In  io.Reader
	Out io.Writer
}

// CLIPlayer plays a session in a terminal
type CLIPlayer struct {
	session *Session
	Conn    *conn
}

func NewCLIPlayer(session *Session, in io.Reader, out io.Writer) *CLIPlayer {
	return &CLIPlayer{
		session: session,
		Conn:    &conn{In: in, Out: out},
	}
}

// CLITransition prints the chosen label and holds it on screen until ctx is done
func CLITransition(out io.Writer) Transition {
	return func(ctx context.Context, card catalog.Card, side catalog.Side) {
		choice, _ := card.Choice(side)
		SendText(out, "\n→ %s", choice.Label)

		ticker := time.NewTicker(150 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				SendText(out, "\n")
				return
			case <-ticker.C:
				SendText(out, ".")
			}
		}
	}
}

// Play runs until the player quits, input ends or ctx is cancelled
func (p *CLIPlayer) Play(ctx context.Context) error {
	SendText(p.Conn.Out, welcomeText)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(p.Conn.In)
		for scanner.Scan() {
			select {
			case lines <- strings.ToLower(strings.TrimSpace(scanner.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		view := p.session.View()
		if view.Mode == protocol.Unavailable || view.Mode == protocol.Loading {
			SendText(p.Conn.Out, unavailableText)
			return ErrLoading
		}
		p.show(view)

		var input string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				SendText(p.Conn.Out, goodbyeText)
				return nil
			}
			input = line
		}

		if input == "q" || input == "quit" {
			SendText(p.Conn.Out, goodbyeText)
			return nil
		}

		msg, ok := parseInput(view.Mode, input)
		if !ok {
			SendText(p.Conn.Out, retryInputText)
			continue
		}

		reply := p.session.Handle(ctx, msg)
		if reply.Command == protocol.Error {
			SendText(p.Conn.Out, "%s\n", reply.Error)
		}
	}
}

func (p *CLIPlayer) show(view protocol.View) {
	switch view.Mode {
	case protocol.Playing:
		SendText(p.Conn.Out, "%s", buildCardText(view))
		SendText(p.Conn.Out, playPromptText, view.Card.Left, view.Card.Right)
	case protocol.Paused:
		SendText(p.Conn.Out, "%s", buildCardText(view))
		SendText(p.Conn.Out, pausePromptText)
	default:
		SendText(p.Conn.Out, "%s", buildOverText(view))
		SendText(p.Conn.Out, overPromptText)
	}
}

func parseInput(mode protocol.Mode, input string) (protocol.InboundMessage, bool) {
	switch {
	case mode == protocol.Playing && (input == "l" || input == "left"):
		return protocol.InboundMessage{Command: protocol.Choose, Side: string(catalog.Left)}, true
	case mode == protocol.Playing && (input == "r" || input == "right"):
		return protocol.InboundMessage{Command: protocol.Choose, Side: string(catalog.Right)}, true
	case mode == protocol.Paused && (input == "w" || input == "wait"):
		return protocol.InboundMessage{Command: protocol.Retry}, true
	case input == "n" || input == "new":
		return protocol.InboundMessage{Command: protocol.Reset}, true
	}
	return protocol.InboundMessage{}, false
}
