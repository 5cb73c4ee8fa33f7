package server

import (
	"context"
	"log"

	"github.com/minaorangina/shift/engine"
	"github.com/minaorangina/shift/protocol"
)

type envelope struct {
	to  *WSPlayer
	msg protocol.OutboundMessage
}

// Hub fans session updates out to every connected websocket player
type Hub struct {
	session *engine.Session
	logger  *log.Logger

	registerCh   chan *WSPlayer
	unregisterCh chan *WSPlayer
	broadcastCh  chan protocol.OutboundMessage
	directCh     chan envelope
	done         chan struct{}

	players map[string]*WSPlayer
}

func NewHub(session *engine.Session, logger *log.Logger) *Hub {
	return &Hub{
		session:      session,
		logger:       logger,
		registerCh:   make(chan *WSPlayer),
		unregisterCh: make(chan *WSPlayer),
		broadcastCh:  make(chan protocol.OutboundMessage),
		directCh:     make(chan envelope),
		done:         make(chan struct{}),
		players:      map[string]*WSPlayer{},
	}
}

// Listen runs the hub until ctx is cancelled
func (h *Hub) Listen(ctx context.Context) {
	defer func() {
		close(h.done)
		for id, p := range h.players {
			close(p.send)
			delete(h.players, id)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case joiner := <-h.registerCh:
			h.players[joiner.ID()] = joiner
			h.logger.Printf("server: player %s connected (%d online)", joiner.ID(), len(h.players))
			view := h.session.View()
			h.deliver(joiner, protocol.OutboundMessage{Command: protocol.Update, View: &view})

		case leaver := <-h.unregisterCh:
			if _, ok := h.players[leaver.ID()]; ok {
				delete(h.players, leaver.ID())
				close(leaver.send)
				h.logger.Printf("server: player %s left (%d online)", leaver.ID(), len(h.players))
			}

		case msg := <-h.broadcastCh:
			for _, p := range h.players {
				h.deliver(p, msg)
			}

		case e := <-h.directCh:
			if _, ok := h.players[e.to.ID()]; ok {
				h.deliver(e.to, e.msg)
			}
		}
	}
}

// deliver must only be called from Listen, which owns the send channels
func (h *Hub) deliver(p *WSPlayer, msg protocol.OutboundMessage) {
	if !p.Send(msg) {
		delete(h.players, p.ID())
		close(p.send)
		h.logger.Printf("server: dropped slow player %s", p.ID())
	}
}

func (h *Hub) Register(p *WSPlayer) bool {
	select {
	case h.registerCh <- p:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(p *WSPlayer) {
	select {
	case h.unregisterCh <- p:
	case <-h.done:
	}
}

// Broadcast sends msg to every connected player
func (h *Hub) Broadcast(msg protocol.OutboundMessage) {
	select {
	case h.broadcastCh <- msg:
	case <-h.done:
	}
}

// SendTo sends msg to one player
func (h *Hub) SendTo(p *WSPlayer, msg protocol.OutboundMessage) {
	select {
	case h.directCh <- envelope{to: p, msg: msg}:
	case <-h.done:
	}
}

// BroadcastView sends the current view to every connected player
func (h *Hub) BroadcastView() {
	view := h.session.View()
	h.Broadcast(protocol.OutboundMessage{Command: protocol.Update, View: &view})
}

// Handle applies a player's command. Errors and syncs go back to the sender;
// state changes go to everyone.
func (h *Hub) Handle(ctx context.Context, from *WSPlayer, msg protocol.InboundMessage) {
	reply := h.session.Handle(ctx, msg)
	if reply.Command == protocol.Error || msg.Command == protocol.Sync {
		h.SendTo(from, reply)
		return
	}
	h.Broadcast(reply)
}
