package server

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/minaorangina/shift/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// WSPlayer is one browser tab connected over a websocket
type WSPlayer struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	logger *log.Logger
}

func NewWSPlayer(id string, ws *websocket.Conn, hub *Hub, logger *log.Logger) *WSPlayer {
	return &WSPlayer{
		id:     id,
		conn:   ws,
		send:   make(chan []byte, 16),
		hub:    hub,
		logger: logger,
	}
}

func (p *WSPlayer) ID() string {
	return p.id
}

// Send queues msg for the write pump and reports false when the queue is full.
// Only the hub calls Send.
func (p *WSPlayer) Send(msg protocol.OutboundMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Printf("server: could not encode %s for %s: %v", msg.Command, p.id, err)
		return true
	}
	select {
	case p.send <- data:
		return true
	default:
		return false
	}
}

// readPump feeds inbound messages to the hub until the connection closes
func (p *WSPlayer) readPump() {
	defer func() {
		p.hub.Unregister(p)
		p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Printf("server: player %s: %v", p.id, err)
			}
			return
		}

		var msg protocol.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			p.hub.SendTo(p, protocol.OutboundMessage{Command: protocol.Error, Error: err.Error()})
			continue
		}
		p.hub.Handle(context.Background(), p, msg)
	}
}

func (p *WSPlayer) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
