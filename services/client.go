package services

import (
	"encoding/json"
	"sync"

	"github.com/GenanawMekete/final-bingo/game"
	"github.com/GenanawMekete/final-bingo/utils/logger"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection. It implements game.Conn so a
// room can route outbound events to it; all session state lives in
// the game package, the client only carries its ambient
// connection->room/player binding.
type Client struct {
	conn    *websocket.Conn
	send    chan []byte
	once    sync.Once
	gateway *Gateway

	mu     sync.Mutex
	closed bool

	// Set on the session loop by create/join handlers, read on the
	// session loop by every other handler.
	playerID    string
	displayName string
	roomID      string
}

func newClient(conn *websocket.Conn, gateway *Gateway, playerID, displayName string) *Client {
	return &Client{
		conn:        conn,
		send:        make(chan []byte, 32),
		gateway:     gateway,
		playerID:    playerID,
		displayName: displayName,
	}
}

// Send marshals an event onto the write pump. Non-blocking: a slow
// consumer drops messages rather than stalling the session loop.
func (c *Client) Send(ev game.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("[Client %s] failed to marshal %s event: %v", c.playerID, ev.Type, err)
		return
	}
	// Session tasks queued before a disconnect may still try to reach
	// this client after Close; they must not hit a closed channel.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		logger.Warnf("[Client %s] dropping %s event", c.playerID, ev.Type)
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) readPump() {
	defer func() {
		c.gateway.Disconnected(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Infof("[Client %s] disconnected normally", c.playerID)
			} else {
				logger.Infof("[Client %s] read error: %v", c.playerID, err)
			}
			return
		}

		ev, err := game.DecodeInbound(message)
		if err != nil {
			c.Send(game.ErrorEvent(err))
			continue
		}
		c.gateway.Dispatch(c, ev)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Infof("[Client %s] write error: %v", c.playerID, err)
			return
		}
	}
}
