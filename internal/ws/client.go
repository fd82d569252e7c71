package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arko-chat/pushbridge/internal/dispatch"
	"github.com/arko-chat/pushbridge/internal/protocol"
	"github.com/arko-chat/pushbridge/internal/relay"
)

var _ relay.Sink = (*Client)(nil)

// Client is one host connection. It doubles as the relay sink when the host
// listens for notifications on it.
type Client struct {
	ID uint64

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	id := hub.nextID()
	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: hub.logger.With("client", id),
		closed: make(chan struct{}),
	}
}

// Push queues data for writing. Frames are dropped when the client is gone
// or its buffer is full.
func (c *Client) Push(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	case <-c.closed:
		return false
	default:
		c.logger.Warn("ws dropped frame")
		return false
	}
}

func (c *Client) Send(event string) {
	c.Push(protocol.EventFrame(event))
}

func (c *Client) SendError(err *protocol.Error) {
	c.Push(protocol.EventErrorFrame(err))
}

// Reply returns the continuation answering the call with the given id.
func (c *Client) Reply(id uint64) dispatch.Reply {
	return func(value string, err *protocol.Error) {
		if err != nil {
			c.Push(protocol.ErrorFrame(id, err))
			return
		}
		c.Push(protocol.ResultFrame(id, value))
	}
}

// Close stops the write pump and closes the connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.closed
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("ws write failed", "err", err)
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			c.conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return
		}
	}
}

// ReadPump reads frames until the connection fails, then unregisters and
// closes the client.
func (c *Client) ReadPump(onFrame FrameHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		kind, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("ws read failed", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		onFrame(c, raw)
	}
}
