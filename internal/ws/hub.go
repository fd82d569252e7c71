package ws

import (
	"log/slog"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

// Hub tracks the open host connections.
type Hub struct {
	clients *xsync.Map[uint64, *Client]
	seq     atomic.Uint64
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: xsync.NewMap[uint64, *Client](),
		logger:  logger,
	}
}

func (h *Hub) nextID() uint64 {
	return h.seq.Add(1)
}

func (h *Hub) Register(c *Client) {
	h.clients.Store(c.ID, c)
	h.logger.Debug("ws register", "client", c.ID, "clients", h.Count())
}

func (h *Hub) Unregister(c *Client) {
	if _, ok := h.clients.LoadAndDelete(c.ID); !ok {
		return
	}
	h.logger.Debug("ws unregister", "client", c.ID, "clients", h.Count())
}

func (h *Hub) Count() int {
	return h.clients.Size()
}

// CloseAll closes every registered client.
func (h *Hub) CloseAll() {
	h.clients.Range(func(_ uint64, c *Client) bool {
		c.Close()
		return true
	})
}
