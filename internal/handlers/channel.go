package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/arko-chat/pushbridge/internal/protocol"
	"github.com/arko-chat/pushbridge/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleChannel upgrades to the host channel websocket.
func (h *Handler) HandleChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register(client)
	go client.WritePump()

	defer h.svc.Cancel(client)
	client.ReadPump(h.handleFrame)
}

func (h *Handler) handleFrame(c *ws.Client, raw []byte) {
	frame, err := protocol.DecodeFrame(raw)
	if err != nil {
		h.logger.Debug("ws malformed frame", "client", c.ID, "err", err)
		return
	}

	var ok bool
	switch frame.Type {
	case protocol.FrameCall:
		if frame.Method == "" {
			h.logger.Debug("ws call without method", "client", c.ID)
			return
		}
		ok = h.svc.Call(frame.Call(), c.Reply(frame.ID))
	case protocol.FrameListen:
		h.logger.Info("host listening for notifications", "client", c.ID)
		ok = h.svc.Listen(c)
	case protocol.FrameCancel:
		h.logger.Info("host cancelled notification listener", "client", c.ID)
		ok = h.svc.Cancel(c)
	default:
		h.logger.Debug("ws unknown frame type", "client", c.ID, "type", frame.Type)
		return
	}

	if !ok {
		h.logger.Warn("ws frame rejected: bridge stopped", "client", c.ID, "type", frame.Type)
		c.Close()
	}
}
