package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/arko-chat/pushbridge/internal/mainloop"
	"github.com/arko-chat/pushbridge/internal/models"
	"github.com/arko-chat/pushbridge/internal/service"
	"github.com/arko-chat/pushbridge/internal/ws"
)

// Simulator is the debug surface of a simulated push SDK.
type Simulator interface {
	Deliver(p models.Payload) error
	Click(p models.Payload) error
	Topics() []string
}

type Handler struct {
	svc    *service.BridgeService
	hub    *ws.Hub
	sim    Simulator
	logger *slog.Logger
}

// New builds the HTTP handlers. sim may be nil, which disables the debug
// routes.
func New(svc *service.BridgeService, hub *ws.Hub, sim Simulator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, hub: hub, sim: sim, logger: logger}
}

func (h *Handler) HasSimulator() bool {
	return h.sim != nil
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, mainloop.ErrStopped) {
		h.logger.Warn("bridge stopped", "path", r.URL.Path)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "bridge stopped"})
		return
	}
	h.logger.Error("handler error", "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
