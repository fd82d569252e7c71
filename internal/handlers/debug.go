package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/arko-chat/pushbridge/internal/models"
)

const maxDebugBody = 64 << 10

type debugRequest struct {
	Payload json.RawMessage `json:"payload"`
}

func (h *Handler) decodeDebugPayload(w http.ResponseWriter, r *http.Request) (models.Payload, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDebugBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "body too large"})
		return models.Payload{}, false
	}

	var req debugRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json"})
		return models.Payload{}, false
	}
	if len(req.Payload) == 0 {
		return models.NewPayload(), true
	}

	p, err := models.ParsePayload(req.Payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return models.Payload{}, false
	}
	return p, true
}

// HandleDebugNotification injects a notification as if the push SDK had
// received it.
func (h *Handler) HandleDebugNotification(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeDebugPayload(w, r)
	if !ok {
		return
	}
	if err := h.sim.Deliver(p); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.logger.Debug("debug notification injected", "fields", p.Len())
	w.WriteHeader(http.StatusAccepted)
}

// HandleDebugClick injects a notification tap.
func (h *Handler) HandleDebugClick(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeDebugPayload(w, r)
	if !ok {
		return
	}
	if err := h.sim.Click(p); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.logger.Debug("debug click injected", "fields", p.Len())
	w.WriteHeader(http.StatusAccepted)
}

type topicsResponse struct {
	Topics []string `json:"topics"`
}

func (h *Handler) HandleDebugTopics(w http.ResponseWriter, r *http.Request) {
	topics := h.sim.Topics()
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, topicsResponse{Topics: topics})
}
