package handlers

import (
	"net/http"
)

type healthResponse struct {
	Status   string   `json:"status"`
	Listener bool     `json:"listener"`
	Pending  bool     `json:"pending"`
	Clients  int      `json:"clients"`
	Commands []string `json:"commands"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Listener: st.Listener,
		Pending:  st.Pending,
		Clients:  h.hub.Count(),
		Commands: h.svc.Commands(),
	})
}
