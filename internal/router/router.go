package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arko-chat/pushbridge/internal/handlers"
	"github.com/arko-chat/pushbridge/internal/middleware"
)

func New(
	h *handlers.Handler,
	auth *middleware.ChannelAuth,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)

	r.Get("/healthz", h.HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Channel(auth, logger))

		r.Get("/channel", h.HandleChannel)

		if h.HasSimulator() {
			r.Route("/debug", func(r chi.Router) {
				r.Use(chimw.Logger)
				r.Post("/notifications", h.HandleDebugNotification)
				r.Post("/clicks", h.HandleDebugClick)
				r.Get("/topics", h.HandleDebugTopics)
			})
		}
	})

	return r
}
