package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	router.Get("/api/version", h.getVersion)
	router.Route("/api/queue", func(r chi.Router) {
		r.Get("/", h.listEntries)
		r.Get("/{id}", h.getEntry)
		r.Post("/{id}/replay", h.replayEntry)
	})
	router.Get("/api/wip", h.workInProgress)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
