package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all currency routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/currency", func(r chi.Router) {
		r.Get("/rates", h.HandleGetRates)
		r.Post("/rates/sync", h.HandleSyncRates)
		r.Get("/rates/{code}/trend", h.HandleGetTrend)
		r.Post("/convert", h.HandleConvert)
	})
}
