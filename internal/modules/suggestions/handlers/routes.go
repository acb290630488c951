package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all suggestion routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/suggestions", func(r chi.Router) {
		r.Post("/", h.HandleSuggest)
		r.Get("/for-item/{itemID}", h.HandleSuggestForItem)
	})
}
