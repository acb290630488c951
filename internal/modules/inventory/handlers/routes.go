package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all inventory routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.HandleListItems)
		r.Post("/", h.HandleCreateItem)
		r.Get("/{id}", h.HandleGetItem)
		r.Put("/{id}", h.HandleUpdateItem)
		r.Delete("/{id}", h.HandleDeleteItem)
	})

	r.Get("/users/{userID}/items", h.HandleListUserItems)
}
