// Package handlers provides HTTP handlers for the item catalog.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/events"
	"github.com/swapjoy/matchd/internal/modules/inventory"
)

// Handler handles inventory HTTP requests.
type Handler struct {
	repo *inventory.Repository
	bus  *events.Bus
	log  zerolog.Logger
}

// NewHandler creates a new inventory handler.
func NewHandler(repo *inventory.Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		bus:  bus,
		log:  log.With().Str("handler", "inventory").Logger(),
	}
}

// itemRequest is the create/update payload.
type itemRequest struct {
	UserID         string   `json:"user_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	EstimatedValue *float64 `json:"estimated_value"`
	Currency       string   `json:"currency"`
	Condition      string   `json:"condition"`
	ImageURL       string   `json:"image_url"`
	Status         string   `json:"status"`
}

// HandleListItems returns all active listings.
func (h *Handler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListActive()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if items == nil {
		items = []*inventory.Item{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

// HandleCreateItem creates a new listing.
func (h *Handler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.UserID == "" || req.Title == "" || req.Currency == "" {
		h.writeError(w, http.StatusBadRequest, "user_id, title and currency are required")
		return
	}

	item := &inventory.Item{
		UserID:         req.UserID,
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		EstimatedValue: req.EstimatedValue,
		Currency:       req.Currency,
		Condition:      req.Condition,
		ImageURL:       req.ImageURL,
		Status:         req.Status,
	}

	if err := h.repo.Create(item); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info().Str("item_id", item.ID).Str("user_id", item.UserID).Msg("Item created")
	h.publish(events.TypeItemCreated, item.ID)
	h.writeJSON(w, http.StatusCreated, item)
}

// HandleGetItem returns a single listing by ID.
func (h *Handler) HandleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

// HandleUpdateItem updates a listing's mutable fields.
func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Title != "" {
		existing.Title = req.Title
	}
	if req.Description != "" {
		existing.Description = req.Description
	}
	if req.Price != 0 {
		existing.Price = req.Price
	}
	if req.EstimatedValue != nil {
		existing.EstimatedValue = req.EstimatedValue
	}
	if req.Currency != "" {
		existing.Currency = req.Currency
	}
	if req.Condition != "" {
		existing.Condition = req.Condition
	}
	if req.ImageURL != "" {
		existing.ImageURL = req.ImageURL
	}
	if req.Status != "" {
		existing.Status = req.Status
	}

	if err := h.repo.Update(existing); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(events.TypeItemUpdated, existing.ID)
	h.writeJSON(w, http.StatusOK, existing)
}

// HandleDeleteItem removes a listing.
func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.repo.Delete(id); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(events.TypeItemDeleted, id)
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// HandleListUserItems returns all listings owned by a user.
func (h *Handler) HandleListUserItems(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	items, err := h.repo.ListByUser(userID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if items == nil {
		items = []*inventory.Item{}
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) publish(eventType events.Type, itemID string) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(events.Event{Type: eventType, Payload: map[string]string{"item_id": itemID}})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
