// Package handlers provides HTTP handlers for swap suggestions.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/modules/suggestions"
)

// Handler handles suggestion HTTP requests.
type Handler struct {
	service *suggestions.Service
	log     zerolog.Logger
}

// NewHandler creates a new suggestions handler.
func NewHandler(service *suggestions.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "suggestions").Logger(),
	}
}

// HandleSuggest returns what the given user could offer against an
// explicit target price.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestions.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TargetCurrency == "" {
		h.writeError(w, http.StatusBadRequest, "target_currency is required")
		return
	}

	result, err := h.service.Suggest(req)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": result,
		"count":       len(result),
	})
}

// HandleSuggestForItem returns what the requesting user could offer
// against an existing listing.
func (h *Handler) HandleSuggestForItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	req := suggestions.Request{UserID: r.URL.Query().Get("user_id")}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "max_results must be an integer")
			return
		}
		req.MaxResults = parsed
	}

	result, err := h.service.SuggestForItem(itemID, req)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"item_id":     itemID,
		"suggestions": result,
		"count":       len(result),
	})
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
