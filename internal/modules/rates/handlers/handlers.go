// Package handlers provides HTTP handlers for currency rates.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/modules/rates"
)

// Handler handles currency HTTP requests.
type Handler struct {
	service *rates.Service
	repo    *rates.Repository
	log     zerolog.Logger
}

// NewHandler creates a new rates handler.
func NewHandler(service *rates.Service, repo *rates.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		repo:    repo,
		log:     log.With().Str("handler", "rates").Logger(),
	}
}

// HandleGetRates returns the current rate table relative to the anchor.
func (h *Handler) HandleGetRates(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"anchor": h.service.Anchor(),
		"rates":  h.service.GetRateMap(),
	})
}

// HandleConvert converts an amount between two currencies.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
		From   string  `json:"from"`
		To     string  `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.From == "" || req.To == "" {
		h.writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	converted, err := h.service.Convert(req.Amount, req.From, req.To)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"amount":    req.Amount,
		"from":      req.From,
		"to":        req.To,
		"converted": converted,
	})
}

// HandleSyncRates triggers an immediate rate sync.
func (h *Handler) HandleSyncRates(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SyncRates(); err != nil {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
}

// HandleGetTrend returns trend statistics for one currency's history.
func (h *Handler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	points, err := h.repo.History(code, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	trend := rates.AnalyzeTrend(code, points)
	if trend == nil {
		h.writeError(w, http.StatusNotFound, "no history for currency")
		return
	}

	h.writeJSON(w, http.StatusOK, trend)
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
