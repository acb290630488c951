package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/swapjoy/matchd/internal/events"
)

// wsWriteTimeout bounds each frame write so one dead connection cannot
// hold its pump goroutine forever.
const wsWriteTimeout = 5 * time.Second

// EventsWSHandler streams bus events to websocket clients.
// GET /api/events/ws
type EventsWSHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsWSHandler creates a new websocket event stream handler.
func NewEventsWSHandler(bus *events.Bus, log zerolog.Logger) *EventsWSHandler {
	return &EventsWSHandler{
		bus: bus,
		log: log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP upgrades the connection and forwards every published event as
// a JSON text frame until the client disconnects. Slow clients lose events
// rather than stall the bus, the subscription channel drops when full.
func (h *EventsWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.bus == nil {
		http.Error(w, "Event stream not available", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Same-origin policy is handled by the CORS layer for the REST
		// API; the dashboard connects cross-origin in dev mode.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream terminated")

	ch, unsubscribe := h.bus.SubscribeAll(100)
	defer unsubscribe()

	h.log.Info().Str("remote", r.RemoteAddr).Msg("Websocket client connected")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "bus closed")
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				h.log.Error().Err(err).Msg("Failed to encode event")
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err = conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Websocket client gone")
				return
			}
		}
	}
}
