// Package server provides the HTTP server and routing for matchd.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/swapjoy/matchd/internal/config"
	"github.com/swapjoy/matchd/internal/database"
	"github.com/swapjoy/matchd/internal/events"
	inventoryhandlers "github.com/swapjoy/matchd/internal/modules/inventory/handlers"
	rateshandlers "github.com/swapjoy/matchd/internal/modules/rates/handlers"
	suggestionshandlers "github.com/swapjoy/matchd/internal/modules/suggestions/handlers"
)

// Config holds server configuration.
type Config struct {
	Log           zerolog.Logger
	Cfg           *config.Config
	MarketplaceDB *database.DB
	CacheDB       *database.DB
	EventBus      *events.Bus

	InventoryHandler   *inventoryhandlers.Handler
	RatesHandler       *rateshandlers.Handler
	SuggestionsHandler *suggestionshandlers.Handler
}

// Server represents the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	marketplaceDB  *database.DB
	cacheDB        *database.DB
	eventBus       *events.Bus
	systemHandlers *SystemHandlers
	startedAt      time.Time
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		log:           cfg.Log.With().Str("component", "server").Logger(),
		cfg:           cfg.Cfg,
		marketplaceDB: cfg.MarketplaceDB,
		cacheDB:       cfg.CacheDB,
		eventBus:      cfg.EventBus,
		startedAt:     time.Now(),
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.MarketplaceDB, cfg.CacheDB, s.startedAt)

	s.setupMiddleware(cfg.Cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	// Health check outside the /api tree
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Websocket event stream first, it hijacks the connection
		wsHandler := NewEventsWSHandler(s.eventBus, s.log)
		r.Get("/events/ws", wsHandler.ServeHTTP)

		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

		if cfg.InventoryHandler != nil {
			cfg.InventoryHandler.RegisterRoutes(r)
		}
		if cfg.RatesHandler != nil {
			cfg.RatesHandler.RegisterRoutes(r)
		}
		if cfg.SuggestionsHandler != nil {
			cfg.SuggestionsHandler.RegisterRoutes(r)
		}
	})
}

// handleHealth reports liveness plus database integrity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK

	databases := map[string]string{}
	for name, db := range map[string]*database.DB{
		"marketplace": s.marketplaceDB,
		"cache":       s.cacheDB,
	} {
		if db == nil {
			continue
		}
		if err := db.HealthCheck(ctx); err != nil {
			databases[name] = err.Error()
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		} else {
			databases[name] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"databases": databases,
		"uptime_s":  int64(time.Since(s.startedAt).Seconds()),
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
