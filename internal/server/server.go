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

	"github.com/foliotrack/foliotrack/internal/config"
	"github.com/foliotrack/foliotrack/internal/database"
	"github.com/foliotrack/foliotrack/internal/modules/accounts"
	"github.com/foliotrack/foliotrack/internal/modules/dividends"
	"github.com/foliotrack/foliotrack/internal/modules/holdings"
	"github.com/foliotrack/foliotrack/internal/modules/performance"
	"github.com/foliotrack/foliotrack/internal/modules/snapshots"
	"github.com/foliotrack/foliotrack/internal/modules/stocks"
	"github.com/foliotrack/foliotrack/internal/modules/transactions"
)

// Modules bundles the per-module HTTP handlers wired in main
type Modules struct {
	Accounts     *accounts.Handler
	Stocks       *stocks.Handler
	Holdings     *holdings.Handler
	Transactions *transactions.Handler
	Dividends    *dividends.Handler
	Performance  *performance.Handler
	Snapshots    *snapshots.Handler
}

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DB      *database.DB
	Config  *config.Config
	DevMode bool
	Modules Modules
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	db      *database.DB
	cfg     *config.Config
	modules Modules
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		db:      cfg.DB,
		cfg:     cfg.Config,
		modules: cfg.Modules,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
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
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	m := s.modules

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", m.Accounts.HandleCreate)
			r.Get("/", m.Accounts.HandleList)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", m.Accounts.HandleGet)

				r.Get("/holdings", m.Holdings.HandleList)
				r.Get("/holdings/summary", m.Holdings.HandleSummary)
				r.Get("/transactions", m.Transactions.HandleList)
				r.Get("/dividends", m.Dividends.HandleListPayments)
				r.Get("/dividends/total", m.Dividends.HandleTotal)
				r.Get("/performance", m.Performance.HandleAccountReport)

				r.Post("/snapshots", m.Snapshots.HandleGenerate)
				r.Get("/snapshots", m.Snapshots.HandleList)
				r.Get("/snapshots/return", m.Snapshots.HandleReturn)
				r.Get("/snapshots/stats", m.Snapshots.HandleStats)
			})
		})

		r.Route("/stocks", func(r chi.Router) {
			r.Post("/", m.Stocks.HandleCreate)
			r.Get("/", m.Stocks.HandleList)
			r.Get("/{id}", m.Stocks.HandleGet)
			r.Put("/{id}/price", m.Stocks.HandleUpdatePrice)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", m.Transactions.HandleCreate)
		})

		r.Route("/dividends", func(r chi.Router) {
			r.Post("/", m.Dividends.HandleAnnounce)
			r.Post("/{id}/process", m.Dividends.HandleProcess)
			r.Post("/payments/{id}/cancel", m.Dividends.HandleCancelPayment)
		})

		r.Get("/users/{id}/performance", m.Performance.HandleUserReport)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
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
