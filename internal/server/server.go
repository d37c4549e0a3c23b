// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer: it connects handlers, middleware and
// routes, and owns the database connection for the lifetime of the process.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → sqlite.DB → services → handlers → chi routes
//
// All dependencies are wired in one place (New/setupRoutes), rather than
// scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/codigoteca/internal/auth"
	"github.com/sakif/codigoteca/internal/authz"
	"github.com/sakif/codigoteca/internal/config"
	"github.com/sakif/codigoteca/internal/handler"
	"github.com/sakif/codigoteca/internal/middleware"
	sqliteRepo "github.com/sakif/codigoteca/internal/repository/sqlite"
	"github.com/sakif/codigoteca/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection. Start closes it during graceful
// shutdown so pending WAL writes are flushed and the file lock released.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database at cfg.DBPath and builds the server around it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s, err := NewWithDB(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB builds the server around an already opened database. Tests use
// it with an in-memory database.
func NewWithDB(cfg *config.Config, db *sqliteRepo.DB, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts the client IP from proxy headers
// 3. Logger: logs each request with timing info and the request ID
// 4. Recoverer: catches panics and returns 500 instead of crashing
// 5. Metrics: Prometheus counters, when enabled
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	if s.config.MetricsEnabled {
		s.router.Use(middleware.Metrics)
		s.router.Handle("/metrics", promhttp.Handler())
	}

	// === Identity ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)
	requireAuth := auth.RequireAuth(tokens)
	requireAdmin := auth.RequireRole(authz.RoleAdmin)

	// === Services ===
	// s.db implements every repository interface; each service only sees the
	// interfaces it needs.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, passwords, s.logger)
	codigoService := service.NewCodigoService(s.db, s.db, s.db, s.logger)
	collectionService := service.NewCollectionService(s.db, s.db, s.db, s.logger)
	categoryService := service.NewCategoryService(s.db, s.logger)
	linkService := service.NewCodigoCategoriaService(s.db, s.logger)
	subscriptionService := service.NewSubscriptionService(s.db, s.db, s.logger)

	// === Handlers ===
	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}
	authHandler := handler.NewAuthHandler(github, authService, tokens, s.config.IsProduction(), s.logger)
	userHandler := handler.NewUserHandler(authService, userService, s.logger)
	codigoHandler := handler.NewCodigoHandler(codigoService, s.logger)
	collectionHandler := handler.NewCollectionHandler(collectionService, s.logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, linkService, s.logger)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, s.logger)

	s.router.Get("/health", s.handleHealth)

	// === Auth routes ===
	s.router.Route("/auth", func(r chi.Router) {
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
		r.Post("/logout", authHandler.HandleLogout)
	})

	// === API routes ===
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.HandleRegister)
			r.Post("/login", userHandler.HandleLogin)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/search", userHandler.HandleSearch)
				r.Get("/me", userHandler.HandleMe)
				r.Get("/{id}", userHandler.HandleGetByID)
				r.Put("/{id}", userHandler.HandleUpdate)

				r.With(requireAdmin).Get("/", userHandler.HandleList)
				r.With(requireAdmin).Delete("/{id}", userHandler.HandleDelete)
			})
		})

		r.Route("/codigos", func(r chi.Router) {
			r.Get("/tags/{tag}", codigoHandler.HandleListByTag)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", codigoHandler.HandleCreate)
				r.Get("/my", codigoHandler.HandleListMine)
				r.Post("/colecciones/add", codigoHandler.HandleAddToCollection)
				r.Post("/colecciones/remove", codigoHandler.HandleRemoveFromCollection)
				r.Get("/{id}", codigoHandler.HandleGetByID)
				r.Put("/{id}", codigoHandler.HandleUpdate)
				r.Delete("/{id}", codigoHandler.HandleDelete)
				r.Get("/{id}/colecciones", codigoHandler.HandleListCollections)
			})
		})

		r.Route("/collections", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", collectionHandler.HandleListMine)
			r.Post("/", collectionHandler.HandleCreate)
			r.Get("/{id}", collectionHandler.HandleGetByID)
			r.Put("/{id}", collectionHandler.HandleUpdate)
			r.Delete("/{id}", collectionHandler.HandleDelete)
			r.Get("/{id}/snippets", collectionHandler.HandleListSnippets)
			r.Post("/{id}/snippets", collectionHandler.HandleAddSnippet)
			r.Delete("/{id}/snippets/{snippetId}", collectionHandler.HandleRemoveSnippet)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", categoryHandler.HandleList)
			r.Post("/", categoryHandler.HandleCreate)
			r.Put("/", categoryHandler.HandleUpdate)
			r.Get("/code/{id}", categoryHandler.HandleListByCodigo("id"))
			r.Get("/{id}", categoryHandler.HandleGetByID)
			r.Delete("/{id}", categoryHandler.HandleDelete)
		})

		r.Route("/codigos-categorias", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/add", categoryHandler.HandleLink)
			r.Delete("/remove", categoryHandler.HandleUnlink)
			r.Get("/codigo/{codigoId}", categoryHandler.HandleListByCodigo("codigoId"))
			r.Get("/categoria/{categoriaId}", categoryHandler.HandleListCodigos)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/user/{id}", subscriptionHandler.HandleListByUser)
			r.Get("/feed/user/{id}", subscriptionHandler.HandleFeed)
			r.Get("/{id}", subscriptionHandler.HandleGetByID)
			r.Post("/", subscriptionHandler.HandleCreate)
			r.Put("/", subscriptionHandler.HandleUpdate)
			r.Delete("/{id}", subscriptionHandler.HandleDelete)
		})
	})

	return nil
}

// handleHealth answers 200 when the database responds to a ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"status":%q}`+"\n", status)
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("github", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
