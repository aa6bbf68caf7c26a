// Package server is the composition root: it opens the database, builds
// every service and handler, wires the chi router, and runs the HTTP
// server with graceful shutdown. All dependency construction happens here
// so the rest of the codebase only receives what it needs.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nhasan/journally/internal/auth"
	"github.com/nhasan/journally/internal/config"
	"github.com/nhasan/journally/internal/handler"
	"github.com/nhasan/journally/internal/middleware"
	sqliteRepo "github.com/nhasan/journally/internal/repository/sqlite"
	"github.com/nhasan/journally/internal/service"
)

// Server owns the router, the configuration, and the database connection.
// The connection is closed during graceful shutdown so the WAL is flushed
// and the file lock released.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, assembles the dependency chain
// (repositories → services → handlers), and mounts all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes wires middleware, handlers, and URL patterns.
//
// Middleware order matters: RequestID first so every later log line can
// carry it, Recoverer before the logger so a panic still produces a
// request log entry with a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.Auth.JWTSecret, s.cfg.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.cfg.Auth.GitHubEnabled() {
		callbackURL := s.cfg.Auth.GitHubCallbackURL
		if callbackURL == "" {
			callbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", s.cfg.Server.Port)
		}
		github = auth.NewGitHubProvider(
			s.cfg.Auth.GitHubClientID,
			s.cfg.Auth.GitHubClientSecret,
			callbackURL,
		)
	}

	// The sqlite.DB value implements every repository interface; each
	// service receives only the interfaces it uses.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	goalService := service.NewGoalService(s.db, s.db, s.logger)
	groupService := service.NewGroupService(s.db, s.logger)
	summaryService := service.NewSummaryService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	goalHandler := handler.NewGoalHandler(goalService, s.logger)
	groupHandler := handler.NewGroupHandler(groupService, s.logger)
	summaryHandler := handler.NewSummaryHandler(summaryService, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Put("/me", authHandler.HandleUpdateProfile)
		r.Put("/me/password", authHandler.HandleChangePassword)

		r.Get("/goals", goalHandler.HandleList)
		r.Get("/goals/history", goalHandler.HandleHistory)
		r.Post("/goals", goalHandler.HandleCreate)
		r.Put("/goals/{id}", goalHandler.HandleUpdate)
		r.Delete("/goals/{id}", goalHandler.HandleArchive)
		r.Post("/goals/{id}/restore", goalHandler.HandleRestore)
		r.Delete("/goals/{id}/permanent", goalHandler.HandlePurge)
		r.Post("/goals/{id}/toggle", goalHandler.HandleToggle)

		r.Get("/logs", goalHandler.HandleListLogs)
		r.Get("/summary", summaryHandler.HandleSummary)

		r.Post("/groups", groupHandler.HandleCreate)
		r.Post("/groups/join", groupHandler.HandleJoin)
		r.Get("/groups", groupHandler.HandleList)
		r.Post("/groups/{id}/leave", groupHandler.HandleLeave)
		r.Delete("/groups/{id}", groupHandler.HandleDelete)
		r.Get("/groups/{id}/members", groupHandler.HandleMembers)
	})

	// Optionally host the SPA bundle from the same process.
	if s.cfg.Server.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.cfg.Server.StaticDir))
		s.router.Handle("/*", fileServer)
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests within the configured shutdown timeout and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.cfg.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
