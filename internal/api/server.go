// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/huyndq/comicbox/internal/core/category"
	"github.com/huyndq/comicbox/internal/core/chapter"
	"github.com/huyndq/comicbox/internal/core/comic"
	"github.com/huyndq/comicbox/internal/core/project"
	"github.com/huyndq/comicbox/internal/core/resource"
	"github.com/huyndq/comicbox/internal/platform/config"
	"github.com/huyndq/comicbox/internal/platform/constants"
	"github.com/huyndq/comicbox/internal/platform/middleware"
	"github.com/huyndq/comicbox/internal/users/account"
	"github.com/huyndq/comicbox/internal/users/auth"
	"github.com/huyndq/comicbox/internal/users/follow"
	"github.com/huyndq/comicbox/internal/users/subscription"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles identity routes (register, login, refresh, logout).
	Auth *auth.Handler

	// Account handles profile reads, updates, and account deletion.
	Account *account.Handler

	// Follow handles the user follow graph and its counters.
	Follow *follow.Handler

	// Subscription handles comic subscriptions.
	Subscription *subscription.Handler

	// Comic handles the publication catalogue.
	Comic *comic.Handler

	// Category handles the category catalogue.
	Category *category.Handler

	// Chapter handles the chapter lists of comics.
	Chapter *chapter.Handler

	// Resource handles binary uploads and downloads.
	Resource *resource.Handler

	// Project handles creator workspaces.
	Project *project.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain route groups under the versioned prefix. Domains with a private
	// URL root mount a subtree; domains spanning shared roots (/users,
	// /comics, /me) register their routes on the prefix router directly.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/categories", h.Category.Routes())
		api.Mount("/resources", h.Resource.Routes())

		h.Account.Register(api)
		h.Follow.Register(api)
		h.Subscription.Register(api)
		h.Comic.Register(api)
		h.Chapter.Register(api)
		h.Project.Register(api)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
