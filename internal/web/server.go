// Package web exposes the player over HTTP: a websocket feed of state
// notifications plus an action channel for remote control.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/chime-audio/chime/internal/broadcast"
	"github.com/chime-audio/chime/internal/core"
	"github.com/chime-audio/chime/internal/player"
)

// Config holds server wiring.
type Config struct {
	Addr     string
	Hub      *broadcast.Hub
	Controls player.Controls
	Quality  core.Quality
	Logger   zerolog.Logger
}

// Server serves the websocket control surface.
type Server struct {
	hub      *broadcast.Hub
	controls player.Controls
	quality  core.Quality
	logger   zerolog.Logger
	httpSrv  *http.Server
}

// New constructs the server and its routes.
func New(cfg Config) *Server {
	s := &Server{
		hub:      cfg.Hub,
		controls: cfg.Controls,
		quality:  cfg.Quality,
		logger:   cfg.Logger.With().Str("component", "web").Logger(),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	// Websocket connections are long-lived; the timeout applies only to
	// plain HTTP routes.
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(30 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	router.Get("/ws", s.handleWS)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		// No write deadline: the websocket feed manages its own.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// ListenAndServe blocks until ctx is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("web interface listening")
		errc <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
