// Package orders exposes the order controller over HTTP.
package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/orderbot/core/controller"
	"github.com/kilianp07/orderbot/core/journal"
	"github.com/kilianp07/orderbot/core/logger"
	"github.com/kilianp07/orderbot/core/model"
	"github.com/kilianp07/orderbot/core/prediction"
	"github.com/kilianp07/orderbot/core/report"
)

// Controller is the subset of controller.Controller served by the API.
type Controller interface {
	SubmitOrder(class model.OrderClass, duration time.Duration) model.Order
	AddBot() model.Bot
	RemoveBot() *model.Bot
	Snapshot() controller.Snapshot
	Report() report.Summary
	Estimate(class model.OrderClass, duration time.Duration) (prediction.ETA, bool)
}

// Server serves the status and control endpoints.
type Server struct {
	ctrl  Controller
	store journal.Store
	token string
	log   logger.Logger
}

// NewServer creates a Server. store may be nil, in which case the journal
// endpoint returns an empty list. A non-empty token enables bearer auth.
func NewServer(ctrl Controller, store journal.Store, token string, log logger.Logger) *Server {
	return &Server{ctrl: ctrl, store: store, token: token, log: logger.OrNop(log)}
}

// Handler returns the router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/report", s.handleReport)
		r.Get("/api/journal", s.handleJournal)
		r.Get("/api/estimate", s.handleEstimate)
		r.Get("/api/export", s.handleExport)
		r.Post("/api/orders", s.handleSubmitOrder)
		r.Post("/api/bots", s.handleAddBot)
		r.Delete("/api/bots/newest", s.handleRemoveBot)
	})
	return r
}

// Start listens on addr until ctx is canceled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Infof("api listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	}
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debugw("http request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
	})
}
