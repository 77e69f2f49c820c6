// Package server wires the HTTP API for the monitoring service.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Pranjal6955/TrendCatcherEngine/internal/server/handlers"
	"github.com/Pranjal6955/TrendCatcherEngine/internal/server/middleware"
)

// Server is the HTTP server for the monitoring API.
type Server struct {
	httpServer *http.Server
}

// New creates a new API server.
func New(addr string, h *handlers.Handlers, metrics http.Handler) *Server {
	// On-demand checks hit the target sites, keep them rate limited.
	checkLimit := middleware.RateLimitMiddleware(1, 3)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /products", h.CreateProduct)
	mux.HandleFunc("POST /products/bulk", h.BulkCreateProducts)
	mux.HandleFunc("GET /products", h.ListProducts)
	mux.HandleFunc("GET /products/{id}", h.GetProduct)
	mux.HandleFunc("DELETE /products/{id}", h.DeleteProduct)
	mux.Handle("POST /products/{id}/check", checkLimit(http.HandlerFunc(h.CheckProduct)))
	mux.HandleFunc("GET /products/{id}/history", h.GetHistory)
	mux.HandleFunc("GET /products/{id}/summary", h.GetSummary)

	mux.HandleFunc("POST /watchdog/check", h.AnalyzePrice)
	mux.HandleFunc("GET /watchdog/{id}/summary", h.GetSummary)

	mux.HandleFunc("POST /jobs/scrape", h.TriggerScrape)
	mux.HandleFunc("GET /jobs/status", h.JobStatus)

	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// On-demand checks scrape live pages, so writes can be slow.
			WriteTimeout: 60 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
