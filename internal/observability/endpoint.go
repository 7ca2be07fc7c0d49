// endpoint.go: optional HTTP endpoint exposing the metrics registry.
package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Endpoint serves /metrics for a Prometheus scraper.
type Endpoint struct {
	server *http.Server
	logger *slog.Logger
}

// NewEndpoint creates a metrics endpoint on addr backed by the registry.
func NewEndpoint(addr string, registry *prometheus.Registry, logger *slog.Logger) *Endpoint {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Endpoint{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start begins serving in a background goroutine.
func (e *Endpoint) Start() {
	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if e.logger != nil {
				e.logger.Error("metrics endpoint failed", "error", err)
			}
		}
	}()
	if e.logger != nil {
		e.logger.Info("metrics endpoint listening", "addr", e.server.Addr)
	}
}

// Shutdown stops the endpoint gracefully.
func (e *Endpoint) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
