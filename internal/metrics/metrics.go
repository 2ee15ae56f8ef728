package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineCollector exposes Prometheus counters for pipeline stage outcomes.
type PipelineCollector struct {
	registry    *prometheus.Registry
	stageTotal  *prometheus.CounterVec
	stageErrors *prometheus.CounterVec
}

// NewPipelineCollector constructs a collector with per-stage counters.
func NewPipelineCollector() (*PipelineCollector, error) {
	registry := prometheus.NewRegistry()

	stageTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsagg",
		Subsystem: "pipeline",
		Name:      "articles_total",
		Help:      "Number of articles that completed each pipeline stage.",
	}, []string{"stage"})

	stageErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsagg",
		Subsystem: "pipeline",
		Name:      "stage_errors_total",
		Help:      "Number of per-item failures recorded at each stage.",
	}, []string{"stage"})

	if err := registry.Register(stageTotal); err != nil {
		return nil, err
	}

	if err := registry.Register(stageErrors); err != nil {
		return nil, err
	}

	collector := &PipelineCollector{
		registry:    registry,
		stageTotal:  stageTotal,
		stageErrors: stageErrors,
	}

	return collector, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *PipelineCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ListenAndServe exposes the registry at /metrics on addr until ctx is
// cancelled. It blocks for the lifetime of the server.
func (c *PipelineCollector) ListenAndServe(ctx context.Context, addr string, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen: %w", err)
	}
	return c.Serve(ctx, ln, logger)
}

// Serve runs the metrics endpoint on an existing listener. Cancelling ctx
// shuts the server down gracefully.
func (c *PipelineCollector) Serve(ctx context.Context, ln net.Listener, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", ln.Addr().String())

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics serve: %w", err)
	}
	return nil
}

// StageCompleted increments the completion counter for a stage.
func (c *PipelineCollector) StageCompleted(stage string) {
	c.stageTotal.WithLabelValues(stage).Inc()
}

// StageFailed increments the error counter for a stage.
func (c *PipelineCollector) StageFailed(stage string) {
	c.stageErrors.WithLabelValues(stage).Inc()
}
