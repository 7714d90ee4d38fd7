// internal/metrics/collector.go
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "salebook"

// Collector владеет собственным реестром метрик
type Collector struct {
	registry *prometheus.Registry

	rpcRequests   *prometheus.CounterVec
	rpcLatency    *prometheus.HistogramVec
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	sales         *prometheus.CounterVec
	decodeErrors  *prometheus.CounterVec
}

// NewCollector создает новый экземпляр коллектора метрик
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "RPC requests by method and outcome",
			},
			[]string{"method", "endpoint", "status"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"method", "endpoint"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Sale book queries by kind and outcome",
			},
			[]string{"query", "status"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Sale book query duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"query"},
		),
		sales: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sales_classified_total",
				Help:      "Classified sales by status",
			},
			[]string{"status"},
		),
		decodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "malformed_records_total",
				Help:      "Sale accounts that failed to decode, by query",
			},
			[]string{"query"},
		),
	}

	c.registry.MustRegister(c.rpcRequests, c.rpcLatency, c.queries, c.queryDuration, c.sales, c.decodeErrors)
	return c
}

// Registry returns the registry holding every salebook metric.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Reset сбрасывает все метрики (полезно для тестирования)
func (c *Collector) Reset() {
	c.rpcRequests.Reset()
	c.rpcLatency.Reset()
	c.queries.Reset()
	c.queryDuration.Reset()
	c.sales.Reset()
	c.decodeErrors.Reset()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.Info("Serving metrics", zap.String("addr", listener.Addr().String()))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
