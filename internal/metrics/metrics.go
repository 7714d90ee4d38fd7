// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rovshanmuradov/salebook/internal/salebook"
)

// ObserveRPC записывает метрики RPC-запроса
func (c *Collector) ObserveRPC(method, endpoint string, duration time.Duration, err error) {
	host := endpointHost(endpoint)
	status := "success"
	if err != nil {
		status = "failed"
	}
	c.rpcRequests.WithLabelValues(method, host, status).Inc()
	c.rpcLatency.WithLabelValues(method, host).Observe(duration.Seconds())
}

// RecordQuery записывает итог запроса к книге продаж
func (c *Collector) RecordQuery(query string, duration time.Duration, result *salebook.QueryResult, err error) {
	switch {
	case err == nil:
		c.queries.WithLabelValues(query, "success").Inc()
	case errors.Is(err, salebook.ErrCancelled), errors.Is(err, context.Canceled):
		c.queries.WithLabelValues(query, "cancelled").Inc()
		return
	default:
		c.queries.WithLabelValues(query, "failed").Inc()
		return
	}

	c.queryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if result == nil {
		return
	}

	c.sales.WithLabelValues(string(salebook.StatusActive)).Add(float64(len(result.Active)))
	var degraded int
	for _, s := range result.Zero {
		if s.Degraded {
			degraded++
		}
	}
	c.sales.WithLabelValues(string(salebook.StatusZero)).Add(float64(len(result.Zero) - degraded))
	c.sales.WithLabelValues("degraded").Add(float64(degraded))
	c.decodeErrors.WithLabelValues(query).Add(float64(len(result.DecodeErrors)))
}

// ключи API в пути или query не должны попадать в лейблы
func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
