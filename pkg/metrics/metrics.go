// Package metrics provides opt-in Prometheus metrics for background jobs.
// When Init is not called, all recording helpers are no-ops with zero
// overhead, so library users who do not care about metrics pay nothing.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/tams/internal/logger"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// Init creates the metrics registry. Safe to call multiple times.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	if registry != nil {
		return
	}
	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// IsEnabled reports whether Init has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// Registry returns the metrics registry, or nil when metrics are disabled.
func Registry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}

// Serve exposes /metrics on the given address in a background goroutine.
// Intended for long-running transfers where an operator wants to watch
// throughput. Returns the server so callers can shut it down.
func Serve(addr string) *http.Server {
	reg := Registry()
	if reg == nil {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("Metrics server stopped", "error", err)
		}
	}()
	return srv
}
