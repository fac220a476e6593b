// Package metrics exposes Prometheus metrics for the MCP server: per-tool
// invocation counters served on an optional /metrics HTTP endpoint.
package metrics

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the metrics server settings. An empty Address disables the
// HTTP endpoint; counters are still registered so tests can observe them.
type Config struct {
	Address     string
	ServiceName string
}

// NewConfig reads the metrics configuration from environment variables.
func NewConfig() Config {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "mcp-server-qdrant"
	}
	return Config{
		Address:     os.Getenv("METRICS_ADDRESS"),
		ServiceName: service,
	}
}

// Metrics encapsulates the Prometheus registry and the HTTP server
// responsible for exposing it.
type Metrics struct {
	// Server is the HTTP server for the /metrics endpoint; nil when no
	// address is configured.
	Server *http.Server

	// Registry is an isolated Prometheus registry to prevent metric name
	// collisions when multiple components run in one process.
	Registry *prometheus.Registry

	toolCalls *prometheus.CounterVec
}

// NewMetrics initializes a Metrics instance: a dedicated registry with the
// default Go and process collectors, a constant `service` label on every
// metric, and — when an address is configured — an HTTP server exposing the
// /metrics endpoint.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	wrapped.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{Registry: registry}

	m.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of MCP tool invocations",
		},
		[]string{"tool", "status"},
	)
	wrapped.MustRegister(m.toolCalls)

	if cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.Server = &http.Server{Addr: cfg.Address, Handler: mux}
	}

	return m
}

// ObserveToolCall increments the invocation counter for a tool with the
// given status ("ok" or "error").
func (m *Metrics) ObserveToolCall(tool, status string) {
	m.toolCalls.WithLabelValues(tool, status).Inc()
}
