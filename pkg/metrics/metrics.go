// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace is the namespace component of the fully qualified metric name
const Namespace = "novactl"

// DefaultRegistry is the default [prometheus.Registry] for metrics.
var DefaultRegistry = prometheus.NewPedanticRegistry()

var (
	// APIRequestsTotal is a metric, which gets incremented for each API
	// request against the cloud services. Requests which failed at the
	// transport level are counted with code 0.
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests, partitioned by service, method and status code",
		},
		[]string{"service", "method", "code"},
	)

	// APIRequestDuration is a metric, which tracks the duration of API
	// requests against the cloud services.
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API requests in seconds, partitioned by service and method",
		},
		[]string{"service", "method"},
	)
)

// ObserveRequest records a completed API request with the default metrics.
// Requests which failed at the transport level are recorded with code 0.
func ObserveRequest(service string, method string, code int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(service, method, strconv.Itoa(code)).Inc()
	APIRequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// NewServer returns a new [http.Server] which can serve the metrics from
// [DefaultRegistry] on the specified network address and HTTP path. Callers
// are responsible for starting up and shutting down the HTTP server.
func NewServer(addr, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(
		path,
		promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{}),
	)

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: time.Second * 30,
		Handler:           mux,
	}

	return server
}

// init registers collectors with the [DefaultRegistry].
func init() {
	DefaultRegistry.MustRegister(
		// API client metrics
		APIRequestsTotal,
		APIRequestDuration,

		// Standard Go metrics
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}
