// Package metrics exposes Prometheus metrics on a dedicated listener,
// separate from the command API so that scrapes never contend with client
// traffic.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/attestd/cloud-secure-area/common"
)

const namespace = "cloud_secure_area"

var (
	// CommandsTotal counts commands forwarded to the delegate processor,
	// labeled by the status code it returned.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Secure area commands processed, by delegate status code.",
	}, []string{"status"})

	// CommandErrorsTotal counts commands that failed inside the service
	// before or during delegation.
	CommandErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_errors_total",
		Help:      "Commands that failed before a delegate response was produced.",
	})

	// BootstrapCreatesTotal counts first-run identity creations. At most
	// one per deployment under normal operation.
	BootstrapCreatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bootstrap_creates_total",
		Help:      "Root identity create-and-persist operations.",
	})

	buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build information, value is always 1.",
	}, []string{"service", "version"})
)

// MetricsServer serves the Prometheus scrape endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server listening on listenAddr. The service name
// and build version are recorded on the build_info gauge.
func New(service, listenAddr string) (*MetricsServer, error) {
	buildInfo.WithLabelValues(service, common.Version).Set(1)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:         listenAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving scrapes until Shutdown.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
