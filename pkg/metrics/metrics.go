// Package metrics exposes the engine's own run-time counters as
// Prometheus metrics. Unlike the teacher's monitoring/prometheus client,
// which queries an external Prometheus server, this package is a metrics
// producer: it registers and updates gauges/counters describing this
// process's own publish activity.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	registry       *prometheus.Registry
	PublishTotal   *prometheus.CounterVec
	ErrorTotal     *prometheus.CounterVec
	ActiveStreams  prometheus.Gauge
	BytesPublished *prometheus.CounterVec
}

// New registers a fresh set of collectors on a private registry (never
// the global default, so multiple engine instances in one process do not
// collide).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqttsim",
			Name:      "publish_total",
			Help:      "Total successful publishes, by stream id.",
		}, []string{"stream"}),
		ErrorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqttsim",
			Name:      "publish_errors_total",
			Help:      "Total publish/payload errors, by stream id.",
		}, []string{"stream"}),
		ActiveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mqttsim",
			Name:      "active_streams",
			Help:      "Number of resolved streams scheduled in this run.",
		}),
		BytesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mqttsim",
			Name:      "publish_bytes_total",
			Help:      "Total bytes published, by stream id.",
		}, []string{"stream"}),
	}
	reg.MustRegister(m.PublishTotal, m.ErrorTotal, m.ActiveStreams, m.BytesPublished)
	return m
}

// Handler returns the HTTP handler that serves this Metrics' registry in
// the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr and blocks until
// ctx is cancelled or the server fails.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
