// Package metrics registers the service's Prometheus collectors and
// serves them over a side HTTP port. This is ambient observability, not
// a feature: a handful of counters and a histogram, not a dashboard.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collector handles, grouped into one struct
// so callers thread a single value instead of reaching for global state.
type Metrics struct {
	JobsCreated       prometheus.Counter
	JobsTerminal      *prometheus.CounterVec
	ProverRequestSecs prometheus.Histogram
}

// New constructs and registers the service's collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		JobsCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "ttc_monitor",
			Name:      "jobs_created_total",
			Help:      "Number of proving jobs created by the chain watcher.",
		}),
		JobsTerminal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "ttc_monitor",
			Name:      "jobs_terminal_total",
			Help:      "Number of jobs that reached a terminal status, labeled by status.",
		}, []string{"status"}),
		ProverRequestSecs: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "ttc_monitor",
			Name:      "prover_request_duration_seconds",
			Help:      "Latency of prove/proveAsync requests to the external prover.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s..2048s (~34m)
		}),
	}
}

// Server exposes the registered collectors over /metrics.
type Server struct {
	http *http.Server
}

// NewServer builds a metrics Server bound to addr, scraping reg.
func NewServer(addr string, reg *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &Server{http: &http.Server{Addr: addr, Handler: mux}}
}

// ListenAndServe serves metrics until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		log.Error("metrics: server exited", "err", err)
		return err
	}
}
