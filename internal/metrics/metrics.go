// Package metrics exposes Prometheus instrumentation for the ranking path.
//
// Metrics are registered on the default registry at package init and served
// at /metrics by Serve.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskmarket_ranking_duration_seconds",
			Help:    "Duration of one recommendation ranking call",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
	)

	RankingCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskmarket_ranking_candidates",
			Help:    "Number of active tasks scored per ranking call",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	RankingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmarket_ranking_errors_total",
			Help: "Failed ranking calls",
		},
		[]string{"kind"}, // integrity, store
	)

	SimilarityComputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskmarket_similarity_computations_total",
			Help: "Pairwise description similarities computed",
		},
	)

	SimilarityCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmarket_similarity_cache_total",
			Help: "Similarity cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	CacheBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskmarket_cache_breaker_state",
			Help: "Cache circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
