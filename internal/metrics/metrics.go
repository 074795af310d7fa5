package metrics

import (
	"errors"
	"net/http"
	"sync"

	"showroom-etl/internal/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PagesFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showroom_pages_fetched_total",
			Help: "Pages fetched, by outcome",
		},
		[]string{"outcome"},
	)

	VariantsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showroom_variants_skipped_total",
			Help: "Color variants skipped, by reason",
		},
		[]string{"reason"},
	)

	RowsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showroom_rows_dropped_total",
			Help: "Detail rows dropped during normalization, by reason",
		},
		[]string{"reason"},
	)

	CompositionReview = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "showroom_composition_review_total",
			Help: "Non-empty compositions where no tracked fiber matched",
		},
	)

	RowsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showroom_rows_stored_total",
			Help: "Rows appended to the store, by showroom",
		},
		[]string{"showroom"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PagesFetched, VariantsSkipped, RowsDropped, CompositionReview, RowsStored)
	})
}

// Handler returns the /metrics handler
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// Start serves /metrics on port in the background. An empty port disables
// it. A listener that fails, for example on a port already in use, is
// reported through logger.
func Start(port string, logger types.Logger) {
	if port == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	go func() {
		logger.Infof("Serving metrics on port %s", port)
		if err := http.ListenAndServe(":"+port, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Metrics server on port %s stopped: %v", port, err)
		}
	}()
}
