package handler

import (
	"fmt"
	"net/http"

	"github.com/reelstore/reelstore/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "reelstore_catalog_cache_hits_total %d\n", snap.CatalogCacheHits)
	writeMetric(w, "reelstore_catalog_cache_misses_total %d\n", snap.CatalogCacheMisses)

	writeMetric(w, "reelstore_rentals_created_total %d\n", snap.RentalsCreated)
	writeMetric(w, "reelstore_rentals_returned_total %d\n", snap.RentalsReturned)
	writeMetric(w, "reelstore_rentals_rejected_total %d\n", snap.RentalsRejected)
	writeMetric(w, "reelstore_rent_duration_seconds_count %d\n", snap.RentDurationCount)
	writeMetric(w, "reelstore_rent_duration_seconds_sum %.6f\n", float64(snap.RentDurationTotalNs)/1e9)

	writeMetric(w, "reelstore_customers_created_total %d\n", snap.CustomersCreated)
	writeMetric(w, "reelstore_customers_updated_total %d\n", snap.CustomersUpdated)
	writeMetric(w, "reelstore_customers_deleted_total %d\n", snap.CustomersDeleted)

	writeMetric(w, "reelstore_events_published_total{status=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "reelstore_events_published_total{status=\"dropped\"} %d\n", snap.EventsDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
