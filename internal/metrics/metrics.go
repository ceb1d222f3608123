// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Catalog cache metrics
	IncCatalogCacheHit()
	IncCatalogCacheMiss()

	// Rental metrics
	IncRentalCreated()
	IncRentalReturned()
	IncRentalRejected() // no copy available
	ObserveRentDuration(duration time.Duration)

	// Customer management metrics
	IncCustomerCreated()
	IncCustomerUpdated()
	IncCustomerDeleted()

	// Activity stream metrics
	IncEventPublished(status string) // status: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
