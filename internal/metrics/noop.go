package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCatalogCacheHit is a no-op.
func (n *NoopRecorder) IncCatalogCacheHit() {}

// IncCatalogCacheMiss is a no-op.
func (n *NoopRecorder) IncCatalogCacheMiss() {}

// IncRentalCreated is a no-op.
func (n *NoopRecorder) IncRentalCreated() {}

// IncRentalReturned is a no-op.
func (n *NoopRecorder) IncRentalReturned() {}

// IncRentalRejected is a no-op.
func (n *NoopRecorder) IncRentalRejected() {}

// ObserveRentDuration is a no-op.
func (n *NoopRecorder) ObserveRentDuration(duration time.Duration) {}

// IncCustomerCreated is a no-op.
func (n *NoopRecorder) IncCustomerCreated() {}

// IncCustomerUpdated is a no-op.
func (n *NoopRecorder) IncCustomerUpdated() {}

// IncCustomerDeleted is a no-op.
func (n *NoopRecorder) IncCustomerDeleted() {}

// IncEventPublished is a no-op.
func (n *NoopRecorder) IncEventPublished(status string) {}
