package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	CatalogCacheHits    uint64
	CatalogCacheMisses  uint64
	RentalsCreated      uint64
	RentalsReturned     uint64
	RentalsRejected     uint64
	RentDurationCount   uint64
	RentDurationTotalNs int64
	CustomersCreated    uint64
	CustomersUpdated    uint64
	CustomersDeleted    uint64
	EventsPublished     uint64
	EventsDropped       uint64
}

// InMemoryRecorder stores metrics in memory.
// It backs the /metrics endpoint and is used by tests.
type InMemoryRecorder struct {
	catalogCacheHits    uint64
	catalogCacheMisses  uint64
	rentalsCreated      uint64
	rentalsReturned     uint64
	rentalsRejected     uint64
	rentDurationCount   uint64
	rentDurationTotalNs int64
	customersCreated    uint64
	customersUpdated    uint64
	customersDeleted    uint64
	eventsPublished     uint64
	eventsDropped       uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		CatalogCacheHits:    atomic.LoadUint64(&m.catalogCacheHits),
		CatalogCacheMisses:  atomic.LoadUint64(&m.catalogCacheMisses),
		RentalsCreated:      atomic.LoadUint64(&m.rentalsCreated),
		RentalsReturned:     atomic.LoadUint64(&m.rentalsReturned),
		RentalsRejected:     atomic.LoadUint64(&m.rentalsRejected),
		RentDurationCount:   atomic.LoadUint64(&m.rentDurationCount),
		RentDurationTotalNs: atomic.LoadInt64(&m.rentDurationTotalNs),
		CustomersCreated:    atomic.LoadUint64(&m.customersCreated),
		CustomersUpdated:    atomic.LoadUint64(&m.customersUpdated),
		CustomersDeleted:    atomic.LoadUint64(&m.customersDeleted),
		EventsPublished:     atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:       atomic.LoadUint64(&m.eventsDropped),
	}
}

// IncCatalogCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCatalogCacheHit() {
	atomic.AddUint64(&m.catalogCacheHits, 1)
}

// IncCatalogCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCatalogCacheMiss() {
	atomic.AddUint64(&m.catalogCacheMisses, 1)
}

// IncRentalCreated increments rental created counter.
func (m *InMemoryRecorder) IncRentalCreated() {
	atomic.AddUint64(&m.rentalsCreated, 1)
}

// IncRentalReturned increments rental returned counter.
func (m *InMemoryRecorder) IncRentalReturned() {
	atomic.AddUint64(&m.rentalsReturned, 1)
}

// IncRentalRejected increments the unavailable-film counter.
func (m *InMemoryRecorder) IncRentalRejected() {
	atomic.AddUint64(&m.rentalsRejected, 1)
}

// ObserveRentDuration records how long a rent transaction took.
func (m *InMemoryRecorder) ObserveRentDuration(duration time.Duration) {
	atomic.AddUint64(&m.rentDurationCount, 1)
	atomic.AddInt64(&m.rentDurationTotalNs, duration.Nanoseconds())
}

// IncCustomerCreated increments customer created counter.
func (m *InMemoryRecorder) IncCustomerCreated() {
	atomic.AddUint64(&m.customersCreated, 1)
}

// IncCustomerUpdated increments customer updated counter.
func (m *InMemoryRecorder) IncCustomerUpdated() {
	atomic.AddUint64(&m.customersUpdated, 1)
}

// IncCustomerDeleted increments customer deleted counter.
func (m *InMemoryRecorder) IncCustomerDeleted() {
	atomic.AddUint64(&m.customersDeleted, 1)
}

// IncEventPublished increments the published or dropped event counter.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == "dropped" {
		atomic.AddUint64(&m.eventsDropped, 1)
		return
	}
	atomic.AddUint64(&m.eventsPublished, 1)
}
