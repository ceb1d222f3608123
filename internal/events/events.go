// Package events publishes store activity (rentals, returns, customer
// changes) to a Redis stream for downstream consumers.
package events

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/reelstore/reelstore/internal/metrics"
)

const (
	// StreamKey is the Redis stream for store activity.
	StreamKey = "stream:rental_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 50000

	// PublishTimeout bounds a single asynchronous publish.
	PublishTimeout = 200 * time.Millisecond
)

// Type names an activity event.
type Type string

const (
	RentalCreated   Type = "rental.created"
	RentalReturned  Type = "rental.returned"
	CustomerCreated Type = "customer.created"
	CustomerUpdated Type = "customer.updated"
	CustomerDeleted Type = "customer.deleted"
)

// Event is the payload written to the stream.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	CustomerID int64     `json:"customer_id,omitempty"`
	FilmID     int64     `json:"film_id,omitempty"`
	RentalID   int64     `json:"rental_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher appends events to the activity stream.
type Publisher struct {
	redis   redis.Cmdable
	logger  *slog.Logger
	metrics metrics.Recorder

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	wg      sync.WaitGroup
}

// NewPublisher creates a publisher backed by client.
func NewPublisher(client redis.Cmdable, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewEvent stamps an event of type t with a fresh ULID and the current time.
func (p *Publisher) NewEvent(t Type) Event {
	now := time.Now().UTC()

	p.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), p.entropy)
	p.mu.Unlock()

	return Event{ID: id.String(), Type: t, OccurredAt: now}
}

// Publish adds an event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event Event) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	streamID, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"type":    string(event.Type),
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return streamID, nil
}

// PublishAsync publishes on a background goroutine. Failures are logged
// and counted, never returned.
func (p *Publisher) PublishAsync(event Event) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish event",
				"event_type", event.Type,
				"event_id", event.ID,
				"error", err,
			)
			p.metrics.IncEventPublished("dropped")
			return
		}

		p.logger.Debug("event published",
			"event_type", event.Type,
			"event_id", event.ID,
			"stream_id", streamID,
		)
		p.metrics.IncEventPublished("success")
	}()
}

// Wait blocks until in-flight asynchronous publishes finish or ctx ends.
func (p *Publisher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// decode parses a stream message written by Publish.
func decode(msg redis.XMessage) (Event, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return Event{}, fmt.Errorf("message %s has no payload", msg.ID)
	}

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return Event{}, fmt.Errorf("decode message %s: %w", msg.ID, err)
	}
	return event, nil
}
