package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/testutil"
)

func TestNewEvent_MonotonicIDs(t *testing.T) {
	t.Parallel()

	p := NewPublisher(nil, testutil.DiscardLogger(), nil)

	first := p.NewEvent(RentalCreated)
	second := p.NewEvent(RentalReturned)

	a, err := ulid.ParseStrict(first.ID)
	require.NoError(t, err)
	b, err := ulid.ParseStrict(second.ID)
	require.NoError(t, err)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, RentalCreated, first.Type)
	assert.False(t, first.OccurredAt.IsZero())
}

func TestDecodeMessage(t *testing.T) {
	t.Parallel()

	want := Event{
		ID:         "01HZX3D4Q5RZ8C0K6A8W9V1B2N",
		Type:       CustomerDeleted,
		CustomerID: 12,
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)

	got, err := decode(redis.XMessage{ID: "1-0", Values: map[string]interface{}{"payload": string(data)}})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = decode(redis.XMessage{ID: "2-0", Values: map[string]interface{}{}})
	assert.Error(t, err)

	_, err = decode(redis.XMessage{ID: "3-0", Values: map[string]interface{}{"payload": "{"}})
	assert.Error(t, err)
}

func TestPublishAsync_UnreachableRedisCountsDrop(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	recorder := metrics.NewInMemory()
	p := NewPublisher(client, testutil.DiscardLogger(), recorder)

	p.PublishAsync(p.NewEvent(CustomerCreated))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))

	snap := recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.EventsDropped)
	assert.Equal(t, uint64(0), snap.EventsPublished)
}

func TestPublish_Integration(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")

	opt, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, testutil.FlushRedis(ctx, client))

	recorder := metrics.NewInMemory()
	p := NewPublisher(client, testutil.DiscardLogger(), recorder)

	event := p.NewEvent(RentalCreated)
	event.CustomerID = 3
	event.FilmID = 9
	event.RentalID = 101

	p.PublishAsync(event)
	require.NoError(t, p.Wait(ctx))

	msgs, err := client.XRange(ctx, StreamKey, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	got, err := decode(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, int64(101), got.RentalID)
	assert.Equal(t, "rental.created", msgs[0].Values["type"])
	assert.Equal(t, uint64(1), recorder.Snapshot().EventsPublished)
}
