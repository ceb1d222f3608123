package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/reelstore/reelstore/internal/cache"
	"github.com/reelstore/reelstore/internal/events"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return c.getErr
	}
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []events.Event
}

func (p *recordingPublisher) NewEvent(t events.Type) events.Event {
	return events.Event{ID: "evt", Type: t, OccurredAt: time.Now().UTC()}
}

func (p *recordingPublisher) PublishAsync(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, event)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.published))
	for _, e := range p.published {
		out = append(out, e.Type)
	}
	return out
}
