package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reelstore/reelstore/internal/cache"
	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/model"
	"github.com/reelstore/reelstore/internal/repository"
)

// CatalogService serves read-only catalog data, cached in Redis when a
// cache is configured.
type CatalogService struct {
	store    CatalogStore
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewCatalogService creates a CatalogService. c may be nil.
func NewCatalogService(store CatalogStore, c Cache, cacheTTL time.Duration, logger *slog.Logger, recorder metrics.Recorder) *CatalogService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CatalogService{
		store:    store,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger.With("component", "service.catalog"),
		metrics:  recorder,
	}
}

// TopFilms returns the five most rented films.
func (s *CatalogService) TopFilms(ctx context.Context) ([]model.Film, error) {
	return cached(ctx, s, cache.TopFilmsKey, func() ([]model.Film, error) {
		films, err := s.store.TopFilms(ctx, topListSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load top films: %w", err)
		}
		return films, nil
	})
}

// TopActors returns the five actors whose films were rented the most.
func (s *CatalogService) TopActors(ctx context.Context) ([]model.Actor, error) {
	return cached(ctx, s, cache.TopActorsKey, func() ([]model.Actor, error) {
		actors, err := s.store.TopActors(ctx, topListSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load top actors: %w", err)
		}
		return actors, nil
	})
}

// GetFilm returns a film with its language, category and cast.
func (s *CatalogService) GetFilm(ctx context.Context, id int64) (*model.Film, error) {
	return cached(ctx, s, cache.FilmKey(id), func() (*model.Film, error) {
		film, err := s.store.GetFilm(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrFilmNotFound) {
				return nil, ErrFilmNotFound
			}
			return nil, fmt.Errorf("failed to get film: %w", err)
		}
		return film, nil
	})
}

// GetActor returns an actor with their most rented films.
func (s *CatalogService) GetActor(ctx context.Context, id int64) (*model.Actor, error) {
	return cached(ctx, s, cache.ActorKey(id), func() (*model.Actor, error) {
		actor, err := s.store.GetActor(ctx, id, actorFilmsLimit)
		if err != nil {
			if errors.Is(err, repository.ErrActorNotFound) {
				return nil, ErrActorNotFound
			}
			return nil, fmt.Errorf("failed to get actor: %w", err)
		}
		return actor, nil
	})
}

// SearchFilms matches q against the field named by searchType.
// Unknown search types search by title. A blank query matches nothing.
func (s *CatalogService) SearchFilms(ctx context.Context, q, searchType string) ([]model.Film, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []model.Film{}, nil
	}

	films, err := s.store.SearchFilms(ctx, q, model.ParseFilmSearchType(searchType))
	if err != nil {
		return nil, fmt.Errorf("failed to search films: %w", err)
	}
	if films == nil {
		films = []model.Film{}
	}
	return films, nil
}

// Cities returns the city selector entries ordered by name.
func (s *CatalogService) Cities(ctx context.Context) ([]model.City, error) {
	return cached(ctx, s, cache.CitiesKey, func() ([]model.City, error) {
		cities, err := s.store.ListCities(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list cities: %w", err)
		}
		return cities, nil
	})
}

// cached serves key from the cache or fills it from load.
// Cache failures are logged and fall through to the store.
func cached[T any](ctx context.Context, s *CatalogService, key string, load func() (T, error)) (T, error) {
	if s.cache != nil {
		var hit T
		err := s.cache.GetJSON(ctx, key, &hit)
		switch {
		case err == nil:
			s.metrics.IncCatalogCacheHit()
			return hit, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.IncCatalogCacheMiss()
		default:
			s.metrics.IncCatalogCacheMiss()
			s.logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, value, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}

	return value, nil
}
