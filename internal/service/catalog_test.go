package service

import (
	"context"
	"errors"
	"testing"

	"github.com/reelstore/reelstore/internal/cache"
	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/testutil"
	"github.com/reelstore/reelstore/internal/testutil/fakestore"
)

func TestCatalogService_TopFilmsCached(t *testing.T) {
	store := fakestore.New()
	c := newMemoryCache()
	recorder := metrics.NewInMemory()
	svc := NewCatalogService(store, c, 0, testutil.DiscardLogger(), recorder)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		films, err := svc.TopFilms(ctx)
		if err != nil {
			t.Fatalf("TopFilms: %v", err)
		}
		if len(films) != 3 {
			t.Fatalf("expected 3 films, got %d", len(films))
		}
	}

	if got := store.Calls("TopFilms"); got != 1 {
		t.Errorf("expected 1 store call, got %d", got)
	}
	snap := recorder.Snapshot()
	if snap.CatalogCacheMisses != 1 || snap.CatalogCacheHits != 1 {
		t.Errorf("unexpected cache counters: %+v", snap)
	}
}

func TestCatalogService_CacheErrorFallsThrough(t *testing.T) {
	store := fakestore.New()
	c := newMemoryCache()
	c.getErr = errors.New("connection refused")
	svc := NewCatalogService(store, c, 0, testutil.DiscardLogger(), nil)

	actors, err := svc.TopActors(context.Background())
	if err != nil {
		t.Fatalf("TopActors: %v", err)
	}
	if len(actors) != 2 {
		t.Errorf("expected 2 actors, got %d", len(actors))
	}
	if store.Calls("TopActors") != 1 {
		t.Errorf("expected store to be queried")
	}
}

func TestCatalogService_WithoutCache(t *testing.T) {
	store := fakestore.New()
	svc := NewCatalogService(store, nil, 0, testutil.DiscardLogger(), nil)

	cities, err := svc.Cities(context.Background())
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if len(cities) != 1 || cities[0].Name != "Lethbridge" {
		t.Errorf("unexpected cities: %+v", cities)
	}
}

func TestCatalogService_NotFound(t *testing.T) {
	svc := NewCatalogService(fakestore.New(), newMemoryCache(), 0, testutil.DiscardLogger(), nil)
	ctx := context.Background()

	if _, err := svc.GetFilm(ctx, 999); !errors.Is(err, ErrFilmNotFound) {
		t.Errorf("GetFilm: expected ErrFilmNotFound, got %v", err)
	}
	if _, err := svc.GetActor(ctx, 999); !errors.Is(err, ErrActorNotFound) {
		t.Errorf("GetActor: expected ErrActorNotFound, got %v", err)
	}
}

func TestCatalogService_GetActorCachesDetail(t *testing.T) {
	c := newMemoryCache()
	svc := NewCatalogService(fakestore.New(), c, 0, testutil.DiscardLogger(), nil)

	actor, err := svc.GetActor(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetActor: %v", err)
	}
	if len(actor.Films) != 2 {
		t.Errorf("expected 2 films, got %d", len(actor.Films))
	}
	if !c.has(cache.ActorKey(1)) {
		t.Error("expected actor detail to be cached")
	}
}

func TestCatalogService_SearchFilms(t *testing.T) {
	store := fakestore.New()
	svc := NewCatalogService(store, nil, 0, testutil.DiscardLogger(), nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		q          string
		searchType string
		want       []string
	}{
		{"title", "ace", "title", []string{"ACE GOLDFINGER"}},
		{"actor", "penelope", "actor", []string{"ACADEMY DINOSAUR", "ACE GOLDFINGER"}},
		{"genre", "docu", "genre", []string{"ACADEMY DINOSAUR", "ADAPTATION HOLES"}},
		{"unknown type searches title", "holes", "director", []string{"ADAPTATION HOLES"}},
		{"no match", "zzz", "title", []string{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			films, err := svc.SearchFilms(ctx, test.q, test.searchType)
			if err != nil {
				t.Fatalf("SearchFilms: %v", err)
			}
			if films == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(films) != len(test.want) {
				t.Fatalf("expected %d films, got %d", len(test.want), len(films))
			}
			for i, title := range test.want {
				if films[i].Title != title {
					t.Errorf("films[%d] = %q, want %q", i, films[i].Title, title)
				}
			}
		})
	}
}

func TestCatalogService_BlankSearchSkipsStore(t *testing.T) {
	store := fakestore.New()
	svc := NewCatalogService(store, nil, 0, testutil.DiscardLogger(), nil)

	films, err := svc.SearchFilms(context.Background(), "   ", "title")
	if err != nil {
		t.Fatalf("SearchFilms: %v", err)
	}
	if len(films) != 0 {
		t.Errorf("expected no films, got %d", len(films))
	}
	if store.Calls("SearchFilms") != 0 {
		t.Error("expected no store call for blank query")
	}
}
