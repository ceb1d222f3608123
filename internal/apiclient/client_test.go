package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelstore/reelstore/internal/cache"
	"github.com/reelstore/reelstore/internal/handler"
	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/middleware"
	"github.com/reelstore/reelstore/internal/model"
	"github.com/reelstore/reelstore/internal/service"
	"github.com/reelstore/reelstore/internal/testutil"
	"github.com/reelstore/reelstore/internal/testutil/fakestore"
)

// newStoreAPI serves the real API handlers over an in-memory store.
func newStoreAPI(t *testing.T) (*Client, *fakestore.Store) {
	t.Helper()

	logger := testutil.DiscardLogger()
	recorder := metrics.NewInMemory()
	store := fakestore.New()

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r,
			handler.NewCatalogHandler(service.NewCatalogService(store, nil, 0, logger, recorder), logger),
			handler.NewCustomerHandler(service.NewCustomerService(store, nil, logger, recorder), logger),
			handler.NewRentalHandler(service.NewRentalService(store, nil, nil, logger, recorder), logger),
		)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return New(srv.URL+"/api", 5*time.Second, logger), store
}

func TestClient_CatalogRoundTrip(t *testing.T) {
	t.Parallel()
	client, _ := newStoreAPI(t)
	ctx := context.Background()

	films, err := client.TopFilms(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(films), 5)

	film, err := client.Film(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "ACE GOLDFINGER", film.Title)
	assert.Len(t, film.Actors, 2)

	actor, err := client.Actor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "PENELOPE", actor.FirstName)

	found, err := client.SearchFilms(ctx, "documentary", model.FilmSearchGenre)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	cities, err := client.Cities(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cities)
	assert.Equal(t, "Lethbridge", cities[0].Name)
}

func TestClient_NotFoundCarriesServerText(t *testing.T) {
	t.Parallel()
	client, _ := newStoreAPI(t)

	_, err := client.Film(context.Background(), 999)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Film not found", apiErr.Message)
	assert.Equal(t, "Film not found", ErrorText(err, "fallback"))
}

func TestClient_CustomerLifecycle(t *testing.T) {
	t.Parallel()
	client, _ := newStoreAPI(t)
	ctx := context.Background()

	id, err := client.CreateCustomer(ctx, dto.CreateCustomerRequest{
		FirstName: "ANN",
		LastName:  "LEE",
		Email:     "ann.lee@example.com",
		Address:   "1 Main St",
		CityID:    1,
		Phone:     "555-0100",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	first := "ANNA"
	require.NoError(t, client.UpdateCustomer(ctx, id, dto.UpdateCustomerRequest{FirstName: &first}))

	page, err := client.Customers(ctx, CustomerQuery{
		Page:       1,
		PerPage:    10,
		Search:     "ANNA",
		SearchType: model.CustomerSearchName,
	})
	require.NoError(t, err)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, id, page.Customers[0].ID)

	receipt, err := client.RentFilm(ctx, id, 1)
	require.NoError(t, err)
	assert.Positive(t, receipt.RentalID)

	details, err := client.CustomerDetails(ctx, id)
	require.NoError(t, err)
	require.Len(t, details.RentalHistory, 1)
	assert.Equal(t, model.RentalActive, details.RentalHistory[0].Status)

	err = client.DeleteCustomer(ctx, id)
	assert.Equal(t, "Cannot delete customer with active rentals", ErrorText(err, ""))

	require.NoError(t, client.ReturnRental(ctx, receipt.RentalID))
	err = client.ReturnRental(ctx, receipt.RentalID)
	assert.Equal(t, "Rental not found or already returned", ErrorText(err, ""))

	require.NoError(t, client.DeleteCustomer(ctx, id))
}

func TestClient_CreateCustomerValidation(t *testing.T) {
	t.Parallel()
	client, _ := newStoreAPI(t)

	_, err := client.CreateCustomer(context.Background(), dto.CreateCustomerRequest{LastName: "LEE"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "first_name is required", apiErr.Message)
}

func TestClient_SendsTraceID(t *testing.T) {
	t.Parallel()

	traces := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traces <- r.Header.Get(middleware.TraceIDHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "[]")
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testutil.DiscardLogger())

	ctx := middleware.WithTraceID(context.Background(), "01J0000000000000000000TEST")
	_, err := client.TopFilms(ctx)
	require.NoError(t, err)
	assert.Equal(t, "01J0000000000000000000TEST", <-traces)

	_, err = client.TopActors(context.Background())
	require.NoError(t, err)
	assert.Len(t, <-traces, 26, "a fresh ULID trace is started when none is present")
}

func TestClient_ForwardsClientIP(t *testing.T) {
	t.Parallel()

	forwarded := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded <- r.Header.Get(middleware.ForwardedForHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "[]")
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testutil.DiscardLogger())

	ctx := middleware.WithClientIP(context.Background(), "203.0.113.7")
	_, err := client.TopFilms(ctx)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", <-forwarded)

	_, err = client.TopActors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, <-forwarded)
}

// oncePerClient admits one request per client address.
type oncePerClient struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (o *oncePerClient) CheckClientRate(_ context.Context, clientIP string, _, _ int) *cache.RateLimitResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seen[clientIP] {
		return &cache.RateLimitResult{Allowed: false, RetryAfter: time.Second}
	}
	o.seen[clientIP] = true
	return &cache.RateLimitResult{Allowed: true}
}

// Browsers behind the web front get their own API rate-limit buckets.
func TestClient_RateLimitedPerBrowser(t *testing.T) {
	t.Parallel()

	checker := &oncePerClient{seen: map[string]bool{}}
	api := chimiddleware.RealIP(middleware.RateLimit(middleware.RateLimitConfig{
		Logger:  testutil.DiscardLogger(),
		Checker: checker,
		Enabled: true,
		RPS:     1,
		Burst:   1,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, "[]")
	})))
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := New(srv.URL, time.Second, testutil.DiscardLogger())

	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		_, err := client.TopFilms(middleware.WithClientIP(context.Background(), ip))
		require.NoError(t, err, "browser %s", ip)
	}

	_, err := client.TopFilms(middleware.WithClientIP(context.Background(), "203.0.113.1"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestClient_QueryEncoding(t *testing.T) {
	t.Parallel()

	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_ = json.NewEncoder(w).Encode(model.CustomerPage{Page: 2, PerPage: 10})
	}))
	defer srv.Close()

	client := New(srv.URL+"/api/", time.Second, testutil.DiscardLogger())
	page, err := client.Customers(context.Background(), CustomerQuery{
		Page:       2,
		PerPage:    10,
		Search:     "mary smith",
		SearchType: model.CustomerSearchName,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)

	require.NotNil(t, got)
	assert.Equal(t, "/api/customers", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "mary smith", got.URL.Query().Get("search"))
	assert.Equal(t, "name", got.URL.Query().Get("search_type"))
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testutil.DiscardLogger())
	err := client.Ping(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "Failed to reach the store", ErrorText(err, "Failed to reach the store"))
}

func TestClient_DoesNotFollowRedirects(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second, testutil.DiscardLogger())
	err := client.Ping(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusFound, apiErr.StatusCode)
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, time.Second, testutil.DiscardLogger())
	err := client.Ping(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, "fallback", ErrorText(err, "fallback"))
}
