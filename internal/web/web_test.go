package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelstore/reelstore/internal/apiclient"
	"github.com/reelstore/reelstore/internal/handler"
	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/service"
	"github.com/reelstore/reelstore/internal/testutil"
	"github.com/reelstore/reelstore/internal/testutil/fakestore"
)

// newSite serves the pages over a real API backed by an in-memory store.
func newSite(t *testing.T) (http.Handler, *fakestore.Store) {
	t.Helper()

	logger := testutil.DiscardLogger()
	recorder := metrics.NewInMemory()
	store := fakestore.New()

	api := chi.NewRouter()
	api.Route("/api", func(r chi.Router) {
		handler.RegisterRoutes(r,
			handler.NewCatalogHandler(service.NewCatalogService(store, nil, 0, logger, recorder), logger),
			handler.NewCustomerHandler(service.NewCustomerService(store, nil, logger, recorder), logger),
			handler.NewRentalHandler(service.NewRentalService(store, nil, nil, logger, recorder), logger),
		)
	})
	apiServer := httptest.NewServer(api)
	t.Cleanup(apiServer.Close)

	site, err := New(apiclient.New(apiServer.URL+"/api", 5*time.Second, logger), 10, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	site.RegisterRoutes(r)
	r.NotFound(site.NotFound)
	return r, store
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func post(t *testing.T, h http.Handler, target string, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestTemplatesParse(t *testing.T) {
	t.Parallel()
	sets, err := parseTemplates()
	require.NoError(t, err)
	for _, name := range []string{"landing", "films", "customers", "film", "actor", "customer", "notfound"} {
		assert.Contains(t, sets, name)
	}
	assert.NotContains(t, sets, "layout")
}

func TestLanding(t *testing.T) {
	t.Parallel()
	site, _ := newSite(t)

	code, body := get(t, site, "/")

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Top 5 Rented Films")
	assert.Contains(t, body, "ACADEMY DINOSAUR")
	assert.Contains(t, body, "PENELOPE GUINESS")
	assert.Contains(t, body, `href="/films"`)
}

func TestLanding_APIFailure(t *testing.T) {
	t.Parallel()
	site, store := newSite(t)
	store.SetErr(assert.AnError)

	code, body := get(t, site, "/")

	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body, "Failed to fetch data")
}

func TestFilms_SearchRendersOneCardPerFilm(t *testing.T) {
	t.Parallel()
	site, store := newSite(t)

	code, body := get(t, site, "/films?q=documentary&type=genre")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, strings.Count(body, `class="card film-card"`))
	assert.Equal(t, 1, store.Calls("SearchFilms"))
}

func TestFilms_EmptyQueryMakesNoCall(t *testing.T) {
	t.Parallel()
	site, store := newSite(t)

	code, body := get(t, site, "/films?q=+&type=title")

	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, strings.Count(body, `class="card film-card"`))
	assert.Zero(t, store.Calls("SearchFilms"))
}

func TestFilms_RentDialogAndRent(t *testing.T) {
	t.Parallel()
	site, store := newSite(t)

	_, body := get(t, site, "/films?q=ace&type=title&rent=2")
	assert.Contains(t, body, "Rent ACE GOLDFINGER")

	code, body := post(t, site, "/films/rent", url.Values{
		"film_id":     {"2"},
		"customer_id": {"1"},
		"q":           {"ace"},
		"type":        {"title"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Film rented successfully!")
	assert.NotContains(t, body, `id="rent"`)
	assert.Equal(t, 1, store.Calls("RentFilm"))

	// The only copy of film 2 is out now.
	_, body = post(t, site, "/films/rent", url.Values{
		"film_id":     {"2"},
		"customer_id": {"2"},
		"q":           {"ace"},
		"type":        {"title"},
	})
	assert.Contains(t, body, "Film is not available for rent")
	assert.Contains(t, body, `id="rent"`)
}

func TestCustomers_ListAndPaginationLinks(t *testing.T) {
	t.Parallel()
	site, _ := newSite(t)

	code, body := get(t, site, "/customers?search=smith&search_type=name")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, strings.Count(body, `class="customer-row"`))
	assert.Contains(t, body, "Page 1 of 1")
	assert.NotContains(t, body, `rel="next"`)
	assert.NotContains(t, body, `rel="prev"`)
}

func TestCustomers_CreateSuccess(t *testing.T) {
	t.Parallel()
	site, store := newSite(t)

	code, body := post(t, site, "/customers", url.Values{
		"first_name": {"ANN"},
		"last_name":  {"LEE"},
		"email":      {"ann@example.com"},
		"address":    {"1 Main St"},
		"city_id":    {"1"},
		"phone":      {"555-0100"},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Customer added successfully!")
	assert.Contains(t, body, "ANN LEE")
	assert.NotContains(t, body, `id="add"`)
	assert.Equal(t, 1, store.Calls("CreateCustomer"))
}

func TestCustomers_CreateFailureShowsServerText(t *testing.T) {
	t.Parallel()
	site, store := newSite(t)

	_, body := post(t, site, "/customers", url.Values{
		"first_name": {"ANN"},
		"last_name":  {"LEE"},
	})

	assert.Contains(t, body, "email is required")
	assert.Contains(t, body, `id="add"`)
	assert.Contains(t, body, `value="ANN"`)
	assert.Zero(t, store.Calls("CreateCustomer"))
}

func TestCustomers_EditAndDelete(t *testing.T) {
	t.Parallel()
	site, _ := newSite(t)

	_, body := get(t, site, "/customers?edit=1")
	assert.Contains(t, body, `action="/customers/1"`)

	_, body = post(t, site, "/customers/1", url.Values{
		"first_name": {"MARIE"},
		"last_name":  {"SMITH"},
		"email":      {"marie@example.com"},
		"active":     {"1"},
	})
	assert.Contains(t, body, "Customer updated successfully!")
	assert.Contains(t, body, "MARIE SMITH")

	_, body = post(t, site, "/customers/2/delete", url.Values{})
	assert.Contains(t, body, "Customer deleted successfully!")
	assert.Contains(t, body, "Inactive")
}

func TestCustomerDetails_ReturnRental(t *testing.T) {
	t.Parallel()
	site, _ := newSite(t)

	_, _ = post(t, site, "/films/rent", url.Values{"film_id": {"1"}, "customer_id": {"1"}})

	code, body := get(t, site, "/customer/1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, strings.Count(body, `class="rental-active"`))
	assert.Zero(t, strings.Count(body, `class="rental-returned"`))

	_, body = post(t, site, "/customer/1/rentals/101/return", url.Values{})
	assert.Contains(t, body, "Rental returned successfully!")
	assert.Zero(t, strings.Count(body, `class="rental-active"`))
	assert.Equal(t, 1, strings.Count(body, `class="rental-returned"`))

	_, body = post(t, site, "/customer/1/rentals/101/return", url.Values{})
	assert.Contains(t, body, "Rental not found or already returned")
}

func TestDetails_NotFoundAndInvalidIDs(t *testing.T) {
	t.Parallel()
	site, _ := newSite(t)

	code, body := get(t, site, "/film/999")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body, "Failed to fetch film details")

	code, body = get(t, site, "/actor/abc")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "Invalid actor id")

	code, _ = get(t, site, "/nowhere")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDetails_Render(t *testing.T) {
	t.Parallel()
	site, _ := newSite(t)

	code, body := get(t, site, "/film/2")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "ACE GOLDFINGER")
	assert.Contains(t, body, `href="/actor/2"`)

	code, body = get(t, site, "/actor/1")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "PENELOPE GUINESS")
	assert.Equal(t, 2, strings.Count(body, `class="card film-card"`))
}
