// Package apiclient is a typed HTTP client for the store REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/middleware"
	"github.com/reelstore/reelstore/internal/model"
)

const (
	// DefaultTimeout is the total request timeout.
	DefaultTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second

	maxErrorBody = 64 << 10
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	// Message is the server's "error" text, empty when the body had none.
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// ErrorText returns the server's error text carried by err, or fallback
// for transport failures and bodies without one.
func ErrorText(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// NewHTTPClient creates an HTTP client with bounded timeouts that does not
// follow redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Client calls the store API rooted at baseURL (for example
// "http://localhost:5000/api").
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client with its own HTTP client.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, NewHTTPClient(timeout), logger)
}

// NewWithHTTPClient creates a Client that sends requests through hc.
func NewWithHTTPClient(baseURL string, hc *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
		logger:  logger.With("component", "apiclient"),
	}
}

// TopFilms fetches the five most rented films.
func (c *Client) TopFilms(ctx context.Context) ([]model.Film, error) {
	var films []model.Film
	return films, c.do(ctx, http.MethodGet, "/top-films", nil, nil, &films)
}

// TopActors fetches the five most rented actors.
func (c *Client) TopActors(ctx context.Context) ([]model.Actor, error) {
	var actors []model.Actor
	return actors, c.do(ctx, http.MethodGet, "/top-actors", nil, nil, &actors)
}

// Film fetches a film with its cast.
func (c *Client) Film(ctx context.Context, id int64) (*model.Film, error) {
	var film model.Film
	if err := c.do(ctx, http.MethodGet, "/film/"+itoa(id), nil, nil, &film); err != nil {
		return nil, err
	}
	return &film, nil
}

// Actor fetches an actor with their most rented films.
func (c *Client) Actor(ctx context.Context, id int64) (*model.Actor, error) {
	var actor model.Actor
	if err := c.do(ctx, http.MethodGet, "/actor/"+itoa(id), nil, nil, &actor); err != nil {
		return nil, err
	}
	return &actor, nil
}

// SearchFilms searches films by title, actor or genre.
func (c *Client) SearchFilms(ctx context.Context, q string, by model.FilmSearchType) ([]model.Film, error) {
	query := url.Values{"q": {q}, "type": {string(by)}}
	var films []model.Film
	return films, c.do(ctx, http.MethodGet, "/films/search", query, nil, &films)
}

// RentFilm rents a free copy of a film to a customer.
func (c *Client) RentFilm(ctx context.Context, customerID, filmID int64) (*model.RentalReceipt, error) {
	var receipt model.RentalReceipt
	body := dto.RentFilmRequest{CustomerID: customerID, FilmID: filmID}
	if err := c.do(ctx, http.MethodPost, "/films/rent", nil, body, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// CustomerQuery selects a page of the customer listing.
type CustomerQuery struct {
	Page       int
	PerPage    int
	Search     string
	SearchType model.CustomerSearchType
}

// Customers fetches one page of customers.
func (c *Client) Customers(ctx context.Context, q CustomerQuery) (*model.CustomerPage, error) {
	query := url.Values{
		"page":        {strconv.Itoa(q.Page)},
		"per_page":    {strconv.Itoa(q.PerPage)},
		"search":      {q.Search},
		"search_type": {string(q.SearchType)},
	}
	var page model.CustomerPage
	if err := c.do(ctx, http.MethodGet, "/customers", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Cities fetches the city selector entries.
func (c *Client) Cities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	return cities, c.do(ctx, http.MethodGet, "/cities", nil, nil, &cities)
}

// CreateCustomer registers a customer and returns their id.
func (c *Client) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (int64, error) {
	var resp dto.CreateCustomerResponse
	if err := c.do(ctx, http.MethodPost, "/customers", nil, req, &resp); err != nil {
		return 0, err
	}
	return resp.CustomerID, nil
}

// UpdateCustomer edits a customer.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, req dto.UpdateCustomerRequest) error {
	return c.do(ctx, http.MethodPut, "/customers/"+itoa(id), nil, req, nil)
}

// DeleteCustomer deactivates a customer.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/customers/"+itoa(id), nil, nil, nil)
}

// CustomerDetails fetches a customer with their rental history.
func (c *Client) CustomerDetails(ctx context.Context, id int64) (*model.Customer, error) {
	var customer model.Customer
	if err := c.do(ctx, http.MethodGet, "/customers/"+itoa(id)+"/details", nil, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// ReturnRental marks a rental returned.
func (c *Client) ReturnRental(ctx context.Context, rentalID int64) error {
	return c.do(ctx, http.MethodPut, "/rentals/"+itoa(rentalID)+"/return", nil, nil, nil)
}

// Ping checks that the API answers. It fetches the city list, which the
// API serves from cache.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/cities", nil, nil, nil)
}

// do sends one request and decodes a 2xx JSON answer into out when out is
// non-nil. The caller's trace ID is forwarded, or a new one is started.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	traceID := middleware.GetTraceID(ctx)
	if traceID == "" {
		traceID = middleware.NewTraceID()
	}
	req.Header.Set(middleware.TraceIDHeader, traceID)
	if ip := middleware.GetClientIP(ctx); ip != "" {
		req.Header.Set(middleware.ForwardedForHeader, ip)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			"method", method,
			"path", path,
			"trace_id", traceID,
			"error", err,
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", float64(time.Since(start).Microseconds())/1000,
		"trace_id", traceID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload dto.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
