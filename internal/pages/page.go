// Package pages holds the request-scoped controllers behind each browser
// page. A controller fetches from the store API, keeps the result as its
// state and never outlives the request that created it.
package pages

import (
	"context"
	"log/slog"

	"github.com/reelstore/reelstore/internal/apiclient"
	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/model"
)

// Status is the fetch state of a page.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Fetch failure messages.
const (
	msgFetchLanding         = "Failed to fetch data"
	msgSearchFilms          = "Failed to search films"
	msgFetchCustomers       = "Failed to fetch customers"
	msgFetchFilmDetails     = "Failed to fetch film details"
	msgFetchActorDetails    = "Failed to fetch actor details"
	msgFetchCustomerDetails = "Failed to fetch customer details"
)

// Mutation fallbacks, used when the API gave no error text.
const (
	msgAddCustomer    = "Failed to add customer"
	msgUpdateCustomer = "Failed to update customer"
	msgDeleteCustomer = "Failed to delete customer"
	msgReturnRental   = "Failed to return rental"
	msgRentFilm       = "Failed to rent film"
)

// Mutation confirmations.
const (
	NoticeCustomerAdded   = "Customer added successfully!"
	NoticeCustomerUpdated = "Customer updated successfully!"
	NoticeCustomerDeleted = "Customer deleted successfully!"
	NoticeRentalReturned  = "Rental returned successfully!"
	NoticeFilmRented      = "Film rented successfully!"
)

// View is the state every page shares.
type View struct {
	Status Status
	// Error is the fetch failure message shown in place of the content.
	Error string
	// Notice confirms a successful mutation.
	Notice string
	// Alert reports a failed mutation. Displayed data is left untouched.
	Alert string
}

// Loading reports whether a fetch is in flight.
func (v *View) Loading() bool { return v.Status == StatusLoading }

// Failed reports whether the last fetch failed.
func (v *View) Failed() bool { return v.Status == StatusError }

func (v *View) begin() {
	v.Status = StatusLoading
	v.Error = ""
}

func (v *View) ready() {
	v.Status = StatusReady
}

func (v *View) fail(logger *slog.Logger, msg string, err error) {
	logger.Warn("page fetch failed", "message", msg, "error", err)
	v.Status = StatusError
	v.Error = msg
}

func (v *View) alert(logger *slog.Logger, err error, fallback string) {
	logger.Info("page mutation rejected", "error", err)
	v.Alert = apiclient.ErrorText(err, fallback)
	v.Notice = ""
}

func (v *View) notice(msg string) {
	v.Notice = msg
	v.Alert = ""
}

// LandingAPI fetches the ranked lists.
type LandingAPI interface {
	TopFilms(ctx context.Context) ([]model.Film, error)
	TopActors(ctx context.Context) ([]model.Actor, error)
}

// FilmsAPI searches and rents films.
type FilmsAPI interface {
	SearchFilms(ctx context.Context, q string, by model.FilmSearchType) ([]model.Film, error)
	RentFilm(ctx context.Context, customerID, filmID int64) (*model.RentalReceipt, error)
}

// CustomersAPI lists and edits customers.
type CustomersAPI interface {
	Customers(ctx context.Context, q apiclient.CustomerQuery) (*model.CustomerPage, error)
	Cities(ctx context.Context) ([]model.City, error)
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (int64, error)
	UpdateCustomer(ctx context.Context, id int64, req dto.UpdateCustomerRequest) error
	DeleteCustomer(ctx context.Context, id int64) error
}

// DetailsAPI fetches detail views and returns rentals.
type DetailsAPI interface {
	Film(ctx context.Context, id int64) (*model.Film, error)
	Actor(ctx context.Context, id int64) (*model.Actor, error)
	CustomerDetails(ctx context.Context, id int64) (*model.Customer, error)
	ReturnRental(ctx context.Context, rentalID int64) error
}

// StoreAPI is everything the pages call.
type StoreAPI interface {
	LandingAPI
	FilmsAPI
	CustomersAPI
	DetailsAPI
}

var _ StoreAPI = (*apiclient.Client)(nil)
