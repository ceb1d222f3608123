// Package service provides the store's business rules on top of the
// repository, cache and activity stream.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/reelstore/reelstore/internal/events"
	"github.com/reelstore/reelstore/internal/model"
	"github.com/reelstore/reelstore/internal/repository"
)

// Service errors.
var (
	ErrFilmNotFound             = errors.New("film not found")
	ErrActorNotFound            = errors.New("actor not found")
	ErrCustomerNotFound         = errors.New("customer not found")
	ErrCityNotFound             = errors.New("city not found")
	ErrRentalIDsRequired        = errors.New("customer id and film id are required")
	ErrFilmUnavailable          = errors.New("film is not available for rent")
	ErrRentalNotOpen            = errors.New("rental not found or already returned")
	ErrCustomerHasActiveRentals = errors.New("cannot delete customer with active rentals")
)

// RequiredFieldError reports a missing mandatory input field.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return e.Field + " is required"
}

// CatalogStore reads films, actors and cities.
type CatalogStore interface {
	TopFilms(ctx context.Context, limit int) ([]model.Film, error)
	TopActors(ctx context.Context, limit int) ([]model.Actor, error)
	GetFilm(ctx context.Context, id int64) (*model.Film, error)
	GetActor(ctx context.Context, id int64, filmLimit int) (*model.Actor, error)
	SearchFilms(ctx context.Context, q string, by model.FilmSearchType) ([]model.Film, error)
	ListCities(ctx context.Context) ([]model.City, error)
}

// CustomerStore persists customers.
type CustomerStore interface {
	ListCustomers(ctx context.Context, filter repository.CustomerFilter, limit, offset int) ([]model.Customer, int, error)
	CreateCustomer(ctx context.Context, in repository.NewCustomer) (int64, error)
	UpdateCustomer(ctx context.Context, id int64, in repository.CustomerUpdate) error
	DeactivateCustomer(ctx context.Context, id int64) error
	GetCustomerDetails(ctx context.Context, id int64) (*model.Customer, error)
}

// RentalStore checks films out and in.
type RentalStore interface {
	RentFilm(ctx context.Context, in repository.NewRental) (*repository.RentalRecord, error)
	ReturnRental(ctx context.Context, id int64, returnedAt time.Time) (*repository.RentalRecord, error)
}

// Cache stores JSON encoded catalog payloads.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// EventPublisher emits store activity.
type EventPublisher interface {
	NewEvent(t events.Type) events.Event
	PublishAsync(event events.Event)
}

const (
	topListSize     = 5
	actorFilmsLimit = 5

	defaultPage    = 1
	defaultPerPage = 10
	maxPerPage     = 100

	defaultStoreID  = 1
	defaultStaffID  = 1
	defaultDistrict = "District"
)
