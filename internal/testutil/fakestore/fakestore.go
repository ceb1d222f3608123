// Package fakestore is an in-memory stand-in for the Postgres repository.
package fakestore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/reelstore/reelstore/internal/model"
	"github.com/reelstore/reelstore/internal/repository"
)

// Rental is a stored rental row.
type Rental struct {
	ID         int64
	CustomerID int64
	FilmID     int64
	RentedAt   time.Time
	ReturnedAt *time.Time
}

// Store holds catalog, customers and rentals in memory.
// Set Err to make every call fail with it.
type Store struct {
	mu sync.Mutex

	Films     []model.Film
	Actors    []model.Actor
	Cities    []model.City
	Customers []model.Customer
	Copies    map[int64]int
	Rentals   []Rental

	Err   error
	calls map[string]int
	next  int64
}

// New returns a store seeded with a small catalog, one city and two customers.
func New() *Store {
	penelope := model.Actor{ID: 1, FirstName: "PENELOPE", LastName: "GUINESS"}
	nick := model.Actor{ID: 2, FirstName: "NICK", LastName: "WAHLBERG"}

	return &Store{
		Films: []model.Film{
			{ID: 1, Title: "ACADEMY DINOSAUR", RentalRate: 0.99, Rating: "PG", CategoryName: "Documentary", Actors: []model.Actor{penelope}},
			{ID: 2, Title: "ACE GOLDFINGER", RentalRate: 4.99, Rating: "G", CategoryName: "Horror", Actors: []model.Actor{penelope, nick}},
			{ID: 3, Title: "ADAPTATION HOLES", RentalRate: 2.99, Rating: "NC-17", CategoryName: "Documentary"},
		},
		Actors: []model.Actor{penelope, nick},
		Cities: []model.City{{ID: 1, Name: "Lethbridge"}},
		Customers: []model.Customer{
			{ID: 1, StoreID: 1, FirstName: "MARY", LastName: "SMITH", Email: "mary.smith@sakilacustomer.org", Active: true, City: "Lethbridge", Country: "Canada"},
			{ID: 2, StoreID: 1, FirstName: "PATRICIA", LastName: "JOHNSON", Email: "patricia.johnson@sakilacustomer.org", Active: true, City: "Lethbridge", Country: "Canada"},
		},
		Copies: map[int64]int{1: 2, 2: 1},
		calls:  map[string]int{},
		next:   100,
	}
}

// SetErr makes every later call fail with err. A nil err restores normal
// behavior. Use it instead of Err once the store is shared with a server
// goroutine.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Calls returns how many times method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *Store) enter(method string) error {
	s.calls[method]++
	return s.Err
}

// TopFilms returns the first limit films.
func (s *Store) TopFilms(_ context.Context, limit int) ([]model.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("TopFilms"); err != nil {
		return nil, err
	}
	return head(s.Films, limit), nil
}

// TopActors returns the first limit actors.
func (s *Store) TopActors(_ context.Context, limit int) ([]model.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("TopActors"); err != nil {
		return nil, err
	}
	return head(s.Actors, limit), nil
}

// GetFilm returns the film with id.
func (s *Store) GetFilm(_ context.Context, id int64) (*model.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetFilm"); err != nil {
		return nil, err
	}
	for _, f := range s.Films {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, repository.ErrFilmNotFound
}

// GetActor returns the actor with id and up to filmLimit of their films.
func (s *Store) GetActor(_ context.Context, id int64, filmLimit int) (*model.Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetActor"); err != nil {
		return nil, err
	}
	for _, a := range s.Actors {
		if a.ID != id {
			continue
		}
		for _, f := range s.Films {
			for _, credited := range f.Actors {
				if credited.ID == id {
					f.Actors = nil
					a.Films = append(a.Films, f)
				}
			}
		}
		a.Films = head(a.Films, filmLimit)
		return &a, nil
	}
	return nil, repository.ErrActorNotFound
}

// SearchFilms matches q case-insensitively against the selected field.
func (s *Store) SearchFilms(_ context.Context, q string, by model.FilmSearchType) ([]model.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SearchFilms"); err != nil {
		return nil, err
	}

	q = strings.ToLower(q)
	var out []model.Film
	for _, f := range s.Films {
		var match bool
		switch by {
		case model.FilmSearchActor:
			for _, a := range f.Actors {
				if strings.Contains(strings.ToLower(a.FullName()), q) {
					match = true
				}
			}
		case model.FilmSearchGenre:
			match = strings.Contains(strings.ToLower(f.CategoryName), q)
		default:
			match = strings.Contains(strings.ToLower(f.Title), q)
		}
		if match {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// ListCities returns all cities.
func (s *Store) ListCities(_ context.Context) ([]model.City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCities"); err != nil {
		return nil, err
	}
	return append([]model.City(nil), s.Cities...), nil
}

// ListCustomers pages through customers matching filter.
func (s *Store) ListCustomers(_ context.Context, filter repository.CustomerFilter, limit, offset int) ([]model.Customer, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCustomers"); err != nil {
		return nil, 0, err
	}

	name := strings.ToLower(filter.Name)
	var matched []model.Customer
	for _, c := range s.Customers {
		switch {
		case filter.ID != nil:
			if c.ID != *filter.ID {
				continue
			}
		case name != "":
			if !strings.Contains(strings.ToLower(c.FullName()), name) {
				continue
			}
		}
		matched = append(matched, c)
	}

	total := len(matched)
	if offset >= total {
		return []model.Customer{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// CreateCustomer appends a customer.
func (s *Store) CreateCustomer(_ context.Context, in repository.NewCustomer) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateCustomer"); err != nil {
		return 0, err
	}

	var city *model.City
	for i := range s.Cities {
		if s.Cities[i].ID == in.CityID {
			city = &s.Cities[i]
		}
	}
	if city == nil {
		return 0, repository.ErrCityNotFound
	}

	s.next++
	s.Customers = append(s.Customers, model.Customer{
		ID:         s.next,
		StoreID:    in.StoreID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Active:     true,
		CreateDate: time.Now().UTC(),
		Address:    in.Address,
		Phone:      in.Phone,
		City:       city.Name,
	})
	return s.next, nil
}

// UpdateCustomer edits a stored customer.
func (s *Store) UpdateCustomer(_ context.Context, id int64, in repository.CustomerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateCustomer"); err != nil {
		return err
	}

	c := s.customer(id)
	if c == nil {
		return repository.ErrCustomerNotFound
	}
	if in.FirstName != nil {
		c.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		c.LastName = *in.LastName
	}
	if in.Email != nil {
		c.Email = *in.Email
	}
	c.Active = in.Active
	return nil
}

// DeactivateCustomer marks a customer inactive unless they hold open rentals.
func (s *Store) DeactivateCustomer(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeactivateCustomer"); err != nil {
		return err
	}

	for _, r := range s.Rentals {
		if r.CustomerID == id && r.ReturnedAt == nil {
			return repository.ErrCustomerHasOpenRentals
		}
	}
	c := s.customer(id)
	if c == nil {
		return repository.ErrCustomerNotFound
	}
	c.Active = false
	return nil
}

// GetCustomerDetails returns a customer with rental history, newest first.
func (s *Store) GetCustomerDetails(_ context.Context, id int64) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetCustomerDetails"); err != nil {
		return nil, err
	}

	c := s.customer(id)
	if c == nil {
		return nil, repository.ErrCustomerNotFound
	}
	out := *c
	for i := len(s.Rentals) - 1; i >= 0; i-- {
		r := s.Rentals[i]
		if r.CustomerID != id {
			continue
		}
		rental := model.Rental{
			ID:         r.ID,
			RentalDate: r.RentedAt,
			ReturnDate: r.ReturnedAt,
			Status:     model.StatusFor(r.ReturnedAt),
		}
		for _, f := range s.Films {
			if f.ID == r.FilmID {
				rental.Title = f.Title
				rental.RentalRate = f.RentalRate
			}
		}
		out.RentalHistory = append(out.RentalHistory, rental)
	}
	return &out, nil
}

// RentFilm opens a rental when a copy of the film is free.
func (s *Store) RentFilm(_ context.Context, in repository.NewRental) (*repository.RentalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("RentFilm"); err != nil {
		return nil, err
	}

	open := 0
	for _, r := range s.Rentals {
		if r.FilmID == in.FilmID && r.ReturnedAt == nil {
			open++
		}
	}
	if open >= s.Copies[in.FilmID] {
		return nil, repository.ErrFilmUnavailable
	}
	if s.customer(in.CustomerID) == nil {
		return nil, repository.ErrCustomerNotFound
	}

	s.next++
	s.Rentals = append(s.Rentals, Rental{
		ID:         s.next,
		CustomerID: in.CustomerID,
		FilmID:     in.FilmID,
		RentedAt:   in.RentedAt,
	})
	return &repository.RentalRecord{ID: s.next, CustomerID: in.CustomerID, FilmID: in.FilmID, ActorIDs: s.filmActorIDs(in.FilmID)}, nil
}

// ReturnRental closes an open rental.
func (s *Store) ReturnRental(_ context.Context, id int64, returnedAt time.Time) (*repository.RentalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ReturnRental"); err != nil {
		return nil, err
	}

	for i := range s.Rentals {
		r := &s.Rentals[i]
		if r.ID == id && r.ReturnedAt == nil {
			at := returnedAt
			r.ReturnedAt = &at
			return &repository.RentalRecord{ID: r.ID, CustomerID: r.CustomerID, FilmID: r.FilmID, ActorIDs: s.filmActorIDs(r.FilmID)}, nil
		}
	}
	return nil, repository.ErrRentalNotOpen
}

func (s *Store) filmActorIDs(filmID int64) []int64 {
	var ids []int64
	for _, f := range s.Films {
		if f.ID != filmID {
			continue
		}
		for _, a := range f.Actors {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func (s *Store) customer(id int64) *model.Customer {
	for i := range s.Customers {
		if s.Customers[i].ID == id {
			return &s.Customers[i]
		}
	}
	return nil
}

func head[T any](items []T, n int) []T {
	if n < len(items) {
		items = items[:n]
	}
	return append([]T(nil), items...)
}
