package pages

import (
	"context"
	"sync"

	"github.com/reelstore/reelstore/internal/apiclient"
	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/model"
)

// fakeAPI records every call and answers from canned data.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	films     []model.Film
	actors    []model.Actor
	search    []model.Film
	customers map[int][]model.Customer
	total     int
	cities    []model.City
	details   *model.Customer

	// errs fails the named method with the given error.
	errs map[string]error

	lastSearch   []any
	lastQuery    apiclient.CustomerQuery
	lastCreate   dto.CreateCustomerRequest
	lastUpdate   dto.UpdateCustomerRequest
	lastRent     [2]int64
	lastReturned int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: make(map[string]int),
		errs:  make(map[string]error),
		films: []model.Film{{ID: 1, Title: "ACADEMY DINOSAUR", RentalCount: 34}},
		actors: []model.Actor{
			{ID: 107, FirstName: "GINA", LastName: "DEGENERES", RentalCount: 753},
		},
		search: []model.Film{
			{ID: 1, Title: "ACADEMY DINOSAUR"},
			{ID: 2, Title: "ACE GOLDFINGER"},
		},
		customers: map[int][]model.Customer{
			1: {{ID: 1, FirstName: "MARY", LastName: "SMITH", Active: true}},
			2: {{ID: 11, FirstName: "LISA", LastName: "ANDERSON", Active: true}},
		},
		total:  11,
		cities: []model.City{{ID: 300, Name: "Lethbridge"}},
	}
}

func (f *fakeAPI) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.errs[method]
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeAPI) TopFilms(context.Context) ([]model.Film, error) {
	if err := f.enter("TopFilms"); err != nil {
		return nil, err
	}
	return f.films, nil
}

func (f *fakeAPI) TopActors(context.Context) ([]model.Actor, error) {
	if err := f.enter("TopActors"); err != nil {
		return nil, err
	}
	return f.actors, nil
}

func (f *fakeAPI) SearchFilms(_ context.Context, q string, by model.FilmSearchType) ([]model.Film, error) {
	f.lastSearch = []any{q, by}
	if err := f.enter("SearchFilms"); err != nil {
		return nil, err
	}
	return f.search, nil
}

func (f *fakeAPI) RentFilm(_ context.Context, customerID, filmID int64) (*model.RentalReceipt, error) {
	f.lastRent = [2]int64{customerID, filmID}
	if err := f.enter("RentFilm"); err != nil {
		return nil, err
	}
	return &model.RentalReceipt{Message: "Film rented successfully", RentalID: 16050}, nil
}

func (f *fakeAPI) Customers(_ context.Context, q apiclient.CustomerQuery) (*model.CustomerPage, error) {
	f.lastQuery = q
	if err := f.enter("Customers"); err != nil {
		return nil, err
	}
	return &model.CustomerPage{
		Customers:  f.customers[q.Page],
		Total:      f.total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: model.TotalPages(f.total, q.PerPage),
	}, nil
}

func (f *fakeAPI) Cities(context.Context) ([]model.City, error) {
	if err := f.enter("Cities"); err != nil {
		return nil, err
	}
	return f.cities, nil
}

func (f *fakeAPI) CreateCustomer(_ context.Context, req dto.CreateCustomerRequest) (int64, error) {
	f.lastCreate = req
	if err := f.enter("CreateCustomer"); err != nil {
		return 0, err
	}
	return 600, nil
}

func (f *fakeAPI) UpdateCustomer(_ context.Context, _ int64, req dto.UpdateCustomerRequest) error {
	f.lastUpdate = req
	return f.enter("UpdateCustomer")
}

func (f *fakeAPI) DeleteCustomer(context.Context, int64) error {
	return f.enter("DeleteCustomer")
}

func (f *fakeAPI) Film(_ context.Context, id int64) (*model.Film, error) {
	if err := f.enter("Film"); err != nil {
		return nil, err
	}
	return &model.Film{ID: id, Title: "ACADEMY DINOSAUR"}, nil
}

func (f *fakeAPI) Actor(_ context.Context, id int64) (*model.Actor, error) {
	if err := f.enter("Actor"); err != nil {
		return nil, err
	}
	return &model.Actor{ID: id, FirstName: "PENELOPE", LastName: "GUINESS"}, nil
}

func (f *fakeAPI) CustomerDetails(context.Context, int64) (*model.Customer, error) {
	if err := f.enter("CustomerDetails"); err != nil {
		return nil, err
	}
	c := *f.details
	return &c, nil
}

func (f *fakeAPI) ReturnRental(_ context.Context, rentalID int64) error {
	f.lastReturned = rentalID
	return f.enter("ReturnRental")
}
