package web

import (
	"net/http"
	"strconv"

	"github.com/reelstore/reelstore/internal/pages"
)

// Landing handles GET /.
func (s *Server) Landing(w http.ResponseWriter, r *http.Request) {
	page := pages.NewLandingPage(s.api, s.logger)
	page.Load(r.Context())
	s.render(w, pageStatus(&page.View), "landing", layoutData{Title: "Home", Nav: "home", Page: page})
}

// Films handles GET /films?q=&type=&rent=. A rent value opens the rent
// dialog for that film.
func (s *Server) Films(w http.ResponseWriter, r *http.Request) {
	page := pages.NewFilmsPage(s.api, s.logger)
	query := r.URL.Query()
	page.Search(r.Context(), query.Get("q"), query.Get("type"))

	if filmID, ok := formID(r, "rent"); ok {
		page.OpenRent(filmID)
	}
	s.render(w, pageStatus(&page.View), "films", layoutData{Title: "Films", Nav: "films", Page: page})
}

// RentFilm handles POST /films/rent.
func (s *Server) RentFilm(w http.ResponseWriter, r *http.Request) {
	filmID, ok := formID(r, "film_id")
	if !ok {
		s.badRequest(w, "Invalid film id")
		return
	}

	page := pages.NewFilmsPage(s.api, s.logger)
	page.Search(r.Context(), r.FormValue("q"), r.FormValue("type"))
	page.RentFilm(r.Context(), filmID, r.FormValue("customer_id"))
	s.render(w, pageStatus(&page.View), "films", layoutData{Title: "Films", Nav: "films", Page: page})
}

// customersPage mounts the customers page at the position carried by the
// request and loads it.
func (s *Server) customersPage(r *http.Request) *pages.CustomersPage {
	page := pages.NewCustomersPage(s.api, s.perPage, s.logger)
	n, _ := strconv.Atoi(r.FormValue("page"))
	page.Restore(r.FormValue("search"), r.FormValue("search_type"), n)
	page.LoadCities(r.Context())
	page.Refresh(r.Context())
	return page
}

func (s *Server) renderCustomers(w http.ResponseWriter, page *pages.CustomersPage) {
	s.render(w, pageStatus(&page.View), "customers", layoutData{Title: "Customers", Nav: "customers", Page: page})
}

// Customers handles GET /customers?page=&search=&search_type=&add=&edit=.
func (s *Server) Customers(w http.ResponseWriter, r *http.Request) {
	page := s.customersPage(r)

	if r.FormValue("add") != "" {
		page.OpenAdd()
	}
	if id, ok := formID(r, "edit"); ok {
		page.OpenEdit(id)
	}
	s.renderCustomers(w, page)
}

// CreateCustomer handles POST /customers.
func (s *Server) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	page := s.customersPage(r)
	page.Create(r.Context(), pages.CustomerForm{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Address:   r.FormValue("address"),
		CityID:    r.FormValue("city_id"),
		Phone:     r.FormValue("phone"),
	})
	s.renderCustomers(w, page)
}

// UpdateCustomer handles POST /customers/{id}.
func (s *Server) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "Invalid customer id")
		return
	}

	page := s.customersPage(r)
	page.Update(r.Context(), pages.EditForm{
		ID:        id,
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Active:    r.FormValue("active") != "",
	})
	s.renderCustomers(w, page)
}

// DeleteCustomer handles POST /customers/{id}/delete.
func (s *Server) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "Invalid customer id")
		return
	}

	page := s.customersPage(r)
	page.Delete(r.Context(), id)
	s.renderCustomers(w, page)
}

// FilmDetails handles GET /film/{id}.
func (s *Server) FilmDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "Invalid film id")
		return
	}

	page := pages.NewFilmDetailsPage(s.api, s.logger)
	page.Load(r.Context(), id)
	s.render(w, pageStatus(&page.View), "film", layoutData{Title: "Film", Nav: "films", Page: page})
}

// ActorDetails handles GET /actor/{id}.
func (s *Server) ActorDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "Invalid actor id")
		return
	}

	page := pages.NewActorDetailsPage(s.api, s.logger)
	page.Load(r.Context(), id)
	s.render(w, pageStatus(&page.View), "actor", layoutData{Title: "Actor", Nav: "home", Page: page})
}

// CustomerDetails handles GET /customer/{id}.
func (s *Server) CustomerDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "Invalid customer id")
		return
	}

	page := pages.NewCustomerDetailsPage(s.api, s.logger)
	page.Load(r.Context(), id)
	s.render(w, pageStatus(&page.View), "customer", layoutData{Title: "Customer", Nav: "customers", Page: page})
}

// ReturnRental handles POST /customer/{id}/rentals/{rentalID}/return.
func (s *Server) ReturnRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "Invalid customer id")
		return
	}
	rentalID, ok := pathID(r, "rentalID")
	if !ok {
		s.badRequest(w, "Invalid rental id")
		return
	}

	page := pages.NewCustomerDetailsPage(s.api, s.logger)
	page.Load(r.Context(), id)
	page.ReturnRental(r.Context(), rentalID)
	s.render(w, pageStatus(&page.View), "customer", layoutData{Title: "Customer", Nav: "customers", Page: page})
}
