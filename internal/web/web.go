// Package web serves the store's browser pages. Every page is rendered on
// the server from a request-scoped controller in package pages.
package web

import (
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reelstore/reelstore/internal/pages"
)

// Server renders pages over the store API.
type Server struct {
	api       pages.StoreAPI
	perPage   int
	templates map[string]*template.Template
	logger    *slog.Logger
}

// New parses the embedded templates and creates a Server.
func New(api pages.StoreAPI, customersPerPage int, logger *slog.Logger) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		api:       api,
		perPage:   customersPerPage,
		templates: templates,
		logger:    logger.With("component", "web"),
	}, nil
}

// RegisterRoutes mounts the page routes on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.Landing)

	r.Get("/films", s.Films)
	r.Post("/films/rent", s.RentFilm)

	r.Get("/customers", s.Customers)
	r.Post("/customers", s.CreateCustomer)
	r.Post("/customers/{id}", s.UpdateCustomer)
	r.Post("/customers/{id}/delete", s.DeleteCustomer)

	r.Get("/film/{id}", s.FilmDetails)
	r.Get("/actor/{id}", s.ActorDetails)
	r.Get("/customer/{id}", s.CustomerDetails)
	r.Post("/customer/{id}/rentals/{rentalID}/return", s.ReturnRental)
}

// NotFound renders the shell with a not found message.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusNotFound, "notfound", layoutData{Title: "Not found"})
}

// pageStatus is the HTTP status for a page whose fetch may have failed.
func pageStatus(v *pages.View) int {
	if v.Failed() {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formID parses a positive integer form or query value.
func formID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.FormValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// badRequest renders the shell with msg.
func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.render(w, http.StatusBadRequest, "notfound", layoutData{Title: "Bad request", Page: msg})
}
