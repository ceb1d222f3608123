// Package handler provides the store API's HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/service"
)

// Handler serves the fallback responses shared by every route.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// RegisterRoutes mounts the store endpoints on r. The caller picks the prefix.
func RegisterRoutes(r chi.Router, catalog *CatalogHandler, customers *CustomerHandler, rentals *RentalHandler) {
	r.Get("/top-films", catalog.TopFilms)
	r.Get("/top-actors", catalog.TopActors)
	r.Get("/film/{id}", catalog.GetFilm)
	r.Get("/actor/{id}", catalog.GetActor)
	r.Get("/films/search", catalog.SearchFilms)
	r.Get("/cities", catalog.Cities)

	r.Post("/films/rent", rentals.Rent)
	r.Put("/rentals/{id}/return", rentals.Return)

	r.Get("/customers", customers.List)
	r.Post("/customers", customers.Create)
	r.Put("/customers/{id}", customers.Update)
	r.Delete("/customers/{id}", customers.Delete)
	r.Get("/customers/{id}/details", customers.Details)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the {"error": message} body used by every failure.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// decodeJSON reads a JSON request body into dest.
func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter. Missing values yield 0.
func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var fieldErr *service.RequiredFieldError
	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, fieldErr.Error())
	case errors.Is(err, service.ErrFilmNotFound):
		writeError(w, http.StatusNotFound, "Film not found")
	case errors.Is(err, service.ErrActorNotFound):
		writeError(w, http.StatusNotFound, "Actor not found")
	case errors.Is(err, service.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "Customer not found")
	case errors.Is(err, service.ErrCityNotFound):
		writeError(w, http.StatusBadRequest, "City not found")
	case errors.Is(err, service.ErrRentalIDsRequired):
		writeError(w, http.StatusBadRequest, "Customer ID and Film ID are required")
	case errors.Is(err, service.ErrFilmUnavailable):
		writeError(w, http.StatusBadRequest, "Film is not available for rent")
	case errors.Is(err, service.ErrRentalNotOpen):
		writeError(w, http.StatusBadRequest, "Rental not found or already returned")
	case errors.Is(err, service.ErrCustomerHasActiveRentals):
		writeError(w, http.StatusBadRequest, "Cannot delete customer with active rentals")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
