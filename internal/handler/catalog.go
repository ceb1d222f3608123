package handler

import (
	"log/slog"
	"net/http"

	"github.com/reelstore/reelstore/internal/service"
)

// CatalogHandler serves films, actors and cities.
type CatalogHandler struct {
	svc    *service.CatalogService
	logger *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, logger: logger}
}

// TopFilms handles GET /api/top-films.
func (h *CatalogHandler) TopFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.svc.TopFilms(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

// TopActors handles GET /api/top-actors.
func (h *CatalogHandler) TopActors(w http.ResponseWriter, r *http.Request) {
	actors, err := h.svc.TopActors(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, actors)
}

// GetFilm handles GET /api/film/{id}.
func (h *CatalogHandler) GetFilm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid film id")
		return
	}

	film, err := h.svc.GetFilm(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// GetActor handles GET /api/actor/{id}.
func (h *CatalogHandler) GetActor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid actor id")
		return
	}

	actor, err := h.svc.GetActor(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, actor)
}

// SearchFilms handles GET /api/films/search?q=&type=.
func (h *CatalogHandler) SearchFilms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	films, err := h.svc.SearchFilms(r.Context(), query.Get("q"), query.Get("type"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, films)
}

// Cities handles GET /api/cities.
func (h *CatalogHandler) Cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.svc.Cities(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cities)
}
