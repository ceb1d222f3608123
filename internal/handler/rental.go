package handler

import (
	"log/slog"
	"net/http"

	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/model"
	"github.com/reelstore/reelstore/internal/service"
)

// RentalHandler handles rent and return requests.
type RentalHandler struct {
	svc    *service.RentalService
	logger *slog.Logger
}

// NewRentalHandler creates a new RentalHandler.
func NewRentalHandler(svc *service.RentalService, logger *slog.Logger) *RentalHandler {
	return &RentalHandler{svc: svc, logger: logger}
}

// Rent handles POST /api/films/rent.
func (h *RentalHandler) Rent(w http.ResponseWriter, r *http.Request) {
	var req dto.RentFilmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rentalID, err := h.svc.RentFilm(r.Context(), service.RentFilmInput{
		CustomerID: req.CustomerID,
		FilmID:     req.FilmID,
		StaffID:    req.StaffID,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RentalReceipt{
		Message:  "Film rented successfully",
		RentalID: rentalID,
	})
}

// Return handles PUT /api/rentals/{id}/return.
func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid rental id")
		return
	}

	if err := h.svc.ReturnRental(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Rental returned successfully"})
}
