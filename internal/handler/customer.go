package handler

import (
	"log/slog"
	"net/http"

	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/service"
)

// CustomerHandler handles customer management requests.
type CustomerHandler struct {
	svc    *service.CustomerService
	logger *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{svc: svc, logger: logger}
}

// List handles GET /api/customers?page=&per_page=&search=&search_type=.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid page")
		return
	}
	perPage, ok := queryInt(r, "per_page")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid per_page")
		return
	}

	query := r.URL.Query()
	result, err := h.svc.ListCustomers(r.Context(), service.ListCustomersInput{
		Page:       page,
		PerPage:    perPage,
		Search:     query.Get("search"),
		SearchType: query.Get("search_type"),
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Create handles POST /api/customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.svc.CreateCustomer(r.Context(), service.CreateCustomerInput{
		StoreID:   req.StoreID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Address:   req.Address,
		District:  req.District,
		CityID:    req.CityID,
		Phone:     req.Phone,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CreateCustomerResponse{
		Message:    "Customer added successfully",
		CustomerID: id,
	})
}

// Update handles PUT /api/customers/{id}.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.svc.UpdateCustomer(r.Context(), id, service.UpdateCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Active:    req.Active,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Customer updated successfully"})
}

// Delete handles DELETE /api/customers/{id}.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Customer deleted successfully"})
}

// Details handles GET /api/customers/{id}/details.
func (h *CustomerHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	customer, err := h.svc.GetCustomerDetails(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}
