// Package dto provides request and response bodies of the store API that
// have no domain model counterpart.
package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// RentFilmRequest is the body of POST /films/rent.
type RentFilmRequest struct {
	CustomerID int64 `json:"customer_id"`
	FilmID     int64 `json:"film_id"`
	StaffID    int64 `json:"staff_id,omitempty"`
}

// CreateCustomerRequest is the body of POST /customers.
type CreateCustomerRequest struct {
	StoreID   int64  `json:"store_id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	District  string `json:"district,omitempty"`
	CityID    int64  `json:"city_id"`
	Phone     string `json:"phone"`
}

// CreateCustomerResponse acknowledges a new customer.
type CreateCustomerResponse struct {
	Message    string `json:"message"`
	CustomerID int64  `json:"customer_id"`
}

// UpdateCustomerRequest is the body of PUT /customers/{id}.
type UpdateCustomerRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}
