package model

import "time"

// Customer is a store member who can rent films.
type Customer struct {
	ID         int64     `json:"customer_id"`
	StoreID    int64     `json:"store_id,omitempty"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Active     bool      `json:"active"`
	CreateDate time.Time `json:"create_date"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone,omitempty"`
	City       string    `json:"city"`
	Country    string    `json:"country"`

	// RentalHistory is set on the details payload only.
	RentalHistory []Rental `json:"rental_history,omitempty"`
}

// FullName returns "First Last".
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CustomerSearchType selects the field a customer search matches against.
type CustomerSearchType string

const (
	CustomerSearchName CustomerSearchType = "name"
	CustomerSearchID   CustomerSearchType = "customer_id"
)

// ParseCustomerSearchType returns the search type for s, defaulting to name.
func ParseCustomerSearchType(s string) CustomerSearchType {
	if CustomerSearchType(s) == CustomerSearchID {
		return CustomerSearchID
	}
	return CustomerSearchName
}

// CustomerPage is one page of the customer listing.
type CustomerPage struct {
	Customers  []Customer `json:"customers"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	TotalPages int        `json:"total_pages"`
}

// TotalPages returns the number of pages needed for total rows.
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// City is an entry of the city selector.
type City struct {
	ID   int64  `json:"city_id"`
	Name string `json:"city"`
}
