package model

import "time"

// RentalStatus is derived from the presence of a return date.
type RentalStatus string

const (
	RentalActive   RentalStatus = "Active"
	RentalReturned RentalStatus = "Returned"
)

// Rental is one entry of a customer's rental history.
type Rental struct {
	ID         int64        `json:"rental_id"`
	RentalDate time.Time    `json:"rental_date"`
	ReturnDate *time.Time   `json:"return_date"`
	Title      string       `json:"title"`
	RentalRate float64      `json:"rental_rate"`
	Status     RentalStatus `json:"status"`
}

// StatusFor computes the status for a rental with the given return date.
func StatusFor(returnDate *time.Time) RentalStatus {
	if returnDate == nil {
		return RentalActive
	}
	return RentalReturned
}

// PartitionRentals splits a rental history into active and returned rentals.
// Order is preserved within each subset. Rentals carrying any other status
// are classified by their return date.
func PartitionRentals(history []Rental) (active, returned []Rental) {
	active = make([]Rental, 0, len(history))
	returned = make([]Rental, 0, len(history))
	for _, r := range history {
		status := r.Status
		if status != RentalActive && status != RentalReturned {
			status = StatusFor(r.ReturnDate)
		}
		if status == RentalActive {
			active = append(active, r)
		} else {
			returned = append(returned, r)
		}
	}
	return active, returned
}

// RentalReceipt is returned after a successful rent.
type RentalReceipt struct {
	Message  string `json:"message"`
	RentalID int64  `json:"rental_id"`
}
