package model

import "time"

// Actor is a performer credited on one or more films.
type Actor struct {
	ID         int64      `json:"actor_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	LastUpdate *time.Time `json:"last_update,omitempty"`

	// RentalCount is set on ranked listings only.
	RentalCount int64 `json:"rental_count,omitempty"`

	// Films holds the actor's most rented titles on the detail payload.
	Films []Film `json:"films,omitempty"`
}

// FullName returns "First Last".
func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}
