// Package model defines domain entities shared by the API and the web front.
// Field names and JSON tags mirror the REST payloads one to one.
package model

import "time"

// Film is a catalog title.
// Detail-only fields are omitted from list payloads.
type Film struct {
	ID              int64      `json:"film_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	ReleaseYear     int        `json:"release_year,omitempty"`
	RentalRate      float64    `json:"rental_rate"`
	Length          int        `json:"length"`
	Rating          string     `json:"rating"`
	RentalDuration  int        `json:"rental_duration,omitempty"`
	ReplacementCost float64    `json:"replacement_cost,omitempty"`
	SpecialFeatures []string   `json:"special_features,omitempty"`
	LanguageName    string     `json:"language_name,omitempty"`
	CategoryName    string     `json:"category_name,omitempty"`
	LastUpdate      *time.Time `json:"last_update,omitempty"`

	// RentalCount is set on ranked listings only.
	RentalCount int64 `json:"rental_count,omitempty"`

	// Actors is set on the film detail payload only.
	Actors []Actor `json:"actors,omitempty"`
}

// FilmSearchType selects the field a film search matches against.
type FilmSearchType string

const (
	FilmSearchTitle FilmSearchType = "title"
	FilmSearchActor FilmSearchType = "actor"
	FilmSearchGenre FilmSearchType = "genre"
)

// ParseFilmSearchType returns the search type for s, defaulting to title.
func ParseFilmSearchType(s string) FilmSearchType {
	switch FilmSearchType(s) {
	case FilmSearchActor:
		return FilmSearchActor
	case FilmSearchGenre:
		return FilmSearchGenre
	default:
		return FilmSearchTitle
	}
}
