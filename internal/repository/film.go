package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reelstore/reelstore/internal/model"
)

// TopFilms returns the most rented films, most rented first.
func (r *Repository) TopFilms(ctx context.Context, limit int) ([]model.Film, error) {
	query := `
		SELECT f.film_id, f.title, f.description, f.rental_rate, f.length, f.rating,
		       COUNT(r.rental_id) AS rental_count
		FROM film f
		JOIN inventory i ON f.film_id = i.film_id
		JOIN rental r ON i.inventory_id = r.inventory_id
		GROUP BY f.film_id
		ORDER BY rental_count DESC, f.film_id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top films: %w", err)
	}
	defer rows.Close()

	films := make([]model.Film, 0, limit)
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.RentalRate, &f.Length, &f.Rating, &f.RentalCount); err != nil {
			return nil, fmt.Errorf("failed to scan film: %w", err)
		}
		films = append(films, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top films: %w", err)
	}

	return films, nil
}

// GetFilm retrieves a film with its language, category and cast.
func (r *Repository) GetFilm(ctx context.Context, id int64) (*model.Film, error) {
	query := `
		SELECT f.film_id, f.title, f.description, COALESCE(f.release_year, 0), f.rental_rate,
		       f.length, f.rating, f.rental_duration, f.replacement_cost, f.special_features,
		       COALESCE(l.name, ''), COALESCE(c.name, ''), f.last_update
		FROM film f
		LEFT JOIN language l ON f.language_id = l.language_id
		LEFT JOIN film_category fc ON f.film_id = fc.film_id
		LEFT JOIN category c ON fc.category_id = c.category_id
		WHERE f.film_id = $1
		LIMIT 1
	`

	var f model.Film
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.Title,
		&f.Description,
		&f.ReleaseYear,
		&f.RentalRate,
		&f.Length,
		&f.Rating,
		&f.RentalDuration,
		&f.ReplacementCost,
		&f.SpecialFeatures,
		&f.LanguageName,
		&f.CategoryName,
		&f.LastUpdate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, fmt.Errorf("failed to get film: %w", err)
	}

	actors, err := r.filmActors(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Actors = actors

	return &f, nil
}

func (r *Repository) filmActors(ctx context.Context, filmID int64) ([]model.Actor, error) {
	query := `
		SELECT a.actor_id, a.first_name, a.last_name
		FROM actor a
		JOIN film_actor fa ON a.actor_id = fa.actor_id
		WHERE fa.film_id = $1
		ORDER BY a.last_name, a.first_name
	`

	rows, err := r.pool.Query(ctx, query, filmID)
	if err != nil {
		return nil, fmt.Errorf("failed to query film actors: %w", err)
	}
	defer rows.Close()

	actors := []model.Actor{}
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		actors = append(actors, a)
	}

	return actors, rows.Err()
}

// SearchFilms returns films whose title, actor name or genre contains q.
func (r *Repository) SearchFilms(ctx context.Context, q string, by model.FilmSearchType) ([]model.Film, error) {
	var query string

	switch by {
	case model.FilmSearchActor:
		query = `
			SELECT DISTINCT f.film_id, f.title, f.description, f.rental_rate, f.length, f.rating
			FROM film f
			JOIN film_actor fa ON f.film_id = fa.film_id
			JOIN actor a ON fa.actor_id = a.actor_id
			WHERE (a.first_name || ' ' || a.last_name) ILIKE $1
			ORDER BY f.title
		`
	case model.FilmSearchGenre:
		query = `
			SELECT DISTINCT f.film_id, f.title, f.description, f.rental_rate, f.length, f.rating
			FROM film f
			JOIN film_category fc ON f.film_id = fc.film_id
			JOIN category c ON fc.category_id = c.category_id
			WHERE c.name ILIKE $1
			ORDER BY f.title
		`
	default:
		query = `
			SELECT film_id, title, description, rental_rate, length, rating
			FROM film
			WHERE title ILIKE $1
			ORDER BY title
		`
	}

	rows, err := r.pool.Query(ctx, query, likePattern(q))
	if err != nil {
		return nil, fmt.Errorf("failed to search films: %w", err)
	}
	defer rows.Close()

	films := []model.Film{}
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.RentalRate, &f.Length, &f.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan film: %w", err)
		}
		films = append(films, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating films: %w", err)
	}

	return films, nil
}
