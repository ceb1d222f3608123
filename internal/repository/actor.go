package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reelstore/reelstore/internal/model"
)

// TopActors returns the actors whose films were rented most, most rented first.
func (r *Repository) TopActors(ctx context.Context, limit int) ([]model.Actor, error) {
	query := `
		SELECT a.actor_id, a.first_name, a.last_name, COUNT(r.rental_id) AS rental_count
		FROM actor a
		JOIN film_actor fa ON a.actor_id = fa.actor_id
		JOIN inventory i ON fa.film_id = i.film_id
		JOIN rental r ON i.inventory_id = r.inventory_id
		GROUP BY a.actor_id
		ORDER BY rental_count DESC, a.actor_id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top actors: %w", err)
	}
	defer rows.Close()

	actors := make([]model.Actor, 0, limit)
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.RentalCount); err != nil {
			return nil, fmt.Errorf("failed to scan actor: %w", err)
		}
		actors = append(actors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top actors: %w", err)
	}

	return actors, nil
}

// GetActor retrieves an actor with their most rented films.
func (r *Repository) GetActor(ctx context.Context, id int64, filmLimit int) (*model.Actor, error) {
	query := `
		SELECT actor_id, first_name, last_name, last_update
		FROM actor
		WHERE actor_id = $1
	`

	var a model.Actor
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.FirstName, &a.LastName, &a.LastUpdate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	filmsQuery := `
		SELECT f.film_id, f.title, f.description, f.rental_rate, COUNT(r.rental_id) AS rental_count
		FROM film f
		JOIN film_actor fa ON f.film_id = fa.film_id
		JOIN inventory i ON f.film_id = i.film_id
		JOIN rental r ON i.inventory_id = r.inventory_id
		WHERE fa.actor_id = $1
		GROUP BY f.film_id
		ORDER BY rental_count DESC, f.film_id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, filmsQuery, id, filmLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query actor films: %w", err)
	}
	defer rows.Close()

	a.Films = []model.Film{}
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.RentalRate, &f.RentalCount); err != nil {
			return nil, fmt.Errorf("failed to scan actor film: %w", err)
		}
		a.Films = append(a.Films, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actor films: %w", err)
	}

	return &a, nil
}
