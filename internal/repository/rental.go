package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// NewRental describes a rent request.
type NewRental struct {
	CustomerID int64
	FilmID     int64
	StaffID    int64
	RentedAt   time.Time
}

// RentalRecord identifies a rental row after a mutation.
type RentalRecord struct {
	ID          int64
	CustomerID  int64
	InventoryID int64
	FilmID      int64
	Amount      float64
	// ActorIDs lists the actors credited on the film.
	ActorIDs []int64
}

// rentLockAttempts bounds how often RentFilm retries after locking a copy
// that another transaction rented in the meantime.
const rentLockAttempts = 3

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RentFilm checks out a free inventory copy of the film and records the
// payment, all in one transaction. A locked copy is re-checked for an open
// rental in a fresh statement, so a copy rented by a transaction that
// committed after ours started is skipped.
func (r *Repository) RentFilm(ctx context.Context, in NewRental) (*RentalRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rec := &RentalRecord{CustomerID: in.CustomerID, FilmID: in.FilmID}

	rec.InventoryID, err = lockFreeCopy(ctx, tx, in.FilmID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rental (rental_date, inventory_id, customer_id, staff_id)
		VALUES ($1, $2, $3, $4)
		RETURNING rental_id
	`, in.RentedAt, rec.InventoryID, in.CustomerID, in.StaffID).Scan(&rec.ID)
	if err != nil {
		if isForeignKeyViolation(err, "rental_customer_id") {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO payment (customer_id, staff_id, rental_id, amount, payment_date)
		SELECT $1, $2, $3, f.rental_rate, $4
		FROM film f WHERE f.film_id = $5
		RETURNING amount
	`, in.CustomerID, in.StaffID, rec.ID, in.RentedAt, in.FilmID).Scan(&rec.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	rec.ActorIDs, err = filmActorIDs(ctx, tx, in.FilmID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rental: %w", err)
	}

	return rec, nil
}

func lockFreeCopy(ctx context.Context, q rowQuerier, filmID int64) (int64, error) {
	for attempt := 0; attempt < rentLockAttempts; attempt++ {
		var inventoryID int64
		err := q.QueryRow(ctx, `
			SELECT i.inventory_id
			FROM inventory i
			WHERE i.film_id = $1
			  AND NOT EXISTS (
			      SELECT 1 FROM rental r
			      WHERE r.inventory_id = i.inventory_id AND r.return_date IS NULL
			  )
			ORDER BY i.inventory_id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`, filmID).Scan(&inventoryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrFilmUnavailable
			}
			return 0, fmt.Errorf("failed to find available inventory: %w", err)
		}

		var rented bool
		err = q.QueryRow(ctx, `
			SELECT EXISTS (
			    SELECT 1 FROM rental
			    WHERE inventory_id = $1 AND return_date IS NULL
			)
		`, inventoryID).Scan(&rented)
		if err != nil {
			return 0, fmt.Errorf("failed to check inventory: %w", err)
		}
		if !rented {
			return inventoryID, nil
		}
	}
	return 0, ErrFilmUnavailable
}

func filmActorIDs(ctx context.Context, q rowQuerier, filmID int64) ([]int64, error) {
	rows, err := q.Query(ctx, `SELECT actor_id FROM film_actor WHERE film_id = $1 ORDER BY actor_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list film actors: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan film actors: %w", err)
	}
	return ids, nil
}

// ReturnRental closes an open rental.
func (r *Repository) ReturnRental(ctx context.Context, id int64, returnedAt time.Time) (*RentalRecord, error) {
	query := `
		UPDATE rental r
		SET return_date = $2, last_update = NOW()
		FROM inventory i
		WHERE r.rental_id = $1
		  AND r.return_date IS NULL
		  AND i.inventory_id = r.inventory_id
		RETURNING r.rental_id, r.customer_id, r.inventory_id, i.film_id
	`

	rec := &RentalRecord{}
	err := r.pool.QueryRow(ctx, query, id, returnedAt).Scan(&rec.ID, &rec.CustomerID, &rec.InventoryID, &rec.FilmID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRentalNotOpen
		}
		return nil, fmt.Errorf("failed to return rental: %w", err)
	}

	rec.ActorIDs, err = filmActorIDs(ctx, r.pool, rec.FilmID)
	if err != nil {
		return nil, err
	}

	return rec, nil
}
