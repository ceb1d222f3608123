package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reelstore/reelstore/internal/model"
)

// CustomerFilter narrows the customer listing.
// At most one of Name or ID is applied; ID wins when both are set.
type CustomerFilter struct {
	Name string
	ID   *int64
}

// NewCustomer holds the fields needed to register a customer and their address.
type NewCustomer struct {
	StoreID   int64
	FirstName string
	LastName  string
	Email     string
	Address   string
	District  string
	CityID    int64
	Phone     string
}

// CustomerUpdate holds the mutable customer fields.
// Nil string fields keep their stored value.
type CustomerUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Active    bool
}

// whereClause renders the filter with numbered placeholders starting at $1.
func (f CustomerFilter) whereClause() (string, []any) {
	switch {
	case f.ID != nil:
		return "WHERE c.customer_id = $1", []any{*f.ID}
	case f.Name != "":
		return `WHERE (c.first_name || ' ' || c.last_name) ILIKE $1
		   OR c.first_name ILIKE $1
		   OR c.last_name ILIKE $1`, []any{likePattern(f.Name)}
	default:
		return "", nil
	}
}

// ListCustomers returns one page of customers and the total match count.
func (r *Repository) ListCustomers(ctx context.Context, filter CustomerFilter, limit, offset int) ([]model.Customer, int, error) {
	where, args := filter.whereClause()

	countQuery := "SELECT COUNT(*) FROM customer c " + where

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	argIndex := len(args) + 1
	query := fmt.Sprintf(`
		SELECT c.customer_id, c.store_id, c.first_name, c.last_name, COALESCE(c.email, ''),
		       c.active, c.create_date, a.address, ci.city, co.country
		FROM customer c
		JOIN address a ON c.address_id = a.address_id
		JOIN city ci ON a.city_id = ci.city_id
		JOIN country co ON ci.country_id = co.country_id
		%s
		ORDER BY c.customer_id
		LIMIT $%d OFFSET $%d
	`, where, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(
			&c.ID,
			&c.StoreID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Active,
			&c.CreateDate,
			&c.Address,
			&c.City,
			&c.Country,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, total, nil
}

// CreateCustomer inserts the address and the customer in one transaction.
func (r *Repository) CreateCustomer(ctx context.Context, in NewCustomer) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var addressID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO address (address, district, city_id, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING address_id
	`, in.Address, in.District, in.CityID, in.Phone).Scan(&addressID)
	if err != nil {
		if isForeignKeyViolation(err, "address_city_id") {
			return 0, ErrCityNotFound
		}
		return 0, fmt.Errorf("failed to create address: %w", err)
	}

	var customerID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO customer (store_id, first_name, last_name, email, address_id, create_date)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING customer_id
	`, in.StoreID, in.FirstName, in.LastName, in.Email, addressID).Scan(&customerID)
	if err != nil {
		return 0, fmt.Errorf("failed to create customer: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit customer: %w", err)
	}

	return customerID, nil
}

// UpdateCustomer updates a customer's name, email and active flag.
func (r *Repository) UpdateCustomer(ctx context.Context, id int64, in CustomerUpdate) error {
	query := `
		UPDATE customer
		SET first_name = COALESCE($2, first_name),
		    last_name = COALESCE($3, last_name),
		    email = COALESCE($4, email),
		    active = $5,
		    last_update = NOW()
		WHERE customer_id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, in.FirstName, in.LastName, in.Email, in.Active)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// DeactivateCustomer soft deletes a customer without open rentals.
func (r *Repository) DeactivateCustomer(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var open int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM rental
		WHERE customer_id = $1 AND return_date IS NULL
	`, id).Scan(&open)
	if err != nil {
		return fmt.Errorf("failed to count open rentals: %w", err)
	}

	if open > 0 {
		return ErrCustomerHasOpenRentals
	}

	result, err := tx.Exec(ctx, `
		UPDATE customer SET active = FALSE, last_update = NOW()
		WHERE customer_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate customer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit customer deactivation: %w", err)
	}

	return nil
}

// GetCustomerDetails retrieves a customer with contact data and rental history.
// History is ordered by rental date, newest first.
func (r *Repository) GetCustomerDetails(ctx context.Context, id int64) (*model.Customer, error) {
	query := `
		SELECT c.customer_id, c.store_id, c.first_name, c.last_name, COALESCE(c.email, ''),
		       c.active, c.create_date, a.address, a.phone, ci.city, co.country
		FROM customer c
		JOIN address a ON c.address_id = a.address_id
		JOIN city ci ON a.city_id = ci.city_id
		JOIN country co ON ci.country_id = co.country_id
		WHERE c.customer_id = $1
	`

	var c model.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.StoreID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Active,
		&c.CreateDate,
		&c.Address,
		&c.Phone,
		&c.City,
		&c.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	rentalsQuery := `
		SELECT r.rental_id, r.rental_date, r.return_date, f.title, f.rental_rate
		FROM rental r
		JOIN inventory i ON r.inventory_id = i.inventory_id
		JOIN film f ON i.film_id = f.film_id
		WHERE r.customer_id = $1
		ORDER BY r.rental_date DESC, r.rental_id DESC
	`

	rows, err := r.pool.Query(ctx, rentalsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rental history: %w", err)
	}
	defer rows.Close()

	c.RentalHistory = []model.Rental{}
	for rows.Next() {
		var rental model.Rental
		if err := rows.Scan(&rental.ID, &rental.RentalDate, &rental.ReturnDate, &rental.Title, &rental.RentalRate); err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rental.Status = model.StatusFor(rental.ReturnDate)
		c.RentalHistory = append(c.RentalHistory, rental)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rental history: %w", err)
	}

	return &c, nil
}
