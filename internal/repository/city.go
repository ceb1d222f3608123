package repository

import (
	"context"
	"fmt"

	"github.com/reelstore/reelstore/internal/model"
)

// ListCities returns every city ordered by name.
func (r *Repository) ListCities(ctx context.Context) ([]model.City, error) {
	rows, err := r.pool.Query(ctx, `SELECT city_id, city FROM city ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	cities := []model.City{}
	for rows.Next() {
		var c model.City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, c)
	}

	return cities, rows.Err()
}
