// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/reelstore/reelstore/internal/migrate"
	"github.com/reelstore/reelstore/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetStoreSchema reverts and reapplies every migration.
func ResetStoreSchema(ctx context.Context, databaseURL string) error {
	db, err := migrate.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	m := migrate.New(db, migrations.FS, DiscardLogger())
	if err := m.Down(ctx); err != nil {
		return fmt.Errorf("revert migrations: %w", err)
	}
	if _, err := m.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Fixture identifies the rows inserted by SeedStore.
type Fixture struct {
	CityID      int64
	CustomerIDs []int64
	// FilmIDs[0] "ACADEMY DINOSAUR" has two copies and three past rentals.
	// FilmIDs[1] "ACE GOLDFINGER" has one copy, currently rented by CustomerIDs[0].
	// FilmIDs[2] "ADAPTATION HOLES" has no copies.
	FilmIDs        []int64
	ActorIDs       []int64
	OpenRentalID   int64
	ReturnedRental int64
}

// SeedStore inserts a small catalog with customers and rentals.
func SeedStore(ctx context.Context, pool *pgxpool.Pool) (*Fixture, error) {
	fx := &Fixture{}
	now := time.Now().UTC()

	exec := func(query string, args ...any) error {
		_, err := pool.Exec(ctx, query, args...)
		return err
	}
	scalar := func(dest *int64, query string, args ...any) error {
		return pool.QueryRow(ctx, query, args...).Scan(dest)
	}

	var langID, countryID, categoryID int64
	steps := []func() error{
		func() error { return scalar(&langID, `INSERT INTO language (name) VALUES ('English') RETURNING language_id`) },
		func() error {
			return scalar(&categoryID, `INSERT INTO category (name) VALUES ('Documentary') RETURNING category_id`)
		},
		func() error { return scalar(&countryID, `INSERT INTO country (country) VALUES ('Canada') RETURNING country_id`) },
		func() error {
			return scalar(&fx.CityID, `INSERT INTO city (city, country_id) VALUES ('Lethbridge', $1) RETURNING city_id`, countryID)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("seed reference data: %w", err)
		}
	}

	for _, title := range []string{"ACADEMY DINOSAUR", "ACE GOLDFINGER", "ADAPTATION HOLES"} {
		var id int64
		if err := scalar(&id, `
			INSERT INTO film (title, description, release_year, language_id, rental_rate, length, rating, special_features)
			VALUES ($1, 'A Epic Drama', 2006, $2, 0.99, 86, 'PG', ARRAY['Trailers'])
			RETURNING film_id
		`, title, langID); err != nil {
			return nil, fmt.Errorf("seed film: %w", err)
		}
		if err := exec(`INSERT INTO film_category (film_id, category_id) VALUES ($1, $2)`, id, categoryID); err != nil {
			return nil, fmt.Errorf("seed film category: %w", err)
		}
		fx.FilmIDs = append(fx.FilmIDs, id)
	}

	for _, name := range [][2]string{{"PENELOPE", "GUINESS"}, {"NICK", "WAHLBERG"}} {
		var id int64
		if err := scalar(&id, `INSERT INTO actor (first_name, last_name) VALUES ($1, $2) RETURNING actor_id`, name[0], name[1]); err != nil {
			return nil, fmt.Errorf("seed actor: %w", err)
		}
		fx.ActorIDs = append(fx.ActorIDs, id)
	}
	// PENELOPE in films 0 and 1, NICK in film 1 only.
	for _, pair := range [][2]int64{{fx.ActorIDs[0], fx.FilmIDs[0]}, {fx.ActorIDs[0], fx.FilmIDs[1]}, {fx.ActorIDs[1], fx.FilmIDs[1]}} {
		if err := exec(`INSERT INTO film_actor (actor_id, film_id) VALUES ($1, $2)`, pair[0], pair[1]); err != nil {
			return nil, fmt.Errorf("seed film actor: %w", err)
		}
	}

	for _, name := range [][2]string{{"MARY", "SMITH"}, {"PATRICIA", "JOHNSON"}, {"LINDA", "WILLIAMS"}} {
		var addressID, customerID int64
		if err := scalar(&addressID, `
			INSERT INTO address (address, district, city_id, phone)
			VALUES ('47 MySakila Drive', 'Alberta', $1, '14033335568')
			RETURNING address_id
		`, fx.CityID); err != nil {
			return nil, fmt.Errorf("seed address: %w", err)
		}
		if err := scalar(&customerID, `
			INSERT INTO customer (first_name, last_name, email, address_id)
			VALUES ($1, $2, $3, $4)
			RETURNING customer_id
		`, name[0], name[1], strings.ToLower(name[0]+"."+name[1])+"@sakilacustomer.org", addressID); err != nil {
			return nil, fmt.Errorf("seed customer: %w", err)
		}
		fx.CustomerIDs = append(fx.CustomerIDs, customerID)
	}

	var copyA1, copyA2, copyB int64
	for _, c := range []struct {
		dest   *int64
		filmID int64
	}{{&copyA1, fx.FilmIDs[0]}, {&copyA2, fx.FilmIDs[0]}, {&copyB, fx.FilmIDs[1]}} {
		if err := scalar(c.dest, `INSERT INTO inventory (film_id) VALUES ($1) RETURNING inventory_id`, c.filmID); err != nil {
			return nil, fmt.Errorf("seed inventory: %w", err)
		}
	}

	returned := now.Add(-24 * time.Hour)
	for i, copyID := range []int64{copyA1, copyA2, copyA1} {
		var id int64
		if err := scalar(&id, `
			INSERT INTO rental (rental_date, inventory_id, customer_id, return_date)
			VALUES ($1, $2, $3, $4)
			RETURNING rental_id
		`, now.Add(-time.Duration(72-i)*time.Hour), copyID, fx.CustomerIDs[1], returned); err != nil {
			return nil, fmt.Errorf("seed past rental: %w", err)
		}
		fx.ReturnedRental = id
	}

	if err := scalar(&fx.OpenRentalID, `
		INSERT INTO rental (rental_date, inventory_id, customer_id)
		VALUES ($1, $2, $3)
		RETURNING rental_id
	`, now.Add(-2*time.Hour), copyB, fx.CustomerIDs[0]); err != nil {
		return nil, fmt.Errorf("seed open rental: %w", err)
	}

	return fx, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
