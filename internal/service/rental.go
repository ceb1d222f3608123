package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reelstore/reelstore/internal/cache"
	"github.com/reelstore/reelstore/internal/events"
	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/repository"
)

// RentalService checks films out to customers and back in.
type RentalService struct {
	store   RentalStore
	cache   Cache
	events  EventPublisher
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewRentalService creates a RentalService. c and publisher may be nil.
func NewRentalService(store RentalStore, c Cache, publisher EventPublisher, logger *slog.Logger, recorder metrics.Recorder) *RentalService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RentalService{
		store:   store,
		cache:   c,
		events:  publisher,
		logger:  logger.With("component", "service.rental"),
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RentFilmInput identifies who rents what. StaffID defaults to 1.
type RentFilmInput struct {
	CustomerID int64
	FilmID     int64
	StaffID    int64
}

// RentFilm checks out a free copy of the film and records the payment.
// Returns the new rental id.
func (s *RentalService) RentFilm(ctx context.Context, in RentFilmInput) (int64, error) {
	if in.CustomerID == 0 || in.FilmID == 0 {
		return 0, ErrRentalIDsRequired
	}

	staffID := in.StaffID
	if staffID == 0 {
		staffID = defaultStaffID
	}

	start := time.Now()
	record, err := s.store.RentFilm(ctx, repository.NewRental{
		CustomerID: in.CustomerID,
		FilmID:     in.FilmID,
		StaffID:    staffID,
		RentedAt:   s.now(),
	})
	s.metrics.ObserveRentDuration(time.Since(start))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrFilmUnavailable):
			s.metrics.IncRentalRejected()
			return 0, ErrFilmUnavailable
		case errors.Is(err, repository.ErrCustomerNotFound):
			return 0, ErrCustomerNotFound
		default:
			return 0, fmt.Errorf("failed to rent film: %w", err)
		}
	}

	s.metrics.IncRentalCreated()
	s.invalidateRankings(ctx, record)
	s.publish(events.RentalCreated, record)
	s.logger.Info("film rented",
		"rental_id", record.ID,
		"film_id", record.FilmID,
		"customer_id", record.CustomerID,
		"inventory_id", record.InventoryID,
	)

	return record.ID, nil
}

// ReturnRental closes an open rental.
func (s *RentalService) ReturnRental(ctx context.Context, rentalID int64) error {
	record, err := s.store.ReturnRental(ctx, rentalID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrRentalNotOpen) {
			return ErrRentalNotOpen
		}
		return fmt.Errorf("failed to return rental: %w", err)
	}

	s.metrics.IncRentalReturned()
	s.invalidateRankings(ctx, record)
	s.publish(events.RentalReturned, record)
	s.logger.Info("rental returned", "rental_id", record.ID, "customer_id", record.CustomerID)

	return nil
}

// invalidateRankings drops the cached top lists and the details of every
// actor credited on the film, whose per-film rental counts just changed.
func (s *RentalService) invalidateRankings(ctx context.Context, record *repository.RentalRecord) {
	if s.cache == nil {
		return
	}
	keys := []string{cache.TopFilmsKey, cache.TopActorsKey}
	for _, id := range record.ActorIDs {
		keys = append(keys, cache.ActorKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate rankings", "error", err)
	}
}

func (s *RentalService) publish(t events.Type, record *repository.RentalRecord) {
	if s.events == nil {
		return
	}
	event := s.events.NewEvent(t)
	event.RentalID = record.ID
	event.CustomerID = record.CustomerID
	event.FilmID = record.FilmID
	s.events.PublishAsync(event)
}
