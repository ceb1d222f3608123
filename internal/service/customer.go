package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/reelstore/reelstore/internal/events"
	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/model"
	"github.com/reelstore/reelstore/internal/repository"
)

// CustomerService manages store members.
type CustomerService struct {
	store   CustomerStore
	events  EventPublisher
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewCustomerService creates a CustomerService. publisher may be nil.
func NewCustomerService(store CustomerStore, publisher EventPublisher, logger *slog.Logger, recorder metrics.Recorder) *CustomerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CustomerService{
		store:   store,
		events:  publisher,
		logger:  logger.With("component", "service.customer"),
		metrics: recorder,
	}
}

// ListCustomersInput selects a page of the customer listing.
type ListCustomersInput struct {
	Page       int
	PerPage    int
	Search     string
	SearchType string
}

// ListCustomers returns one page of customers matching the search.
// Page defaults to 1 and PerPage to 10. A non-numeric customer_id search
// matches nothing.
func (s *CustomerService) ListCustomers(ctx context.Context, in ListCustomersInput) (*model.CustomerPage, error) {
	page := in.Page
	if page < 1 {
		page = defaultPage
	}
	perPage := in.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	result := &model.CustomerPage{
		Customers: []model.Customer{},
		Page:      page,
		PerPage:   perPage,
	}

	var filter repository.CustomerFilter
	search := strings.TrimSpace(in.Search)
	if search != "" {
		switch model.ParseCustomerSearchType(in.SearchType) {
		case model.CustomerSearchID:
			id, err := strconv.ParseInt(search, 10, 64)
			if err != nil {
				return result, nil
			}
			filter.ID = &id
		default:
			filter.Name = search
		}
	}

	customers, total, err := s.store.ListCustomers(ctx, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers != nil {
		result.Customers = customers
	}
	result.Total = total
	result.TotalPages = model.TotalPages(total, perPage)

	return result, nil
}

// CreateCustomerInput holds a new customer's profile and address.
// Blank strings and a zero CityID count as missing.
type CreateCustomerInput struct {
	StoreID   int64
	FirstName string
	LastName  string
	Email     string
	Address   string
	District  string
	CityID    int64
	Phone     string
}

func (in CreateCustomerInput) validate() error {
	required := []struct {
		field   string
		present bool
	}{
		{"first_name", strings.TrimSpace(in.FirstName) != ""},
		{"last_name", strings.TrimSpace(in.LastName) != ""},
		{"email", strings.TrimSpace(in.Email) != ""},
		{"address", strings.TrimSpace(in.Address) != ""},
		{"city_id", in.CityID != 0},
		{"phone", strings.TrimSpace(in.Phone) != ""},
	}
	for _, r := range required {
		if !r.present {
			return &RequiredFieldError{Field: r.field}
		}
	}
	return nil
}

// CreateCustomer registers a customer and their address.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	storeID := in.StoreID
	if storeID == 0 {
		storeID = defaultStoreID
	}
	district := strings.TrimSpace(in.District)
	if district == "" {
		district = defaultDistrict
	}

	id, err := s.store.CreateCustomer(ctx, repository.NewCustomer{
		StoreID:   storeID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Address:   strings.TrimSpace(in.Address),
		District:  district,
		CityID:    in.CityID,
		Phone:     strings.TrimSpace(in.Phone),
	})
	if err != nil {
		if errors.Is(err, repository.ErrCityNotFound) {
			return 0, ErrCityNotFound
		}
		return 0, fmt.Errorf("failed to create customer: %w", err)
	}

	s.metrics.IncCustomerCreated()
	s.publish(events.CustomerCreated, id)
	s.logger.Info("customer created", "customer_id", id)

	return id, nil
}

// UpdateCustomerInput holds the editable fields. Nil or blank names and
// email keep the stored value. A nil Active means active.
type UpdateCustomerInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Active    *bool
}

// UpdateCustomer edits a customer's name, email and active flag.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, in UpdateCustomerInput) error {
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	err := s.store.UpdateCustomer(ctx, id, repository.CustomerUpdate{
		FirstName: trimmed(in.FirstName),
		LastName:  trimmed(in.LastName),
		Email:     trimmed(in.Email),
		Active:    active,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}

	s.metrics.IncCustomerUpdated()
	s.publish(events.CustomerUpdated, id)

	return nil
}

// DeleteCustomer deactivates a customer with no open rentals.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	err := s.store.DeactivateCustomer(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCustomerHasOpenRentals):
			return ErrCustomerHasActiveRentals
		case errors.Is(err, repository.ErrCustomerNotFound):
			return ErrCustomerNotFound
		default:
			return fmt.Errorf("failed to delete customer: %w", err)
		}
	}

	s.metrics.IncCustomerDeleted()
	s.publish(events.CustomerDeleted, id)
	s.logger.Info("customer deactivated", "customer_id", id)

	return nil
}

// GetCustomerDetails returns a customer with address and rental history.
func (s *CustomerService) GetCustomerDetails(ctx context.Context, id int64) (*model.Customer, error) {
	customer, err := s.store.GetCustomerDetails(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer details: %w", err)
	}
	if customer.RentalHistory == nil {
		customer.RentalHistory = []model.Rental{}
	}
	return customer, nil
}

func (s *CustomerService) publish(t events.Type, customerID int64) {
	if s.events == nil {
		return
	}
	event := s.events.NewEvent(t)
	event.CustomerID = customerID
	s.events.PublishAsync(event)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
