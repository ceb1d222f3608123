package pages

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/reelstore/reelstore/internal/apiclient"
	"github.com/reelstore/reelstore/internal/handler/dto"
	"github.com/reelstore/reelstore/internal/model"
)

// DefaultCustomersPerPage is the listing page size.
const DefaultCustomersPerPage = 10

// CustomerForm holds the add dialog inputs as typed.
type CustomerForm struct {
	FirstName string
	LastName  string
	Email     string
	Address   string
	CityID    string
	Phone     string
}

// EditForm holds the edit dialog inputs.
type EditForm struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Active    bool
}

// CustomersPage lists, searches and edits customers.
type CustomersPage struct {
	View
	Query      string
	SearchType model.CustomerSearchType
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	Customers  []model.Customer
	Cities     []model.City

	AddOpen bool
	Add     CustomerForm
	Editing *EditForm

	api    CustomersAPI
	logger *slog.Logger
}

// NewCustomersPage creates an idle customers page on page 1.
func NewCustomersPage(api CustomersAPI, perPage int, logger *slog.Logger) *CustomersPage {
	if perPage <= 0 {
		perPage = DefaultCustomersPerPage
	}
	return &CustomersPage{
		View:       View{Status: StatusIdle},
		SearchType: model.CustomerSearchName,
		Page:       1,
		PerPage:    perPage,
		TotalPages: 1,
		api:        api,
		logger:     logger.With("page", "customers"),
	}
}

// Restore sets the listing position without fetching.
func (p *CustomersPage) Restore(query, searchType string, page int) {
	p.Query = query
	p.SearchType = model.ParseCustomerSearchType(searchType)
	if page < 1 {
		page = 1
	}
	p.Page = page
}

// Search starts a new search from page 1.
func (p *CustomersPage) Search(ctx context.Context, query, searchType string) {
	p.Restore(query, searchType, 1)
	p.Refresh(ctx)
}

// GoToPage fetches page n with the current search.
func (p *CustomersPage) GoToPage(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	p.Page = n
	p.Refresh(ctx)
}

// HasPrev reports whether a previous page exists.
func (p *CustomersPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p *CustomersPage) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p *CustomersPage) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number.
func (p *CustomersPage) NextPage() int { return p.Page + 1 }

// Refresh fetches the current page. It always calls the API, even for an
// empty search.
func (p *CustomersPage) Refresh(ctx context.Context) {
	p.begin()
	result, err := p.api.Customers(ctx, apiclient.CustomerQuery{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Search:     p.Query,
		SearchType: p.SearchType,
	})
	if err != nil {
		p.Customers = nil
		p.fail(p.logger, msgFetchCustomers, err)
		return
	}

	p.Customers = result.Customers
	p.Total = result.Total
	// An empty result still shows as page 1 of 1.
	p.TotalPages = max(result.TotalPages, 1)
	p.ready()
}

// LoadCities fills the city selector. A failure leaves it empty.
func (p *CustomersPage) LoadCities(ctx context.Context) {
	cities, err := p.api.Cities(ctx)
	if err != nil {
		p.logger.Warn("failed to fetch cities", "error", err)
		return
	}
	p.Cities = cities
}

// OpenAdd opens an empty add dialog.
func (p *CustomersPage) OpenAdd() {
	p.AddOpen = true
	p.Add = CustomerForm{}
}

// OpenEdit opens the edit dialog for a listed customer.
func (p *CustomersPage) OpenEdit(id int64) bool {
	for _, c := range p.Customers {
		if c.ID == id {
			p.Editing = &EditForm{
				ID:        c.ID,
				FirstName: c.FirstName,
				LastName:  c.LastName,
				Email:     c.Email,
				Active:    c.Active,
			}
			return true
		}
	}
	return false
}

// Create adds a customer. On success the dialog closes, its fields are
// cleared and the list is fetched once. On failure the dialog stays open
// with the typed values.
func (p *CustomersPage) Create(ctx context.Context, form CustomerForm) {
	// A non-numeric city is sent as zero and rejected by the API.
	cityID, _ := strconv.ParseInt(strings.TrimSpace(form.CityID), 10, 64)

	_, err := p.api.CreateCustomer(ctx, dto.CreateCustomerRequest{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Address:   form.Address,
		CityID:    cityID,
		Phone:     form.Phone,
	})
	if err != nil {
		p.AddOpen = true
		p.Add = form
		p.alert(p.logger, err, msgAddCustomer)
		return
	}

	p.AddOpen = false
	p.Add = CustomerForm{}
	p.notice(NoticeCustomerAdded)
	p.Refresh(ctx)
}

// Update saves the edit dialog.
func (p *CustomersPage) Update(ctx context.Context, form EditForm) {
	active := form.Active
	err := p.api.UpdateCustomer(ctx, form.ID, dto.UpdateCustomerRequest{
		FirstName: &form.FirstName,
		LastName:  &form.LastName,
		Email:     &form.Email,
		Active:    &active,
	})
	if err != nil {
		p.Editing = &form
		p.alert(p.logger, err, msgUpdateCustomer)
		return
	}

	p.Editing = nil
	p.notice(NoticeCustomerUpdated)
	p.Refresh(ctx)
}

// Delete deactivates a customer.
func (p *CustomersPage) Delete(ctx context.Context, id int64) {
	if err := p.api.DeleteCustomer(ctx, id); err != nil {
		p.alert(p.logger, err, msgDeleteCustomer)
		return
	}

	p.notice(NoticeCustomerDeleted)
	p.Refresh(ctx)
}
