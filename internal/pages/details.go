package pages

import (
	"context"
	"log/slog"

	"github.com/reelstore/reelstore/internal/model"
)

// FilmDetailsPage shows one film with its cast.
type FilmDetailsPage struct {
	View
	Film *model.Film

	api    DetailsAPI
	logger *slog.Logger
}

// NewFilmDetailsPage creates an idle film page.
func NewFilmDetailsPage(api DetailsAPI, logger *slog.Logger) *FilmDetailsPage {
	return &FilmDetailsPage{View: View{Status: StatusIdle}, api: api, logger: logger.With("page", "film")}
}

// Load fetches the film.
func (p *FilmDetailsPage) Load(ctx context.Context, id int64) {
	p.begin()
	film, err := p.api.Film(ctx, id)
	if err != nil {
		p.Film = nil
		p.fail(p.logger, msgFetchFilmDetails, err)
		return
	}
	p.Film = film
	p.ready()
}

// ActorDetailsPage shows one actor with their most rented films.
type ActorDetailsPage struct {
	View
	Actor *model.Actor

	api    DetailsAPI
	logger *slog.Logger
}

// NewActorDetailsPage creates an idle actor page.
func NewActorDetailsPage(api DetailsAPI, logger *slog.Logger) *ActorDetailsPage {
	return &ActorDetailsPage{View: View{Status: StatusIdle}, api: api, logger: logger.With("page", "actor")}
}

// Load fetches the actor.
func (p *ActorDetailsPage) Load(ctx context.Context, id int64) {
	p.begin()
	actor, err := p.api.Actor(ctx, id)
	if err != nil {
		p.Actor = nil
		p.fail(p.logger, msgFetchActorDetails, err)
		return
	}
	p.Actor = actor
	p.ready()
}

// CustomerDetailsPage shows a customer and their rentals split by status.
type CustomerDetailsPage struct {
	View
	ID       int64
	Customer *model.Customer
	Active   []model.Rental
	Returned []model.Rental

	api    DetailsAPI
	logger *slog.Logger
}

// NewCustomerDetailsPage creates an idle customer page.
func NewCustomerDetailsPage(api DetailsAPI, logger *slog.Logger) *CustomerDetailsPage {
	return &CustomerDetailsPage{View: View{Status: StatusIdle}, api: api, logger: logger.With("page", "customer")}
}

// Load fetches the customer with id.
func (p *CustomerDetailsPage) Load(ctx context.Context, id int64) {
	p.ID = id
	p.begin()
	customer, err := p.api.CustomerDetails(ctx, id)
	if err != nil {
		p.Customer, p.Active, p.Returned = nil, nil, nil
		p.fail(p.logger, msgFetchCustomerDetails, err)
		return
	}
	p.Customer = customer
	p.Active, p.Returned = model.PartitionRentals(customer.RentalHistory)
	p.ready()
}

// ReturnRental marks a rental returned and fetches the customer once more.
func (p *CustomerDetailsPage) ReturnRental(ctx context.Context, rentalID int64) {
	if err := p.api.ReturnRental(ctx, rentalID); err != nil {
		p.alert(p.logger, err, msgReturnRental)
		return
	}
	p.notice(NoticeRentalReturned)
	p.Load(ctx, p.ID)
}
