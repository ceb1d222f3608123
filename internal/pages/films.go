package pages

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/reelstore/reelstore/internal/model"
)

// RentForm is the rent dialog of the films page.
type RentForm struct {
	Open       bool
	Film       model.Film
	CustomerID string
}

// FilmsPage searches the catalog and rents films.
type FilmsPage struct {
	View
	Query      string
	SearchType model.FilmSearchType
	Films      []model.Film
	Rent       RentForm

	api    FilmsAPI
	logger *slog.Logger
}

// NewFilmsPage creates an idle films page searching by title.
func NewFilmsPage(api FilmsAPI, logger *slog.Logger) *FilmsPage {
	return &FilmsPage{
		View:       View{Status: StatusIdle},
		SearchType: model.FilmSearchTitle,
		api:        api,
		logger:     logger.With("page", "films"),
	}
}

// Search runs one search for query. A blank query clears the results
// without calling the API.
func (p *FilmsPage) Search(ctx context.Context, query, searchType string) {
	p.Query = query
	p.SearchType = model.ParseFilmSearchType(searchType)
	p.search(ctx)
}

func (p *FilmsPage) search(ctx context.Context) {
	if strings.TrimSpace(p.Query) == "" {
		p.Films = nil
		p.Status = StatusIdle
		p.Error = ""
		return
	}

	p.begin()
	films, err := p.api.SearchFilms(ctx, p.Query, p.SearchType)
	if err != nil {
		p.Films = nil
		p.fail(p.logger, msgSearchFilms, err)
		return
	}
	p.Films = films
	p.ready()
}

// OpenRent opens the rent dialog for the listed film with filmID.
func (p *FilmsPage) OpenRent(filmID int64) bool {
	for _, f := range p.Films {
		if f.ID == filmID {
			p.Rent = RentForm{Open: true, Film: f}
			return true
		}
	}
	return false
}

// CloseRent closes the rent dialog and clears its input.
func (p *FilmsPage) CloseRent() {
	p.Rent = RentForm{}
}

// RentFilm rents filmID to customerID. An empty customer id sends nothing.
// On success the dialog closes and the current search runs once more.
func (p *FilmsPage) RentFilm(ctx context.Context, filmID int64, customerID string) {
	customerID = strings.TrimSpace(customerID)
	if !p.OpenRent(filmID) {
		p.Rent = RentForm{Open: true, Film: model.Film{ID: filmID}}
	}
	p.Rent.CustomerID = customerID
	if customerID == "" {
		return
	}

	// A non-numeric id is sent as zero and rejected by the API.
	id, _ := strconv.ParseInt(customerID, 10, 64)
	if _, err := p.api.RentFilm(ctx, id, filmID); err != nil {
		p.alert(p.logger, err, msgRentFilm)
		return
	}

	p.CloseRent()
	p.notice(NoticeFilmRented)
	p.search(ctx)
}
