package pages

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/reelstore/reelstore/internal/model"
)

// LandingPage shows the most rented films and actors.
type LandingPage struct {
	View
	TopFilms  []model.Film
	TopActors []model.Actor

	api    LandingAPI
	logger *slog.Logger
}

// NewLandingPage creates an idle landing page.
func NewLandingPage(api LandingAPI, logger *slog.Logger) *LandingPage {
	return &LandingPage{
		View:   View{Status: StatusIdle},
		api:    api,
		logger: logger.With("page", "landing"),
	}
}

// Load fetches both lists concurrently. Nothing is shown unless both
// succeed.
func (p *LandingPage) Load(ctx context.Context) {
	p.begin()

	var films []model.Film
	var actors []model.Actor

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		films, err = p.api.TopFilms(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		actors, err = p.api.TopActors(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		p.TopFilms, p.TopActors = nil, nil
		p.fail(p.logger, msgFetchLanding, err)
		return
	}

	p.TopFilms, p.TopActors = films, actors
	p.ready()
}
