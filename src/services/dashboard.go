package services

import (
	"context"
	"hotelmaint/src/metrics"
	"hotelmaint/src/models"
	"hotelmaint/src/policy"
	"hotelmaint/src/repository"
	"hotelmaint/src/session"
	"time"

	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	Store *repository.Store
	Now   func() time.Time
}

// Build computes the KPIs over the tickets the caller can see, after f.
func (d *DashboardService) Build(ctx context.Context, sess *session.Session, f metrics.Filters) (*metrics.Dashboard, error) {
	if !policy.CanViewDashboard(sess) {
		return nil, repository.ErrForbidden
	}
	scope := policy.VisibleHotelIDs(sess)

	var (
		tickets []models.Ticket
		hotels  []models.Hotel
		users   []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tickets, err = d.Store.Tickets.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		hotels, err = d.Store.Hotels.List(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = d.Store.Users.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	visible := metrics.Filter(policy.VisibleTickets(sess, tickets), f)
	out := metrics.Aggregate(visible, policy.VisibleHotels(sess, hotels), users, now).Rounded()
	return &out, nil
}
