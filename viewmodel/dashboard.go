// ABOUTME: Dashboard controller
// ABOUTME: Fans out the recent-item and stats fetches concurrently and installs them together
package viewmodel

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/models"
	"github.com/harperreed/shaft/repository"
	"github.com/harperreed/shaft/viz"
)

// RecentLimit caps each dashboard card.
const RecentLimit = 5

// Stores groups the repositories a multi-entity screen reads.
type Stores struct {
	Contacts ContactStore
	Deals    DealStore
	Tasks    TaskStore
	Events   EventStore
}

// StoresFrom adapts the concrete repositories.
func StoresFrom(r *repository.Repositories) Stores {
	return Stores{Contacts: r.Contacts, Deals: r.Deals, Tasks: r.Tasks, Events: r.Events}
}

type DashboardSnapshot struct {
	RecentContacts []models.Contact   `json:"recentContacts"`
	RecentDeals    []models.Deal      `json:"recentDeals"`
	UpcomingEvents []CalendarEvent    `json:"upcomingEvents"`
	Stats          viz.DashboardStats `json:"stats"`
}

type Dashboard struct {
	base
	sessions SessionManager
	stores   Stores

	snapshot DashboardSnapshot
}

func NewDashboard(sessions SessionManager, stores Stores, nav Navigator, log zerolog.Logger) *Dashboard {
	d := &Dashboard{
		base:     newBase(sessions, nav, log, "Failed to fetch dashboard"),
		sessions: sessions,
		stores:   stores,
	}
	d.fetch = d.load
	return d
}

func (d *Dashboard) load(ctx context.Context, uid string) (func(), error) {
	recent := repository.ListOptions{Limit: RecentLimit}
	all := repository.ListOptions{}

	var (
		snap     DashboardSnapshot
		contacts []models.Contact
		deals    []models.Deal
		tasks    []models.Task
		events   []models.Event
		wg       sync.WaitGroup
		errMu    sync.Mutex
		errs     []error
	)
	record := func(err error) {
		if err != nil {
			errMu.Lock()
			errs = append(errs, err)
			errMu.Unlock()
		}
	}
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record(fn())
		}()
	}

	run(func() (err error) {
		snap.RecentContacts, err = d.stores.Contacts.List(ctx, uid, recent)
		return err
	})
	run(func() (err error) {
		snap.RecentDeals, err = d.stores.Deals.List(ctx, uid, recent)
		return err
	})
	run(func() (err error) {
		events, err = d.stores.Events.List(ctx, uid, recent)
		return err
	})
	run(func() (err error) {
		contacts, err = d.stores.Contacts.List(ctx, uid, all)
		return err
	})
	run(func() (err error) {
		deals, err = d.stores.Deals.List(ctx, uid, all)
		return err
	})
	run(func() (err error) {
		tasks, err = d.stores.Tasks.List(ctx, uid, all)
		return err
	})
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, e := range events {
		snap.UpcomingEvents = append(snap.UpcomingEvents, CalendarEvent{
			ID: e.ID, Title: e.Title, Start: e.Start.ToTime(), End: e.End.ToTime(),
		})
	}
	snap.Stats = viz.GenerateDashboardStats(contacts, deals, tasks)

	return func() { d.snapshot = snap }, nil
}

func (d *Dashboard) Snapshot() DashboardSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot
}

// Logout signs out and returns to the login screen. The cached session is
// cleared even when the provider fails.
func (d *Dashboard) Logout(ctx context.Context) error {
	if err := d.sessions.Logout(ctx); err != nil {
		return d.fail("Failed to log out", err)
	}
	d.nav.Redirect(PathLogin)
	return nil
}
