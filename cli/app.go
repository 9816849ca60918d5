// ABOUTME: Wires storage, auth, the session slot and the session cache from config
// ABOUTME: Every command opens one App and closes it before exiting
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/harperreed/shaft/auth"
	"github.com/harperreed/shaft/config"
	"github.com/harperreed/shaft/docstore"
	"github.com/harperreed/shaft/logging"
	"github.com/harperreed/shaft/repository"
	"github.com/harperreed/shaft/session"
	"github.com/harperreed/shaft/slot"
	"github.com/harperreed/shaft/viewmodel"
)

// confirmTimeout bounds how long a command waits for the provider to
// confirm or refute the cached session.
const confirmTimeout = 5 * time.Second

type App struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Sessions *session.Cache

	logOut  io.Writer
	level   zerolog.Level
	closers []func() error
}

// Logger returns a logger tagged with component.
func (a *App) Logger(component string) zerolog.Logger {
	return logging.New(a.logOut, component, a.level)
}

// Stores adapts the repositories for the controllers.
func (a *App) Stores() viewmodel.Stores {
	return viewmodel.StoresFrom(a.Repos)
}

// OpenApp builds the full stack described by cfg. Logs go to logOut.
func OpenApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	app := &App{Config: cfg, logOut: logOut, level: logging.ParseLevel(cfg.LogLevel)}
	if err := app.open(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) open(ctx context.Context) error {
	store, authDB, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	a.Repos = repository.New(store)

	provider, err := auth.NewLocalProvider(authDB)
	if err != nil {
		return fmt.Errorf("failed to open auth provider: %w", err)
	}

	s, err := a.openSlot()
	if err != nil {
		return err
	}

	a.Sessions = session.New(provider, s, a.Logger("session"))
	a.Sessions.Start(ctx)
	a.closers = append(a.closers, func() error {
		a.Sessions.Close()
		return nil
	})

	waitCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()
	if err := a.Sessions.WaitConfirmed(waitCtx); err != nil {
		log := a.Logger("cli")
		log.Warn().Err(err).Msg("session not confirmed yet, continuing with cached session")
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (docstore.Store, *sql.DB, error) {
	cfg := a.Config
	switch cfg.StoreDriver {
	case config.StoreMongo:
		store, err := docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, store.Close)

		authDB, err := openSQLiteDB(cfg.AuthDBPath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, authDB.Close)
		return store, authDB, nil

	default:
		store, err := docstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.closers = append(a.closers, store.Close)

		if cfg.AuthDBPath == cfg.SQLitePath {
			return store, store.DB(), nil
		}
		authDB, err := openSQLiteDB(cfg.AuthDBPath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, authDB.Close)
		return store, authDB, nil
	}
}

func (a *App) openSlot() (slot.Slot, error) {
	var (
		s   slot.Slot
		err error
	)
	switch a.Config.SlotDriver {
	case config.SlotCharm:
		s, err = slot.OpenCharm(a.Config.CharmHost, a.Config.CharmSync)
	default:
		s, err = slot.OpenBadger(a.Config.SlotDir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open session slot: %w", err)
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func openSQLiteDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open auth database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// Close releases everything in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
