// ABOUTME: Charm KV implementation of the durable slot
// ABOUTME: Syncs the cached session to the configured charm server after every write

package slot

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

const (
	// DefaultCharmHost is the self-hosted charm server.
	DefaultCharmHost = "charm.2389.dev"

	// CharmAppName names the Charm KV database.
	CharmAppName = "shaft"
)

// kvStore is the part of charm/kv the slot uses.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Sync() error
}

// CharmSlot stores slot values in Charm KV.
type CharmSlot struct {
	kv       kvStore
	autoSync bool
	mu       sync.RWMutex
}

func newCharmSlot(store kvStore, autoSync bool) *CharmSlot {
	return &CharmSlot{kv: store, autoSync: autoSync}
}

// OpenCharm opens the charm KV database for this app against host.
func OpenCharm(host string, autoSync bool) (*CharmSlot, error) {
	if host == "" {
		host = DefaultCharmHost
	}

	// Set charm host before opening KV
	_ = os.Setenv("CHARM_HOST", host)

	db, err := kv.OpenWithDefaults(CharmAppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	// Pull remote changes so a session written on another device is visible
	if autoSync {
		_ = db.Sync()
	}

	return newCharmSlot(db, autoSync), nil
}

func (s *CharmSlot) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := s.kv.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *CharmSlot) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set([]byte(key), value); err != nil {
		return err
	}

	// Sync while still holding lock to avoid race condition
	if s.autoSync {
		_ = s.kv.Sync()
	}
	return nil
}

func (s *CharmSlot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete([]byte(key)); err != nil {
		return err
	}

	if s.autoSync {
		_ = s.kv.Sync()
	}
	return nil
}

// Close is a no-op: charm/kv does not expose Close and the underlying
// BadgerDB is released on process exit.
func (s *CharmSlot) Close() error {
	return nil
}
