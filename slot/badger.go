// ABOUTME: BadgerDB implementation of the durable slot
// ABOUTME: Supports an on-disk directory or an in-memory instance for tests
package slot

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// BadgerSlot stores slot values in a BadgerDB directory.
type BadgerSlot struct {
	db *badger.DB
	mu sync.RWMutex
}

// OpenBadger opens (creating if needed) a slot in dir.
func OpenBadger(dir string) (*BadgerSlot, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerSlot{db: db}, nil
}

// OpenBadgerInMemory opens a slot that lives only as long as the process.
func OpenBadgerInMemory() (*BadgerSlot, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerSlot{db: db}, nil
}

func (s *BadgerSlot) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return result, err
}

func (s *BadgerSlot) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete removes key; deleting a missing key is not an error.
func (s *BadgerSlot) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerSlot) Close() error {
	return s.db.Close()
}
