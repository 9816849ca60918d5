package slot

import (
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// badgerKV stands in for charm/kv without a charm server.
type badgerKV struct {
	db    *badger.DB
	mu    sync.Mutex
	syncs int
}

func (b *badgerKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (b *badgerKV) Set(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (b *badgerKV) Delete(key []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (b *badgerKV) Sync() error {
	b.mu.Lock()
	b.syncs++
	b.mu.Unlock()
	return nil
}

func (b *badgerKV) Syncs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syncs
}

func newTestCharmSlot(t *testing.T, autoSync bool) (*CharmSlot, *badgerKV) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := &badgerKV{db: db}
	return newCharmSlot(store, autoSync), store
}

func TestCharmSlot_SetGetDelete(t *testing.T) {
	s, _ := newTestCharmSlot(t, false)

	_, err := s.Get(UserKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(UserKey, []byte(`{"uid":"u1"}`)))

	v, err := s.Get(UserKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid":"u1"}`, string(v))

	require.NoError(t, s.Delete(UserKey))
	_, err = s.Get(UserKey)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Close())
}

func TestCharmSlot_AutoSyncAfterWrites(t *testing.T) {
	synced, syncedKV := newTestCharmSlot(t, true)
	require.NoError(t, synced.Set(UserKey, []byte("a")))
	require.NoError(t, synced.Delete(UserKey))
	assert.Equal(t, 2, syncedKV.Syncs())

	manual, manualKV := newTestCharmSlot(t, false)
	require.NoError(t, manual.Set(UserKey, []byte("a")))
	require.NoError(t, manual.Delete(UserKey))
	assert.Zero(t, manualKV.Syncs())
}
