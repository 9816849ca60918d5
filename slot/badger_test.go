package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerSlot_SetGetDelete(t *testing.T) {
	s, err := OpenBadgerInMemory()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(UserKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(UserKey, []byte(`{"uid":"u1"}`)))

	v, err := s.Get(UserKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"uid":"u1"}`, string(v))

	require.NoError(t, s.Delete(UserKey))
	_, err = s.Get(UserKey)
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting again is fine
	assert.NoError(t, s.Delete(UserKey))
}

func TestBadgerSlot_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(UserKey, []byte("persisted")))
	require.NoError(t, s.Close())

	reopened, err := OpenBadger(dir)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(UserKey)
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(v))
}
