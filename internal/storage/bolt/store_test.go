package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blogfront/internal/storage"
)

func newTestStore(t *testing.T, path, profile string) *Store {
	t.Helper()
	store, err := Open(path, profile)
	require.NoError(t, err)
	return store
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	store := newTestStore(t, path, "default")
	require.NoError(t, store.Put(ctx, "userInfo", []byte(`{"pid":7}`)))
	require.NoError(t, store.Close())

	store = newTestStore(t, path, "default")
	defer store.Close()

	v, err := store.Get(ctx, "userInfo")
	require.NoError(t, err)
	assert.JSONEq(t, `{"pid":7}`, string(v))
}

func TestStore_ProfilesAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	work := newTestStore(t, path, "work")
	require.NoError(t, work.Put(ctx, "theme", []byte("light")))
	require.NoError(t, work.Close())

	home := newTestStore(t, path, "home")
	defer home.Close()

	_, err := home.Get(ctx, "theme")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "state.db"), "")
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "token", []byte("abc")))
	require.NoError(t, store.Delete(ctx, "token"))

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_CancelledContext(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "state.db"), "")
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "theme", []byte("dark")), context.Canceled)
}
