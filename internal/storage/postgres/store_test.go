package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blogfront/internal/storage"
)

// Тесты идут только при заданном BLOG_TEST_DATABASE_URL.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("BLOG_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("BLOG_TEST_DATABASE_URL is not set")
	}
	store, err := New(dsn, "test-"+uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "theme", []byte("dark")))
	require.NoError(t, store.Put(ctx, "theme", []byte("light")))

	v, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", string(v))
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "token", []byte("abc")))
	require.NoError(t, store.Delete(ctx, "token"))

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
