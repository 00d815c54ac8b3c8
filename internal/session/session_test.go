package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/storage"
	"github.com/UkralStul/blogfront/internal/storage/inmemory"
)

func newTestStore(t *testing.T) (*Store, storage.Storage) {
	t.Helper()
	backend := inmemory.New()
	return New(backend), backend
}

func TestStore_PersistAndRestore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	user := domain.UserPrincipal(domain.User{PID: 7, UserID: "hana01", NickName: "하나", Email: "hana@example.com"})
	admin := domain.AdminPrincipal(domain.Admin{ID: 1, AdminName: "root"})
	require.NoError(t, store.Persist(ctx, user))
	require.NoError(t, store.Persist(ctx, admin))

	got, ok := store.Restore(ctx, domain.KindUser)
	require.True(t, ok)
	assert.True(t, got.Equal(user))

	got, ok = store.Restore(ctx, domain.KindAdmin)
	require.True(t, ok)
	assert.True(t, got.Equal(admin))
}

func TestStore_RestoreMissing(t *testing.T) {
	store, _ := newTestStore(t)

	p, ok := store.Restore(context.Background(), domain.KindUser)
	assert.False(t, ok)
	assert.True(t, p.IsGuest())
}

func TestStore_RestoreCorruptedClearsValue(t *testing.T) {
	cases := map[string]string{
		"broken json":   `{not-json`,
		"trailing data": `{"pid":7,"userId":"hana01"}{}`,
		"zero pid":      `{"pid":0,"userId":"hana01"}`,
		"null":          `null`,
		"wrong shape":   `[1,2,3]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store, backend := newTestStore(t)
			ctx := context.Background()
			require.NoError(t, backend.Put(ctx, KeyUser, []byte(raw)))

			p, ok := store.Restore(ctx, domain.KindUser)
			assert.False(t, ok)
			assert.True(t, p.IsGuest())

			_, err := backend.Get(ctx, KeyUser)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestStore_CorruptedAdminLeavesUser(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	user := domain.UserPrincipal(domain.User{PID: 7, UserID: "hana01"})
	require.NoError(t, store.Persist(ctx, user))
	require.NoError(t, backend.Put(ctx, KeyAdmin, []byte(`{"id":`)))

	_, ok := store.Restore(ctx, domain.KindAdmin)
	assert.False(t, ok)

	got, ok := store.Restore(ctx, domain.KindUser)
	require.True(t, ok)
	assert.True(t, got.Equal(user))
}

func TestStore_PersistGuest(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Persist(context.Background(), domain.Guest()))
}

func TestStore_ClearTokenIfUnused(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetToken(ctx, "session-1"))
	require.NoError(t, store.Persist(ctx, domain.AdminPrincipal(domain.Admin{ID: 1})))

	cleared, err := store.ClearTokenIfUnused(ctx)
	require.NoError(t, err)
	assert.False(t, cleared)
	token, ok := store.Token(ctx)
	require.True(t, ok)
	assert.Equal(t, "session-1", token)

	require.NoError(t, store.Clear(ctx, domain.KindAdmin))
	cleared, err = store.ClearTokenIfUnused(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)
	_, ok = store.Token(ctx)
	assert.False(t, ok)
}

func TestStore_Theme(t *testing.T) {
	store, backend := newTestStore(t)
	ctx := context.Background()

	_, ok := store.Theme(ctx)
	assert.False(t, ok)

	require.NoError(t, store.SetTheme(ctx, domain.ThemeLight))
	theme, ok := store.Theme(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.ThemeLight, theme)

	assert.Error(t, store.SetTheme(ctx, "sepia"))

	require.NoError(t, backend.Put(ctx, KeyTheme, []byte("sepia")))
	_, ok = store.Theme(ctx)
	assert.False(t, ok)
}
