package theme

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/session"
	"github.com/UkralStul/blogfront/internal/storage/inmemory"
)

func TestInitial(t *testing.T) {
	ctx := context.Background()
	store := session.New(inmemory.New())

	assert.Equal(t, domain.ThemeDark, Initial(ctx, store, func() bool { return true }))
	assert.Equal(t, domain.ThemeLight, Initial(ctx, store, func() bool { return false }))

	assert.NoError(t, store.SetTheme(ctx, domain.ThemeLight))
	assert.Equal(t, domain.ThemeLight, Initial(ctx, store, func() bool { return true }))
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	store := session.New(inmemory.New())

	next := Toggle(ctx, store, domain.ThemeDark)
	assert.Equal(t, domain.ThemeLight, next)
	saved, ok := store.Theme(ctx)
	assert.True(t, ok)
	assert.Equal(t, domain.ThemeLight, saved)

	assert.Equal(t, domain.ThemeDark, Toggle(ctx, store, next))
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, domain.ThemeLight, PaletteFor(domain.ThemeLight).Theme)
	assert.Equal(t, domain.ThemeDark, PaletteFor("neon").Theme)
}
