// Package theme выбирает цветовую тему и хранит ее между запусками.
package theme

import (
	"context"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/domain"
)

// Store - место, где сохраняется тема.
type Store interface {
	Theme(ctx context.Context) (domain.Theme, bool)
	SetTheme(ctx context.Context, t domain.Theme) error
}

// Detect сообщает, темный ли фон у терминала.
type Detect func() bool

// Initial возвращает сохраненную тему, а без нее - тему по фону терминала.
func Initial(ctx context.Context, store Store, detect Detect) domain.Theme {
	if t, ok := store.Theme(ctx); ok {
		return t
	}
	if detect == nil {
		detect = lipgloss.HasDarkBackground
	}
	if detect() {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}

// Toggle переключает тему и сохраняет новую. Ошибка сохранения только логируется.
func Toggle(ctx context.Context, store Store, current domain.Theme) domain.Theme {
	next := domain.ThemeDark
	if current == domain.ThemeDark {
		next = domain.ThemeLight
	}
	if err := store.SetTheme(ctx, next); err != nil {
		log.WithFields(log.F("theme", string(next))).Warnf("theme: save failed: %s", err)
	}
	return next
}

// Palette - стили интерфейса для одной темы.
type Palette struct {
	Theme        domain.Theme
	Title        lipgloss.Style
	Text         lipgloss.Style
	Muted        lipgloss.Style
	Accent       lipgloss.Style
	Selected     lipgloss.Style
	Error        lipgloss.Style
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Reply        lipgloss.Style
}

var (
	darkText   = lipgloss.Color("255")
	darkMuted  = lipgloss.Color("244")
	darkAccent = lipgloss.Color("117")
	darkBorder = lipgloss.Color("238")

	lightText   = lipgloss.Color("235")
	lightMuted  = lipgloss.Color("245")
	lightAccent = lipgloss.Color("25")
	lightBorder = lipgloss.Color("250")

	errorColor = lipgloss.Color("203")
)

// PaletteFor возвращает стили темы t; неизвестная тема считается темной.
func PaletteFor(t domain.Theme) Palette {
	text, muted, accent, border := darkText, darkMuted, darkAccent, darkBorder
	if t == domain.ThemeLight {
		text, muted, accent, border = lightText, lightMuted, lightAccent, lightBorder
	} else {
		t = domain.ThemeDark
	}
	return Palette{
		Theme:    t,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Text:     lipgloss.NewStyle().Foreground(text),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Accent:   lipgloss.NewStyle().Foreground(accent),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true),
		Error:    lipgloss.NewStyle().Foreground(errorColor),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(28),
		CardSelected: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(28),
		Reply: lipgloss.NewStyle().PaddingLeft(4).Foreground(text),
	}
}
