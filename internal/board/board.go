// Package board фильтрует и разбивает на страницы посты одной доски.
package board

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/UkralStul/blogfront/internal/domain"
)

// AllCategory - псевдокатегория "все посты".
const AllCategory = "전체"

// DefaultPageSize - сетка 3x3.
const DefaultPageSize = 9

// Config описывает доску: тип и список категорий (первой всегда идет AllCategory).
type Config struct {
	BoardType  domain.BoardType
	Title      string
	Categories []string
}

var registry = map[domain.BoardType]Config{
	domain.BoardIT: {
		BoardType:  domain.BoardIT,
		Title:      "IT",
		Categories: []string{AllCategory, "Frontend", "Backend", "Database", "기타"},
	},
	domain.BoardJapanese: {
		BoardType:  domain.BoardJapanese,
		Title:      "日本語",
		Categories: []string{AllCategory, "일본어", "문화", "기타"},
	},
	domain.BoardCulture: {
		BoardType:  domain.BoardCulture,
		Title:      "Culture",
		Categories: []string{AllCategory, "문화", "기타"},
	},
	domain.BoardDaily: {
		BoardType:  domain.BoardDaily,
		Title:      "Daily",
		Categories: []string{AllCategory, "일상", "게임", "영화/드라마/애니메이션", "음악", "기타"},
	},
}

// ConfigFor возвращает конфигурацию доски.
func ConfigFor(bt domain.BoardType) (Config, error) {
	cfg, ok := registry[bt]
	if !ok {
		return Config{}, fmt.Errorf("unknown board type %q", bt)
	}
	cfg.Categories = append([]string(nil), cfg.Categories...)
	return cfg, nil
}

// HasCategory сообщает, есть ли категория на доске.
func (c Config) HasCategory(category string) bool {
	for _, known := range c.Categories {
		if known == category {
			return true
		}
	}
	return false
}

// Filter оставляет посты выбранной категории, у которых какой-нибудь тег
// содержит tag без учета регистра. AllCategory и пустой tag ничего не отсекают.
func Filter(posts []domain.Post, category, tag string) []domain.Post {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if (category == AllCategory || category == "") && tag == "" {
		return posts
	}

	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if category != AllCategory && category != "" && p.Category != category {
			continue
		}
		if tag != "" && !hasTag(p.Tags, tag) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func hasTag(tags domain.Tags, needle string) bool {
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

// TotalPages = ceil(n/size).
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate возвращает страницу page (с 1) размера size, обрезанную по границам.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 || page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// SortNewestFirst сортирует посты по убыванию даты создания.
// Сортировка устойчивая; посты без даты сохраняют порядок и идут в конце.
func SortNewestFirst(posts []domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].CreatedAt, posts[j].CreatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}

// Page - то, что показывается на экране.
type Page struct {
	Posts      []domain.Post
	Page       int
	TotalPages int
	Total      int
	Category   string
	Tag        string
}

// View - состояние одной доски: загруженные посты, фильтр и текущая страница.
// Безопасен для конкурентного использования.
type View struct {
	cfg      Config
	pageSize int

	mu       sync.RWMutex
	posts    []domain.Post
	category string
	tag      string
	page     int
}

// NewView создает представление доски. pageSize <= 0 означает DefaultPageSize.
func NewView(cfg Config, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{cfg: cfg, pageSize: pageSize, category: AllCategory, page: 1}
}

func (v *View) Config() Config { return v.cfg }

// SetPosts заменяет загруженные посты, сортируя их новыми вперед.
func (v *View) SetPosts(posts []domain.Post) {
	sorted := append([]domain.Post(nil), posts...)
	SortNewestFirst(sorted)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.posts = sorted
	v.page = clamp(v.page, v.totalLocked())
}

// SetCategory меняет категорию и возвращает на первую страницу.
func (v *View) SetCategory(category string) error {
	if !v.cfg.HasCategory(category) {
		return fmt.Errorf("board %s has no category %q", v.cfg.BoardType, category)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.category = category
	v.page = 1
	return nil
}

// SetTag меняет строку поиска по тегам и возвращает на первую страницу.
func (v *View) SetTag(tag string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tag = strings.TrimSpace(tag)
	v.page = 1
}

// GoTo переходит на страницу, ограничивая ее диапазоном [1, max(1, total)].
func (v *View) GoTo(page int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = clamp(page, v.totalLocked())
	return v.page
}

func (v *View) Next() int { return v.step(1) }

func (v *View) Prev() int { return v.step(-1) }

func (v *View) step(delta int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = clamp(v.page+delta, v.totalLocked())
	return v.page
}

// Current пересчитывает видимую страницу из текущего состояния.
func (v *View) Current() Page {
	v.mu.RLock()
	defer v.mu.RUnlock()

	filtered := Filter(v.posts, v.category, v.tag)
	return Page{
		Posts:      Paginate(filtered, v.page, v.pageSize),
		Page:       v.page,
		TotalPages: TotalPages(len(filtered), v.pageSize),
		Total:      len(filtered),
		Category:   v.category,
		Tag:        v.tag,
	}
}

func (v *View) totalLocked() int {
	return TotalPages(len(Filter(v.posts, v.category, v.tag)), v.pageSize)
}

func clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	switch {
	case page < 1:
		return 1
	case page > total:
		return total
	}
	return page
}
