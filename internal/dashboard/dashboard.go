// Package dashboard - админка: поиск и удаление постов и пользователей.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/board"
	"github.com/UkralStul/blogfront/internal/domain"
)

// PageSize - строк на странице админки.
const PageSize = 20

// Backend - запросы, которые нужны админке.
type Backend interface {
	ListPosts(ctx context.Context, boardType domain.BoardType) ([]domain.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]domain.Account, error)
	DeleteUser(ctx context.Context, pid int64) error
}

// SearchPosts ищет подстроку без учета регистра в заголовке, тексте, нике и категории.
func SearchPosts(posts []domain.Post, query string) []domain.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}
	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if containsAny(q, p.Title, p.Content, p.NickName, p.Category) {
			out = append(out, p)
		}
	}
	return out
}

// SearchUsers ищет по userId, нику, почте и телефону.
func SearchUsers(users []domain.Account, query string) []domain.Account {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users
	}
	out := make([]domain.Account, 0, len(users))
	for _, u := range users {
		if containsAny(q, u.UserID, u.NickName, u.Email, u.PhoneNumber) {
			out = append(out, u)
		}
	}
	return out
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Listing - страница таблицы админки.
type Listing[T any] struct {
	Rows       []T
	Page       int
	TotalPages int
	Total      int
	Query      string
}

// Dashboard хранит загруженные посты и пользователей, поиск и страницы.
type Dashboard struct {
	backend Backend
	actor   func() domain.Principal

	mu        sync.RWMutex
	posts     []domain.Post
	users     []domain.Account
	postQuery string
	userQuery string
	postPage  int
	userPage  int
}

// New создает админку. actor возвращает текущего действующего участника.
func New(backend Backend, actor func() domain.Principal) *Dashboard {
	return &Dashboard{backend: backend, actor: actor, postPage: 1, userPage: 1}
}

func (d *Dashboard) requireAdmin() error {
	if _, ok := d.actor().Admin(); !ok {
		return fmt.Errorf("dashboard: %w", domain.ErrForbidden)
	}
	return nil
}

// Load загружает все посты и пользователей.
func (d *Dashboard) Load(ctx context.Context) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	posts, err := d.backend.ListPosts(ctx, "")
	if err != nil {
		return fmt.Errorf("dashboard: load posts: %w", err)
	}
	users, err := d.backend.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("dashboard: load users: %w", err)
	}
	board.SortNewestFirst(posts)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.posts, d.users = posts, users
	d.postPage = clampPage(d.postPage, len(SearchPosts(d.posts, d.postQuery)))
	d.userPage = clampPage(d.userPage, len(SearchUsers(d.users, d.userQuery)))
	return nil
}

// SearchPosts задает строку поиска постов и возвращает на первую страницу.
func (d *Dashboard) SearchPosts(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postQuery = query
	d.postPage = 1
}

func (d *Dashboard) SearchUsers(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userQuery = query
	d.userPage = 1
}

func (d *Dashboard) GoToPostPage(page int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postPage = clampPage(page, len(SearchPosts(d.posts, d.postQuery)))
	return d.postPage
}

func (d *Dashboard) GoToUserPage(page int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userPage = clampPage(page, len(SearchUsers(d.users, d.userQuery)))
	return d.userPage
}

func (d *Dashboard) Posts() Listing[domain.Post] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	found := SearchPosts(d.posts, d.postQuery)
	return Listing[domain.Post]{
		Rows:       board.Paginate(found, d.postPage, PageSize),
		Page:       d.postPage,
		TotalPages: board.TotalPages(len(found), PageSize),
		Total:      len(found),
		Query:      d.postQuery,
	}
}

func (d *Dashboard) Users() Listing[domain.Account] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	found := SearchUsers(d.users, d.userQuery)
	return Listing[domain.Account]{
		Rows:       board.Paginate(found, d.userPage, PageSize),
		Page:       d.userPage,
		TotalPages: board.TotalPages(len(found), PageSize),
		Total:      len(found),
		Query:      d.userQuery,
	}
}

// DeletePost удаляет пост на бэкенде и только потом из списка.
func (d *Dashboard) DeletePost(ctx context.Context, id int64) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	if err := d.backend.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("dashboard: delete post %d: %w", id, err)
	}
	log.WithFields(log.F("post", id)).Info("dashboard: post deleted")

	d.mu.Lock()
	defer d.mu.Unlock()
	kept := make([]domain.Post, 0, len(d.posts))
	for _, p := range d.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	d.posts = kept
	d.postPage = clampPage(d.postPage, len(SearchPosts(d.posts, d.postQuery)))
	return nil
}

func (d *Dashboard) DeleteUser(ctx context.Context, pid int64) error {
	if err := d.requireAdmin(); err != nil {
		return err
	}
	if err := d.backend.DeleteUser(ctx, pid); err != nil {
		return fmt.Errorf("dashboard: delete user %d: %w", pid, err)
	}
	log.WithFields(log.F("user", pid)).Info("dashboard: user deleted")

	d.mu.Lock()
	defer d.mu.Unlock()
	kept := make([]domain.Account, 0, len(d.users))
	for _, u := range d.users {
		if u.PID != pid {
			kept = append(kept, u)
		}
	}
	d.users = kept
	d.userPage = clampPage(d.userPage, len(SearchUsers(d.users, d.userQuery)))
	return nil
}

func clampPage(page, n int) int {
	total := board.TotalPages(n, PageSize)
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
