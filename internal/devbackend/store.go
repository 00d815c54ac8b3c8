package devbackend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/UkralStul/blogfront/internal/domain"
)

var (
	ErrNotFound = domain.ErrNotFound
	ErrConflict = errors.New("already exists")
	ErrNoParent = errors.New("parent comment not found")
	ErrEmpty    = errors.New("comment content cannot be empty")
)

// UserRecord - пользователь вместе с хэшем пароля.
type UserRecord struct {
	domain.Account
	PasswordHash []byte
}

// AdminRecord - администратор вместе с хэшем пароля.
type AdminRecord struct {
	domain.Admin
	PasswordHash []byte
}

// Storage определяет контракт для хранилища dev-бэкенда.
type Storage interface {
	ListPosts(ctx context.Context, boardType domain.BoardType) ([]domain.Post, error)
	GetPost(ctx context.Context, id int64) (domain.Post, error)
	CreatePost(ctx context.Context, post domain.Post) (domain.Post, error)
	UpdatePost(ctx context.Context, post domain.Post) (domain.Post, error)
	DeletePost(ctx context.Context, id int64) error

	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
	GetComment(ctx context.Context, id int64) (domain.Comment, error)
	CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (domain.Comment, error)
	// DeleteComment удаляет комментарий вместе с ответами на него.
	DeleteComment(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, u UserRecord) (UserRecord, error)
	GetUser(ctx context.Context, pid int64) (UserRecord, error)
	UserByLogin(ctx context.Context, userID string) (UserRecord, error)
	ListUsers(ctx context.Context) ([]UserRecord, error)
	SetUserPassword(ctx context.Context, pid int64, hash []byte) error
	DeleteUser(ctx context.Context, pid int64) error

	CreateAdmin(ctx context.Context, a AdminRecord) (AdminRecord, error)
	GetAdmin(ctx context.Context, id int64) (AdminRecord, error)
	AdminByName(ctx context.Context, name string) (AdminRecord, error)
}

// MemoryStore реализует интерфейс Storage в памяти.
type MemoryStore struct {
	mu             sync.RWMutex
	now            func() time.Time
	nextID         int64
	posts          map[int64]*domain.Post
	comments       map[int64]*domain.Comment
	commentsByPost map[int64][]int64 // map[postID][]commentID в порядке создания
	users          map[int64]*UserRecord
	admins         map[int64]*AdminRecord
}

// NewMemoryStore создает новый экземпляр in-memory хранилища.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:            func() time.Time { return time.Now().UTC() },
		posts:          make(map[int64]*domain.Post),
		comments:       make(map[int64]*domain.Comment),
		commentsByPost: make(map[int64][]int64),
		users:          make(map[int64]*UserRecord),
		admins:         make(map[int64]*AdminRecord),
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// === Post Methods ===

func (s *MemoryStore) ListPosts(ctx context.Context, boardType domain.BoardType) ([]domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if boardType == "" || p.BoardType == boardType {
			posts = append(posts, s.withNick(*p))
		}
	}
	// порядок создания; сортировку по дате делает клиент
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return domain.Post{}, ErrNotFound
	}
	return s.withNick(*post), nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = s.id()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now()
	}
	post.UpdatedAt = post.CreatedAt
	s.posts[post.ID] = &post
	return s.withNick(post), nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return domain.Post{}, ErrNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.BoardType = post.BoardType
	stored.Category = post.Category
	stored.Tags = post.Tags
	stored.UpdatedAt = s.now()
	return s.withNick(*stored), nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	for _, cID := range s.commentsByPost[id] {
		delete(s.comments, cID)
	}
	delete(s.commentsByPost, id)
	delete(s.posts, id)
	return nil
}

// withNick подставляет ник автора; вызывать под блокировкой.
func (s *MemoryStore) withNick(p domain.Post) domain.Post {
	if u, ok := s.users[p.AuthorID]; ok {
		p.NickName = u.NickName
	} else if a, ok := s.admins[p.AuthorID]; ok {
		p.NickName = a.AdminName
	}
	return p
}

// === Comment Methods ===

func (s *MemoryStore) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.commentsByPost[postID]
	comments := make([]domain.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.comments[id]; ok {
			comments = append(comments, s.commentNick(*c))
		}
	}
	return comments, nil
}

func (s *MemoryStore) GetComment(ctx context.Context, id int64) (domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, ErrNotFound
	}
	return s.commentNick(*c), nil
}

func (s *MemoryStore) CreateComment(ctx context.Context, comment domain.Comment) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Проверка поста
	if _, ok := s.posts[comment.PostID]; !ok {
		return domain.Comment{}, fmt.Errorf("post %d: %w", comment.PostID, ErrNotFound)
	}
	if strings.TrimSpace(comment.Content) == "" {
		return domain.Comment{}, ErrEmpty
	}

	// Проверка родительского комментария
	if parentID, ok := comment.Kind.ParentID(); ok {
		parent, found := s.comments[parentID]
		if !found || parent.PostID != comment.PostID {
			return domain.Comment{}, ErrNoParent
		}
	}

	comment.ID = s.id()
	comment.CreatedAt = s.now()
	comment.UpdatedAt = comment.CreatedAt
	comment.NickName = ""
	s.comments[comment.ID] = &comment
	s.commentsByPost[comment.PostID] = append(s.commentsByPost[comment.PostID], comment.ID)
	return s.commentNick(comment), nil
}

func (s *MemoryStore) UpdateComment(ctx context.Context, id int64, content string) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = s.now()
	return s.commentNick(*c), nil
}

func (s *MemoryStore) DeleteComment(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return ErrNotFound
	}

	removed := map[int64]bool{id: true}
	for _, cID := range s.commentsByPost[c.PostID] {
		if parentID, isReply := s.comments[cID].Kind.ParentID(); isReply && parentID == id {
			removed[cID] = true
		}
	}

	kept := s.commentsByPost[c.PostID][:0]
	for _, cID := range s.commentsByPost[c.PostID] {
		if removed[cID] {
			delete(s.comments, cID)
			continue
		}
		kept = append(kept, cID)
	}
	s.commentsByPost[c.PostID] = kept
	return nil
}

// commentNick подставляет ник автора; вызывать под блокировкой.
func (s *MemoryStore) commentNick(c domain.Comment) domain.Comment {
	switch c.AuthorKind {
	case domain.AuthorAdmin:
		if a, ok := s.admins[c.AuthorID]; ok {
			c.NickName = a.AdminName
		}
	default:
		if u, ok := s.users[c.AuthorID]; ok {
			c.NickName = u.NickName
		}
	}
	return c
}

// === User Methods ===

func (s *MemoryStore) CreateUser(ctx context.Context, u UserRecord) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.UserID, u.UserID) {
			return UserRecord{}, ErrConflict
		}
	}
	u.PID = s.id()
	u.CreatedAt = s.now()
	s.users[u.PID] = &u
	return u, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, pid int64) (UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[pid]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return *u, nil
}

func (s *MemoryStore) UserByLogin(ctx context.Context, userID string) (UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.UserID, userID) {
			return *u, nil
		}
	}
	return UserRecord{}, ErrNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]UserRecord, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].PID < users[j].PID })
	return users, nil
}

func (s *MemoryStore) SetUserPassword(ctx context.Context, pid int64, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[pid]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// DeleteUser удаляет пользователя; его посты и комментарии остаются.
func (s *MemoryStore) DeleteUser(ctx context.Context, pid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[pid]; !ok {
		return ErrNotFound
	}
	delete(s.users, pid)
	return nil
}

// === Admin Methods ===

func (s *MemoryStore) CreateAdmin(ctx context.Context, a AdminRecord) (AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.admins {
		if existing.AdminName == a.AdminName {
			return AdminRecord{}, ErrConflict
		}
	}
	a.ID = s.id()
	s.admins[a.ID] = &a
	return a, nil
}

func (s *MemoryStore) GetAdmin(ctx context.Context, id int64) (AdminRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[id]
	if !ok {
		return AdminRecord{}, ErrNotFound
	}
	return *a, nil
}

func (s *MemoryStore) AdminByName(ctx context.Context, name string) (AdminRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.admins {
		if a.AdminName == name {
			return *a, nil
		}
	}
	return AdminRecord{}, ErrNotFound
}
