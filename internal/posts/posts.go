// Package posts - операции над постами с проверкой прав на клиенте.
package posts

import (
	"context"
	"fmt"

	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/authz"
	"github.com/UkralStul/blogfront/internal/board"
	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/validate"
)

// Backend - запросы к бэкенду постов.
type Backend interface {
	ListPosts(ctx context.Context, boardType domain.BoardType) ([]domain.Post, error)
	GetPost(ctx context.Context, id int64) (domain.Post, error)
	CreatePost(ctx context.Context, d domain.PostDraft, authorID int64) (domain.Post, error)
	UpdatePost(ctx context.Context, id int64, d domain.PostDraft, authorID int64) (domain.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

// Service проверяет черновики и права до обращения к бэкенду.
type Service struct {
	backend Backend
	actor   func() domain.Principal
}

func NewService(backend Backend, actor func() domain.Principal) *Service {
	return &Service{backend: backend, actor: actor}
}

// List возвращает посты доски, новые первыми.
// При ошибке возвращается пустой список и ошибка для баннера.
func (s *Service) List(ctx context.Context, bt domain.BoardType) ([]domain.Post, error) {
	list, err := s.backend.ListPosts(ctx, bt)
	if err != nil {
		log.WithFields(log.F("board", string(bt))).Warnf("posts: list failed: %s", err)
		return []domain.Post{}, fmt.Errorf("list posts: %w", err)
	}
	board.SortNewestFirst(list)
	return list, nil
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Post, error) {
	post, err := s.backend.GetPost(ctx, id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

// Create публикует пост от имени текущего участника.
func (s *Service) Create(ctx context.Context, d domain.PostDraft) (domain.Post, error) {
	actor := s.actor()
	if !authz.CanWrite(actor) {
		return domain.Post{}, domain.ErrNotAuthenticated
	}
	d, err := validate.Post(d)
	if err != nil {
		return domain.Post{}, err
	}
	post, err := s.backend.CreatePost(ctx, d, actor.ActorID())
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// Update перезаписывает пост. Автор поста не меняется, даже если правит админ.
func (s *Service) Update(ctx context.Context, current domain.Post, d domain.PostDraft) (domain.Post, error) {
	if !authz.CanModify(s.actor(), current) {
		return domain.Post{}, domain.ErrForbidden
	}
	d, err := validate.Post(d)
	if err != nil {
		return domain.Post{}, err
	}
	post, err := s.backend.UpdatePost(ctx, current.ID, d, current.AuthorID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("update post %d: %w", current.ID, err)
	}
	return post, nil
}

func (s *Service) Delete(ctx context.Context, current domain.Post) error {
	if !authz.CanModify(s.actor(), current) {
		return domain.ErrForbidden
	}
	if err := s.backend.DeletePost(ctx, current.ID); err != nil {
		return fmt.Errorf("delete post %d: %w", current.ID, err)
	}
	return nil
}
