package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/UkralStul/blogfront/internal/domain"
)

// ListPosts возвращает посты доски; пустой boardType - все посты.
func (c *Client) ListPosts(ctx context.Context, boardType domain.BoardType) ([]domain.Post, error) {
	var query url.Values
	if boardType != "" {
		query = url.Values{"boardType": {string(boardType)}}
	}
	var posts []domain.Post
	if err := c.do(ctx, "GET", "/api/posts", query, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	var post domain.Post
	err := c.do(ctx, "GET", postPath(id), nil, nil, &post)
	return post, err
}

// CreatePost создает пост от имени authorID.
func (c *Client) CreatePost(ctx context.Context, d domain.PostDraft, authorID int64) (domain.Post, error) {
	req := domain.Post{
		Title:     d.Title,
		Content:   d.Content,
		BoardType: d.BoardType,
		Category:  d.Category,
		Tags:      d.Tags,
		AuthorID:  authorID,
	}
	var post domain.Post
	err := c.do(ctx, "POST", "/api/posts", nil, req, &post)
	return post, err
}

// UpdatePost перезаписывает редактируемые поля поста.
func (c *Client) UpdatePost(ctx context.Context, id int64, d domain.PostDraft, authorID int64) (domain.Post, error) {
	req := domain.Post{
		ID:        id,
		Title:     d.Title,
		Content:   d.Content,
		BoardType: d.BoardType,
		Category:  d.Category,
		Tags:      d.Tags,
		AuthorID:  authorID,
	}
	var post domain.Post
	err := c.do(ctx, "PUT", postPath(id), nil, req, &post)
	return post, err
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", postPath(id), nil, nil, nil)
}

func postPath(id int64) string {
	return fmt.Sprintf("/api/posts/%d", id)
}
