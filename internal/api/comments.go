package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/UkralStul/blogfront/internal/domain"
)

// CommentWire - комментарий в том виде, в котором его передает бэкенд.
type CommentWire struct {
	ID              int64             `json:"id,omitempty"`
	PostID          int64             `json:"postId"`
	Content         string            `json:"content"`
	UserID          int64             `json:"userId"`
	UserType        domain.AuthorKind `json:"userType"`
	NickName        string            `json:"nickName,omitempty"`
	ParentCommentID *int64            `json:"parentCommentId"`
	IsReply         bool              `json:"isReply"`
	CreatedAt       time.Time         `json:"createdAt,omitzero"`
	UpdatedAt       time.Time         `json:"updatedAt,omitzero"`
}

// Kind восстанавливает вид комментария из пары isReply/parentCommentId.
// isReply без родителя дает ответ на 0, то есть заведомую сироту.
func (w CommentWire) Kind() domain.CommentKind {
	switch {
	case w.ParentCommentID != nil:
		return domain.ReplyTo(*w.ParentCommentID)
	case w.IsReply:
		return domain.ReplyTo(0)
	default:
		return domain.TopLevel()
	}
}

func (w CommentWire) Comment() domain.Comment {
	kind := w.UserType
	if kind == "" {
		kind = domain.AuthorUser
	}
	return domain.Comment{
		ID:         w.ID,
		PostID:     w.PostID,
		Content:    w.Content,
		AuthorID:   w.UserID,
		AuthorKind: kind,
		NickName:   w.NickName,
		Kind:       w.Kind(),
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

// WireComment кодирует комментарий, оба поля вида всегда согласованы.
func WireComment(c domain.Comment) CommentWire {
	w := CommentWire{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		UserID:    c.AuthorID,
		UserType:  c.AuthorKind,
		NickName:  c.NickName,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if parentID, ok := c.Kind.ParentID(); ok {
		w.IsReply = true
		w.ParentCommentID = &parentID
	}
	return w
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

// ListComments возвращает плоский список комментариев поста.
func (c *Client) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var wire []CommentWire
	if err := c.do(ctx, "GET", "/api/comments/post/"+strconv.FormatInt(postID, 10), nil, nil, &wire); err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(wire))
	for _, w := range wire {
		comments = append(comments, w.Comment())
	}
	return comments, nil
}

// CreateComment создает комментарий. Бэкенд назначает id и временные метки.
func (c *Client) CreateComment(ctx context.Context, d domain.CommentDraft) (domain.Comment, error) {
	req := WireComment(domain.Comment{
		PostID:     d.PostID,
		Content:    d.Content,
		AuthorID:   d.AuthorID,
		AuthorKind: d.AuthorKind,
		Kind:       d.Kind,
	})
	var resp CommentWire
	if err := c.do(ctx, "POST", "/api/comments", nil, req, &resp); err != nil {
		return domain.Comment{}, err
	}
	return resp.Comment(), nil
}

// UpdateComment меняет только текст комментария.
func (c *Client) UpdateComment(ctx context.Context, id int64, content string) (domain.Comment, error) {
	var resp CommentWire
	err := c.do(ctx, "PUT", commentPath(id), nil, updateCommentRequest{Content: content}, &resp)
	if err != nil {
		return domain.Comment{}, err
	}
	return resp.Comment(), nil
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", commentPath(id), nil, nil, nil)
}

func commentPath(id int64) string {
	return fmt.Sprintf("/api/comments/%d", id)
}
