// Package comments держит состояние блока комментариев одного поста.
package comments

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/authz"
	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/thread"
	"github.com/UkralStul/blogfront/internal/validate"
)

// Repository - операции бэкенда над комментариями.
type Repository interface {
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
	CreateComment(ctx context.Context, d domain.CommentDraft) (domain.Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) (domain.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}

// Status - состояние отложенной операции над комментарием.
type Status int

const (
	Confirmed Status = iota
	Pending
	Failed
)

func (s Status) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Entry - комментарий в том виде, в котором его показывают.
type Entry struct {
	Comment domain.Comment
	Status  Status
	// Err - ошибка неудачного удаления, если Status == Failed.
	Err error
}

// Thread - корневой комментарий и ответы, готовые к отображению.
type Thread struct {
	Entry
	Replies []Entry
}

type opState struct {
	status Status
	err    error
}

// Section - контроллер комментариев одного поста. Безопасен для конкурентного использования.
type Section struct {
	postID int64
	repo   Repository
	actor  func() domain.Principal

	mu       sync.RWMutex
	comments []domain.Comment
	ops      map[int64]opState
	loadErr  error
}

// NewSection создает контроллер. actor возвращает участника, от имени которого пишут.
func NewSection(postID int64, repo Repository, actor func() domain.Principal) *Section {
	return &Section{
		postID: postID,
		repo:   repo,
		actor:  actor,
		ops:    make(map[int64]opState),
	}
}

func (s *Section) PostID() int64 { return s.postID }

// Load загружает комментарии. При ошибке список пуст, а ошибка сохраняется для баннера.
func (s *Section) Load(ctx context.Context) error {
	list, err := s.repo.ListComments(ctx, s.postID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.keepOpsLocked(list)
	if err != nil {
		s.comments = nil
		s.loadErr = err
		log.WithFields(log.F("post", s.postID)).Warnf("comments: load failed: %s", err)
		return fmt.Errorf("load comments: %w", err)
	}
	s.comments = list
	s.loadErr = nil

	if orphans := thread.Orphans(list); len(orphans) > 0 {
		log.WithFields(log.F("post", s.postID), log.F("orphans", len(orphans))).
			Infof("comments: dropping replies without a parent")
	}
	return nil
}

// keepOpsLocked оставляет отметки комментариев, которые еще есть в списке.
// Удаление в процессе остается Pending в любом случае, его завершит Delete.
func (s *Section) keepOpsLocked(list []domain.Comment) {
	present := make(map[int64]struct{}, len(list))
	for _, c := range list {
		present[c.ID] = struct{}{}
	}
	for id, op := range s.ops {
		if _, ok := present[id]; !ok && op.status != Pending {
			delete(s.ops, id)
		}
	}
}

// LoadError - ошибка последней загрузки, если была.
func (s *Section) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Threads пересчитывает ветки из текущего состояния.
// Комментарии в ожидании удаления скрыты, для корневого - вместе с ответами.
func (s *Section) Threads() []Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	organized := thread.Organize(s.comments)
	out := make([]Thread, 0, len(organized))
	for _, t := range organized {
		root := s.entry(t.Comment)
		if root.Status == Pending {
			continue
		}
		replies := make([]Entry, 0, len(t.Replies))
		for _, r := range t.Replies {
			if e := s.entry(r); e.Status != Pending {
				replies = append(replies, e)
			}
		}
		out = append(out, Thread{Entry: root, Replies: replies})
	}
	return out
}

// Count - число видимых комментариев.
func (s *Section) Count() int {
	n := 0
	for _, t := range s.Threads() {
		n += 1 + len(t.Replies)
	}
	return n
}

func (s *Section) entry(c domain.Comment) Entry {
	op := s.ops[c.ID]
	return Entry{Comment: c, Status: op.status, Err: op.err}
}

// Submit публикует корневой комментарий.
func (s *Section) Submit(ctx context.Context, content string) (domain.Comment, error) {
	return s.create(ctx, domain.TopLevel(), content)
}

// Reply публикует ответ на корневой комментарий parentID.
func (s *Section) Reply(ctx context.Context, parentID int64, content string) (domain.Comment, error) {
	parent, ok := s.find(parentID)
	if !ok {
		return domain.Comment{}, fmt.Errorf("reply to comment %d: %w", parentID, domain.ErrNotFound)
	}
	if parent.Kind.IsReply() {
		return domain.Comment{}, fmt.Errorf("comment %d is a reply, replies are one level deep", parentID)
	}
	return s.create(ctx, domain.ReplyTo(parentID), content)
}

func (s *Section) create(ctx context.Context, kind domain.CommentKind, content string) (domain.Comment, error) {
	content, err := validate.Comment(content)
	if err != nil {
		return domain.Comment{}, err
	}
	actor := s.actor()
	if !authz.CanWrite(actor) {
		return domain.Comment{}, domain.ErrNotAuthenticated
	}

	created, err := s.repo.CreateComment(ctx, domain.CommentDraft{
		PostID:     s.postID,
		Content:    content,
		AuthorID:   actor.ActorID(),
		AuthorKind: actor.AuthorKind(),
		Kind:       kind,
	})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	if created.NickName == "" {
		created.NickName = actor.DisplayName()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// живая лента могла принести комментарий раньше ответа на POST
	for i := range s.comments {
		if s.comments[i].ID == created.ID {
			if s.comments[i].NickName == "" {
				s.comments[i].NickName = created.NickName
			}
			s.comments[i].Content = created.Content
			return s.comments[i], nil
		}
	}
	s.comments = append([]domain.Comment{created}, s.comments...)
	return created, nil
}

// Edit меняет текст комментария. Локально текст меняется только после ответа бэкенда.
func (s *Section) Edit(ctx context.Context, id int64, content string) (domain.Comment, error) {
	c, ok := s.find(id)
	if !ok {
		return domain.Comment{}, fmt.Errorf("edit comment %d: %w", id, domain.ErrNotFound)
	}
	if !authz.CanModify(s.actor(), c) {
		return domain.Comment{}, domain.ErrForbidden
	}
	content, err := validate.Comment(content)
	if err != nil {
		return domain.Comment{}, err
	}

	updated, err := s.repo.UpdateComment(ctx, id, content)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("edit comment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.comments {
		if s.comments[i].ID == id {
			s.comments[i].Content = updated.Content
			if !updated.UpdatedAt.IsZero() {
				s.comments[i].UpdatedAt = updated.UpdatedAt
			}
			c = s.comments[i]
		}
	}
	return c, nil
}

// Delete удаляет комментарий. Пока запрос идет, комментарий скрыт.
// Успех или 404 убирают его (и ответы на него), другая ошибка возвращает
// его на экран со статусом Failed.
func (s *Section) Delete(ctx context.Context, id int64) error {
	c, ok := s.find(id)
	if !ok {
		return fmt.Errorf("delete comment %d: %w", id, domain.ErrNotFound)
	}
	if !authz.CanModify(s.actor(), c) {
		return domain.ErrForbidden
	}

	s.mu.Lock()
	if s.ops[id].status == Pending {
		s.mu.Unlock()
		return nil
	}
	s.ops[id] = opState{status: Pending}
	s.mu.Unlock()

	err := s.repo.DeleteComment(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		s.removeLocked(id)
		return nil
	}
	s.ops[id] = opState{status: Failed, err: err}
	log.WithFields(log.F("comment", id)).Warnf("comments: delete failed: %s", err)
	return fmt.Errorf("delete comment: %w", err)
}

// Dismiss убирает отметку о неудачном удалении.
func (s *Section) Dismiss(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ops[id].status == Failed {
		delete(s.ops, id)
	}
}

// Merge добавляет комментарий из живой ленты, если его еще нет.
func (s *Section) Merge(c domain.Comment) bool {
	if c.PostID != s.postID {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasLocked(c.ID) {
		return false
	}
	s.comments = append([]domain.Comment{c}, s.comments...)
	return true
}

func (s *Section) find(id int64) (domain.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.comments {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Comment{}, false
}

func (s *Section) hasLocked(id int64) bool {
	for _, c := range s.comments {
		if c.ID == id {
			return true
		}
	}
	return false
}

// removeLocked удаляет комментарий и ответы на него.
func (s *Section) removeLocked(id int64) {
	kept := make([]domain.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		if c.ID == id {
			continue
		}
		if parentID, ok := c.Kind.ParentID(); ok && parentID == id {
			delete(s.ops, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	s.comments = kept
	delete(s.ops, id)
}
