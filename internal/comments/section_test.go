package comments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blogfront/internal/domain"
)

// fakeRepo - репозиторий в памяти; block позволяет задержать удаление.
type fakeRepo struct {
	mu        sync.Mutex
	comments  []domain.Comment
	nextID    int64
	listErr   error
	createErr error
	deleteErr error
	block     chan struct{}
	lists     map[int64]int
	deletes   int
}

func newFakeRepo(comments ...domain.Comment) *fakeRepo {
	return &fakeRepo{comments: comments, nextID: 100, lists: make(map[int64]int)}
}

func (f *fakeRepo) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[postID]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateComment(ctx context.Context, d domain.CommentDraft) (domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Comment{}, f.createErr
	}
	f.nextID++
	c := domain.Comment{
		ID:         f.nextID,
		PostID:     d.PostID,
		Content:    d.Content,
		AuthorID:   d.AuthorID,
		AuthorKind: d.AuthorKind,
		Kind:       d.Kind,
		CreatedAt:  time.Now(),
	}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeRepo) UpdateComment(ctx context.Context, id int64, content string) (domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Content = content
			return f.comments[i], nil
		}
	}
	return domain.Comment{}, &domain.ServerError{Status: 404}
}

func (f *fakeRepo) DeleteComment(ctx context.Context, id int64) error {
	f.mu.Lock()
	f.deletes++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

const postID = 1

var (
	hana  = domain.UserPrincipal(domain.User{PID: 7, UserID: "hana01", NickName: "하나"})
	other = domain.UserPrincipal(domain.User{PID: 8, UserID: "yuki22", NickName: "유키"})
	root  = domain.AdminPrincipal(domain.Admin{ID: 1, AdminName: "root"})
)

func as(p domain.Principal) func() domain.Principal {
	return func() domain.Principal { return p }
}

func seed() []domain.Comment {
	return []domain.Comment{
		{ID: 1, PostID: postID, Content: "first", AuthorID: 7, Kind: domain.TopLevel()},
		{ID: 2, PostID: postID, Content: "reply", AuthorID: 8, Kind: domain.ReplyTo(1)},
		{ID: 3, PostID: postID, Content: "second", AuthorID: 8, Kind: domain.TopLevel()},
		{ID: 4, PostID: postID, Content: "orphan", AuthorID: 8, Kind: domain.ReplyTo(99)},
	}
}

func loaded(t *testing.T, repo *fakeRepo, actor domain.Principal) *Section {
	t.Helper()
	s := NewSection(postID, repo, as(actor))
	require.NoError(t, s.Load(context.Background()))
	return s
}

func threadIDs(threads []Thread) [][]int64 {
	out := make([][]int64, 0, len(threads))
	for _, th := range threads {
		row := []int64{th.Comment.ID}
		for _, r := range th.Replies {
			row = append(row, r.Comment.ID)
		}
		out = append(out, row)
	}
	return out
}

func TestSection_Load(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), domain.Guest())

	assert.Equal(t, [][]int64{{1, 2}, {3}}, threadIDs(s.Threads()))
	assert.Equal(t, 3, s.Count())
	assert.NoError(t, s.LoadError())
}

func TestSection_LoadFailureDegrades(t *testing.T) {
	repo := newFakeRepo(seed()...)
	s := loaded(t, repo, domain.Guest())

	repo.listErr = &domain.NetworkError{Op: "GET", Err: errors.New("offline")}
	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, s.Threads())
	assert.True(t, domain.IsNetwork(s.LoadError()))
}

func TestSection_SubmitRequiresLogin(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), domain.Guest())

	_, err := s.Submit(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestSection_SubmitValidates(t *testing.T) {
	repo := newFakeRepo(seed()...)
	s := loaded(t, repo, hana)

	_, err := s.Submit(context.Background(), "   ")
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, repo.comments, 4)
}

func TestSection_SubmitPrependsWithNickname(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), hana)

	created, err := s.Submit(context.Background(), "  new one  ")
	require.NoError(t, err)
	assert.Equal(t, "new one", created.Content)
	assert.Equal(t, "하나", created.NickName)
	assert.Equal(t, domain.AuthorUser, created.AuthorKind)
	assert.Equal(t, int64(7), created.AuthorID)

	threads := s.Threads()
	assert.Equal(t, created.ID, threads[0].Comment.ID)
}

func TestSection_AdminActsAsAdmin(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), root)

	created, err := s.Submit(context.Background(), "공지")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorAdmin, created.AuthorKind)
	assert.Equal(t, int64(1), created.AuthorID)
	assert.Equal(t, "root", created.DisplayName())
}

func TestSection_SubmitFailureAppliesNothing(t *testing.T) {
	repo := newFakeRepo(seed()...)
	s := loaded(t, repo, hana)
	repo.createErr = &domain.ServerError{Status: 500}

	_, err := s.Submit(context.Background(), "lost")
	require.Error(t, err)
	assert.Equal(t, 3, s.Count())
}

func TestSection_Reply(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), hana)
	ctx := context.Background()

	created, err := s.Reply(ctx, 1, "answer")
	require.NoError(t, err)
	parentID, ok := created.Kind.ParentID()
	require.True(t, ok)
	assert.Equal(t, int64(1), parentID)
	assert.Equal(t, [][]int64{{1, created.ID, 2}, {3}}, threadIDs(s.Threads()))

	_, err = s.Reply(ctx, 2, "nested")
	assert.Error(t, err)
	_, err = s.Reply(ctx, 42, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSection_Edit(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), hana)
	ctx := context.Background()

	_, err := s.Edit(ctx, 3, "not mine")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	edited, err := s.Edit(ctx, 1, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)
	assert.Equal(t, "edited", s.Threads()[0].Comment.Content)
}

func TestSection_EditFailureKeepsContent(t *testing.T) {
	repo := newFakeRepo(seed()...)
	s := loaded(t, repo, hana)
	repo.comments = nil // бэкенд ответит 404

	_, err := s.Edit(context.Background(), 1, "edited")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "first", s.Threads()[0].Comment.Content)
}

func TestSection_DeleteHidesWhilePending(t *testing.T) {
	repo := newFakeRepo(seed()...)
	repo.block = make(chan struct{})
	s := loaded(t, repo, root)

	done := make(chan error, 1)
	go func() { done <- s.Delete(context.Background(), 1) }()

	require.Eventually(t, func() bool {
		return len(s.Threads()) == 1
	}, time.Second, 5*time.Millisecond)
	// ветка скрыта вместе с ответом
	assert.Equal(t, [][]int64{{3}}, threadIDs(s.Threads()))

	close(repo.block)
	require.NoError(t, <-done)
	assert.Equal(t, [][]int64{{3}}, threadIDs(s.Threads()))
	assert.Equal(t, 1, s.Count())
}

func TestSection_ReloadKeepsPendingDelete(t *testing.T) {
	repo := newFakeRepo(seed()...)
	repo.block = make(chan struct{})
	s := loaded(t, repo, root)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Delete(ctx, 1) }()
	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.deletes == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, [][]int64{{3}}, threadIDs(s.Threads()))

	// повторное удаление не уходит на бэкенд
	require.NoError(t, s.Delete(ctx, 1))
	repo.mu.Lock()
	assert.Equal(t, 1, repo.deletes)
	repo.mu.Unlock()

	close(repo.block)
	require.NoError(t, <-done)
	assert.Equal(t, [][]int64{{3}}, threadIDs(s.Threads()))
}

func TestSection_ReloadKeepsFailedMark(t *testing.T) {
	repo := newFakeRepo(seed()...)
	repo.deleteErr = errors.New("boom")
	s := loaded(t, repo, root)
	ctx := context.Background()

	require.Error(t, s.Delete(ctx, 3))
	require.NoError(t, s.Load(ctx))

	threads := s.Threads()
	require.Len(t, threads, 2)
	assert.Equal(t, Failed, threads[1].Status)
}

func TestSection_DeleteNotFoundIsSuccess(t *testing.T) {
	repo := newFakeRepo(seed()...)
	repo.deleteErr = &domain.ServerError{Status: 404}
	s := loaded(t, repo, hana)

	require.NoError(t, s.Delete(context.Background(), 1))
	assert.Equal(t, [][]int64{{3}}, threadIDs(s.Threads()))
}

func TestSection_DeleteFailureRollsBack(t *testing.T) {
	repo := newFakeRepo(seed()...)
	repo.deleteErr = &domain.ServerError{Status: 500}
	s := loaded(t, repo, hana)

	err := s.Delete(context.Background(), 1)
	require.Error(t, err)

	threads := s.Threads()
	require.Len(t, threads, 2)
	assert.Equal(t, Failed, threads[0].Status)
	assert.Equal(t, 500, domain.StatusOf(threads[0].Err))
	assert.Len(t, threads[0].Replies, 1)

	s.Dismiss(1)
	assert.Equal(t, Confirmed, s.Threads()[0].Status)
}

func TestSection_DeleteForbidden(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), other)

	assert.ErrorIs(t, s.Delete(context.Background(), 1), domain.ErrForbidden)
	assert.ErrorIs(t, s.Delete(context.Background(), 77), domain.ErrNotFound)
	require.NoError(t, s.Delete(context.Background(), 2))
}

func TestSection_Merge(t *testing.T) {
	s := loaded(t, newFakeRepo(seed()...), domain.Guest())

	live := domain.Comment{ID: 50, PostID: postID, Content: "live", Kind: domain.TopLevel()}
	assert.True(t, s.Merge(live))
	assert.False(t, s.Merge(live))
	assert.False(t, s.Merge(domain.Comment{ID: 51, PostID: 2}))
	assert.Equal(t, int64(50), s.Threads()[0].Comment.ID)
}

// liveFirstRepo отдает созданный комментарий в ленту раньше, чем отвечает на POST.
type liveFirstRepo struct {
	*fakeRepo
	section *Section
}

func (r *liveFirstRepo) CreateComment(ctx context.Context, d domain.CommentDraft) (domain.Comment, error) {
	c, err := r.fakeRepo.CreateComment(ctx, d)
	if err == nil {
		r.section.Merge(c)
	}
	return c, err
}

func TestSection_SubmitAfterLiveCopyKeepsNickname(t *testing.T) {
	repo := &liveFirstRepo{fakeRepo: newFakeRepo(seed()...)}
	s := NewSection(postID, repo, as(hana))
	repo.section = s
	require.NoError(t, s.Load(context.Background()))

	created, err := s.Submit(context.Background(), "안녕하세요")
	require.NoError(t, err)
	assert.Equal(t, "하나", created.NickName)

	threads := s.Threads()
	require.Len(t, threads, 3)
	assert.Equal(t, created.ID, threads[0].Comment.ID)
	assert.Equal(t, "하나", threads[0].Comment.NickName)
	assert.Equal(t, "하나", threads[0].Comment.DisplayName())
	assert.Equal(t, 4, s.Count())
}
