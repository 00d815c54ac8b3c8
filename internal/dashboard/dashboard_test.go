package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blogfront/internal/domain"
)

type fakeBackend struct {
	posts     []domain.Post
	users     []domain.Account
	deleteErr error
	deleted   []int64
}

func (f *fakeBackend) ListPosts(ctx context.Context, bt domain.BoardType) ([]domain.Post, error) {
	return append([]domain.Post(nil), f.posts...), nil
}

func (f *fakeBackend) DeletePost(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]domain.Account, error) {
	return append([]domain.Account(nil), f.users...), nil
}

func (f *fakeBackend) DeleteUser(ctx context.Context, pid int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, pid)
	return nil
}

func admin() domain.Principal { return domain.AdminPrincipal(domain.Admin{ID: 1, AdminName: "root"}) }

func manyPosts(n int) []domain.Post {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			ID:        int64(i + 1),
			Title:     fmt.Sprintf("글 %d", i+1),
			Category:  "기타",
			NickName:  "하나",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func TestSearchPosts(t *testing.T) {
	posts := []domain.Post{
		{ID: 1, Title: "Go generics", Category: "Backend", NickName: "root"},
		{ID: 2, Title: "교토", Content: "가을 여행", Category: "문화", NickName: "하나"},
		{ID: 3, Title: "React", Category: "Frontend", NickName: "유키"},
	}
	assert.Len(t, SearchPosts(posts, ""), 3)
	assert.Equal(t, int64(1), SearchPosts(posts, "GENERICS")[0].ID)
	assert.Equal(t, int64(2), SearchPosts(posts, "여행")[0].ID)
	assert.Equal(t, int64(3), SearchPosts(posts, "유키")[0].ID)
	assert.Equal(t, int64(2), SearchPosts(posts, "문화")[0].ID)
}

func TestSearchUsers(t *testing.T) {
	users := []domain.Account{
		{PID: 1, UserID: "hana01", NickName: "하나", Email: "hana@example.com", PhoneNumber: "010-1111-2222"},
		{PID: 2, UserID: "yuki22", NickName: "유키", Email: "yuki@example.com", PhoneNumber: "010-3333-4444"},
	}
	assert.Len(t, SearchUsers(users, " "), 2)
	assert.Equal(t, int64(2), SearchUsers(users, "3333")[0].PID)
	assert.Equal(t, int64(1), SearchUsers(users, "HANA@")[0].PID)
}

func TestDashboard_RequiresAdmin(t *testing.T) {
	user := domain.UserPrincipal(domain.User{PID: 7, UserID: "hana01"})
	d := New(&fakeBackend{}, func() domain.Principal { return user })

	assert.ErrorIs(t, d.Load(context.Background()), domain.ErrForbidden)
	assert.ErrorIs(t, d.DeletePost(context.Background(), 1), domain.ErrForbidden)
	assert.ErrorIs(t, d.DeleteUser(context.Background(), 1), domain.ErrForbidden)
}

func TestDashboard_PostsPaging(t *testing.T) {
	backend := &fakeBackend{posts: manyPosts(45)}
	d := New(backend, admin)
	require.NoError(t, d.Load(context.Background()))

	listing := d.Posts()
	assert.Equal(t, 3, listing.TotalPages)
	require.Len(t, listing.Rows, PageSize)
	assert.Equal(t, int64(45), listing.Rows[0].ID)

	assert.Equal(t, 3, d.GoToPostPage(3))
	assert.Len(t, d.Posts().Rows, 5)

	d.SearchPosts("글 4")
	listing = d.Posts()
	assert.Equal(t, 1, listing.Page)
	// "글 4" и "글 40".."글 45"
	assert.Equal(t, 7, listing.Total)
}

func TestDashboard_DeletePost(t *testing.T) {
	backend := &fakeBackend{posts: manyPosts(21)}
	d := New(backend, admin)
	require.NoError(t, d.Load(context.Background()))
	d.GoToPostPage(2)

	require.NoError(t, d.DeletePost(context.Background(), 1))
	listing := d.Posts()
	assert.Equal(t, 20, listing.Total)
	// вторая страница опустела, остаемся в пределах
	assert.Equal(t, 1, listing.Page)
	assert.Equal(t, []int64{1}, backend.deleted)
}

func TestDashboard_DeleteFailureKeepsRow(t *testing.T) {
	backend := &fakeBackend{
		users:     []domain.Account{{PID: 2, UserID: "yuki22"}},
		deleteErr: &domain.ServerError{Status: 500},
	}
	d := New(backend, admin)
	require.NoError(t, d.Load(context.Background()))

	err := d.DeleteUser(context.Background(), 2)
	var se *domain.ServerError
	assert.True(t, errors.As(err, &se))
	assert.Len(t, d.Users().Rows, 1)
}
