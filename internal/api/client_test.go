package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/blogfront/internal/api"
	"github.com/UkralStul/blogfront/internal/devbackend"
	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
)

type backend struct {
	srv    *httptest.Server
	server *devbackend.Server
	seeded devbackend.Seeded
}

func newBackend(t *testing.T) backend {
	t.Helper()
	store := devbackend.NewMemoryStore()
	seeded, err := devbackend.FillWithMockData(context.Background(), store, bcrypt.MinCost)
	require.NoError(t, err)

	server := devbackend.NewServer(store, devbackend.WithBcryptCost(bcrypt.MinCost))
	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)
	return backend{srv: srv, server: server, seeded: seeded}
}

func newClient(t *testing.T, url string, opts ...api.Option) *api.Client {
	t.Helper()
	c, err := api.New(url, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := api.New("ftp://example.com")
	assert.Error(t, err)

	c, err := api.New("")
	require.NoError(t, err)
	assert.Equal(t, api.DefaultBaseURL, c.BaseURL())
}

func TestCommentWire_Kind(t *testing.T) {
	parent := int64(5)
	cases := []struct {
		name string
		raw  string
		want domain.CommentKind
	}{
		{"top level", `{"id":1,"isReply":false,"parentCommentId":null}`, domain.TopLevel()},
		{"reply", `{"id":2,"isReply":true,"parentCommentId":5}`, domain.ReplyTo(parent)},
		{"parent without flag", `{"id":3,"parentCommentId":5}`, domain.ReplyTo(parent)},
		{"flag without parent", `{"id":4,"isReply":true}`, domain.ReplyTo(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var w api.CommentWire
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &w))
			assert.Equal(t, tc.want, w.Comment().Kind)
		})
	}
}

func TestWireComment_ConsistentFields(t *testing.T) {
	w := api.WireComment(domain.Comment{ID: 1, Kind: domain.TopLevel()})
	assert.False(t, w.IsReply)
	assert.Nil(t, w.ParentCommentID)

	w = api.WireComment(domain.Comment{ID: 2, Kind: domain.ReplyTo(1)})
	assert.True(t, w.IsReply)
	require.NotNil(t, w.ParentCommentID)
	assert.Equal(t, int64(1), *w.ParentCommentID)
}

func TestClient_CommentCRUD(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	c := newClient(t, b.srv.URL)

	_, err := c.LoginUser(ctx, devbackend.SeedUserID, devbackend.SeedUserPassword)
	require.NoError(t, err)

	created, err := c.CreateComment(ctx, domain.CommentDraft{
		PostID:     b.seeded.ThreadID,
		Content:    "새 댓글",
		AuthorID:   b.seeded.User.PID,
		AuthorKind: domain.AuthorUser,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "하나", created.DisplayName())

	updated, err := c.UpdateComment(ctx, created.ID, "고친 댓글")
	require.NoError(t, err)
	assert.Equal(t, "고친 댓글", updated.Content)

	require.NoError(t, c.DeleteComment(ctx, created.ID))

	_, err = c.UpdateComment(ctx, created.ID, "없음")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_ListComments(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b.srv.URL)

	comments, err := c.ListComments(context.Background(), b.seeded.ThreadID)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	parentID, ok := comments[1].Kind.ParentID()
	require.True(t, ok)
	assert.Equal(t, comments[0].ID, parentID)
	assert.Equal(t, domain.AuthorAdmin, comments[1].AuthorKind)
}

func TestClient_ServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"db is down"}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).ListComments(context.Background(), 1)
	var se *domain.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "db is down", se.Message)
	assert.False(t, domain.IsNetwork(err))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(t, url).ListComments(context.Background(), 1)
	assert.True(t, domain.IsNetwork(err))
	assert.Zero(t, domain.StatusOf(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newClient(t, srv.URL, api.WithTimeout(50*time.Millisecond))
	_, err := c.ListPosts(context.Background(), domain.BoardIT)
	assert.True(t, domain.IsNetwork(err))
}

func TestClient_LoginFailure(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b.srv.URL)

	_, err := c.LoginUser(context.Background(), devbackend.SeedUserID, "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, c.Credential())
}

func TestClient_CredentialRoundTrip(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	first := newClient(t, b.srv.URL)
	_, err := first.LoginUser(ctx, devbackend.SeedUserID, devbackend.SeedUserPassword)
	require.NoError(t, err)
	token := first.Credential()
	require.NotEmpty(t, token)

	// новый процесс: кука восстанавливается из сохраненного значения
	second := newClient(t, b.srv.URL)
	_, err = second.GetUser(ctx, b.seeded.User.PID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	second.SetCredential(token)
	u, err := second.GetUser(ctx, b.seeded.User.PID)
	require.NoError(t, err)
	assert.Equal(t, devbackend.SeedUserID, u.UserID)

	second.ClearCredential()
	assert.Empty(t, second.Credential())
}

func TestAuthenticators(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	c := newClient(t, b.srv.URL)

	userAuth := api.UserAuth{Client: c}
	login, err := userAuth.Login(ctx, identity.Credentials{Name: devbackend.SeedUserID, Password: devbackend.SeedUserPassword})
	require.NoError(t, err)
	assert.Equal(t, domain.KindUser, login.Principal.Kind())
	assert.NotEmpty(t, login.Credential)
	require.NoError(t, userAuth.Status(ctx, login.Principal))

	adminAuth := api.AdminAuth{Client: c}
	login, err = adminAuth.Login(ctx, identity.Credentials{Name: devbackend.SeedAdminName, Password: devbackend.SeedAdminPassword})
	require.NoError(t, err)
	assert.Equal(t, domain.KindAdmin, login.Principal.Kind())
	require.NoError(t, adminAuth.Status(ctx, login.Principal))

	require.NoError(t, adminAuth.Logout(ctx, login.Principal))
	assert.ErrorIs(t, adminAuth.Status(ctx, login.Principal), domain.ErrUnauthorized)
}

func TestClient_ListPosts(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b.srv.URL)

	posts, err := c.ListPosts(context.Background(), domain.BoardIT)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.Equal(t, domain.BoardIT, p.BoardType)
	}

	all, err := c.ListPosts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, len(b.seeded.Posts))
}

func TestClient_WatchComments(t *testing.T) {
	b := newBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher := newClient(t, b.srv.URL)
	feed, err := watcher.WatchComments(ctx, b.seeded.ThreadID)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return b.server.Observer().Subscribers(b.seeded.ThreadID) == 1
	}, time.Second, 5*time.Millisecond)

	writer := newClient(t, b.srv.URL)
	_, err = writer.LoginUser(ctx, devbackend.SeedUserID, devbackend.SeedUserPassword)
	require.NoError(t, err)
	created, err := writer.CreateComment(ctx, domain.CommentDraft{
		PostID:     b.seeded.ThreadID,
		Content:    "실시간",
		AuthorID:   b.seeded.User.PID,
		AuthorKind: domain.AuthorUser,
	})
	require.NoError(t, err)

	select {
	case got := <-feed:
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "실시간", got.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("comment was not delivered")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-feed:
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestClient_WatchMissingPost(t *testing.T) {
	b := newBackend(t)
	_, err := newClient(t, b.srv.URL).WatchComments(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
