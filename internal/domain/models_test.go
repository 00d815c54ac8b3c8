package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_ParseTrimsAndDropsEmpty(t *testing.T) {
	assert.Equal(t, Tags{"react", "go", "css"}, ParseTags(" react, go,, css ,"))
	assert.Empty(t, ParseTags("   "))
}

func TestTags_JSONAcceptsStringAndArray(t *testing.T) {
	var fromString, fromArray Tags
	require.NoError(t, json.Unmarshal([]byte(`"spring, java"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`[" spring", "java", ""]`), &fromArray))

	assert.Equal(t, Tags{"spring", "java"}, fromString)
	assert.Equal(t, fromString, fromArray)

	out, err := json.Marshal(Tags{"spring", "java"})
	require.NoError(t, err)
	assert.JSONEq(t, `"spring, java"`, string(out))

	var bad Tags
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestCommentKind(t *testing.T) {
	top := TopLevel()
	assert.False(t, top.IsReply())
	_, ok := top.ParentID()
	assert.False(t, ok)

	reply := ReplyTo(7)
	assert.True(t, reply.IsReply())
	parent, ok := reply.ParentID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), parent)

	assert.Equal(t, TopLevel(), CommentKind{})
}

func TestComment_DisplayNameFallback(t *testing.T) {
	assert.Equal(t, "neko", Comment{AuthorID: 3, NickName: "neko"}.DisplayName())
	assert.Equal(t, "사용자3", Comment{AuthorID: 3}.DisplayName())
}

func TestPrincipal(t *testing.T) {
	guest := Guest()
	assert.True(t, guest.IsGuest())
	assert.Equal(t, KindGuest, guest.Kind())
	assert.Zero(t, guest.ActorID())

	user := UserPrincipal(User{PID: 7, UserID: "hana", NickName: "하나"})
	assert.Equal(t, KindUser, user.Kind())
	assert.Equal(t, int64(7), user.ActorID())
	assert.Equal(t, AuthorUser, user.AuthorKind())
	assert.Equal(t, "하나", user.DisplayName())

	admin := AdminPrincipal(Admin{ID: 1, AdminName: "root"})
	assert.Equal(t, KindAdmin, admin.Kind())
	assert.Equal(t, AuthorAdmin, admin.AuthorKind())

	assert.True(t, user.Equal(UserPrincipal(User{PID: 7, UserID: "hana", NickName: "하나"})))
	assert.False(t, user.Equal(admin))
	assert.True(t, guest.Equal(Guest()))
}

func TestServerError_Is(t *testing.T) {
	notFound := fmt.Errorf("update comment: %w", &ServerError{Status: http.StatusNotFound})
	assert.True(t, errors.Is(notFound, ErrNotFound))
	assert.False(t, errors.Is(notFound, ErrUnauthorized))
	assert.Equal(t, http.StatusNotFound, StatusOf(notFound))

	forbidden := &ServerError{Status: http.StatusForbidden, Message: "nope"}
	assert.True(t, errors.Is(forbidden, ErrUnauthorized))
	assert.Contains(t, forbidden.Error(), "nope")

	netErr := fmt.Errorf("list: %w", &NetworkError{Op: "GET /api/posts", Err: errors.New("refused")})
	assert.True(t, IsNetwork(netErr))
	assert.Zero(t, StatusOf(netErr))
}

func TestParseBoardType(t *testing.T) {
	bt, err := ParseBoardType(" IT ")
	require.NoError(t, err)
	assert.Equal(t, BoardIT, bt)

	_, err = ParseBoardType("music")
	assert.Error(t, err)
}
