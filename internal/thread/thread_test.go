package thread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blogfront/internal/domain"
)

func top(id int64) domain.Comment {
	return domain.Comment{ID: id, Content: "c", Kind: domain.TopLevel()}
}

func reply(id, parent int64) domain.Comment {
	return domain.Comment{ID: id, Content: "r", Kind: domain.ReplyTo(parent)}
}

func ids(cs []domain.Comment) []int64 {
	out := make([]int64, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func TestOrganize_DropsOrphan(t *testing.T) {
	threads := Organize([]domain.Comment{top(1), reply(2, 1), reply(3, 99)})

	require.Len(t, threads, 1)
	assert.Equal(t, int64(1), threads[0].Comment.ID)
	assert.Equal(t, []int64{2}, ids(threads[0].Replies))

	assert.Equal(t, []int64{3}, ids(Orphans([]domain.Comment{top(1), reply(2, 1), reply(3, 99)})))
}

func TestOrganize_PreservesOrder(t *testing.T) {
	// ответы могут прийти раньше родителя, порядок внутри ветки - порядок входа
	input := []domain.Comment{reply(5, 2), top(2), reply(3, 1), top(1), reply(4, 2), reply(6, 1)}
	threads := Organize(input)

	require.Len(t, threads, 2)
	assert.Equal(t, int64(2), threads[0].Comment.ID)
	assert.Equal(t, []int64{5, 4}, ids(threads[0].Replies))
	assert.Equal(t, int64(1), threads[1].Comment.ID)
	assert.Equal(t, []int64{3, 6}, ids(threads[1].Replies))
	assert.Equal(t, 6, Count(threads))
}

func TestOrganize_ReplyToReplyIsOrphan(t *testing.T) {
	threads := Organize([]domain.Comment{top(1), reply(2, 1), reply(3, 2)})

	require.Len(t, threads, 1)
	assert.Equal(t, []int64{2}, ids(threads[0].Replies))
	assert.Equal(t, []int64{3}, ids(Orphans([]domain.Comment{top(1), reply(2, 1), reply(3, 2)})))
}

func TestOrganize_Empty(t *testing.T) {
	assert.Empty(t, Organize(nil))
	assert.Empty(t, Orphans(nil))

	threads := Organize([]domain.Comment{top(1)})
	require.Len(t, threads, 1)
	assert.NotNil(t, threads[0].Replies)
	assert.Empty(t, threads[0].Replies)
}
