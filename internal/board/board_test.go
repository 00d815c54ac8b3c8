package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UkralStul/blogfront/internal/domain"
)

func postsN(n int) []domain.Post {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]domain.Post, n)
	for i := range posts {
		posts[i] = domain.Post{
			ID:        int64(i + 1),
			Title:     fmt.Sprintf("post %d", i+1),
			Category:  "Backend",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return posts
}

func ids(posts []domain.Post) []int64 {
	out := make([]int64, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestFilter_AllAndEmptyTagIsIdentity(t *testing.T) {
	posts := postsN(4)
	assert.Equal(t, posts, Filter(posts, AllCategory, ""))
	assert.Equal(t, posts, Filter(posts, AllCategory, "   "))
}

func TestFilter_CategoryAndTag(t *testing.T) {
	posts := []domain.Post{
		{ID: 1, Category: "Frontend", Tags: domain.Tags{"React", "css"}},
		{ID: 2, Category: "Backend", Tags: domain.Tags{"go"}},
		{ID: 3, Category: "Frontend", Tags: domain.Tags{"vue"}},
		{ID: 4, Category: "Backend", Tags: domain.Tags{"spring", "reactive"}},
	}

	assert.Equal(t, []int64{1, 3}, ids(Filter(posts, "Frontend", "")))
	// подстрока без учета регистра
	assert.Equal(t, []int64{1, 4}, ids(Filter(posts, AllCategory, "REACT")))
	assert.Equal(t, []int64{4}, ids(Filter(posts, "Backend", "react")))
	assert.Empty(t, Filter(posts, "Database", ""))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}

	assert.Equal(t, []int{19, 20}, Paginate(items, 3, 9))
	assert.Equal(t, 3, TotalPages(len(items), 9))
	assert.Empty(t, Paginate(items, 4, 9))
	assert.Empty(t, Paginate(items, 0, 9))
	assert.Equal(t, 0, TotalPages(0, 9))
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{ID: 1, CreatedAt: base},
		{ID: 2},
		{ID: 3, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4},
		{ID: 5, CreatedAt: base.Add(time.Hour)},
	}
	SortNewestFirst(posts)
	assert.Equal(t, []int64{3, 5, 1, 2, 4}, ids(posts))
}

func TestConfigFor(t *testing.T) {
	for _, bt := range domain.BoardTypes {
		cfg, err := ConfigFor(bt)
		require.NoError(t, err)
		assert.Equal(t, AllCategory, cfg.Categories[0])
	}

	cfg, err := ConfigFor(domain.BoardDaily)
	require.NoError(t, err)
	assert.Equal(t, []string{AllCategory, "일상", "게임", "영화/드라마/애니메이션", "음악", "기타"}, cfg.Categories)

	// копия: изменения не портят реестр
	cfg.Categories[1] = "x"
	again, _ := ConfigFor(domain.BoardDaily)
	assert.Equal(t, "일상", again.Categories[1])

	_, err = ConfigFor("music")
	assert.Error(t, err)
}

func TestView_Pagination(t *testing.T) {
	cfg, _ := ConfigFor(domain.BoardIT)
	v := NewView(cfg, 0)
	v.SetPosts(postsN(20))

	page := v.Current()
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Posts, DefaultPageSize)
	// новые вперед
	assert.Equal(t, int64(20), page.Posts[0].ID)

	assert.Equal(t, 3, v.GoTo(3))
	assert.Len(t, v.Current().Posts, 2)

	assert.Equal(t, 3, v.GoTo(99))
	assert.Equal(t, 1, v.GoTo(-5))
	assert.Equal(t, 2, v.Next())
	assert.Equal(t, 1, v.Prev())
	assert.Equal(t, 1, v.Prev())
}

func TestView_FilterChangeResetsPage(t *testing.T) {
	cfg, _ := ConfigFor(domain.BoardIT)
	v := NewView(cfg, 9)
	v.SetPosts(postsN(20))

	v.GoTo(2)
	require.NoError(t, v.SetCategory("Backend"))
	assert.Equal(t, 1, v.Current().Page)

	v.GoTo(2)
	v.SetTag("go")
	page := v.Current()
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Posts)
	assert.Equal(t, 1, v.GoTo(5))

	assert.Error(t, v.SetCategory("일상"))
}

func TestView_EmptyBoard(t *testing.T) {
	cfg, _ := ConfigFor(domain.BoardCulture)
	v := NewView(cfg, 9)

	page := v.Current()
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Posts)
}
