// Package thread собирает двухуровневое дерево комментариев из плоского списка.
package thread

import "github.com/UkralStul/blogfront/internal/domain"

// Thread - корневой комментарий и ответы на него.
type Thread struct {
	Comment domain.Comment
	Replies []domain.Comment
}

// Organize группирует ответы под корневыми комментариями.
// Порядок корневых комментариев и порядок ответов внутри ветки сохраняются
// такими, какими они пришли во входном списке. Ответы без существующего
// корневого родителя (сироты) в результат не попадают.
func Organize(comments []domain.Comment) []Thread {
	threads := make([]Thread, 0, len(comments))
	index := make(map[int64]int, len(comments))

	for _, c := range comments {
		if c.Kind.IsReply() {
			continue
		}
		index[c.ID] = len(threads)
		threads = append(threads, Thread{Comment: c, Replies: []domain.Comment{}})
	}

	for _, c := range comments {
		parentID, ok := c.Kind.ParentID()
		if !ok {
			continue
		}
		if i, found := index[parentID]; found {
			threads[i].Replies = append(threads[i].Replies, c)
		}
	}
	return threads
}

// Orphans возвращает ответы, для которых нет корневого родителя.
func Orphans(comments []domain.Comment) []domain.Comment {
	roots := make(map[int64]struct{}, len(comments))
	for _, c := range comments {
		if !c.Kind.IsReply() {
			roots[c.ID] = struct{}{}
		}
	}

	var orphans []domain.Comment
	for _, c := range comments {
		parentID, ok := c.Kind.ParentID()
		if !ok {
			continue
		}
		if _, found := roots[parentID]; !found {
			orphans = append(orphans, c)
		}
	}
	return orphans
}

// Count - число видимых комментариев: корневые плюс привязанные ответы.
func Count(threads []Thread) int {
	n := len(threads)
	for _, t := range threads {
		n += len(t.Replies)
	}
	return n
}
