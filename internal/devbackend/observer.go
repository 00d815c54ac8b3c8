package devbackend

import (
	"sync"

	"github.com/google/uuid"

	"github.com/UkralStul/blogfront/internal/domain"
)

// CommentObserver хранит каналы для подписчиков на новые комментарии.
type CommentObserver struct {
	mu sync.RWMutex
	//          map[postID] map[subscriberID] channel
	subs map[int64]map[string]chan domain.Comment
}

func NewCommentObserver() *CommentObserver {
	return &CommentObserver{
		subs: make(map[int64]map[string]chan domain.Comment),
	}
}

// Subscribe регистрирует подписчика на пост. Возвращает канал и функцию отписки.
func (o *CommentObserver) Subscribe(postID int64) (<-chan domain.Comment, func()) {
	ch := make(chan domain.Comment, 16)
	subID := uuid.NewString()

	o.mu.Lock()
	if o.subs[postID] == nil {
		o.subs[postID] = make(map[string]chan domain.Comment)
	}
	o.subs[postID][subID] = ch
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			if postSubs, ok := o.subs[postID]; ok {
				delete(postSubs, subID)
				if len(postSubs) == 0 {
					delete(o.subs, postID)
				}
			}
			close(ch)
		})
	}
}

// Publish рассылает комментарий подписчикам поста. Не блокируется:
// подписчик с полным буфером пропускает комментарий.
func (o *CommentObserver) Publish(c domain.Comment) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	for _, ch := range o.subs[c.PostID] {
		select {
		case ch <- c:
		default:
		}
	}
}

// Subscribers - число подписчиков поста.
func (o *CommentObserver) Subscribers(postID int64) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs[postID])
}
