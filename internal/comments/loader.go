package comments

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/thread"
)

// Lister - чтение комментариев поста.
type Lister interface {
	ListComments(ctx context.Context, postID int64) ([]domain.Comment, error)
}

// CountLoader собирает запросы числа комментариев в пачки:
// в пределах пачки бэкенд запрашивается один раз на каждый пост.
// Создается на одну загрузку доски.
type CountLoader struct {
	loader *dataloader.Loader
}

// NewCountLoader создает лоадер. wait - сколько ждать остальных ключей пачки.
func NewCountLoader(repo Lister, wait time.Duration) *CountLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		var wg sync.WaitGroup
		for i, key := range keys {
			postID, err := strconv.ParseInt(key.String(), 10, 64)
			if err != nil {
				results[i] = &dataloader.Result{Error: fmt.Errorf("bad post key %q: %w", key.String(), err)}
				continue
			}
			wg.Add(1)
			go func(i int, postID int64) {
				defer wg.Done()
				list, err := repo.ListComments(ctx, postID)
				if err != nil {
					results[i] = &dataloader.Result{Error: err}
					return
				}
				results[i] = &dataloader.Result{Data: thread.Count(thread.Organize(list))}
			}(i, postID)
		}
		wg.Wait()

		// Формируем результат в том же порядке, что и ключи
		return results
	}

	return &CountLoader{
		loader: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(wait)),
	}
}

func key(postID int64) dataloader.Key {
	return dataloader.StringKey(strconv.FormatInt(postID, 10))
}

// Count возвращает число видимых комментариев поста.
func (l *CountLoader) Count(ctx context.Context, postID int64) (int, error) {
	v, err := l.loader.Load(ctx, key(postID))()
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Counts загружает числа для нескольких постов одной пачкой.
// Посты, для которых запрос не удался, в результат не попадают.
func (l *CountLoader) Counts(ctx context.Context, postIDs []int64) (map[int64]int, []error) {
	keys := make(dataloader.Keys, 0, len(postIDs))
	for _, id := range postIDs {
		keys = append(keys, key(id))
	}

	values, errs := l.loader.LoadMany(ctx, keys)()
	counts := make(map[int64]int, len(postIDs))
	for i, id := range postIDs {
		if len(errs) > i && errs[i] != nil {
			continue
		}
		if n, ok := values[i].(int); ok {
			counts[id] = n
		}
	}
	return counts, errs
}
