// Package batch — параллельные чтения с ограничением и терпимостью к частичным ошибкам.
package batch

import (
	"context"
	"math"
	"sync"

	"github.com/shopspring/decimal"
)

// Result — успешные значения и ошибки по ключам. Каждый ключ попадает ровно в одну из карт.
type Result[K comparable, V any] struct {
	Results map[K]V
	Errors  map[K]error
}

// Worker читает одно значение.
type Worker[K comparable, V any] func(ctx context.Context, item K) (V, error)

// FetchAll запускает worker для всех items, не больше concurrency одновременно.
// Ошибка одного элемента не останавливает остальные.
func FetchAll[K comparable, V any](ctx context.Context, items []K, worker Worker[K, V], concurrency int) Result[K, V] {
	if concurrency < 1 {
		concurrency = 1
	}
	res := Result[K, V]{
		Results: make(map[K]V, len(items)),
		Errors:  make(map[K]error),
	}

	sem := make(chan struct{}, concurrency)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, item := range items {
		item := item
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				res.Errors[item] = ctx.Err()
				mu.Unlock()
				return
			}
			defer func() { <-sem }()

			v, err := worker(ctx, item)
			mu.Lock()
			if err != nil {
				res.Errors[item] = err
			} else {
				res.Results[item] = v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return res
}

// Retry — параметры второго прохода.
type Retry[V any] struct {
	First  int
	Second int
	// Sentinel подставляется для ключей, которые не прочитались и со второго раза
	Sentinel V
}

// FetchAllWithRetry: первый проход, затем второй только по упавшим ключам с меньшим
// параллелизмом, затем sentinel. В ответе есть все запрошенные ключи;
// в Errors остаются ключи, получившие sentinel.
func FetchAllWithRetry[K comparable, V any](ctx context.Context, items []K, worker Worker[K, V], r Retry[V]) Result[K, V] {
	first := FetchAll(ctx, items, worker, r.First)
	if len(first.Errors) == 0 {
		return first
	}

	failed := make([]K, 0, len(first.Errors))
	for _, item := range items {
		if _, ok := first.Errors[item]; ok {
			failed = append(failed, item)
		}
	}
	second := FetchAll(ctx, failed, worker, r.Second)
	for k, v := range second.Results {
		first.Results[k] = v
	}
	first.Errors = second.Errors
	for k := range second.Errors {
		first.Results[k] = r.Sentinel
	}
	return first
}

// Sentinel-значения для типовых чтений.
var (
	// NaNRate — курс USD, который не удалось получить
	NaNRate = math.NaN()
	// ZeroBalance — баланс, который не удалось получить
	ZeroBalance = decimal.Zero
)
