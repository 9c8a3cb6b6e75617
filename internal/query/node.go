package query

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"llama_lend/internal/errs"
	"llama_lend/internal/models"
)

// ErrDisabled — узел выключен для этих параметров и ничего не загружает.
var ErrDisabled = stderrors.New("query: node is disabled")

// State — то, что видит потребитель: данные, признак загрузки и ошибка.
type State[T any] struct {
	Data      T
	HasData   bool
	IsLoading bool
	Err       error
}

// Dependency — узел, инвалидация которого каскадом инвалидирует зависимые.
// Реализуется только *Node, поэтому граф ацикличен по построению:
// зависимости передаются при создании и должны уже существовать.
type Dependency[P models.Scoped] interface {
	ensure(ctx context.Context, p P) (ref, bool, error)
	Name() string
}

// Options описывает узел графа.
type Options[P models.Scoped, T any] struct {
	Name string
	// Key — только значимые для узла поля параметров
	Key   func(P) string
	Fetch func(ctx context.Context, p P) (T, error)
	// Validate запускается до загрузки, ошибка не ретраится
	Validate func(P) error
	// Enabled — условие узла, например «только с плечом»
	Enabled   func(P) bool
	StaleTime time.Duration
	// Deps загружаются до Fetch, их инвалидация каскадом доходит до узла
	Deps []Dependency[P]
}

// Node — именованное параметризованное асинхронное вычисление.
type Node[P models.Scoped, T any] struct {
	client *Client
	opts   Options[P, T]
}

func NewNode[P models.Scoped, T any](c *Client, opts Options[P, T]) *Node[P, T] {
	if opts.Name == "" || opts.Key == nil || opts.Fetch == nil {
		panic("query: node requires name, key and fetch")
	}
	return &Node[P, T]{client: c, opts: opts}
}

func (n *Node[P, T]) Name() string { return n.opts.Name }

// Key — ключ кэша для параметров.
func (n *Node[P, T]) Key(p P) string {
	return n.opts.Name + "(" + n.opts.Key(p) + ")"
}

func (n *Node[P, T]) enabled(p P) bool {
	return n.opts.Enabled == nil || n.opts.Enabled(p)
}

func (n *Node[P, T]) validate(p P) error {
	if n.opts.Validate == nil {
		return nil
	}
	return n.opts.Validate(p)
}

// Fetch возвращает значение из кэша или загружает его. Параллельные вызовы
// с одним ключом разделяют одну загрузку. Отмена ctx освобождает только этого
// вызывающего: загрузка доживает до конца и кладёт результат в кэш.
func (n *Node[P, T]) Fetch(ctx context.Context, p P) (T, error) {
	var zero T
	if !n.enabled(p) {
		return zero, ErrDisabled
	}
	if err := n.validate(p); err != nil {
		return zero, err
	}

	key := n.Key(p)
	if v, ok := n.client.cached(key); ok {
		n.client.metrics.hit(n.opts.Name)
		return v.(T), nil
	}
	n.client.metrics.miss(n.opts.Name)

	ch := n.client.group.DoChan(key, func() (any, error) {
		lctx, done := n.client.detach(ctx)
		defer done()
		return n.load(lctx, key, p)
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(T), nil
	}
}

func (n *Node[P, T]) load(ctx context.Context, key string, p P) (any, error) {
	t := n.client.begin(key, n.opts.Name, p.Scope(), n.opts.StaleTime)

	refs := make([]ref, 0, len(n.opts.Deps))
	for _, d := range n.opts.Deps {
		r, ok, err := d.ensure(ctx, p)
		if err != nil {
			n.client.finish(t, key, nil, err, nil)
			return nil, err
		}
		if ok {
			refs = append(refs, r)
		}
	}

	v, err := n.opts.Fetch(ctx, p)
	if err != nil {
		if errs.KindOf(err) == errs.KindUnknown {
			err = errs.Network(n.opts.Name, err)
		}
		n.client.metrics.fail(n.opts.Name)
		n.client.log.Debug("query fetch failed", zap.String("key", key), zap.Error(err))
		n.client.finish(t, key, nil, err, nil)
		return nil, err
	}
	n.client.finish(t, key, v, nil, refs)
	return v, nil
}

func (n *Node[P, T]) ensure(ctx context.Context, p P) (ref, bool, error) {
	if !n.enabled(p) {
		return ref{}, false, nil
	}
	if _, err := n.Fetch(ctx, p); err != nil {
		return ref{}, false, err
	}
	key := n.Key(p)
	return ref{key: key, gen: n.client.generation(key)}, true, nil
}

// Query — неблокирующее чтение. Если значения нет или оно устарело,
// загрузка запускается в фоне, а вызывающий получает то, что есть сейчас.
func (n *Node[P, T]) Query(p P, enabled bool) State[T] {
	if !enabled || !n.enabled(p) {
		return State[T]{}
	}
	if err := n.validate(p); err != nil {
		return State[T]{Err: err}
	}

	snap := n.client.snapshot(n.Key(p))
	st := State[T]{HasData: snap.hasValue, Err: snap.err, IsLoading: snap.fetching}
	if snap.hasValue {
		st.Data = snap.value.(T)
	}
	if !snap.fresh && !snap.fetching {
		n.client.spawn(func(ctx context.Context) {
			_, _ = n.Fetch(ctx, p)
		})
		st.IsLoading = true
	}
	return st
}

// Invalidate инвалидирует запись для параметров и всё, что от неё зависит.
func (n *Node[P, T]) Invalidate(p P) {
	n.client.Invalidate(n.Key(p))
}

// InvalidateAll инвалидирует все записи узла.
func (n *Node[P, T]) InvalidateAll() {
	n.client.InvalidateNode(n.opts.Name)
}

// Peek — последнее загруженное значение без проверки свежести и без загрузки.
// Нужен узлам, которые читают результат только что обеспеченной зависимости.
func (n *Node[P, T]) Peek(p P) (T, bool) {
	var zero T
	snap := n.client.snapshot(n.Key(p))
	if !snap.hasValue {
		return zero, false
	}
	return snap.value.(T), true
}
