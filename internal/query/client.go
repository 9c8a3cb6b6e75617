package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"llama_lend/internal/models"
)

// Client — кэш производных значений. Создаётся один раз на процесс,
// очищается при смене сети или выходе пользователя (Clear).
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	// upstream key -> ключи, посчитанные на его основе
	dependents map[string]map[string]struct{}
	epoch      uint64

	group   singleflight.Group
	now     func() time.Time
	log     *zap.Logger
	metrics *Metrics

	base   context.Context
	cancel context.CancelFunc
}

type entry struct {
	key       string
	node      string
	scope     models.Scope
	value     any
	hasValue  bool
	err       error
	fetchedAt time.Time
	staleTime time.Duration
	invalid   bool
	fetching  bool

	// gen растёт на каждой успешной загрузке, version — на каждой инвалидации
	gen      uint64
	version  uint64
	upstream []ref
}

type ref struct {
	key string
	gen uint64
}

type token struct {
	epoch   uint64
	version uint64
}

type Option func(*Client)

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

func WithMetrics(m *Metrics) Option { return func(c *Client) { c.metrics = m } }

// WithClock подменяет часы, нужно в тестах staleTime.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

func NewClient(opts ...Option) *Client {
	c := &Client{
		entries:    make(map[string]*entry),
		dependents: make(map[string]map[string]struct{}),
		now:        time.Now,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.base, c.cancel = context.WithCancel(context.Background())
	return c
}

// Clear сбрасывает весь кэш. Загрузки, начатые до очистки, в кэш не попадут.
func (c *Client) Clear() {
	c.mu.Lock()
	c.epoch++
	c.entries = make(map[string]*entry)
	c.dependents = make(map[string]map[string]struct{})
	c.cancel()
	c.base, c.cancel = context.WithCancel(context.Background())
	c.mu.Unlock()
	c.log.Debug("query cache cleared")
}

// Close останавливает фоновые загрузки.
func (c *Client) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()
}

// Invalidate помечает запись устаревшей вместе со всеми зависимыми записями.
func (c *Client) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(key, make(map[string]struct{}))
}

// InvalidateScope инвалидирует все записи сети/рынка/пользователя,
// включая записи уровня рынка без пользователя.
func (c *Client) InvalidateScope(s models.Scope) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{})
	for key, e := range c.entries {
		if s.Covers(e.scope) {
			c.invalidateLocked(key, seen)
		}
	}
	c.log.Debug("query scope invalidated", zap.Stringer("scope", s), zap.Int("entries", len(seen)))
	return len(seen)
}

// InvalidateNode инвалидирует все записи одного узла.
func (c *Client) InvalidateNode(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]struct{})
	for key, e := range c.entries {
		if e.node == name {
			c.invalidateLocked(key, seen)
		}
	}
}

func (c *Client) invalidateLocked(key string, seen map[string]struct{}) {
	if _, ok := seen[key]; ok {
		return
	}
	seen[key] = struct{}{}
	if e, ok := c.entries[key]; ok {
		e.invalid = true
		e.version++
	}
	for dep := range c.dependents[key] {
		c.invalidateLocked(dep, seen)
	}
}

func (c *Client) freshLocked(e *entry) bool {
	if !e.hasValue || e.err != nil || e.invalid {
		return false
	}
	if c.now().Sub(e.fetchedAt) >= e.staleTime {
		return false
	}
	for _, r := range e.upstream {
		u, ok := c.entries[r.key]
		if !ok || u.gen != r.gen || u.invalid {
			return false
		}
	}
	return true
}

func (c *Client) cached(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.freshLocked(e) {
		return nil, false
	}
	return e.value, true
}

type snapshot struct {
	value    any
	hasValue bool
	err      error
	fresh    bool
	fetching bool
}

func (c *Client) snapshot(key string) snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return snapshot{}
	}
	return snapshot{
		value:    e.value,
		hasValue: e.hasValue,
		err:      e.err,
		fresh:    c.freshLocked(e),
		fetching: e.fetching,
	}
}

func (c *Client) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.gen
	}
	return 0
}

func (c *Client) begin(key, node string, scope models.Scope, staleTime time.Duration) token {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{key: key, node: node, scope: scope, staleTime: staleTime}
		c.entries[key] = e
	}
	e.fetching = true
	return token{epoch: c.epoch, version: e.version}
}

func (c *Client) finish(t token, key string, value any, err error, refs []ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.epoch != c.epoch {
		return
	}
	e, ok := c.entries[key]
	if !ok {
		return
	}
	e.fetching = false
	if err != nil {
		e.err = err
		return
	}

	e.value, e.hasValue, e.err = value, true, nil
	e.fetchedAt = c.now()
	e.gen++

	for _, r := range e.upstream {
		delete(c.dependents[r.key], key)
	}
	e.upstream = refs
	for _, r := range refs {
		deps, ok := c.dependents[r.key]
		if !ok {
			deps = make(map[string]struct{})
			c.dependents[r.key] = deps
		}
		deps[key] = struct{}{}
	}
	// инвалидировали во время загрузки — значение сохраняем, но оно уже несвежее
	e.invalid = e.version != t.version
}

// detach — контекст общей загрузки: значения берёт у ctx, а отменяется
// только вместе с клиентом (Clear, Close).
func (c *Client) detach(ctx context.Context) (context.Context, func()) {
	c.mu.Lock()
	base := c.base
	c.mu.Unlock()
	lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(base, cancel)
	return lctx, func() {
		stop()
		cancel()
	}
}

// spawn запускает фоновую загрузку для неблокирующего Query.
func (c *Client) spawn(fn func(ctx context.Context)) {
	c.mu.Lock()
	ctx := c.base
	c.mu.Unlock()
	go fn(ctx)
}
