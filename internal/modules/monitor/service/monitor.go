// Package service следит за позициями из конфига и шлёт алерты, когда позиция
// приближается к ликвидации.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"llama_lend/internal/batch"
	"llama_lend/internal/borrow"
	"llama_lend/internal/healthmode"
	"llama_lend/internal/models"
	heads "llama_lend/internal/modules/heads/service"
	pricesapi "llama_lend/internal/modules/pricesapi/service"
	"llama_lend/internal/notify"
	"llama_lend/internal/params"
)

// Invalidator сбрасывает кэш позиции перед перечитыванием.
type Invalidator interface {
	InvalidateScope(models.Scope) int
}

// StatsSource — данные индексатора о позиции, для текста алерта.
type StatsSource interface {
	UserStats(ctx context.Context, chainID int64, user, controller string) (pricesapi.UserStats, error)
}

// Probe — что монитор сообщает пробам.
type Probe interface {
	SetReady(v bool)
	TouchHead(number uint64, t time.Time)
	TouchRefresh(t time.Time)
}

type Config struct {
	Interval    time.Duration
	Cooldown    time.Duration
	Concurrency int

	// пачка блоков за HeadDebounce даёт одну проверку, 0 — проверка на каждый блок
	HeadDebounce time.Duration
}

// Report — результат проверки одной позиции.
type Report struct {
	Position models.WatchedPosition
	Details  borrow.UserLoanDetails
	Alerted  bool
}

type observed struct {
	state healthmode.State
	level healthmode.Level
}

type Monitor struct {
	users     *borrow.UserQueries
	cache     Invalidator
	notifier  notify.Notifier
	positions []models.WatchedPosition
	stats     StatsSource
	probe     Probe
	cfg       Config
	log       *zap.Logger
	now       func() time.Time

	running atomic.Bool

	mu      sync.Mutex
	last    map[string]observed
	sentAt  map[string]time.Time
	refresh int
}

type Option func(*Monitor)

func WithStats(s StatsSource) Option { return func(m *Monitor) { m.stats = s } }

func WithProbe(p Probe) Option { return func(m *Monitor) { m.probe = p } }

func WithLogger(l *zap.Logger) Option { return func(m *Monitor) { m.log = l } }

func WithClock(now func() time.Time) Option { return func(m *Monitor) { m.now = now } }

func New(users *borrow.UserQueries, cache Invalidator, n notify.Notifier, positions []models.WatchedPosition, cfg Config, opts ...Option) *Monitor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	m := &Monitor{
		users:     users,
		cache:     cache,
		notifier:  n,
		positions: positions,
		cfg:       cfg,
		log:       zap.NewNop(),
		now:       time.Now,
		last:      make(map[string]observed),
		sentAt:    make(map[string]time.Time),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Run проверяет позиции сразу, затем по таймеру и на каждый новый блок.
// heads может быть nil.
func (m *Monitor) Run(ctx context.Context, newHeads <-chan heads.Head) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.tick(ctx)
	if m.probe != nil {
		m.probe.SetReady(true)
	}

	onHead := func(heads.Head) { m.tick(ctx) }
	if m.cfg.HeadDebounce > 0 {
		d := params.NewDebouncer(m.cfg.HeadDebounce, func(heads.Head) { m.tick(ctx) })
		defer d.Stop()
		onHead = d.Push
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		case h, ok := <-newHeads:
			if !ok {
				newHeads = nil
				continue
			}
			if m.probe != nil {
				m.probe.TouchHead(h.Number, m.now())
			}
			onHead(h)
		}
	}
}

// tick пропускает проверку, если предыдущая ещё идёт.
func (m *Monitor) tick(ctx context.Context) {
	if !m.running.CompareAndSwap(false, true) {
		return
	}
	defer m.running.Store(false)
	m.Refresh(ctx)
}

// Refresh перечитывает все позиции через граф запросов.
func (m *Monitor) Refresh(ctx context.Context) []Report {
	res := batch.FetchAll(ctx, m.positions, func(ctx context.Context, p models.WatchedPosition) (borrow.UserLoanDetails, error) {
		scope := p.Scope()
		m.cache.InvalidateScope(scope)
		return m.users.LoanDetails.Fetch(ctx, scope)
	}, m.cfg.Concurrency)

	reports := make([]Report, 0, len(m.positions))
	for _, p := range m.positions {
		if err, failed := res.Errors[p]; failed {
			m.log.Warn("monitor: position read failed",
				zap.String("position", p.Scope().String()), zap.Error(err))
			continue
		}
		d := res.Results[p]
		reports = append(reports, Report{
			Position: p,
			Details:  d,
			Alerted:  m.evaluate(ctx, p, d),
		})
	}

	m.mu.Lock()
	m.refresh++
	m.mu.Unlock()
	if m.probe != nil {
		m.probe.TouchRefresh(m.now())
	}
	return reports
}

// Status — текущее состояние позиций из кэша, без алертов.
func (m *Monitor) Status(ctx context.Context) []Report {
	res := batch.FetchAll(ctx, m.positions, func(ctx context.Context, p models.WatchedPosition) (borrow.UserLoanDetails, error) {
		return m.users.LoanDetails.Fetch(ctx, p.Scope())
	}, m.cfg.Concurrency)

	reports := make([]Report, 0, len(m.positions))
	for _, p := range m.positions {
		if d, ok := res.Results[p]; ok {
			reports = append(reports, Report{Position: p, Details: d})
		}
	}
	return reports
}

// Positions — позиции под наблюдением.
func (m *Monitor) Positions() []models.WatchedPosition { return m.positions }

// evaluate сравнивает новое состояние с прошлым и решает, слать ли алерт.
func (m *Monitor) evaluate(ctx context.Context, p models.WatchedPosition, d borrow.UserLoanDetails) bool {
	key := p.Scope().String()

	m.mu.Lock()
	prev, seen := m.last[key]
	if !d.Exists {
		delete(m.last, key)
		m.mu.Unlock()
		return false
	}
	next := observed{state: d.Status, level: d.Tier.Level}
	m.last[key] = next
	m.mu.Unlock()

	switch {
	case seen && healthmode.Worse(prev.state, prev.level, next.state, next.level):
	case !seen && (next.state != healthmode.Healthy || next.level >= healthmode.LevelWarning):
	case seen && prev.state != healthmode.Healthy && next.state == healthmode.Healthy:
		m.notifier.Notify(fmt.Sprintf("%s: position is healthy again, health %s%%", label(p), health(d)), notify.LevelSuccess)
		return true
	default:
		return false
	}

	if !m.canSend(key+":"+next.state.String()+":"+next.level.String(), m.cfg.Cooldown) {
		return false
	}
	m.notifier.Notify(m.alertText(ctx, p, d), notify.LevelError)
	return true
}

func (m *Monitor) alertText(ctx context.Context, p models.WatchedPosition, d borrow.UserLoanDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s, health %s%%", label(p), d.Status.Label(), health(d))
	if d.Tier.Message != "" {
		b.WriteString("\n" + d.Tier.Message)
	}
	if tip := d.Status.Tooltip(); tip != "" {
		b.WriteString("\n" + tip)
	}
	fmt.Fprintf(&b, "\ndebt %s %s, bands %d..%d",
		d.State.Debt.StringFixed(2), p.Market.Borrowed.Symbol, d.Bands.Ascending()[0], d.Bands.Ascending()[1])
	if d.OraclePriceBand != nil {
		fmt.Fprintf(&b, ", oracle band %d", *d.OraclePriceBand)
	}

	if rates, err := m.users.USDRates.Fetch(ctx, p.Market.Scope()); err == nil {
		if r, ok := rates[p.Market.Borrowed.Symbol]; ok && borrow.RateKnown(r) {
			usd, _ := d.State.Debt.Float64()
			fmt.Fprintf(&b, " (~$%.2f)", usd*r)
		}
	}
	if m.stats != nil {
		st, err := m.stats.UserStats(ctx, p.Market.ChainID, p.User, p.Market.Controller)
		if err != nil {
			m.log.Debug("monitor: user stats", zap.Error(err))
		} else if st.SoftLiquidation {
			fmt.Fprintf(&b, "\nsoft liquidation loss %s%%", st.LossPct.StringFixed(2))
		}
	}
	return b.String()
}

func label(p models.WatchedPosition) string {
	user := p.User
	if len(user) > 10 {
		user = user[:6] + "…" + user[len(user)-4:]
	}
	return fmt.Sprintf("[%s] %s", p.Market.ID, user)
}

func health(d borrow.UserLoanDetails) string {
	return healthmode.DisplayHealth(d.Health, d.HealthNotFull).StringFixed(2)
}

// canSend — не чаще раза в cooldown на ключ.
func (m *Monitor) canSend(key string, cooldown time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if t, ok := m.sentAt[key]; ok && now.Sub(t) < cooldown {
		return false
	}
	m.sentAt[key] = now
	return true
}

// Refreshes — сколько проверок прошло.
func (m *Monitor) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}
