package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/borrow"
	"llama_lend/internal/healthmode"
	"llama_lend/internal/market"
	"llama_lend/internal/market/markettest"
	"llama_lend/internal/models"
	heads "llama_lend/internal/modules/heads/service"
	pricesapi "llama_lend/internal/modules/pricesapi/service"
	"llama_lend/internal/notify"
	"llama_lend/internal/query"
	"llama_lend/internal/wallet/wallettest"
)

const user = "0x00000000000000000000000000000000000000aa"

var wsteth = models.Market{
	ID: "wsteth", ChainID: 1, Kind: models.MarketMint, Controller: "0xc1",
	Collateral: models.Token{Symbol: "wstETH", Address: "0xw", Decimals: 18},
	Borrowed:   models.Token{Symbol: "crvUSD", Address: "0xc", Decimals: 18},
}

type rates struct{}

func (rates) USDRate(context.Context, int64, models.Token) (float64, error) { return 1, nil }

type stats struct{ soft bool }

func (s stats) UserStats(context.Context, int64, string, string) (pricesapi.UserStats, error) {
	return pricesapi.UserStats{SoftLiquidation: s.soft, LossPct: decimal.RequireFromString("1.5")}, nil
}

type probeSpy struct {
	mu    sync.Mutex
	ready bool
	head  uint64
}

func (p *probeSpy) SetReady(v bool) {
	p.mu.Lock()
	p.ready = v
	p.mu.Unlock()
}

func (p *probeSpy) TouchHead(n uint64, _ time.Time) {
	p.mu.Lock()
	p.head = n
	p.mu.Unlock()
}

func (p *probeSpy) TouchRefresh(time.Time) {}

func (p *probeSpy) Head() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.head
}

type fixture struct {
	reads *markettest.User
	notes *notify.Recorder
	clock time.Time
	mon   *Monitor
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		reads: markettest.NewUser(),
		notes: &notify.Recorder{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.healthy()

	client := query.NewClient()
	t.Cleanup(client.Close)
	reg := market.NewStaticRegistry(&markettest.Market{Meta: wsteth, UserReads: f.reads})
	svc := borrow.New(client, reg, wallettest.New(user), nil, borrow.WithRates(rates{}))

	opts = append([]Option{WithClock(func() time.Time { return f.clock })}, opts...)
	f.mon = New(svc.User, client, f.notes,
		[]models.WatchedPosition{{Market: wsteth, User: user}},
		Config{Interval: time.Hour, Cooldown: 30 * time.Minute, Concurrency: 2},
		opts...)
	return f
}

func (f *fixture) healthy() {
	f.reads.Exists = true
	f.reads.Health = decimal.NewFromInt(40)
	f.reads.HealthNotFull = decimal.NewFromInt(40)
	f.reads.Bands = models.Bands{19, 10}
	f.reads.OracleBand = 0
	f.reads.State = models.UserState{Collateral: decimal.NewFromInt(1), Debt: decimal.NewFromInt(1500), N: 10}
}

func (f *fixture) soft() {
	f.reads.State.Stablecoin = decimal.NewFromInt(5)
	f.reads.OracleBand = 12
}

func TestHealthyPositionIsQuiet(t *testing.T) {
	f := newFixture(t)

	reports := f.mon.Refresh(context.Background())
	require.Len(t, reports, 1)
	assert.Equal(t, healthmode.Healthy, reports[0].Details.Status)
	assert.Equal(t, healthmode.LevelCaution, reports[0].Details.Tier.Level)
	assert.False(t, reports[0].Alerted)
	assert.Empty(t, f.notes.Messages())
}

func TestWorseningAlertsOnceAndRecovers(t *testing.T) {
	f := newFixture(t, WithStats(stats{soft: true}))
	ctx := context.Background()

	f.mon.Refresh(ctx)
	f.soft()
	reports := f.mon.Refresh(ctx)
	require.Len(t, reports, 1)
	assert.Equal(t, healthmode.SoftLiquidation, reports[0].Details.Status)
	assert.True(t, reports[0].Alerted)

	f.mon.Refresh(ctx)
	msgs := f.notes.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.LevelError, msgs[0].Level)
	assert.True(t, strings.HasPrefix(msgs[0].Text, "[wsteth] 0x0000…00aa: Soft liquidation, health 40.00%"))
	assert.Contains(t, msgs[0].Text, "debt 1500.00 crvUSD, bands 10..19, oracle band 12 (~$1500.00)")
	assert.Contains(t, msgs[0].Text, "soft liquidation loss 1.50%")

	f.healthy()
	f.mon.Refresh(ctx)
	msgs = f.notes.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, notify.LevelSuccess, msgs[1].Level)
	assert.Contains(t, msgs[1].Text, "healthy again")
}

func TestCooldownSuppressesRepeatedAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mon.Refresh(ctx)
	f.soft()
	f.mon.Refresh(ctx)
	f.healthy()
	f.mon.Refresh(ctx)
	f.soft()
	reports := f.mon.Refresh(ctx)
	assert.False(t, reports[0].Alerted)

	f.healthy()
	f.mon.Refresh(ctx)
	f.clock = f.clock.Add(31 * time.Minute)
	f.soft()
	reports = f.mon.Refresh(ctx)
	assert.True(t, reports[0].Alerted)
}

func TestFirstSightOfRiskyPositionAlerts(t *testing.T) {
	f := newFixture(t)
	f.reads.Health = decimal.RequireFromString("3.2")
	f.reads.HealthNotFull = decimal.RequireFromString("3.2")

	reports := f.mon.Refresh(context.Background())
	require.Len(t, reports, 1)
	assert.Equal(t, healthmode.LevelCritical, reports[0].Details.Tier.Level)
	assert.True(t, reports[0].Alerted)
	assert.Contains(t, f.notes.String(), healthmode.Tiers[0].Message)
}

func TestRefreshRereadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mon.Refresh(ctx)
	f.mon.Refresh(ctx)
	assert.Equal(t, 2, f.reads.Calls.Count("loanExists"))
	assert.Equal(t, 4, f.reads.Calls.Count("userHealth"))
	assert.Equal(t, 2, f.mon.Refreshes())
}

func TestReadErrorSkipsPosition(t *testing.T) {
	f := newFixture(t)
	f.reads.Err = errors.New("rpc down")

	reports := f.mon.Refresh(context.Background())
	assert.Empty(t, reports)
	assert.Empty(t, f.notes.Messages())
}

func TestClosedLoanIsForgotten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.soft()
	f.mon.Refresh(ctx)
	require.Len(t, f.notes.Messages(), 1)

	f.reads.Exists = false
	reports := f.mon.Refresh(ctx)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Details.Exists)
	assert.False(t, reports[0].Alerted)
	assert.Len(t, f.notes.Messages(), 1)
}

func TestRunRefreshesOnNewHead(t *testing.T) {
	spy := &probeSpy{}
	f := newFixture(t, WithProbe(spy))
	ctx, cancel := context.WithCancel(context.Background())
	newHeads := make(chan heads.Head)
	done := make(chan struct{})
	go func() {
		f.mon.Run(ctx, newHeads)
		close(done)
	}()

	newHeads <- heads.Head{Number: 7}
	newHeads <- heads.Head{Number: 8}
	cancel()
	<-done

	assert.GreaterOrEqual(t, f.mon.Refreshes(), 2)
	assert.Equal(t, uint64(8), spy.Head())
	spy.mu.Lock()
	assert.True(t, spy.ready)
	spy.mu.Unlock()
}

func TestRunCoalescesHeadBurst(t *testing.T) {
	f := newFixture(t)
	f.mon.cfg.HeadDebounce = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	newHeads := make(chan heads.Head)
	done := make(chan struct{})
	go func() {
		f.mon.Run(ctx, newHeads)
		close(done)
	}()

	for n := uint64(1); n <= 5; n++ {
		newHeads <- heads.Head{Number: n}
	}
	assert.Eventually(t, func() bool { return f.mon.Refreshes() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, f.mon.Refreshes())

	cancel()
	<-done
}
