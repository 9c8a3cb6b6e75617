package borrow

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"llama_lend/internal/batch"
	"llama_lend/internal/errs"
	"llama_lend/internal/healthmode"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/query"
	"llama_lend/internal/validation"
)

// UserLoanDetails — займ пользователя и его классификация.
type UserLoanDetails struct {
	models.LoanDetails
	Exists bool
	Status healthmode.State
	Tier   healthmode.Tier
}

// UserQueries — узлы уровня пользователя и рынка.
type UserQueries struct {
	s *Service

	LoanExists   *query.Node[models.Scope, bool]
	LoanDetails  *query.Node[models.Scope, UserLoanDetails]
	MaxRemovable *query.Node[models.Scope, decimal.Decimal]
	Balances     *query.Node[models.Scope, map[string]decimal.Decimal]
	// USDRates — уровень рынка, пользователь в scope не участвует
	USDRates *query.Node[models.Scope, map[string]float64]
}

func scopeKey(s models.Scope) string { return s.String() }

func marketKey(s models.Scope) string {
	return models.Scope{ChainID: s.ChainID, MarketID: s.MarketID}.String()
}

func validateUserScope(s models.Scope) error {
	v := validation.New()
	v.Test(string(models.FieldChain), s.ChainID > 0, "chain id is required")
	v.Test(string(models.FieldMarket), s.MarketID != "", "market id is required")
	validation.User(v, s.UserAddress)
	return v.Err()
}

func newUserQueries(s *Service) *UserQueries {
	u := &UserQueries{s: s}
	stale := s.cfg.UserStaleTime

	u.LoanExists = query.NewNode(s.client, query.Options[models.Scope, bool]{
		Name:      "user.loanExists",
		Key:       scopeKey,
		Validate:  validateUserScope,
		StaleTime: stale,
		Fetch: func(ctx context.Context, sc models.Scope) (bool, error) {
			reads, err := u.reads(sc)
			if err != nil {
				return false, err
			}
			return reads.LoanExists(ctx, sc.UserAddress)
		},
	})

	u.LoanDetails = query.NewNode(s.client, query.Options[models.Scope, UserLoanDetails]{
		Name:      "user.loanDetails",
		Key:       scopeKey,
		Validate:  validateUserScope,
		StaleTime: stale,
		Deps:      []query.Dependency[models.Scope]{u.LoanExists},
		Fetch:     u.fetchDetails,
	})

	u.MaxRemovable = query.NewNode(s.client, query.Options[models.Scope, decimal.Decimal]{
		Name:      "user.maxRemovable",
		Key:       scopeKey,
		Validate:  validateUserScope,
		StaleTime: stale,
		Deps:      []query.Dependency[models.Scope]{u.LoanDetails},
		Fetch: func(ctx context.Context, sc models.Scope) (decimal.Decimal, error) {
			h, err := s.registry.Market(sc.ChainID, sc.MarketID)
			if err != nil {
				return decimal.Zero, err
			}
			if h.Loan() == nil {
				return decimal.Zero, errs.Configuration("UserQueries.MaxRemovable", "market %s has no loan surface", sc.MarketID)
			}
			return h.Loan().MaxRemovable(ctx)
		},
	})

	u.Balances = query.NewNode(s.client, query.Options[models.Scope, map[string]decimal.Decimal]{
		Name:      "user.balances",
		Key:       scopeKey,
		Validate:  validateUserScope,
		StaleTime: stale,
		Fetch:     u.fetchBalances,
	})

	u.USDRates = query.NewNode(s.client, query.Options[models.Scope, map[string]float64]{
		Name:      "market.usdRates",
		Key:       marketKey,
		Enabled:   func(models.Scope) bool { return s.rates != nil },
		StaleTime: s.cfg.QuoteStaleTime,
		Fetch:     u.fetchRates,
	})
	return u
}

func (u *UserQueries) reads(sc models.Scope) (market.UserAPI, error) {
	h, err := u.s.registry.Market(sc.ChainID, sc.MarketID)
	if err != nil {
		return nil, err
	}
	if h.User() == nil {
		return nil, errs.Configuration("UserQueries", "market %s has no user reads", sc.MarketID)
	}
	return h.User(), nil
}

// fetchDetails читает состояние займа параллельно. Без займа возвращает Exists=false.
func (u *UserQueries) fetchDetails(ctx context.Context, sc models.Scope) (UserLoanDetails, error) {
	exists, _ := u.LoanExists.Peek(sc)
	if !exists {
		return UserLoanDetails{LoanDetails: models.LoanDetails{UpdatedAt: time.Now()}}, nil
	}
	reads, err := u.reads(sc)
	if err != nil {
		return UserLoanDetails{}, err
	}

	var (
		d      models.LoanDetails
		oracle int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Health, err = reads.UserHealth(gctx, sc.UserAddress, true)
		return err
	})
	g.Go(func() (err error) {
		d.HealthNotFull, err = reads.UserHealth(gctx, sc.UserAddress, false)
		return err
	})
	g.Go(func() (err error) {
		d.Bands, err = reads.UserBands(gctx, sc.UserAddress)
		return err
	})
	g.Go(func() (err error) {
		d.State, err = reads.UserState(gctx, sc.UserAddress)
		return err
	})
	g.Go(func() (err error) {
		oracle, err = reads.OraclePriceBand(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return UserLoanDetails{}, err
	}

	d.OraclePriceBand = &oracle
	// позиция в мягкой ликвидации: ликвидация идёт в бэнде оракула
	if d.State.Stablecoin.GreaterThan(healthmode.SoftLiquidationDust) {
		band := oracle
		d.LiquidationBand = &band
	}
	d.UpdatedAt = time.Now()

	return UserLoanDetails{
		LoanDetails: d,
		Exists:      true,
		Status:      healthmode.Classify(healthmode.FromDetails(d)),
		Tier:        healthmode.TierFor(healthmode.DisplayHealth(d.Health, d.HealthNotFull)),
	}, nil
}

// fetchBalances читает collateral и borrowed, непрочитанный баланс становится нулём.
func (u *UserQueries) fetchBalances(ctx context.Context, sc models.Scope) (map[string]decimal.Decimal, error) {
	h, err := u.s.registry.Market(sc.ChainID, sc.MarketID)
	if err != nil {
		return nil, err
	}
	info := h.Info()
	tokens := []models.Token{info.Collateral, info.Borrowed}
	res := batch.FetchAllWithRetry(ctx, tokens, func(ctx context.Context, t models.Token) (decimal.Decimal, error) {
		return u.s.wallet.GetBalance(ctx, sc.UserAddress, t)
	}, batch.Retry[decimal.Decimal]{First: u.s.cfg.BatchFirst, Second: u.s.cfg.BatchSecond, Sentinel: batch.ZeroBalance})

	out := make(map[string]decimal.Decimal, len(tokens))
	for t, v := range res.Results {
		out[t.Symbol] = v
	}
	return out, nil
}

// fetchRates — курсы токенов рынка, непрочитанный курс NaN.
func (u *UserQueries) fetchRates(ctx context.Context, sc models.Scope) (map[string]float64, error) {
	h, err := u.s.registry.Market(sc.ChainID, sc.MarketID)
	if err != nil {
		return nil, err
	}
	info := h.Info()
	tokens := []models.Token{info.Collateral, info.Borrowed}
	res := batch.FetchAllWithRetry(ctx, tokens, func(ctx context.Context, t models.Token) (float64, error) {
		return u.s.rates.USDRate(ctx, sc.ChainID, t)
	}, batch.Retry[float64]{First: u.s.cfg.BatchFirst, Second: u.s.cfg.BatchSecond, Sentinel: batch.NaNRate})

	out := make(map[string]float64, len(tokens))
	for t, v := range res.Results {
		out[t.Symbol] = v
	}
	return out, nil
}

// RateKnown — курс прочитан.
func RateKnown(v float64) bool { return !math.IsNaN(v) }
