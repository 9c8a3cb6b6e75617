package borrow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/query"
	"llama_lend/internal/validation"
)

type Params = models.RequestParams

// GasEstimate — газ следующего шага: approve, пока allowance не выставлен, иначе сама операция.
type GasEstimate struct {
	Units    uint64
	Approval bool
}

// FlowQueries — узлы графа одного вида операции.
// Expected обеспечивается до bands/health/prices/priceImpact/gas: на вариантах с маршрутом
// он заполняет состояние котировки, которое читают остальные вызовы.
type FlowQueries struct {
	s    *Service
	kind models.MutationKind

	Route         *query.Node[Params, market.Route]
	MaxRecv       *query.Node[Params, market.MaxRecv]
	Expected      *query.Node[Params, market.Expected]
	PriceImpact   *query.Node[Params, decimal.Decimal]
	Bands         *query.Node[Params, models.Bands]
	Health        *query.Node[Params, decimal.Decimal]
	HealthNotFull *query.Node[Params, decimal.Decimal]
	Prices        *query.Node[Params, models.Prices]
	IsApproved    *query.Node[Params, bool]
	ApproveGas    *query.Node[Params, uint64]
	ActionGas     *query.Node[Params, uint64]
	Gas           *query.Node[Params, GasEstimate]
}

// поля позиции, от которых зависят котировки
func (f *FlowQueries) amountFields() []models.Field {
	base := []models.Field{models.FieldChain, models.FieldMarket, models.FieldLeverage}
	switch f.kind {
	case models.MutationCreateLoan:
		return append(base, models.FieldUserCollateral, models.FieldUserBorrowed, models.FieldDebt, models.FieldRange)
	case models.MutationBorrowMore:
		return append(base, models.FieldUser, models.FieldUserCollateral, models.FieldUserBorrowed, models.FieldDebt)
	default:
		return append(base, models.FieldUser, models.FieldStateCollateral, models.FieldUserCollateral,
			models.FieldUserBorrowed, models.FieldDebt)
	}
}

func (f *FlowQueries) key(extra ...models.Field) func(Params) string {
	fields := append(f.amountFields(), extra...)
	return func(p Params) string { return p.KeyOf(fields...) }
}

func (f *FlowQueries) validate(p Params) error {
	var s *validation.Suite
	if f.kind == models.MutationRepay {
		s = validation.Repay(p)
	} else {
		s = validation.Borrow(p, f.s.cfg.Bounds)
	}
	if f.kind != models.MutationCreateLoan {
		validation.User(s, p.UserAddress)
	}
	return s.Err()
}

func (f *FlowQueries) validateWithUser(p Params) error {
	if err := f.validate(p); err != nil {
		return err
	}
	return validation.User(validation.New(), p.UserAddress).Err()
}

func (f *FlowQueries) flow(p Params) (market.Flow, error) {
	_, fl, err := f.s.resolve(p, f.kind)
	return fl, err
}

func leverage(p Params) bool { return p.LeverageEnabled }

func newFlowQueries(s *Service, kind models.MutationKind) *FlowQueries {
	f := &FlowQueries{s: s, kind: kind}
	name := func(n string) string { return string(kind) + "." + n }
	quote := s.cfg.QuoteStaleTime

	f.Route = query.NewNode(s.client, query.Options[Params, market.Route]{
		Name:     name("route"),
		Key:      f.key(models.FieldSlippage),
		Validate: f.validate,
		Enabled: func(p Params) bool {
			return p.LeverageEnabled && s.quoter != nil && s.Variant(p) == market.VariantRouteLeverage
		},
		StaleTime: quote,
		Fetch:     f.fetchRoute,
	})

	f.MaxRecv = query.NewNode(s.client, query.Options[Params, market.MaxRecv]{
		Name: name("maxRecv"),
		Key: func(p Params) string {
			fields := []models.Field{models.FieldChain, models.FieldMarket, models.FieldLeverage,
				models.FieldUserCollateral, models.FieldUserBorrowed}
			switch kind {
			case models.MutationCreateLoan:
				fields = append(fields, models.FieldRange)
			case models.MutationBorrowMore:
				fields = append(fields, models.FieldUser)
			}
			return p.KeyOf(fields...)
		},
		Validate:  func(p Params) error { return validation.MaxRecv(p, s.cfg.Bounds).Err() },
		Enabled:   func(Params) bool { return market.HasMaxRecv(kind) },
		StaleTime: quote,
		Fetch: func(ctx context.Context, p Params) (market.MaxRecv, error) {
			fl, err := f.flow(p)
			if err != nil {
				return market.MaxRecv{}, err
			}
			return fl.MaxRecv(ctx, p)
		},
	})

	// данные маршрута приходят через max-receive, поэтому он обеспечивается первым
	f.Expected = query.NewNode(s.client, query.Options[Params, market.Expected]{
		Name:      name("expected"),
		Key:       f.key(models.FieldSlippage),
		Validate:  f.validate,
		Enabled:   leverage,
		StaleTime: quote,
		Deps:      []query.Dependency[Params]{f.MaxRecv, f.Route},
		Fetch: func(ctx context.Context, p Params) (market.Expected, error) {
			fl, err := f.flow(p)
			if err != nil {
				return market.Expected{}, err
			}
			return fl.Expected(ctx, p)
		},
	})
	afterExpected := []query.Dependency[Params]{f.Expected}

	f.PriceImpact = query.NewNode(s.client, query.Options[Params, decimal.Decimal]{
		Name:      name("priceImpact"),
		Key:       f.key(models.FieldSlippage),
		Validate:  f.validate,
		Enabled:   leverage,
		StaleTime: quote,
		Deps:      afterExpected,
		Fetch: func(ctx context.Context, p Params) (decimal.Decimal, error) {
			fl, err := f.flow(p)
			if err != nil {
				return decimal.Zero, err
			}
			return fl.PriceImpact(ctx, p)
		},
	})

	f.Bands = query.NewNode(s.client, query.Options[Params, models.Bands]{
		Name:      name("bands"),
		Key:       f.key(),
		Validate:  f.validate,
		StaleTime: quote,
		Deps:      afterExpected,
		Fetch: func(ctx context.Context, p Params) (models.Bands, error) {
			fl, err := f.flow(p)
			if err != nil {
				return models.Bands{}, err
			}
			return fl.Bands(ctx, p)
		},
	})

	health := func(full bool) func(ctx context.Context, p Params) (decimal.Decimal, error) {
		return func(ctx context.Context, p Params) (decimal.Decimal, error) {
			fl, err := f.flow(p)
			if err != nil {
				return decimal.Zero, err
			}
			return fl.Health(ctx, p, full)
		}
	}
	f.Health = query.NewNode(s.client, query.Options[Params, decimal.Decimal]{
		Name:      name("health"),
		Key:       f.key(),
		Validate:  f.validate,
		StaleTime: quote,
		Deps:      afterExpected,
		Fetch:     health(true),
	})
	f.HealthNotFull = query.NewNode(s.client, query.Options[Params, decimal.Decimal]{
		Name:      name("healthNotFull"),
		Key:       f.key(),
		Validate:  f.validate,
		StaleTime: quote,
		Deps:      afterExpected,
		Fetch:     health(false),
	})

	f.Prices = query.NewNode(s.client, query.Options[Params, models.Prices]{
		Name:      name("prices"),
		Key:       f.key(),
		Validate:  f.validate,
		StaleTime: quote,
		Deps:      afterExpected,
		Fetch: func(ctx context.Context, p Params) (models.Prices, error) {
			fl, err := f.flow(p)
			if err != nil {
				return models.Prices{}, err
			}
			return fl.Prices(ctx, p)
		},
	})

	// статус approve читается всегда заново
	f.IsApproved = query.NewNode(s.client, query.Options[Params, bool]{
		Name: name("isApproved"),
		Key: func(p Params) string {
			return p.KeyOf(models.FieldChain, models.FieldMarket, models.FieldUser, models.FieldLeverage,
				models.FieldUserCollateral, models.FieldUserBorrowed, models.FieldDebt)
		},
		Validate:  f.validateWithUser,
		StaleTime: 0,
		Fetch: func(ctx context.Context, p Params) (bool, error) {
			fl, err := f.flow(p)
			if err != nil {
				return false, err
			}
			return fl.IsApproved(ctx, p)
		},
	})

	// оценки approve и операции взаимоисключающие: включена ровно одна,
	// и только когда статус approve уже известен
	approved := func(want bool) func(Params) bool {
		return func(p Params) bool {
			v, ok := f.IsApproved.Peek(p)
			return ok && v == want
		}
	}

	f.ApproveGas = query.NewNode(s.client, query.Options[Params, uint64]{
		Name:      name("approveGas"),
		Key:       f.key(models.FieldUser),
		Validate:  f.validateWithUser,
		Enabled:   approved(false),
		StaleTime: quote,
		Deps:      []query.Dependency[Params]{f.IsApproved},
		Fetch: func(ctx context.Context, p Params) (uint64, error) {
			fl, err := f.flow(p)
			if err != nil {
				return 0, err
			}
			return fl.EstimateApproveGas(ctx, p)
		},
	})

	f.ActionGas = query.NewNode(s.client, query.Options[Params, uint64]{
		Name:      name("actionGas"),
		Key:       f.key(models.FieldUser, models.FieldSlippage, models.FieldRoute),
		Validate:  f.validateWithUser,
		Enabled:   approved(true),
		StaleTime: quote,
		Deps:      []query.Dependency[Params]{f.IsApproved, f.Expected},
		Fetch: func(ctx context.Context, p Params) (uint64, error) {
			fl, err := f.flow(p)
			if err != nil {
				return 0, err
			}
			return fl.EstimateGas(ctx, p)
		},
	})

	// Gas следует за статусом approve, который тоже не кэшируется
	f.Gas = query.NewNode(s.client, query.Options[Params, GasEstimate]{
		Name:      name("gas"),
		Key:       f.key(models.FieldUser, models.FieldSlippage, models.FieldRoute),
		Validate:  f.validateWithUser,
		StaleTime: 0,
		Deps:      []query.Dependency[Params]{f.IsApproved, f.Expected},
		Fetch:     f.fetchGas,
	})

	return f
}

// fetchGas: оценки approve и самой операции взаимоисключающие.
// Статус approve уже обеспечен зависимостью, поэтому читаем его из кэша.
func (f *FlowQueries) fetchGas(ctx context.Context, p Params) (GasEstimate, error) {
	fl, err := f.flow(p)
	if err != nil {
		return GasEstimate{}, err
	}
	if approved, _ := f.IsApproved.Peek(p); !approved {
		units, err := fl.EstimateApproveGas(ctx, p)
		return GasEstimate{Units: units, Approval: true}, err
	}
	units, err := fl.EstimateGas(ctx, p)
	return GasEstimate{Units: units}, err
}

// fetchRoute котирует маршрут и кладёт все варианты в RouteStore. Возвращает лучший.
func (f *FlowQueries) fetchRoute(ctx context.Context, p Params) (market.Route, error) {
	h, err := f.s.registry.Market(p.ChainID, p.MarketID)
	if err != nil {
		return market.Route{}, err
	}
	info := h.Info()
	q := market.RouteQuote{
		ChainID:  p.ChainID,
		TokenIn:  info.Borrowed.Address,
		TokenOut: info.Collateral.Address,
		AmountIn: p.UserBorrowed.Add(p.Debt),
		Slippage: p.Slippage,
	}
	if f.kind == models.MutationRepay {
		q.TokenIn, q.TokenOut = info.Collateral.Address, info.Borrowed.Address
		q.AmountIn = p.StateCollateral.Add(p.UserCollateral)
	}
	routes, err := f.s.quoter.Quote(ctx, q)
	if err != nil {
		return market.Route{}, err
	}
	if len(routes) == 0 {
		return market.Route{}, market.ErrNoRoute
	}
	best := routes[0]
	for i := range routes {
		if routes[i].QuotedAt.IsZero() {
			routes[i].QuotedAt = time.Now()
		}
		if routes[i].AmountOut.GreaterThan(best.AmountOut) {
			best = routes[i]
		}
	}
	f.s.routes.Put(routes...)
	return f.s.routes.Require(best.ID)
}
