package market

import (
	"context"

	"github.com/shopspring/decimal"

	"llama_lend/internal/errs"
	"llama_lend/internal/models"
)

// leverageQuotesFlow — чтения с плечом, общие для нативного варианта и варианта с маршрутом.
// create-loan: (userCollateral, userBorrowed, debt, range, slippage), borrow-more: без range,
// repay: (stateCollateral, userCollateral, userBorrowed, slippage).
type leverageQuotesFlow struct {
	q       LeverageQuotes
	kind    models.MutationKind
	variant Variant
}

func leverageKind(kind models.MutationKind) bool {
	switch kind {
	case models.MutationCreateLoan, models.MutationBorrowMore, models.MutationRepay:
		return true
	}
	return false
}

func (f leverageQuotesFlow) Variant() Variant          { return f.variant }
func (f leverageQuotesFlow) Kind() models.MutationKind { return f.kind }

func (f leverageQuotesFlow) MaxRecv(ctx context.Context, p models.RequestParams) (MaxRecv, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanMaxRecv(ctx, p.UserCollateral, p.UserBorrowed, p.Range)
	case models.MutationBorrowMore:
		return f.q.BorrowMoreMaxRecv(ctx, p.UserCollateral, p.UserBorrowed)
	}
	return MaxRecv{}, unsupported(f.variant, f.kind, "MaxRecv")
}

func (f leverageQuotesFlow) Expected(ctx context.Context, p models.RequestParams) (Expected, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanExpectedCollateral(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Slippage)
	case models.MutationBorrowMore:
		return f.q.BorrowMoreExpectedCollateral(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Slippage)
	default:
		return f.q.RepayExpectedBorrowed(ctx, p.StateCollateral, p.UserCollateral, p.UserBorrowed, p.Slippage)
	}
}

func (f leverageQuotesFlow) PriceImpact(ctx context.Context, p models.RequestParams) (decimal.Decimal, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanPriceImpact(ctx, p.UserBorrowed, p.Debt)
	case models.MutationBorrowMore:
		return f.q.BorrowMorePriceImpact(ctx, p.UserBorrowed, p.Debt)
	default:
		return f.q.RepayPriceImpact(ctx, p.StateCollateral, p.UserCollateral)
	}
}

func (f leverageQuotesFlow) Bands(ctx context.Context, p models.RequestParams) (models.Bands, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanBands(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Range)
	case models.MutationBorrowMore:
		return f.q.BorrowMoreBands(ctx, p.UserCollateral, p.UserBorrowed, p.Debt)
	default:
		return f.q.RepayBands(ctx, p.StateCollateral, p.UserCollateral, p.UserBorrowed)
	}
}

func (f leverageQuotesFlow) Health(ctx context.Context, p models.RequestParams, full bool) (decimal.Decimal, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanHealth(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Range, full)
	case models.MutationBorrowMore:
		return f.q.BorrowMoreHealth(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, full)
	default:
		return f.q.RepayHealth(ctx, p.StateCollateral, p.UserCollateral, p.UserBorrowed, full)
	}
}

func (f leverageQuotesFlow) Prices(ctx context.Context, p models.RequestParams) (models.Prices, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanPrices(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Range)
	case models.MutationBorrowMore:
		return f.q.BorrowMorePrices(ctx, p.UserCollateral, p.UserBorrowed, p.Debt)
	default:
		return f.q.RepayPrices(ctx, p.StateCollateral, p.UserCollateral, p.UserBorrowed)
	}
}

func (f leverageQuotesFlow) IsApproved(ctx context.Context, p models.RequestParams) (bool, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanIsApproved(ctx, p.UserCollateral, p.UserBorrowed)
	case models.MutationBorrowMore:
		return f.q.BorrowMoreIsApproved(ctx, p.UserCollateral, p.UserBorrowed)
	default:
		return f.q.RepayIsApproved(ctx, p.UserCollateral, p.UserBorrowed)
	}
}

func (f leverageQuotesFlow) Approve(ctx context.Context, p models.RequestParams) ([]string, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.CreateLoanApprove(ctx, p.UserCollateral, p.UserBorrowed)
	case models.MutationBorrowMore:
		return f.q.BorrowMoreApprove(ctx, p.UserCollateral, p.UserBorrowed)
	default:
		return f.q.RepayApprove(ctx, p.UserCollateral, p.UserBorrowed)
	}
}

func (f leverageQuotesFlow) EstimateApproveGas(ctx context.Context, p models.RequestParams) (uint64, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.EstimateGasCreateLoanApprove(ctx, p.UserCollateral, p.UserBorrowed)
	case models.MutationBorrowMore:
		return f.q.EstimateGasBorrowMoreApprove(ctx, p.UserCollateral, p.UserBorrowed)
	default:
		return f.q.EstimateGasRepayApprove(ctx, p.UserCollateral, p.UserBorrowed)
	}
}

func (f leverageQuotesFlow) EstimateGas(ctx context.Context, p models.RequestParams) (uint64, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.q.EstimateGasCreateLoan(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Range, p.Slippage)
	case models.MutationBorrowMore:
		return f.q.EstimateGasBorrowMore(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Slippage)
	default:
		return f.q.EstimateGasRepay(ctx, p.StateCollateral, p.UserCollateral, p.UserBorrowed, p.Slippage)
	}
}

type nativeFlow struct {
	leverageQuotesFlow
	api LeverageAPI
}

func (n NativeLeverage) Flow(kind models.MutationKind) (Flow, error) {
	if !leverageKind(kind) {
		return nil, unsupportedKind(VariantNativeLeverage, kind)
	}
	return nativeFlow{
		leverageQuotesFlow: leverageQuotesFlow{q: n.API, kind: kind, variant: VariantNativeLeverage},
		api:                n.API,
	}, nil
}

func (f nativeFlow) Precondition(models.RequestParams) error { return nil }

func (f nativeFlow) Execute(ctx context.Context, p models.RequestParams) (string, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoan(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Range, p.Slippage)
	case models.MutationBorrowMore:
		return f.api.BorrowMore(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Slippage)
	default:
		return f.api.Repay(ctx, p.StateCollateral, p.UserCollateral, p.UserBorrowed, p.Slippage)
	}
}

type routeFlow struct {
	leverageQuotesFlow
	api RouteLeverageAPI
}

func (r RouteLeverage) Flow(kind models.MutationKind) (Flow, error) {
	if !leverageKind(kind) {
		return nil, unsupportedKind(VariantRouteLeverage, kind)
	}
	return routeFlow{
		leverageQuotesFlow: leverageQuotesFlow{q: r.API, kind: kind, variant: VariantRouteLeverage},
		api:                r.API,
	}, nil
}

// Precondition: без выбранного маршрута запись не делаем, это не ошибка сети.
func (f routeFlow) Precondition(p models.RequestParams) error {
	if p.RouteID == "" {
		return errs.Configuration("RouteLeverage.Execute", "route id is required for %s with route leverage", f.kind)
	}
	return nil
}

func (f routeFlow) Execute(ctx context.Context, p models.RequestParams) (string, error) {
	if err := f.Precondition(p); err != nil {
		return "", err
	}
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoan(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Range, p.Slippage, p.RouteID)
	case models.MutationBorrowMore:
		return f.api.BorrowMore(ctx, p.UserCollateral, p.UserBorrowed, p.Debt, p.Slippage, p.RouteID)
	default:
		return f.api.Repay(ctx, p.StateCollateral, p.UserCollateral, p.UserBorrowed, p.Slippage, p.RouteID)
	}
}
