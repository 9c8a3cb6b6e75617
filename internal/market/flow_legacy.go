package market

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
)

// legacyFlow — старый zap, только create-loan: (collateral, debt, range, slippage).
type legacyFlow struct {
	api LegacyLeverageAPI
}

func (l LegacyLeverage) Flow(kind models.MutationKind) (Flow, error) {
	if kind != models.MutationCreateLoan {
		return nil, unsupportedKind(VariantLegacyLeverage, kind)
	}
	return legacyFlow{api: l.API}, nil
}

func (f legacyFlow) Variant() Variant          { return VariantLegacyLeverage }
func (f legacyFlow) Kind() models.MutationKind { return models.MutationCreateLoan }

// mustNoBorrowed: у старого zap нет слагаемого userBorrowed, ненулевое значение — ошибка вызывающего кода.
func mustNoBorrowed(p models.RequestParams) {
	if !p.UserBorrowed.IsZero() {
		panic(fmt.Sprintf("market: legacy leverage called with userBorrowed=%s", p.UserBorrowed))
	}
}

func (f legacyFlow) Precondition(p models.RequestParams) error {
	mustNoBorrowed(p)
	return nil
}

func (f legacyFlow) MaxRecv(ctx context.Context, p models.RequestParams) (MaxRecv, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanMaxRecv(ctx, p.UserCollateral, p.Range)
}

func (f legacyFlow) Expected(ctx context.Context, p models.RequestParams) (Expected, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanExpectedCollateral(ctx, p.UserCollateral, p.Debt)
}

func (f legacyFlow) PriceImpact(ctx context.Context, p models.RequestParams) (decimal.Decimal, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanPriceImpact(ctx, p.UserCollateral, p.Debt)
}

func (f legacyFlow) Bands(ctx context.Context, p models.RequestParams) (models.Bands, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanBands(ctx, p.UserCollateral, p.Debt, p.Range)
}

func (f legacyFlow) Health(ctx context.Context, p models.RequestParams, full bool) (decimal.Decimal, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanHealth(ctx, p.UserCollateral, p.Debt, p.Range, full)
}

func (f legacyFlow) Prices(ctx context.Context, p models.RequestParams) (models.Prices, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanPrices(ctx, p.UserCollateral, p.Debt, p.Range)
}

func (f legacyFlow) IsApproved(ctx context.Context, p models.RequestParams) (bool, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanIsApproved(ctx, p.UserCollateral)
}

func (f legacyFlow) Approve(ctx context.Context, p models.RequestParams) ([]string, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoanApprove(ctx, p.UserCollateral)
}

func (f legacyFlow) EstimateApproveGas(ctx context.Context, p models.RequestParams) (uint64, error) {
	mustNoBorrowed(p)
	return f.api.EstimateGasCreateLoanApprove(ctx, p.UserCollateral)
}

func (f legacyFlow) EstimateGas(ctx context.Context, p models.RequestParams) (uint64, error) {
	mustNoBorrowed(p)
	return f.api.EstimateGasCreateLoan(ctx, p.UserCollateral, p.Debt, p.Range, p.Slippage)
}

func (f legacyFlow) Execute(ctx context.Context, p models.RequestParams) (string, error) {
	mustNoBorrowed(p)
	return f.api.CreateLoan(ctx, p.UserCollateral, p.Debt, p.Range, p.Slippage)
}
