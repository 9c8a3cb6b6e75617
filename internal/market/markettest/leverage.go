package markettest

import (
	"context"

	"github.com/shopspring/decimal"

	"llama_lend/internal/market"
	"llama_lend/internal/models"
)

// LeverageQuotes — create-loan чтения с плечом (и expected для repay), общие для нативного варианта и маршрута.
type LeverageQuotes struct {
	market.LeverageQuotes
	Calls    *Calls
	Approval *Approval
	Quotes   Quotes
}

func (q *LeverageQuotes) CreateLoanMaxRecv(_ context.Context, uc, ub decimal.Decimal, n int) (market.MaxRecv, error) {
	q.Calls.add("leverage.createLoanMaxRecv", uc, ub, n)
	return market.MaxRecv{MaxDebt: q.Quotes.MaxDebt}, q.Quotes.Err
}

func (q *LeverageQuotes) CreateLoanExpectedCollateral(_ context.Context, uc, ub, debt, slippage decimal.Decimal) (market.Expected, error) {
	q.Calls.add("leverage.createLoanExpectedCollateral", uc, ub, debt, slippage)
	return q.Quotes.Expected, q.Quotes.Err
}

func (q *LeverageQuotes) CreateLoanPriceImpact(_ context.Context, ub, debt decimal.Decimal) (decimal.Decimal, error) {
	q.Calls.add("leverage.createLoanPriceImpact", ub, debt)
	return q.Quotes.PriceImpact, q.Quotes.Err
}

func (q *LeverageQuotes) CreateLoanBands(_ context.Context, uc, ub, debt decimal.Decimal, n int) (models.Bands, error) {
	q.Calls.add("leverage.createLoanBands", uc, ub, debt, n)
	return q.Quotes.Bands, q.Quotes.Err
}

func (q *LeverageQuotes) CreateLoanHealth(_ context.Context, uc, ub, debt decimal.Decimal, n int, full bool) (decimal.Decimal, error) {
	q.Calls.add("leverage.createLoanHealth", uc, ub, debt, n, full)
	return q.Quotes.Health, q.Quotes.Err
}

func (q *LeverageQuotes) CreateLoanPrices(_ context.Context, uc, ub, debt decimal.Decimal, n int) (models.Prices, error) {
	q.Calls.add("leverage.createLoanPrices", uc, ub, debt, n)
	return q.Quotes.Prices, q.Quotes.Err
}

func (q *LeverageQuotes) CreateLoanIsApproved(_ context.Context, uc, ub decimal.Decimal) (bool, error) {
	q.Calls.add("leverage.createLoanIsApproved", uc, ub)
	return q.Approval.Get(), nil
}

func (q *LeverageQuotes) CreateLoanApprove(_ context.Context, uc, ub decimal.Decimal) ([]string, error) {
	q.Calls.add("leverage.createLoanApprove", uc, ub)
	return q.Approval.approve()
}

func (q *LeverageQuotes) EstimateGasCreateLoanApprove(_ context.Context, uc, ub decimal.Decimal) (uint64, error) {
	q.Calls.add("leverage.estimateGas.createLoanApprove", uc, ub)
	return q.Quotes.ApproveGas, q.Quotes.Err
}

func (q *LeverageQuotes) EstimateGasCreateLoan(_ context.Context, uc, ub, debt decimal.Decimal, n int, slippage decimal.Decimal) (uint64, error) {
	q.Calls.add("leverage.estimateGas.createLoan", uc, ub, debt, n, slippage)
	return q.Quotes.Gas, q.Quotes.Err
}

func (q *LeverageQuotes) RepayExpectedBorrowed(_ context.Context, sc, uc, ub, slippage decimal.Decimal) (market.Expected, error) {
	q.Calls.add("leverage.repayExpectedBorrowed", sc, uc, ub, slippage)
	return q.Quotes.Expected, q.Quotes.Err
}

// NativeLeverage — фейк LeverageAPI (create-loan).
type NativeLeverage struct {
	*LeverageQuotes
	Exec Exec
}

func NewNativeLeverage() *NativeLeverage {
	return &NativeLeverage{LeverageQuotes: &LeverageQuotes{Calls: &Calls{}, Approval: &Approval{}}}
}

func (l *NativeLeverage) CreateLoan(_ context.Context, uc, ub, debt decimal.Decimal, n int, slippage decimal.Decimal) (string, error) {
	l.Calls.add("leverage.createLoan", uc, ub, debt, n, slippage)
	return l.Exec.result()
}

func (l *NativeLeverage) BorrowMore(context.Context, decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal) (string, error) {
	panic("markettest: NativeLeverage.BorrowMore is not faked")
}

func (l *NativeLeverage) Repay(context.Context, decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal) (string, error) {
	panic("markettest: NativeLeverage.Repay is not faked")
}

// RouteLeverage — фейк RouteLeverageAPI (create-loan).
type RouteLeverage struct {
	*LeverageQuotes
	Enabled bool
	Exec    Exec
}

func NewRouteLeverage(enabled bool) *RouteLeverage {
	return &RouteLeverage{
		LeverageQuotes: &LeverageQuotes{Calls: &Calls{}, Approval: &Approval{}},
		Enabled:        enabled,
	}
}

func (l *RouteLeverage) HasLeverage() bool { return l.Enabled }

func (l *RouteLeverage) CreateLoan(_ context.Context, uc, ub, debt decimal.Decimal, n int, slippage decimal.Decimal, routeID string) (string, error) {
	l.Calls.add("leverageV2.createLoan", uc, ub, debt, n, slippage, routeID)
	return l.Exec.result()
}

func (l *RouteLeverage) BorrowMore(context.Context, decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal, string) (string, error) {
	panic("markettest: RouteLeverage.BorrowMore is not faked")
}

func (l *RouteLeverage) Repay(context.Context, decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal, string) (string, error) {
	panic("markettest: RouteLeverage.Repay is not faked")
}

// LegacyLeverage — фейк старого zap.
type LegacyLeverage struct {
	market.LegacyLeverageAPI
	Calls    *Calls
	Approval *Approval
	Quotes   Quotes
	Exec     Exec
}

func NewLegacyLeverage() *LegacyLeverage {
	return &LegacyLeverage{Calls: &Calls{}, Approval: &Approval{}}
}

func (l *LegacyLeverage) CreateLoanMaxRecv(_ context.Context, collateral decimal.Decimal, n int) (market.MaxRecv, error) {
	l.Calls.add("legacy.createLoanMaxRecv", collateral, n)
	return market.MaxRecv{MaxDebt: l.Quotes.MaxDebt}, l.Quotes.Err
}

func (l *LegacyLeverage) CreateLoanBands(_ context.Context, collateral, debt decimal.Decimal, n int) (models.Bands, error) {
	l.Calls.add("legacy.createLoanBands", collateral, debt, n)
	return l.Quotes.Bands, l.Quotes.Err
}

func (l *LegacyLeverage) CreateLoanIsApproved(_ context.Context, collateral decimal.Decimal) (bool, error) {
	l.Calls.add("legacy.createLoanIsApproved", collateral)
	return l.Approval.Get(), nil
}

func (l *LegacyLeverage) CreateLoan(_ context.Context, collateral, debt decimal.Decimal, n int, slippage decimal.Decimal) (string, error) {
	l.Calls.add("legacy.createLoan", collateral, debt, n, slippage)
	return l.Exec.result()
}
