package markettest

import (
	"context"

	"github.com/shopspring/decimal"

	"llama_lend/internal/market"
	"llama_lend/internal/models"
)

// Loan — фейк базовой поверхности. Оценки газа borrow-more и repay
// паникуют через nil-встраивание.
type Loan struct {
	market.LoanAPI
	Calls    *Calls
	Approval *Approval
	Quotes   Quotes
	Exec     Exec
	// MaxRemovableAmount — ответ MaxRemovable
	MaxRemovableAmount decimal.Decimal
}

func NewLoan() *Loan {
	return &Loan{Calls: &Calls{}, Approval: &Approval{}}
}

func (l *Loan) CreateLoanMaxRecv(_ context.Context, collateral decimal.Decimal, n int) (decimal.Decimal, error) {
	l.Calls.add("createLoanMaxRecv", collateral, n)
	return l.Quotes.MaxDebt, l.Quotes.Err
}

func (l *Loan) CreateLoanBands(_ context.Context, collateral, debt decimal.Decimal, n int) (models.Bands, error) {
	l.Calls.add("createLoanBands", collateral, debt, n)
	return l.Quotes.Bands, l.Quotes.Err
}

func (l *Loan) CreateLoanHealth(_ context.Context, collateral, debt decimal.Decimal, n int, full bool) (decimal.Decimal, error) {
	l.Calls.add("createLoanHealth", collateral, debt, n, full)
	return l.Quotes.Health, l.Quotes.Err
}

func (l *Loan) CreateLoanPrices(_ context.Context, collateral, debt decimal.Decimal, n int) (models.Prices, error) {
	l.Calls.add("createLoanPrices", collateral, debt, n)
	return l.Quotes.Prices, l.Quotes.Err
}

func (l *Loan) CreateLoanIsApproved(_ context.Context, collateral decimal.Decimal) (bool, error) {
	l.Calls.add("createLoanIsApproved", collateral)
	return l.Approval.Get(), nil
}

func (l *Loan) CreateLoanApprove(_ context.Context, collateral decimal.Decimal) ([]string, error) {
	l.Calls.add("createLoanApprove", collateral)
	return l.Approval.approve()
}

func (l *Loan) CreateLoan(_ context.Context, collateral, debt decimal.Decimal, n int, slippage decimal.Decimal) (string, error) {
	l.Calls.add("createLoan", collateral, debt, n, slippage)
	return l.Exec.result()
}

func (l *Loan) EstimateGasCreateLoanApprove(_ context.Context, collateral decimal.Decimal) (uint64, error) {
	l.Calls.add("estimateGas.createLoanApprove", collateral)
	return l.Quotes.ApproveGas, l.Quotes.Err
}

func (l *Loan) EstimateGasCreateLoan(_ context.Context, collateral, debt decimal.Decimal, n int) (uint64, error) {
	l.Calls.add("estimateGas.createLoan", collateral, debt, n)
	return l.Quotes.Gas, l.Quotes.Err
}

func (l *Loan) RepayIsApproved(_ context.Context, debt decimal.Decimal) (bool, error) {
	l.Calls.add("repayIsApproved", debt)
	return l.Approval.Get(), nil
}

func (l *Loan) RepayApprove(_ context.Context, debt decimal.Decimal) ([]string, error) {
	l.Calls.add("repayApprove", debt)
	return l.Approval.approve()
}

func (l *Loan) Repay(_ context.Context, debt, slippage decimal.Decimal) (string, error) {
	l.Calls.add("repay", debt, slippage)
	return l.Exec.result()
}

func (l *Loan) AddCollateralIsApproved(_ context.Context, collateral decimal.Decimal) (bool, error) {
	l.Calls.add("addCollateralIsApproved", collateral)
	return l.Approval.Get(), nil
}

func (l *Loan) AddCollateralApprove(_ context.Context, collateral decimal.Decimal) ([]string, error) {
	l.Calls.add("addCollateralApprove", collateral)
	return l.Approval.approve()
}

func (l *Loan) AddCollateral(_ context.Context, collateral decimal.Decimal) (string, error) {
	l.Calls.add("addCollateral", collateral)
	return l.Exec.result()
}

func (l *Loan) RemoveCollateral(_ context.Context, collateral decimal.Decimal) (string, error) {
	l.Calls.add("removeCollateral", collateral)
	return l.Exec.result()
}

func (l *Loan) BorrowMoreMaxRecv(_ context.Context, collateral decimal.Decimal) (decimal.Decimal, error) {
	l.Calls.add("borrowMoreMaxRecv", collateral)
	return l.Quotes.MaxDebt, l.Quotes.Err
}

func (l *Loan) BorrowMoreBands(_ context.Context, collateral, debt decimal.Decimal) (models.Bands, error) {
	l.Calls.add("borrowMoreBands", collateral, debt)
	return l.Quotes.Bands, l.Quotes.Err
}

func (l *Loan) BorrowMoreHealth(_ context.Context, collateral, debt decimal.Decimal, full bool) (decimal.Decimal, error) {
	l.Calls.add("borrowMoreHealth", collateral, debt, full)
	return l.Quotes.Health, l.Quotes.Err
}

func (l *Loan) BorrowMorePrices(_ context.Context, collateral, debt decimal.Decimal) (models.Prices, error) {
	l.Calls.add("borrowMorePrices", collateral, debt)
	return l.Quotes.Prices, l.Quotes.Err
}

func (l *Loan) BorrowMoreIsApproved(_ context.Context, collateral decimal.Decimal) (bool, error) {
	l.Calls.add("borrowMoreIsApproved", collateral)
	return l.Approval.Get(), nil
}

func (l *Loan) BorrowMoreApprove(_ context.Context, collateral decimal.Decimal) ([]string, error) {
	l.Calls.add("borrowMoreApprove", collateral)
	return l.Approval.approve()
}

func (l *Loan) BorrowMore(_ context.Context, collateral, debt, slippage decimal.Decimal) (string, error) {
	l.Calls.add("borrowMore", collateral, debt, slippage)
	return l.Exec.result()
}

func (l *Loan) MaxRemovable(context.Context) (decimal.Decimal, error) {
	l.Calls.add("maxRemovable")
	return l.MaxRemovableAmount, l.Quotes.Err
}
