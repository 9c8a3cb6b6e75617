package market

import (
	"context"

	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
)

// unleveragedFlow: create-loan (collateral, debt, range, slippage), borrow-more (collateral, debt, slippage),
// repay (debt, slippage).
type unleveragedFlow struct {
	api  LoanAPI
	kind models.MutationKind
}

func (u Unleveraged) Flow(kind models.MutationKind) (Flow, error) {
	switch kind {
	case models.MutationCreateLoan, models.MutationBorrowMore, models.MutationRepay:
		return unleveragedFlow{api: u.API, kind: kind}, nil
	}
	return nil, unsupportedKind(VariantUnleveraged, kind)
}

func (f unleveragedFlow) Variant() Variant                        { return VariantUnleveraged }
func (f unleveragedFlow) Kind() models.MutationKind               { return f.kind }
func (f unleveragedFlow) Precondition(models.RequestParams) error { return nil }

func (f unleveragedFlow) MaxRecv(ctx context.Context, p models.RequestParams) (MaxRecv, error) {
	var (
		v   decimal.Decimal
		err error
	)
	switch f.kind {
	case models.MutationCreateLoan:
		v, err = f.api.CreateLoanMaxRecv(ctx, p.UserCollateral, p.Range)
	case models.MutationBorrowMore:
		v, err = f.api.BorrowMoreMaxRecv(ctx, p.UserCollateral)
	default:
		return MaxRecv{}, unsupported(VariantUnleveraged, f.kind, "MaxRecv")
	}
	return MaxRecv{MaxDebt: v}, err
}

func (f unleveragedFlow) Expected(context.Context, models.RequestParams) (Expected, error) {
	return Expected{}, unsupported(VariantUnleveraged, f.kind, "Expected")
}

func (f unleveragedFlow) PriceImpact(context.Context, models.RequestParams) (decimal.Decimal, error) {
	return decimal.Zero, unsupported(VariantUnleveraged, f.kind, "PriceImpact")
}

func (f unleveragedFlow) Bands(ctx context.Context, p models.RequestParams) (models.Bands, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoanBands(ctx, p.UserCollateral, p.Debt, p.Range)
	case models.MutationBorrowMore:
		return f.api.BorrowMoreBands(ctx, p.UserCollateral, p.Debt)
	default:
		return f.api.RepayBands(ctx, p.Debt)
	}
}

func (f unleveragedFlow) Health(ctx context.Context, p models.RequestParams, full bool) (decimal.Decimal, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoanHealth(ctx, p.UserCollateral, p.Debt, p.Range, full)
	case models.MutationBorrowMore:
		return f.api.BorrowMoreHealth(ctx, p.UserCollateral, p.Debt, full)
	default:
		return f.api.RepayHealth(ctx, p.Debt, full)
	}
}

func (f unleveragedFlow) Prices(ctx context.Context, p models.RequestParams) (models.Prices, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoanPrices(ctx, p.UserCollateral, p.Debt, p.Range)
	case models.MutationBorrowMore:
		return f.api.BorrowMorePrices(ctx, p.UserCollateral, p.Debt)
	default:
		return f.api.RepayPrices(ctx, p.Debt)
	}
}

func (f unleveragedFlow) IsApproved(ctx context.Context, p models.RequestParams) (bool, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoanIsApproved(ctx, p.UserCollateral)
	case models.MutationBorrowMore:
		return f.api.BorrowMoreIsApproved(ctx, p.UserCollateral)
	default:
		return f.api.RepayIsApproved(ctx, p.Debt)
	}
}

func (f unleveragedFlow) Approve(ctx context.Context, p models.RequestParams) ([]string, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoanApprove(ctx, p.UserCollateral)
	case models.MutationBorrowMore:
		return f.api.BorrowMoreApprove(ctx, p.UserCollateral)
	default:
		return f.api.RepayApprove(ctx, p.Debt)
	}
}

func (f unleveragedFlow) EstimateApproveGas(ctx context.Context, p models.RequestParams) (uint64, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.EstimateGasCreateLoanApprove(ctx, p.UserCollateral)
	case models.MutationBorrowMore:
		return f.api.EstimateGasBorrowMoreApprove(ctx, p.UserCollateral)
	default:
		return f.api.EstimateGasRepayApprove(ctx, p.Debt)
	}
}

func (f unleveragedFlow) EstimateGas(ctx context.Context, p models.RequestParams) (uint64, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.EstimateGasCreateLoan(ctx, p.UserCollateral, p.Debt, p.Range)
	case models.MutationBorrowMore:
		return f.api.EstimateGasBorrowMore(ctx, p.UserCollateral, p.Debt)
	default:
		return f.api.EstimateGasRepay(ctx, p.Debt)
	}
}

func (f unleveragedFlow) Execute(ctx context.Context, p models.RequestParams) (string, error) {
	switch f.kind {
	case models.MutationCreateLoan:
		return f.api.CreateLoan(ctx, p.UserCollateral, p.Debt, p.Range, p.Slippage)
	case models.MutationBorrowMore:
		return f.api.BorrowMore(ctx, p.UserCollateral, p.Debt, p.Slippage)
	default:
		return f.api.Repay(ctx, p.Debt, p.Slippage)
	}
}
