package market

import (
	"context"

	"github.com/shopspring/decimal"

	"llama_lend/internal/errs"
	"llama_lend/internal/models"
)

// Flow — операции одного вида транзакции (create-loan, borrow-more, repay) для конкретного варианта.
// Каждая реализация раскладывает RequestParams в аргументы нужной арности.
type Flow interface {
	Variant() Variant
	Kind() models.MutationKind

	// Precondition проверяет идентификаторы, без которых запись невозможна.
	Precondition(p models.RequestParams) error

	MaxRecv(ctx context.Context, p models.RequestParams) (MaxRecv, error)
	Expected(ctx context.Context, p models.RequestParams) (Expected, error)
	PriceImpact(ctx context.Context, p models.RequestParams) (decimal.Decimal, error)
	Bands(ctx context.Context, p models.RequestParams) (models.Bands, error)
	Health(ctx context.Context, p models.RequestParams, full bool) (decimal.Decimal, error)
	Prices(ctx context.Context, p models.RequestParams) (models.Prices, error)

	IsApproved(ctx context.Context, p models.RequestParams) (bool, error)
	Approve(ctx context.Context, p models.RequestParams) ([]string, error)
	EstimateApproveGas(ctx context.Context, p models.RequestParams) (uint64, error)
	EstimateGas(ctx context.Context, p models.RequestParams) (uint64, error)
	Execute(ctx context.Context, p models.RequestParams) (string, error)
}

// HasMaxRecv — есть ли у вида операции расчёт максимального займа.
func HasMaxRecv(kind models.MutationKind) bool {
	return kind == models.MutationCreateLoan || kind == models.MutationBorrowMore
}

func unsupported(v Variant, kind models.MutationKind, op string) error {
	return errs.Configuration("Flow."+op, "%s is not available for %s %s", op, v, kind)
}

func unsupportedKind(v Variant, kind models.MutationKind) error {
	return errs.Configuration("Implementation.Flow", "%s does not support %s", v, kind)
}
