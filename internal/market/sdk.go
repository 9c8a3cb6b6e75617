package market

import (
	"context"

	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
)

// MaxRecv — сколько можно занять при текущих входных суммах.
type MaxRecv struct {
	MaxDebt decimal.Decimal
	// для вариантов с плечом: итоговый залог после свопа
	MaxTotalCollateral decimal.Decimal
	MaxLeverage        decimal.Decimal
}

// Expected — ожидаемый результат свопа при плече.
// Для create-loan и borrow-more это итоговый залог, для repay — итоговая сумма в borrowed-токене.
type Expected struct {
	Total    decimal.Decimal
	Leverage decimal.Decimal
	AvgPrice decimal.Decimal
}

// LoanAPI — базовая поверхность рынка без плеча.
type LoanAPI interface {
	CreateLoanMaxRecv(ctx context.Context, collateral decimal.Decimal, n int) (decimal.Decimal, error)
	CreateLoanBands(ctx context.Context, collateral, debt decimal.Decimal, n int) (models.Bands, error)
	CreateLoanHealth(ctx context.Context, collateral, debt decimal.Decimal, n int, full bool) (decimal.Decimal, error)
	CreateLoanPrices(ctx context.Context, collateral, debt decimal.Decimal, n int) (models.Prices, error)
	CreateLoanIsApproved(ctx context.Context, collateral decimal.Decimal) (bool, error)
	CreateLoanApprove(ctx context.Context, collateral decimal.Decimal) ([]string, error)
	CreateLoan(ctx context.Context, collateral, debt decimal.Decimal, n int, slippage decimal.Decimal) (string, error)
	EstimateGasCreateLoanApprove(ctx context.Context, collateral decimal.Decimal) (uint64, error)
	EstimateGasCreateLoan(ctx context.Context, collateral, debt decimal.Decimal, n int) (uint64, error)

	BorrowMoreMaxRecv(ctx context.Context, collateral decimal.Decimal) (decimal.Decimal, error)
	BorrowMoreBands(ctx context.Context, collateral, debt decimal.Decimal) (models.Bands, error)
	BorrowMoreHealth(ctx context.Context, collateral, debt decimal.Decimal, full bool) (decimal.Decimal, error)
	BorrowMorePrices(ctx context.Context, collateral, debt decimal.Decimal) (models.Prices, error)
	BorrowMoreIsApproved(ctx context.Context, collateral decimal.Decimal) (bool, error)
	BorrowMoreApprove(ctx context.Context, collateral decimal.Decimal) ([]string, error)
	BorrowMore(ctx context.Context, collateral, debt, slippage decimal.Decimal) (string, error)
	EstimateGasBorrowMoreApprove(ctx context.Context, collateral decimal.Decimal) (uint64, error)
	EstimateGasBorrowMore(ctx context.Context, collateral, debt decimal.Decimal) (uint64, error)

	RepayBands(ctx context.Context, debt decimal.Decimal) (models.Bands, error)
	RepayHealth(ctx context.Context, debt decimal.Decimal, full bool) (decimal.Decimal, error)
	RepayPrices(ctx context.Context, debt decimal.Decimal) (models.Prices, error)
	RepayIsApproved(ctx context.Context, debt decimal.Decimal) (bool, error)
	RepayApprove(ctx context.Context, debt decimal.Decimal) ([]string, error)
	Repay(ctx context.Context, debt, slippage decimal.Decimal) (string, error)
	EstimateGasRepayApprove(ctx context.Context, debt decimal.Decimal) (uint64, error)
	EstimateGasRepay(ctx context.Context, debt decimal.Decimal) (uint64, error)

	AddCollateralIsApproved(ctx context.Context, collateral decimal.Decimal) (bool, error)
	AddCollateralApprove(ctx context.Context, collateral decimal.Decimal) ([]string, error)
	AddCollateral(ctx context.Context, collateral decimal.Decimal) (string, error)
	MaxRemovable(ctx context.Context) (decimal.Decimal, error)
	RemoveCollateral(ctx context.Context, collateral decimal.Decimal) (string, error)
}

// LeverageQuotes — чтения и approve, общие для нативного плеча и плеча через маршрут.
// Все вызовы принимают (userCollateral, userBorrowed, ...).
type LeverageQuotes interface {
	CreateLoanMaxRecv(ctx context.Context, userCollateral, userBorrowed decimal.Decimal, n int) (MaxRecv, error)
	CreateLoanExpectedCollateral(ctx context.Context, userCollateral, userBorrowed, debt, slippage decimal.Decimal) (Expected, error)
	CreateLoanPriceImpact(ctx context.Context, userBorrowed, debt decimal.Decimal) (decimal.Decimal, error)
	CreateLoanBands(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal, n int) (models.Bands, error)
	CreateLoanHealth(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal, n int, full bool) (decimal.Decimal, error)
	CreateLoanPrices(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal, n int) (models.Prices, error)
	CreateLoanIsApproved(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) (bool, error)
	CreateLoanApprove(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) ([]string, error)
	EstimateGasCreateLoanApprove(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) (uint64, error)
	EstimateGasCreateLoan(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal, n int, slippage decimal.Decimal) (uint64, error)

	BorrowMoreMaxRecv(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) (MaxRecv, error)
	BorrowMoreExpectedCollateral(ctx context.Context, userCollateral, userBorrowed, debt, slippage decimal.Decimal) (Expected, error)
	BorrowMorePriceImpact(ctx context.Context, userBorrowed, debt decimal.Decimal) (decimal.Decimal, error)
	BorrowMoreBands(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal) (models.Bands, error)
	BorrowMoreHealth(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal, full bool) (decimal.Decimal, error)
	BorrowMorePrices(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal) (models.Prices, error)
	BorrowMoreIsApproved(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) (bool, error)
	BorrowMoreApprove(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) ([]string, error)
	EstimateGasBorrowMoreApprove(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) (uint64, error)
	EstimateGasBorrowMore(ctx context.Context, userCollateral, userBorrowed, debt, slippage decimal.Decimal) (uint64, error)

	RepayExpectedBorrowed(ctx context.Context, stateCollateral, userCollateral, userBorrowed, slippage decimal.Decimal) (Expected, error)
	RepayPriceImpact(ctx context.Context, stateCollateral, userCollateral decimal.Decimal) (decimal.Decimal, error)
	RepayBands(ctx context.Context, stateCollateral, userCollateral, userBorrowed decimal.Decimal) (models.Bands, error)
	RepayHealth(ctx context.Context, stateCollateral, userCollateral, userBorrowed decimal.Decimal, full bool) (decimal.Decimal, error)
	RepayPrices(ctx context.Context, stateCollateral, userCollateral, userBorrowed decimal.Decimal) (models.Prices, error)
	RepayIsApproved(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) (bool, error)
	RepayApprove(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) ([]string, error)
	EstimateGasRepayApprove(ctx context.Context, userCollateral, userBorrowed decimal.Decimal) (uint64, error)
	EstimateGasRepay(ctx context.Context, stateCollateral, userCollateral, userBorrowed, slippage decimal.Decimal) (uint64, error)
}

// LeverageAPI — нативное плечо lend-рынков.
type LeverageAPI interface {
	LeverageQuotes
	CreateLoan(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal, n int, slippage decimal.Decimal) (string, error)
	BorrowMore(ctx context.Context, userCollateral, userBorrowed, debt, slippage decimal.Decimal) (string, error)
	Repay(ctx context.Context, stateCollateral, userCollateral, userBorrowed, slippage decimal.Decimal) (string, error)
}

// RouteLeverageAPI — плечо mint-рынков через внешний маршрут свопа (zapV2).
// Запись требует routeId, выбранный на шаге котировки.
type RouteLeverageAPI interface {
	LeverageQuotes
	HasLeverage() bool
	CreateLoan(ctx context.Context, userCollateral, userBorrowed, debt decimal.Decimal, n int, slippage decimal.Decimal, routeID string) (string, error)
	BorrowMore(ctx context.Context, userCollateral, userBorrowed, debt, slippage decimal.Decimal, routeID string) (string, error)
	Repay(ctx context.Context, stateCollateral, userCollateral, userBorrowed, slippage decimal.Decimal, routeID string) (string, error)
}

// LegacyLeverageAPI — старый zap mint-рынков, только открытие займа, без userBorrowed.
type LegacyLeverageAPI interface {
	CreateLoanMaxRecv(ctx context.Context, collateral decimal.Decimal, n int) (MaxRecv, error)
	CreateLoanExpectedCollateral(ctx context.Context, collateral, debt decimal.Decimal) (Expected, error)
	CreateLoanPriceImpact(ctx context.Context, collateral, debt decimal.Decimal) (decimal.Decimal, error)
	CreateLoanBands(ctx context.Context, collateral, debt decimal.Decimal, n int) (models.Bands, error)
	CreateLoanHealth(ctx context.Context, collateral, debt decimal.Decimal, n int, full bool) (decimal.Decimal, error)
	CreateLoanPrices(ctx context.Context, collateral, debt decimal.Decimal, n int) (models.Prices, error)
	CreateLoanIsApproved(ctx context.Context, collateral decimal.Decimal) (bool, error)
	CreateLoanApprove(ctx context.Context, collateral decimal.Decimal) ([]string, error)
	CreateLoan(ctx context.Context, collateral, debt decimal.Decimal, n int, slippage decimal.Decimal) (string, error)
	EstimateGasCreateLoanApprove(ctx context.Context, collateral decimal.Decimal) (uint64, error)
	EstimateGasCreateLoan(ctx context.Context, collateral, debt decimal.Decimal, n int, slippage decimal.Decimal) (uint64, error)
}

// VaultAPI — vault lend-рынка.
type VaultAPI interface {
	StakeIsApproved(ctx context.Context, amount decimal.Decimal) (bool, error)
	StakeApprove(ctx context.Context, amount decimal.Decimal) ([]string, error)
	Stake(ctx context.Context, amount decimal.Decimal) (string, error)
}

// UserAPI — чтения состояния пользователя на рынке.
type UserAPI interface {
	LoanExists(ctx context.Context, user string) (bool, error)
	UserHealth(ctx context.Context, user string, full bool) (decimal.Decimal, error)
	UserBands(ctx context.Context, user string) (models.Bands, error)
	UserState(ctx context.Context, user string) (models.UserState, error)
	OraclePriceBand(ctx context.Context) (int, error)
}

// Handle — объект рынка из SDK. Отсутствующие поверхности возвращают nil.
type Handle interface {
	Info() models.Market
	Loan() LoanAPI
	Leverage() LeverageAPI
	RouteLeverage() RouteLeverageAPI
	LegacyLeverage() LegacyLeverageAPI
	Vault() VaultAPI
	User() UserAPI
}
