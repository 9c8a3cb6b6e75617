package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"llama_lend/internal/errs"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
)

// Loan — котировки и оценка газа рынка без плеча по view-методам контроллера.
// Операции borrow-more, repay и collateral считаются от адреса кошелька из конфига.
// Подписи здесь нет: запись возвращает ошибку конфигурации.
type Loan struct {
	*Reader
	wallet common.Address
	hasKey bool
}

var _ market.LoanAPI = (*Loan)(nil)

func NewLoan(r *Reader, wallet string) *Loan {
	l := &Loan{Reader: r}
	if common.IsHexAddress(wallet) {
		l.wallet = common.HexToAddress(wallet)
		l.hasKey = true
	}
	return l
}

func readOnly(op string) error {
	return errs.Configuration("chain."+op, "transaction signing is not configured")
}

func (l *Loan) owner(op string) (common.Address, error) {
	if !l.hasKey {
		return common.Address{}, errs.Configuration("chain."+op, "wallet is not connected")
	}
	return l.wallet, nil
}

func (l *Loan) collateralWei(v decimal.Decimal) *big.Int {
	return toWei(v, l.market.Collateral.Decimals)
}

func (l *Loan) debtWei(v decimal.Decimal) *big.Int {
	return toWei(v, l.market.Borrowed.Decimals)
}

func (l *Loan) maxBorrowable(ctx context.Context, collateral *big.Int, n int) (decimal.Decimal, error) {
	v, err := l.bigOut(ctx, l.controller, controllerABI, "max_borrowable", collateral, big.NewInt(int64(n)))
	if err != nil {
		return decimal.Zero, err
	}
	return toDecimal(v, l.market.Borrowed.Decimals), nil
}

// bands: n1 из calculate_debt_n1, n2 = n1 + N - 1.
func (l *Loan) bands(ctx context.Context, collateral, debt *big.Int, n int) (models.Bands, error) {
	n1, err := l.bigOut(ctx, l.controller, controllerABI, "calculate_debt_n1", collateral, debt, big.NewInt(int64(n)))
	if err != nil {
		return models.Bands{}, err
	}
	first := int(n1.Int64())
	return models.Bands{first, first + n - 1}, nil
}

// prices — цены оракула на границах бэндов, 18 знаков.
func (l *Loan) prices(ctx context.Context, b models.Bands) (models.Prices, error) {
	b = b.Ascending()
	down, err := l.bigOut(ctx, l.amm, ammABI, "p_oracle_down", big.NewInt(int64(b[1])))
	if err != nil {
		return models.Prices{}, err
	}
	up, err := l.bigOut(ctx, l.amm, ammABI, "p_oracle_up", big.NewInt(int64(b[0])))
	if err != nil {
		return models.Prices{}, err
	}
	return models.Prices{toDecimal(down, 18), toDecimal(up, 18)}, nil
}

func (l *Loan) healthCalc(ctx context.Context, who common.Address, dCollateral, dDebt *big.Int, full bool, n int) (decimal.Decimal, error) {
	v, err := l.bigOut(ctx, l.controller, controllerABI, "health_calculator", who, dCollateral, dDebt, full, big.NewInt(int64(n)))
	if err != nil {
		return decimal.Zero, err
	}
	return toPercent(v), nil
}

func (l *Loan) state(ctx context.Context, op string) (models.UserState, error) {
	who, err := l.owner(op)
	if err != nil {
		return models.UserState{}, err
	}
	return l.UserState(ctx, who.Hex())
}

func (l *Loan) allowance(ctx context.Context, op string, token models.Token, amount *big.Int) (bool, error) {
	who, err := l.owner(op)
	if err != nil {
		return false, err
	}
	if !common.IsHexAddress(token.Address) {
		return false, errs.Configuration("chain."+op, "market %s: bad token address for %s", l.market.ID, token.Symbol)
	}
	v, err := l.bigOut(ctx, common.HexToAddress(token.Address), erc20ABI, "allowance", who, l.controller)
	if err != nil {
		return false, err
	}
	return v.Cmp(amount) >= 0, nil
}

func (l *Loan) estimate(ctx context.Context, op string, to common.Address, a abi.ABI, method string, args ...any) (uint64, error) {
	who, err := l.owner(op)
	if err != nil {
		return 0, err
	}
	data, err := a.Pack(method, args...)
	if err != nil {
		return 0, errs.Configuration("chain."+op, "pack %s: %v", method, err)
	}
	gas, err := l.backend.EstimateGas(ctx, ethereum.CallMsg{From: who, To: &to, Data: data})
	if err != nil {
		return 0, errs.Network("chain."+op, err)
	}
	return gas, nil
}

func (l *Loan) estimateApprove(ctx context.Context, op string, token models.Token, amount *big.Int) (uint64, error) {
	if !common.IsHexAddress(token.Address) {
		return 0, errs.Configuration("chain."+op, "market %s: bad token address for %s", l.market.ID, token.Symbol)
	}
	return l.estimate(ctx, op, common.HexToAddress(token.Address), erc20ABI, "approve", l.controller, amount)
}

func (l *Loan) CreateLoanMaxRecv(ctx context.Context, collateral decimal.Decimal, n int) (decimal.Decimal, error) {
	return l.maxBorrowable(ctx, l.collateralWei(collateral), n)
}

func (l *Loan) CreateLoanBands(ctx context.Context, collateral, debt decimal.Decimal, n int) (models.Bands, error) {
	return l.bands(ctx, l.collateralWei(collateral), l.debtWei(debt), n)
}

func (l *Loan) CreateLoanHealth(ctx context.Context, collateral, debt decimal.Decimal, n int, full bool) (decimal.Decimal, error) {
	return l.healthCalc(ctx, common.Address{}, l.collateralWei(collateral), l.debtWei(debt), full, n)
}

func (l *Loan) CreateLoanPrices(ctx context.Context, collateral, debt decimal.Decimal, n int) (models.Prices, error) {
	b, err := l.CreateLoanBands(ctx, collateral, debt, n)
	if err != nil {
		return models.Prices{}, err
	}
	return l.prices(ctx, b)
}

func (l *Loan) CreateLoanIsApproved(ctx context.Context, collateral decimal.Decimal) (bool, error) {
	return l.allowance(ctx, "CreateLoanIsApproved", l.market.Collateral, l.collateralWei(collateral))
}

func (l *Loan) CreateLoanApprove(context.Context, decimal.Decimal) ([]string, error) {
	return nil, readOnly("CreateLoanApprove")
}

func (l *Loan) CreateLoan(context.Context, decimal.Decimal, decimal.Decimal, int, decimal.Decimal) (string, error) {
	return "", readOnly("CreateLoan")
}

func (l *Loan) EstimateGasCreateLoanApprove(ctx context.Context, collateral decimal.Decimal) (uint64, error) {
	return l.estimateApprove(ctx, "EstimateGasCreateLoanApprove", l.market.Collateral, l.collateralWei(collateral))
}

func (l *Loan) EstimateGasCreateLoan(ctx context.Context, collateral, debt decimal.Decimal, n int) (uint64, error) {
	return l.estimate(ctx, "EstimateGasCreateLoan", l.controller, controllerABI, "create_loan",
		l.collateralWei(collateral), l.debtWei(debt), big.NewInt(int64(n)))
}

// BorrowMoreMaxRecv — сколько ещё можно занять сверх текущего долга, не меньше нуля.
func (l *Loan) BorrowMoreMaxRecv(ctx context.Context, collateral decimal.Decimal) (decimal.Decimal, error) {
	st, err := l.state(ctx, "BorrowMoreMaxRecv")
	if err != nil {
		return decimal.Zero, err
	}
	total, err := l.maxBorrowable(ctx, l.collateralWei(st.Collateral.Add(collateral)), st.N)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Max(total.Sub(st.Debt), decimal.Zero), nil
}

func (l *Loan) BorrowMoreBands(ctx context.Context, collateral, debt decimal.Decimal) (models.Bands, error) {
	st, err := l.state(ctx, "BorrowMoreBands")
	if err != nil {
		return models.Bands{}, err
	}
	return l.bands(ctx, l.collateralWei(st.Collateral.Add(collateral)), l.debtWei(st.Debt.Add(debt)), st.N)
}

func (l *Loan) BorrowMoreHealth(ctx context.Context, collateral, debt decimal.Decimal, full bool) (decimal.Decimal, error) {
	who, err := l.owner("BorrowMoreHealth")
	if err != nil {
		return decimal.Zero, err
	}
	return l.healthCalc(ctx, who, l.collateralWei(collateral), l.debtWei(debt), full, 0)
}

func (l *Loan) BorrowMorePrices(ctx context.Context, collateral, debt decimal.Decimal) (models.Prices, error) {
	b, err := l.BorrowMoreBands(ctx, collateral, debt)
	if err != nil {
		return models.Prices{}, err
	}
	return l.prices(ctx, b)
}

func (l *Loan) BorrowMoreIsApproved(ctx context.Context, collateral decimal.Decimal) (bool, error) {
	return l.allowance(ctx, "BorrowMoreIsApproved", l.market.Collateral, l.collateralWei(collateral))
}

func (l *Loan) BorrowMoreApprove(context.Context, decimal.Decimal) ([]string, error) {
	return nil, readOnly("BorrowMoreApprove")
}

func (l *Loan) BorrowMore(context.Context, decimal.Decimal, decimal.Decimal, decimal.Decimal) (string, error) {
	return "", readOnly("BorrowMore")
}

func (l *Loan) EstimateGasBorrowMoreApprove(ctx context.Context, collateral decimal.Decimal) (uint64, error) {
	return l.estimateApprove(ctx, "EstimateGasBorrowMoreApprove", l.market.Collateral, l.collateralWei(collateral))
}

func (l *Loan) EstimateGasBorrowMore(ctx context.Context, collateral, debt decimal.Decimal) (uint64, error) {
	return l.estimate(ctx, "EstimateGasBorrowMore", l.controller, controllerABI, "borrow_more",
		l.collateralWei(collateral), l.debtWei(debt))
}

// RepayBands — бэнды после частичного погашения. Полное погашение закрывает заём, бэндов нет.
func (l *Loan) RepayBands(ctx context.Context, debt decimal.Decimal) (models.Bands, error) {
	st, err := l.state(ctx, "RepayBands")
	if err != nil {
		return models.Bands{}, err
	}
	left := st.Debt.Sub(debt)
	if !left.IsPositive() {
		return models.Bands{}, nil
	}
	return l.bands(ctx, l.collateralWei(st.Collateral), l.debtWei(left), st.N)
}

func (l *Loan) RepayHealth(ctx context.Context, debt decimal.Decimal, full bool) (decimal.Decimal, error) {
	who, err := l.owner("RepayHealth")
	if err != nil {
		return decimal.Zero, err
	}
	return l.healthCalc(ctx, who, new(big.Int), new(big.Int).Neg(l.debtWei(debt)), full, 0)
}

func (l *Loan) RepayPrices(ctx context.Context, debt decimal.Decimal) (models.Prices, error) {
	b, err := l.RepayBands(ctx, debt)
	if err != nil {
		return models.Prices{}, err
	}
	if b == (models.Bands{}) {
		return models.Prices{}, nil
	}
	return l.prices(ctx, b)
}

func (l *Loan) RepayIsApproved(ctx context.Context, debt decimal.Decimal) (bool, error) {
	return l.allowance(ctx, "RepayIsApproved", l.market.Borrowed, l.debtWei(debt))
}

func (l *Loan) RepayApprove(context.Context, decimal.Decimal) ([]string, error) {
	return nil, readOnly("RepayApprove")
}

func (l *Loan) Repay(context.Context, decimal.Decimal, decimal.Decimal) (string, error) {
	return "", readOnly("Repay")
}

func (l *Loan) EstimateGasRepayApprove(ctx context.Context, debt decimal.Decimal) (uint64, error) {
	return l.estimateApprove(ctx, "EstimateGasRepayApprove", l.market.Borrowed, l.debtWei(debt))
}

func (l *Loan) EstimateGasRepay(ctx context.Context, debt decimal.Decimal) (uint64, error) {
	return l.estimate(ctx, "EstimateGasRepay", l.controller, controllerABI, "repay", l.debtWei(debt))
}

func (l *Loan) AddCollateralIsApproved(ctx context.Context, collateral decimal.Decimal) (bool, error) {
	return l.allowance(ctx, "AddCollateralIsApproved", l.market.Collateral, l.collateralWei(collateral))
}

func (l *Loan) AddCollateralApprove(context.Context, decimal.Decimal) ([]string, error) {
	return nil, readOnly("AddCollateralApprove")
}

func (l *Loan) AddCollateral(context.Context, decimal.Decimal) (string, error) {
	return "", readOnly("AddCollateral")
}

// MaxRemovable — залог сверх min_collateral для текущего долга.
func (l *Loan) MaxRemovable(ctx context.Context) (decimal.Decimal, error) {
	st, err := l.state(ctx, "MaxRemovable")
	if err != nil {
		return decimal.Zero, err
	}
	if st.N == 0 {
		return decimal.Zero, nil
	}
	minColl, err := l.bigOut(ctx, l.controller, controllerABI, "min_collateral", l.debtWei(st.Debt), big.NewInt(int64(st.N)))
	if err != nil {
		return decimal.Zero, err
	}
	free := st.Collateral.Sub(toDecimal(minColl, l.market.Collateral.Decimals))
	return decimal.Max(free, decimal.Zero), nil
}

func (l *Loan) RemoveCollateral(context.Context, decimal.Decimal) (string, error) {
	return "", readOnly("RemoveCollateral")
}
