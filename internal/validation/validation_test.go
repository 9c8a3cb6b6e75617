package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/errs"
	"llama_lend/internal/models"
)

func validParams() models.RequestParams {
	return models.RequestParams{
		ChainID:        1,
		MarketID:       "wsteth",
		UserCollateral: decimal.NewFromInt(1000),
		Debt:           decimal.NewFromInt(500),
		Range:          10,
		Slippage:       decimal.RequireFromString("0.1"),
	}
}

func TestBorrowValid(t *testing.T) {
	require.NoError(t, Borrow(validParams(), DefaultRangeBounds).Err())
}

func TestBorrowCollectsFieldErrors(t *testing.T) {
	p := validParams()
	p.ChainID = 0
	p.Range = 3
	p.Slippage = decimal.NewFromInt(101)
	p.Debt = decimal.NewFromInt(-1)

	err := Borrow(p, DefaultRangeBounds).Err()
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "chainId")
	assert.Contains(t, verr.Fields, "range")
	assert.Contains(t, verr.Fields, "slippage")
	assert.Contains(t, verr.Fields, "debt")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.False(t, errs.Retryable(err))
}

func TestBorrowMaxDebtAndCollateral(t *testing.T) {
	p := validParams()
	maxDebt := decimal.NewFromInt(499)
	maxCollateral := decimal.NewFromInt(1000)
	p.MaxDebt = &maxDebt
	p.MaxCollateral = &maxCollateral

	var verr *Error
	require.ErrorAs(t, Borrow(p, DefaultRangeBounds).Err(), &verr)
	assert.Equal(t, []string{"debt exceeds max borrowable"}, verr.Fields["debt"])
	assert.NotContains(t, verr.Fields, "userCollateral")
}

func TestRangeBoundsInclusive(t *testing.T) {
	p := validParams()
	for _, n := range []int{4, 50} {
		p.Range = n
		assert.NoError(t, Borrow(p, DefaultRangeBounds).Err(), "range %d", n)
	}
	p.Range = 51
	assert.Error(t, Borrow(p, DefaultRangeBounds).Err())
}

func TestUserAddress(t *testing.T) {
	assert.NoError(t, User(New(), "0x52908400098527886E0F7030069857D2E4169EE7").Err())
	assert.Error(t, User(New(), "not-an-address").Err())
	assert.Error(t, User(New(), "").Err())
}

func TestMaxRecvIgnoresDebtLimit(t *testing.T) {
	p := validParams()
	limit := decimal.NewFromInt(1)
	p.MaxDebt = &limit
	assert.NoError(t, MaxRecv(p, DefaultRangeBounds).Err())
	assert.Error(t, Borrow(p, DefaultRangeBounds).Err())
}

func TestRepay(t *testing.T) {
	p := validParams()
	outstanding := decimal.NewFromInt(100)
	p.MaxDebt = &outstanding
	p.Debt = decimal.NewFromInt(150)

	var verr *Error
	require.ErrorAs(t, Repay(p).Err(), &verr)
	assert.Equal(t, []string{"amount exceeds outstanding debt"}, verr.Fields["debt"])
}

func TestCollateralAndStake(t *testing.T) {
	p := validParams()
	p.UserCollateral = decimal.Zero
	assert.Error(t, Collateral(p).Err())

	p.UserCollateral = decimal.NewFromInt(5)
	available := decimal.NewFromInt(4)
	p.MaxCollateral = &available
	assert.Error(t, Collateral(p).Err())

	p.UserBorrowed = decimal.NewFromInt(10)
	assert.NoError(t, Stake(p).Err())
}
