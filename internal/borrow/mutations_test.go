package borrow_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/errs"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/mutation"
	"llama_lend/internal/notify"
)

func mutations(t *testing.T, f *fixture) (map[models.MutationKind]*mutation.Mutation, *notify.Recorder) {
	t.Helper()
	notes := &notify.Recorder{}
	o := mutation.New(f.reg, f.wallet, f.client, notes)
	return f.svc.Mutations(o), notes
}

func TestRepayUnleveraged(t *testing.T) {
	f := newFixture(t)
	ms, notes := mutations(t, f)

	_, err := ms[models.MutationRepay].Submit(context.Background(), params("wsteth", false))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"repayIsApproved(500)",
		"repayApprove(500)",
		"repayIsApproved(500)",
		"repay(500,0.1)",
	}, f.loan.Calls.List())
	assert.Equal(t, []notify.Message{{Text: "Repaid 500", Level: notify.LevelSuccess}}, notes.Messages())
}

func TestSuccessInvalidatesUserNodes(t *testing.T) {
	f := newFixture(t)
	ms, _ := mutations(t, f)
	ctx := context.Background()
	sc := models.Scope{ChainID: 1, MarketID: "wsteth", UserAddress: user}

	_, err := f.svc.User.LoanExists.Fetch(ctx, sc)
	require.NoError(t, err)
	_, err = f.svc.User.LoanExists.Fetch(ctx, sc)
	require.NoError(t, err)
	require.Equal(t, 1, f.reads.Calls.Count("loanExists"))

	f.loan.Approval.Set(true)
	_, err = ms[models.MutationCreateLoan].Submit(ctx, params("wsteth", false))
	require.NoError(t, err)

	_, err = f.svc.User.LoanExists.Fetch(ctx, sc)
	require.NoError(t, err)
	assert.Equal(t, 2, f.reads.Calls.Count("loanExists"))
}

func TestRemoveCollateralNeedsNoApproval(t *testing.T) {
	f := newFixture(t)
	ms, _ := mutations(t, f)
	p := params("wsteth", false)
	p.UserCollateral = decimal.NewFromInt(5)

	_, err := ms[models.MutationRemoveCollateral].Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"removeCollateral(5)"}, f.loan.Calls.List())
}

func TestAddCollateralOverBalance(t *testing.T) {
	f := newFixture(t)
	ms, _ := mutations(t, f)
	p := params("wsteth", false)
	balance := decimal.NewFromInt(10)
	p.MaxCollateral = &balance

	_, err := ms[models.MutationAddCollateral].Submit(context.Background(), p)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Empty(t, f.loan.Calls.List())
}

func TestAddCollateralRereadsApproval(t *testing.T) {
	f := newFixture(t)
	ms, _ := mutations(t, f)
	p := params("wsteth", false)
	p.UserCollateral = decimal.NewFromInt(5)
	ctx := context.Background()

	// свежий false в кэше не мешает перечитать статус после approve
	approved, err := f.svc.Approvals.AddCollateral.Fetch(ctx, p)
	require.NoError(t, err)
	assert.False(t, approved)

	_, err = ms[models.MutationAddCollateral].Submit(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"addCollateralIsApproved(5)",
		"addCollateralIsApproved(5)",
		"addCollateralApprove(5)",
		"addCollateralIsApproved(5)",
		"addCollateral(5)",
	}, f.loan.Calls.List())
}

func TestStakeOnlyOnLendMarkets(t *testing.T) {
	f := newFixture(t)
	ms, _ := mutations(t, f)
	p := params("wsteth", false)
	p.UserBorrowed = decimal.NewFromInt(100)

	_, err := ms[models.MutationStake].Submit(context.Background(), p)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))

	p.MarketID = "one-way-market-7"
	f.vault.Approval.Set(true)
	_, err = ms[models.MutationStake].Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"vault.stakeIsApproved(100)", "vault.stake(100)"}, f.vault.Calls.List())
}

func TestRouteExecuteNeedsQuotedRoute(t *testing.T) {
	f := newFixture(t)
	ms, _ := mutations(t, f)
	p := params("wsteth", true)
	p.RouteID = "odos-9"

	_, err := ms[models.MutationCreateLoan].Submit(context.Background(), p)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	assert.Empty(t, f.route.Calls.List())

	f.svc.Routes().Put(market.Route{ID: "odos-9"})
	f.route.Approval.Set(true)
	_, err = ms[models.MutationCreateLoan].Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, f.route.Calls.Count("leverageV2.createLoan"))
}
