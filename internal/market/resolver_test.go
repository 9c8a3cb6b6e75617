package market_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/errs"
	"llama_lend/internal/market"
	"llama_lend/internal/market/markettest"
	"llama_lend/internal/models"
)

func mintMarket() models.Market {
	return models.Market{ID: "wsteth", ChainID: 1, Kind: models.MarketMint, MinBands: 4, MaxBands: 50}
}

func lendMarket() models.Market {
	return models.Market{ID: "one-way-market-7", ChainID: 1, Kind: models.MarketLend, HasNativeLeverage: true}
}

func TestResolveUnleveraged(t *testing.T) {
	h := &markettest.Market{Meta: mintMarket(), LoanAPI: markettest.NewLoan()}

	impl, err := market.Resolve(h, false)
	require.NoError(t, err)
	assert.Equal(t, market.VariantUnleveraged, impl.Variant())
	_, ok := impl.(market.Unleveraged)
	assert.True(t, ok)
}

func TestResolveLendNativeLeverage(t *testing.T) {
	h := &markettest.Market{Meta: lendMarket(), LoanAPI: markettest.NewLoan(), Lev: markettest.NewNativeLeverage()}

	impl, err := market.Resolve(h, true)
	require.NoError(t, err)
	assert.Equal(t, market.VariantNativeLeverage, impl.Variant())
}

func TestResolveMintRouteBeforeLegacy(t *testing.T) {
	meta := mintMarket()
	meta.HasRouteLeverage = true
	meta.LeverageZap = "0x0000000000000000000000000000000000000abc"
	h := &markettest.Market{
		Meta:    meta,
		LoanAPI: markettest.NewLoan(),
		Route:   markettest.NewRouteLeverage(true),
		Legacy:  markettest.NewLegacyLeverage(),
	}

	impl, err := market.Resolve(h, true)
	require.NoError(t, err)
	assert.Equal(t, market.VariantRouteLeverage, impl.Variant())

	h.Route = markettest.NewRouteLeverage(false)
	impl, err = market.Resolve(h, true)
	require.NoError(t, err)
	assert.Equal(t, market.VariantLegacyLeverage, impl.Variant())
}

func TestResolveNoLeverageIsConfigurationError(t *testing.T) {
	meta := mintMarket()
	meta.LeverageZap = "0x0000000000000000000000000000000000000000"
	h := &markettest.Market{Meta: meta, LoanAPI: markettest.NewLoan(), Route: markettest.NewRouteLeverage(false)}

	_, err := market.Resolve(h, true)
	require.Error(t, err)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))

	_, err = market.Resolve(nil, false)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
}

func TestResolveIsDeterministic(t *testing.T) {
	meta := lendMarket()
	loan, lev := markettest.NewLoan(), markettest.NewNativeLeverage()
	h := &markettest.Market{Meta: meta, LoanAPI: loan, Lev: lev}

	for _, leverage := range []bool{false, true} {
		first, err := market.Resolve(h, leverage)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := market.Resolve(h, leverage)
			require.NoError(t, err)
			assert.Equal(t, first.Variant(), again.Variant())
		}
	}
	assert.Empty(t, loan.Calls.List())
	assert.Empty(t, lev.Calls.List())
}

func TestFlowArgumentShapes(t *testing.T) {
	ctx := context.Background()
	p := models.RequestParams{
		UserCollateral: decimal.NewFromInt(1000),
		UserBorrowed:   decimal.NewFromInt(50),
		Debt:           decimal.NewFromInt(500),
		Range:          10,
		Slippage:       decimal.RequireFromString("0.1"),
		RouteID:        "odos-1",
	}

	loan := markettest.NewLoan()
	f, err := market.Unleveraged{API: loan}.Flow(models.MutationCreateLoan)
	require.NoError(t, err)
	_, err = f.Execute(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"createLoan(1000,500,10,0.1)"}, loan.Calls.List())

	native := markettest.NewNativeLeverage()
	f, err = market.NativeLeverage{API: native}.Flow(models.MutationCreateLoan)
	require.NoError(t, err)
	_, err = f.Execute(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"leverage.createLoan(1000,50,500,10,0.1)"}, native.Calls.List())

	route := markettest.NewRouteLeverage(true)
	f, err = market.RouteLeverage{API: route}.Flow(models.MutationCreateLoan)
	require.NoError(t, err)
	_, err = f.Execute(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"leverageV2.createLoan(1000,50,500,10,0.1,odos-1)"}, route.Calls.List())
}

func TestRouteExecuteWithoutRouteID(t *testing.T) {
	route := markettest.NewRouteLeverage(true)
	f, err := market.RouteLeverage{API: route}.Flow(models.MutationCreateLoan)
	require.NoError(t, err)
	p := models.RequestParams{UserCollateral: decimal.NewFromInt(1), Debt: decimal.NewFromInt(1), Range: 10}

	require.Equal(t, errs.KindConfiguration, errs.KindOf(f.Precondition(p)))
	_, err = f.Execute(context.Background(), p)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	assert.Empty(t, route.Calls.List())

	// котировки маршрут не требуют
	_, err = f.Bands(context.Background(), p)
	assert.NoError(t, err)
}

func TestLegacyLeverage(t *testing.T) {
	legacy := markettest.NewLegacyLeverage()
	impl := market.LegacyLeverage{API: legacy}

	_, err := impl.Flow(models.MutationBorrowMore)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))

	f, err := impl.Flow(models.MutationCreateLoan)
	require.NoError(t, err)
	p := models.RequestParams{UserCollateral: decimal.NewFromInt(10), Debt: decimal.NewFromInt(5), Range: 4}
	_, err = f.Bands(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy.createLoanBands(10,5,4)"}, legacy.Calls.List())

	p.UserBorrowed = decimal.NewFromInt(1)
	assert.Panics(t, func() { _, _ = f.Bands(context.Background(), p) })
}

func TestUnleveragedHasNoLeverageQuotes(t *testing.T) {
	f, err := market.Unleveraged{API: markettest.NewLoan()}.Flow(models.MutationRepay)
	require.NoError(t, err)
	_, err = f.Expected(context.Background(), models.RequestParams{})
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
	_, err = f.MaxRecv(context.Background(), models.RequestParams{})
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))

	_, err = market.Unleveraged{API: markettest.NewLoan()}.Flow(models.MutationStake)
	assert.Error(t, err)
}

func TestRouteStore(t *testing.T) {
	s := market.NewRouteStore()
	_, err := s.Require("odos-1")
	require.Error(t, err)

	s.Put(market.Route{ID: "odos-1", AmountOut: decimal.NewFromInt(3)})
	r, err := s.Require("odos-1")
	require.NoError(t, err)
	assert.Equal(t, "3", r.AmountOut.String())

	s.Clear()
	_, ok := s.Get("odos-1")
	assert.False(t, ok)
}
