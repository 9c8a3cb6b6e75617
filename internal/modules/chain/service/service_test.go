package service

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/errs"
	"llama_lend/internal/models"
)

const (
	user       = "0x1111111111111111111111111111111111111111"
	controller = "0x100dAa78fC509Db39Ef7D04DE0c1ABD299f4C6CE"
	amm        = "0x37417B2238AA52D0DD2D6252d989E728e8f706e4"
	crvusd     = "0xf939E0A03FB07F59A73314E73794Be0E57ac1B4E"
)

func e18(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// fakeBackend отвечает на вызовы по селектору метода.
type fakeBackend struct {
	outputs  map[string][]byte
	callErr  error
	native   *big.Int
	receipts []receiptReply
	polled   int
	gas      uint64
	gasCalls []ethereum.CallMsg
}

type receiptReply struct {
	receipt *types.Receipt
	err     error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{outputs: make(map[string][]byte)}
}

func (b *fakeBackend) reply(t *testing.T, a abi.ABI, method string, values ...any) {
	t.Helper()
	m := a.Methods[method]
	out, err := m.Outputs.Pack(values...)
	require.NoError(t, err)
	b.outputs[string(m.ID)] = out
}

func (b *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if b.callErr != nil {
		return nil, b.callErr
	}
	for sel, out := range b.outputs {
		if bytes.HasPrefix(call.Data, []byte(sel)) {
			return out, nil
		}
	}
	return nil, errors.New("execution reverted")
}

func (b *fakeBackend) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return b.native, nil
}

func (b *fakeBackend) EstimateGas(_ context.Context, call ethereum.CallMsg) (uint64, error) {
	b.gasCalls = append(b.gasCalls, call)
	if b.callErr != nil {
		return 0, b.callErr
	}
	return b.gas, nil
}

func (b *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	r := b.receipts[b.polled]
	if b.polled < len(b.receipts)-1 {
		b.polled++
	}
	return r.receipt, r.err
}

func testMarket() models.Market {
	return models.Market{
		ID:         "wsteth",
		ChainID:    1,
		Controller: controller,
		AMM:        amm,
		Collateral: models.Token{Symbol: "wstETH", Decimals: 18},
		Borrowed:   models.Token{Symbol: "crvUSD", Address: crvusd, Decimals: 18},
	}
}

func TestReaderDecodesControllerReads(t *testing.T) {
	b := newFakeBackend()
	b.reply(t, controllerABI, "loan_exists", true)
	b.reply(t, controllerABI, "health", new(big.Int).Div(e18(1), big.NewInt(20)))
	b.reply(t, controllerABI, "read_user_tick_numbers", [2]*big.Int{big.NewInt(12), big.NewInt(3)})
	b.reply(t, controllerABI, "user_state", [4]*big.Int{e18(2), big.NewInt(0), e18(1500), big.NewInt(10)})
	b.reply(t, ammABI, "active_band", big.NewInt(-4))

	r, err := NewReader(b, testMarket())
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := r.LoanExists(ctx, user)
	require.NoError(t, err)
	assert.True(t, exists)

	health, err := r.UserHealth(ctx, user, true)
	require.NoError(t, err)
	assert.Equal(t, "5", health.String())

	bands, err := r.UserBands(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.Bands{12, 3}, bands)

	st, err := r.UserState(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, "2", st.Collateral.String())
	assert.Equal(t, "1500", st.Debt.String())
	assert.True(t, st.Stablecoin.IsZero())
	assert.Equal(t, 10, st.N)

	band, err := r.OraclePriceBand(ctx)
	require.NoError(t, err)
	assert.Equal(t, -4, band)
}

func TestReaderRejectsBadAddress(t *testing.T) {
	r, err := NewReader(newFakeBackend(), testMarket())
	require.NoError(t, err)

	_, err = r.UserHealth(context.Background(), "vitalik", true)
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))

	_, err = NewReader(newFakeBackend(), models.Market{ID: "broken"})
	assert.Equal(t, errs.KindConfiguration, errs.KindOf(err))
}

func TestReaderRPCErrorIsNetwork(t *testing.T) {
	b := newFakeBackend()
	b.callErr = errors.New("dial tcp: connection refused")
	r, err := NewReader(b, testMarket())
	require.NoError(t, err)

	_, err = r.LoanExists(context.Background(), user)
	assert.Equal(t, errs.KindNetwork, errs.KindOf(err))
	assert.True(t, errs.Retryable(err))
}

func TestRegistryExposesReadSurfaces(t *testing.T) {
	reg, err := NewRegistry(newFakeBackend(), []models.Market{testMarket()}, "")
	require.NoError(t, err)

	h, err := reg.Market(1, "wsteth")
	require.NoError(t, err)
	assert.NotNil(t, h.User())
	assert.NotNil(t, h.Loan())
	assert.Nil(t, h.Leverage())
	assert.Nil(t, h.Vault())
}

func TestProviderBalances(t *testing.T) {
	b := newFakeBackend()
	b.native = e18(3)
	b.reply(t, erc20ABI, "balanceOf", new(big.Int).Mul(big.NewInt(125), new(big.Int).Exp(big.NewInt(10), big.NewInt(16), nil)))
	p := NewProvider(b, user, time.Millisecond)
	ctx := context.Background()

	native, err := p.GetBalance(ctx, user, models.Token{Symbol: "ETH", Address: nativeToken, Decimals: 18})
	require.NoError(t, err)
	assert.Equal(t, "3", native.String())

	token, err := p.GetBalance(ctx, user, testMarket().Borrowed)
	require.NoError(t, err)
	assert.True(t, token.Equal(decimal.RequireFromString("1.25")))
}

func TestProviderWaitsForReceipt(t *testing.T) {
	b := newFakeBackend()
	b.receipts = []receiptReply{
		{err: ethereum.NotFound},
		{err: ethereum.NotFound},
		{receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(42), GasUsed: 21000}},
	}
	p := NewProvider(b, user, time.Millisecond)

	rcpt, err := p.WaitForTransactionReceipt(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.True(t, rcpt.Reverted())
	assert.Equal(t, uint64(42), rcpt.BlockNumber)
	assert.Equal(t, "0xabc", rcpt.Hash)
}

func TestProviderReceiptRPCError(t *testing.T) {
	b := newFakeBackend()
	b.receipts = []receiptReply{{err: errors.New("503 service unavailable")}}
	p := NewProvider(b, user, time.Millisecond)

	_, err := p.WaitForTransactionReceipt(context.Background(), "0xabc")
	assert.Equal(t, errs.KindNetwork, errs.KindOf(err))
}

func TestProviderReceiptHonoursContext(t *testing.T) {
	b := newFakeBackend()
	b.receipts = []receiptReply{{err: ethereum.NotFound}}
	p := NewProvider(b, user, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.WaitForTransactionReceipt(ctx, "0xabc")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
