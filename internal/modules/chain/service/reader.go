package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"llama_lend/internal/errs"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
)

// Backend — часть ethclient.Client, которой хватает для чтений и квитанций.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
}

// Reader читает состояние пользователя напрямую из контроллера и AMM рынка.
type Reader struct {
	backend    Backend
	market     models.Market
	controller common.Address
	amm        common.Address
}

var _ market.UserAPI = (*Reader)(nil)

func NewReader(backend Backend, m models.Market) (*Reader, error) {
	if !common.IsHexAddress(m.Controller) || !common.IsHexAddress(m.AMM) {
		return nil, errs.Configuration("chain.NewReader", "market %s: bad controller or amm address", m.ID)
	}
	return &Reader{
		backend:    backend,
		market:     m,
		controller: common.HexToAddress(m.Controller),
		amm:        common.HexToAddress(m.AMM),
	}, nil
}

func (r *Reader) call(ctx context.Context, to common.Address, a abi.ABI, method string, args ...any) ([]any, error) {
	data, err := a.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	raw, err := r.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errs.Network("chain."+method, err)
	}
	out, err := a.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

// bigOut — первый выход вызова как целое, int256 и uint256 одинаково.
func (r *Reader) bigOut(ctx context.Context, to common.Address, a abi.ABI, method string, args ...any) (*big.Int, error) {
	out, err := r.call(ctx, to, a, method, args...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func userAddress(op, user string) (common.Address, error) {
	if !common.IsHexAddress(user) {
		return common.Address{}, errs.Configuration(op, "bad user address %q", user)
	}
	return common.HexToAddress(user), nil
}

func (r *Reader) LoanExists(ctx context.Context, user string) (bool, error) {
	addr, err := userAddress("chain.LoanExists", user)
	if err != nil {
		return false, err
	}
	out, err := r.call(ctx, r.controller, controllerABI, "loan_exists", addr)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// UserHealth — health в процентах.
func (r *Reader) UserHealth(ctx context.Context, user string, full bool) (decimal.Decimal, error) {
	addr, err := userAddress("chain.UserHealth", user)
	if err != nil {
		return decimal.Zero, err
	}
	v, err := r.bigOut(ctx, r.controller, controllerABI, "health", addr, full)
	if err != nil {
		return decimal.Zero, err
	}
	return toPercent(v), nil
}

func (r *Reader) UserBands(ctx context.Context, user string) (models.Bands, error) {
	addr, err := userAddress("chain.UserBands", user)
	if err != nil {
		return models.Bands{}, err
	}
	out, err := r.call(ctx, r.controller, controllerABI, "read_user_tick_numbers", addr)
	if err != nil {
		return models.Bands{}, err
	}
	ticks := *abi.ConvertType(out[0], new([2]*big.Int)).(*[2]*big.Int)
	return models.Bands{int(ticks[0].Int64()), int(ticks[1].Int64())}, nil
}

// UserState — [collateral, stablecoin, debt, N] в единицах токенов.
func (r *Reader) UserState(ctx context.Context, user string) (models.UserState, error) {
	addr, err := userAddress("chain.UserState", user)
	if err != nil {
		return models.UserState{}, err
	}
	out, err := r.call(ctx, r.controller, controllerABI, "user_state", addr)
	if err != nil {
		return models.UserState{}, err
	}
	st := *abi.ConvertType(out[0], new([4]*big.Int)).(*[4]*big.Int)
	return models.UserState{
		Collateral: toDecimal(st[0], r.market.Collateral.Decimals),
		Stablecoin: toDecimal(st[1], r.market.Borrowed.Decimals),
		Debt:       toDecimal(st[2], r.market.Borrowed.Decimals),
		N:          int(st[3].Int64()),
	}, nil
}

// OraclePriceBand — активный бэнд AMM.
func (r *Reader) OraclePriceBand(ctx context.Context) (int, error) {
	v, err := r.bigOut(ctx, r.amm, ammABI, "active_band")
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
