package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"llama_lend/internal/errs"
	"llama_lend/internal/models"
	"llama_lend/internal/wallet"
)

// nativeToken — условный адрес нативной монеты сети.
const nativeToken = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// Provider — wallet.Provider поверх RPC: адрес из конфига, квитанции и балансы из сети.
type Provider struct {
	backend Backend
	user    string
	poll    time.Duration
}

var _ wallet.Provider = (*Provider)(nil)

func NewProvider(backend Backend, user string, poll time.Duration) *Provider {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Provider{backend: backend, user: user, poll: poll}
}

func (p *Provider) Address() string { return p.user }

// WaitForTransactionReceipt опрашивает квитанцию, пока её нет в сети.
func (p *Provider) WaitForTransactionReceipt(ctx context.Context, hash string) (wallet.Receipt, error) {
	h := common.HexToHash(hash)
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		receipt, err := p.backend.TransactionReceipt(ctx, h)
		switch {
		case err == nil:
			out := wallet.Receipt{
				Hash:    hash,
				Status:  receipt.Status,
				GasUsed: receipt.GasUsed,
			}
			if receipt.BlockNumber != nil {
				out.BlockNumber = receipt.BlockNumber.Uint64()
			}
			return out, nil
		case !errors.Is(err, ethereum.NotFound):
			return wallet.Receipt{}, errs.Network("chain.WaitForTransactionReceipt", err)
		}

		select {
		case <-ctx.Done():
			return wallet.Receipt{}, errs.Network("chain.WaitForTransactionReceipt", ctx.Err())
		case <-ticker.C:
		}
	}
}

// GetBalance — нативный баланс или balanceOf токена.
func (p *Provider) GetBalance(ctx context.Context, owner string, token models.Token) (decimal.Decimal, error) {
	if !common.IsHexAddress(owner) {
		return decimal.Zero, errs.Configuration("chain.GetBalance", "bad owner address %q", owner)
	}
	who := common.HexToAddress(owner)

	if token.Address == "" || strings.EqualFold(token.Address, nativeToken) {
		v, err := p.backend.BalanceAt(ctx, who, nil)
		if err != nil {
			return decimal.Zero, errs.Network("chain.BalanceAt", err)
		}
		return toDecimal(v, token.Decimals), nil
	}

	data, err := erc20ABI.Pack("balanceOf", who)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pack balanceOf: %w", err)
	}
	to := common.HexToAddress(token.Address)
	raw, err := p.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return decimal.Zero, errs.Network("chain.balanceOf", err)
	}
	out, err := erc20ABI.Unpack("balanceOf", raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unpack balanceOf: %w", err)
	}
	return toDecimal(*abi.ConvertType(out[0], new(*big.Int)).(**big.Int), token.Decimals), nil
}
