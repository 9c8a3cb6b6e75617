// Package wallettest — фейковый кошелёк для тестов.
package wallettest

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
	"llama_lend/internal/wallet"
)

type Wallet struct {
	mu       sync.Mutex
	User     string
	Receipts map[string]wallet.Receipt
	WaitErr  error
	Balances map[string]decimal.Decimal
	Waited   []string
}

func New(user string) *Wallet {
	return &Wallet{
		User:     user,
		Receipts: make(map[string]wallet.Receipt),
		Balances: make(map[string]decimal.Decimal),
	}
}

func (w *Wallet) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.User
}

// WaitForTransactionReceipt: неизвестный хэш считается успешным.
func (w *Wallet) WaitForTransactionReceipt(_ context.Context, hash string) (wallet.Receipt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Waited = append(w.Waited, hash)
	if w.WaitErr != nil {
		return wallet.Receipt{}, w.WaitErr
	}
	if r, ok := w.Receipts[hash]; ok {
		return r, nil
	}
	return wallet.Receipt{Hash: hash, Status: types.ReceiptStatusSuccessful, BlockNumber: 1}, nil
}

func (w *Wallet) GetBalance(_ context.Context, _ string, token models.Token) (decimal.Decimal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Balances[token.Address], nil
}

func (w *Wallet) WaitedHashes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.Waited...)
}
