// Package wallet — граница кошелька/провайдера: адрес пользователя, квитанции, балансы.
package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
)

// Receipt — квитанция транзакции.
type Receipt struct {
	Hash        string
	Status      uint64
	BlockNumber uint64
	GasUsed     uint64
	// Error — логическая ошибка, вложенная в формально успешный вызов
	Error string
}

func (r Receipt) Reverted() bool { return r.Status != types.ReceiptStatusSuccessful }

// Provider — подключённый кошелёк.
type Provider interface {
	// Address — текущий пользователь, пустая строка если кошелёк не подключён
	Address() string
	WaitForTransactionReceipt(ctx context.Context, hash string) (Receipt, error)
	GetBalance(ctx context.Context, owner string, token models.Token) (decimal.Decimal, error)
}
