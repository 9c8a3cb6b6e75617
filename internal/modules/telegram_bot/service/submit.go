package service

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"llama_lend/internal/models"
	"llama_lend/internal/mutation"
)

// Submitter — мутация одного вида.
type Submitter interface {
	Submit(ctx context.Context, p models.RequestParams) (*mutation.Result, error)
	State() mutation.Snapshot
}

const borrowUsage = "Usage: /borrow MARKET COLLATERAL DEBT [RANGE]"

// /borrow wsteth 2 1000 10 — открыть займ с кошелька из конфига.
// Отправка идёт в фоне: ожидание receipt дольше таймаута команды.
func (t *Telegram) handleBorrow(ctx context.Context, chatID int64, args string) {
	if t.quoter == nil || t.quoter.Create == nil {
		t.Send(chatID, "Borrowing is disabled")
		return
	}
	m, p, ok := t.loanArgs(chatID, args, 3, borrowUsage)
	if !ok {
		return
	}
	// одна отправка за раз
	if t.quoter.Create.State().IsPending() || !t.submitting.CompareAndSwap(false, true) {
		t.Send(chatID, "A loan transaction is already in progress")
		return
	}

	t.Send(chatID, fmt.Sprintf("Submitting loan on `%s`: collateral `%s %s`, debt `%s %s`",
		m.ID, p.UserCollateral, m.Collateral.Symbol, p.Debt, m.Borrowed.Symbol))

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.submitTimeout)
	go func() {
		defer cancel()
		defer t.submitting.Store(false)
		res, err := t.quoter.Create.Submit(sctx, p)
		switch {
		case err != nil:
			t.log.Info("telegram: borrow", zap.String("market", m.ID), zap.Error(err))
			t.Send(chatID, "Loan was not created: "+tgbot.EscapeText(tgbot.ModeMarkdown, err.Error()))
		case res.Rejected:
			t.Send(chatID, "Signature was rejected, nothing was sent")
		default:
			t.Send(chatID, fmt.Sprintf("Loan created, tx `%s`", res.TxHash))
		}
	}()
}
