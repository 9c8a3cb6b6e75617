package service

import (
	"context"
	"strconv"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const historyLimit = 10

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	if chatID != t.chatID {
		t.log.Warn("telegram: command from unknown chat", zap.Int64("chat", chatID))
		return
	}

	switch msg.Command() {
	case "start", "help":
		t.Send(chatID, helpText)
	case "status":
		t.Send(chatID, formatStatus(t.monitor.Status(ctx)))
	case "history":
		t.handleHistory(ctx, chatID, msg.CommandArguments())
	case "quote":
		t.handleQuote(ctx, chatID, msg.CommandArguments())
	case "borrow":
		t.handleBorrow(ctx, chatID, msg.CommandArguments())
	default:
		t.Send(chatID, "Unknown command, see /help")
	}
}

// /history N — журнал транзакций позиции N из /status.
func (t *Telegram) handleHistory(ctx context.Context, chatID int64, arg string) {
	positions := t.monitor.Positions()
	idx := 1
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(positions) {
			t.Send(chatID, "Usage: /history N, where N is a position number from /status")
			return
		}
		idx = n
	}
	if len(positions) == 0 {
		t.Send(chatID, "No watched positions")
		return
	}

	p := positions[idx-1]
	entries, err := t.history.Recent(ctx, p.Scope(), historyLimit)
	if err != nil {
		t.log.Warn("telegram: history", zap.Error(err))
		t.Send(chatID, "History is unavailable right now")
		return
	}
	t.Send(chatID, formatHistory(p, entries))
}
