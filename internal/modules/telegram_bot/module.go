package telegram

import (
	"context"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"llama_lend/internal/borrow"
	"llama_lend/internal/models"
	"llama_lend/internal/modules/config"
	"llama_lend/internal/modules/lending"
	monitor "llama_lend/internal/modules/monitor/service"
	"llama_lend/internal/modules/telegram_bot/service"
	"llama_lend/internal/mutation"
	"llama_lend/internal/params"
)

type deps struct {
	fx.In

	Cfg       *config.Config
	Bot       *tgbot.BotAPI
	Lending   *borrow.Service
	Mutations lending.Mutations
	Monitor   *monitor.Monitor
	History   mutation.History
	Log       *zap.Logger
}

// NewTelegram — бот команд. Без токена бот не поднимается.
func NewTelegram(p deps) *service.Telegram {
	if p.Bot == nil {
		return nil
	}
	return service.NewTelegram(p.Bot, p.Cfg.Telegram.ChatID, p.Monitor, p.History, newQuoter(p.Cfg, p.Lending, p.Mutations), p.Log.Named("telegram"))
}

func newQuoter(cfg *config.Config, svc *borrow.Service, m lending.Mutations) *service.Quoter {
	q := &service.Quoter{
		Flow:    svc.CreateLoan,
		Markets: cfg.Market,
		Defaults: params.Defaults{
			Range:    cfg.DefaultRange,
			Slippage: decimal.NewFromFloat(cfg.DefaultSlippage),
		},
		User: cfg.Chain.Wallet,
	}
	// без кошелька отправлять нечего
	if create, ok := m[models.MutationCreateLoan]; ok && cfg.Chain.Wallet != "" {
		q.Create = create
	}
	return q
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			NewTelegram,
		),
		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram) {
				if t == nil {
					return
				}
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						t.Start(context.Background())
						return nil
					},
					OnStop: func(ctx context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
