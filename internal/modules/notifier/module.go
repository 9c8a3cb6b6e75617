package notifier

import (
	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"llama_lend/internal/modules/config"
	"llama_lend/internal/notify"
)

// NewBot поднимает клиента Telegram. Пустой токен — бота нет.
func NewBot(cfg *config.Config, log *zap.Logger) (*tgbot.BotAPI, error) {
	if cfg.Telegram.Token == "" {
		log.Warn("notifier: no telegram token, notifications go to log")
		return nil, nil
	}
	return tgbot.NewBotAPI(cfg.Telegram.Token)
}

func NewNotifier(cfg *config.Config, bot *tgbot.BotAPI, log *zap.Logger) notify.Notifier {
	if bot == nil || cfg.Telegram.ChatID == 0 {
		return notify.NewStdout(log.Named("notify"))
	}
	return notify.NewTelegram(bot, cfg.Telegram.ChatID, log.Named("notify"))
}

func Module() fx.Option {
	return fx.Module("notifier",
		fx.Provide(
			NewBot,
			NewNotifier,
		),
	)
}
