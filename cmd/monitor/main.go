package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"llama_lend/internal/modules/chain"
	"llama_lend/internal/modules/config"
	"llama_lend/internal/modules/heads"
	"llama_lend/internal/modules/lending"
	"llama_lend/internal/modules/monitor"
	"llama_lend/internal/modules/notifier"
	"llama_lend/internal/modules/postgres"
	"llama_lend/internal/modules/pricesapi"
	"llama_lend/internal/modules/probe"
	telegram "llama_lend/internal/modules/telegram_bot"
	"llama_lend/pkg/logger"
	"llama_lend/pkg/tracing"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(cfg.Service.Name)
	tracing.SetServiceName(cfg.Service.Name)
	return logger.Init(cfg.Service.LogLevel)
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			newLogger,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module(),
		probe.Module(),
		postgres.Module(),
		chain.Module(),
		pricesapi.Module(),
		heads.Module(),
		notifier.Module(),
		lending.Module(),
		monitor.Module(),
		telegram.Module(),
	)
	app.Run()
}
