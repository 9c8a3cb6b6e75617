package config

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
		),
		fx.Invoke(logLoaded),
	)
}

// logLoaded — что подхватилось из конфига, без секретов.
func logLoaded(c *Config, log *zap.Logger) {
	log.Info("config loaded",
		zap.Int64("chain", c.Chain.ID),
		zap.Int("markets", len(c.Markets)),
		zap.Int("positions", len(c.Positions)),
		zap.Bool("wallet", c.Chain.Wallet != ""),
		zap.Bool("journal", c.DB != ""),
		zap.Bool("telegram", c.Telegram.Token != ""),
	)
}
