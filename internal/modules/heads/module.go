package heads

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"llama_lend/internal/modules/config"
	"llama_lend/internal/modules/heads/service"
	probe "llama_lend/internal/modules/probe/service"
)

// NewClient — подписка на новые блоки. Без ws_url монитор работает только по таймеру.
func NewClient(cfg *config.Config, log *zap.Logger, state *probe.State) *service.Client {
	if cfg.Chain.WSURL == "" {
		log.Warn("heads: no ws_url, new heads are not streamed")
		return nil
	}
	return service.NewClient(cfg.Chain.WSURL, log.Named("heads"), service.WithStatus(state))
}

func Module() fx.Option {
	return fx.Module("heads",
		fx.Provide(
			NewClient,
		),
	)
}
