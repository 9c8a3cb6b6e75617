package pricesapi

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"llama_lend/internal/borrow"
	"llama_lend/internal/models"
	"llama_lend/internal/modules/config"
	"llama_lend/internal/modules/pricesapi/service"
)

var _ borrow.RateSource = (*service.Client)(nil)

func NewClient(cfg *config.Config, log *zap.Logger) *service.Client {
	return service.NewClient(cfg.PricesAPI.URL, cfg.PricesAPI.Timeout, log.Named("pricesapi"))
}

// checkMarkets предупреждает о lend-рынках конфига, которых нет в индексаторе.
func checkMarkets(lc fx.Lifecycle, c *service.Client, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				known, err := c.Markets(context.WithoutCancel(ctx), cfg.Chain.ID)
				if err != nil {
					log.Warn("pricesapi: markets", zap.Error(err))
					return
				}
				seen := make(map[string]struct{}, len(known))
				for _, m := range known {
					seen[strings.ToLower(m.Controller)] = struct{}{}
				}
				for _, m := range cfg.Markets {
					if m.Kind != models.MarketLend {
						continue
					}
					if _, ok := seen[strings.ToLower(m.Controller)]; !ok {
						log.Warn("pricesapi: market is not indexed", zap.String("market", m.ID), zap.String("controller", m.Controller))
					}
				}
			}()
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("pricesapi",
		fx.Provide(
			NewClient,
			func(c *service.Client) borrow.RateSource { return c },
		),
		fx.Invoke(checkMarkets),
	)
}
