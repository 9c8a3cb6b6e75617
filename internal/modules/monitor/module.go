package monitor

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"llama_lend/internal/borrow"
	"llama_lend/internal/modules/config"
	heads "llama_lend/internal/modules/heads/service"
	"llama_lend/internal/modules/monitor/service"
	pricesapi "llama_lend/internal/modules/pricesapi/service"
	probe "llama_lend/internal/modules/probe/service"
	"llama_lend/internal/notify"
	"llama_lend/internal/query"
)

func NewMonitor(
	cfg *config.Config,
	svc *borrow.Service,
	client *query.Client,
	n notify.Notifier,
	stats *pricesapi.Client,
	state *probe.State,
	log *zap.Logger,
) *service.Monitor {
	return service.New(svc.User, client, n, cfg.WatchedPositions(),
		service.Config{
			Interval:    cfg.MonitorInterval,
			Cooldown:    cfg.AlertCooldown,
			Concurrency: cfg.BatchConcurrency,

			HeadDebounce: cfg.HeadDebounce,
		},
		service.WithStats(stats),
		service.WithProbe(state),
		service.WithLogger(log.Named("monitor")),
	)
}

// run запускает монитор в фоне на время жизни приложения.
func run(lc fx.Lifecycle, m *service.Monitor, hc *heads.Client, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var newHeads <-chan heads.Head
			if hc != nil {
				newHeads = hc.Stream(ctx)
			}
			go func() {
				defer close(done)
				m.Run(ctx, newHeads)
			}()
			log.Info("monitor: started")
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("monitor",
		fx.Provide(
			NewMonitor,
		),
		fx.Invoke(run),
	)
}
