package lending

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"llama_lend/internal/borrow"
	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/modules/config"
	"llama_lend/internal/mutation"
	"llama_lend/internal/notify"
	"llama_lend/internal/query"
	"llama_lend/internal/validation"
	"llama_lend/internal/wallet"
	"llama_lend/pkg/tracing"
)

// Mutations — транзакции по видам операций.
type Mutations map[models.MutationKind]*mutation.Mutation

func NewTracer(lc fx.Lifecycle, cfg *config.Config) (opentracing.Tracer, error) {
	tracer, closer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return tracer, nil
}

func NewQueryClient(lc fx.Lifecycle, reg prometheus.Registerer, log *zap.Logger) *query.Client {
	c := query.NewClient(
		query.WithLogger(log.Named("query")),
		query.WithMetrics(query.NewMetrics(reg)),
	)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			c.Close()
			return nil
		},
	})
	return c
}

func serviceConfig(cfg *config.Config) borrow.Config {
	return borrow.Config{
		Bounds:         validation.RangeBounds{Min: cfg.RangeMin, Max: cfg.RangeMax},
		QuoteStaleTime: cfg.QuoteStaleTime,
		UserStaleTime:  cfg.UserStaleTime,
		BatchFirst:     cfg.BatchConcurrency,
		BatchSecond:    cfg.BatchRetryConcurrency,
	}
}

func NewService(
	cfg *config.Config,
	c *query.Client,
	registry market.Registry,
	w wallet.Provider,
	rates borrow.RateSource,
	log *zap.Logger,
) *borrow.Service {
	return borrow.New(c, registry, w, nil,
		borrow.WithRates(rates),
		borrow.WithConfig(serviceConfig(cfg)),
		borrow.WithLogger(log.Named("borrow")),
	)
}

func NewOrchestrator(
	registry market.Registry,
	w wallet.Provider,
	c *query.Client,
	n notify.Notifier,
	j mutation.Journal,
	tracer opentracing.Tracer,
	reg prometheus.Registerer,
	log *zap.Logger,
) *mutation.Orchestrator {
	return mutation.New(registry, w, c, n,
		mutation.WithJournal(j),
		mutation.WithTracer(tracer),
		mutation.WithMetrics(mutation.NewMetrics(reg)),
		mutation.WithLogger(log.Named("mutation")),
	)
}

func NewMutations(svc *borrow.Service, o *mutation.Orchestrator) Mutations {
	return svc.Mutations(o)
}

func Module() fx.Option {
	return fx.Module("lending",
		fx.Provide(
			NewTracer,
			NewQueryClient,
			NewService,
			NewOrchestrator,
			NewMutations,
		),
		fx.Invoke(
			func(m Mutations, log *zap.Logger) {
				log.Info("lending: mutations registered", zap.Int("count", len(m)))
			},
		),
	)
}
