package postgres

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"llama_lend/internal/modules/config"
	"llama_lend/internal/modules/postgres/journal"
	"llama_lend/internal/mutation"
	"llama_lend/pkg/db"
)

// Module — журнал мутаций в Postgres. Без DSN журнал остаётся в памяти.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			NewJournal,
			func(s store) mutation.Journal { return s },
			func(s store) mutation.History { return s },
		),
	)
}

type store interface {
	mutation.Journal
	mutation.History
}

func NewJournal(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, log *zap.Logger) (store, error) {
	if cfg.DB == "" {
		log.Warn("postgres: no dsn, mutation journal kept in memory")
		return mutation.NewMemoryJournal(), nil
	}
	poolMaster, err := db.NewPool(ctx, db.PoolConfig{
		DSN: cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create poolMaster: %w", err)
	}

	err = poolMaster.Ping(ctx)
	if err != nil {
		poolMaster.Close()
		return nil, err
	}

	tm := db.NewPgTxManager(poolMaster)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			tm.Close()
			return nil
		},
	})
	return journal.New(tm), nil
}
