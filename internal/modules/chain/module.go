package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/fx"

	"llama_lend/internal/market"
	"llama_lend/internal/modules/chain/service"
	"llama_lend/internal/modules/config"
	"llama_lend/internal/wallet"
)

func NewClient(lc fx.Lifecycle, ctx context.Context, cfg *config.Config) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rpc: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

// Module — RPC-клиент, реестр рынков и кошелёк.
func Module() fx.Option {
	return fx.Module("chain",
		fx.Provide(
			NewClient,
			func(c *ethclient.Client) service.Backend { return c },
			func(b service.Backend, cfg *config.Config) (market.Registry, error) {
				return service.NewRegistry(b, cfg.Markets, cfg.Chain.Wallet)
			},
			func(b service.Backend, cfg *config.Config) wallet.Provider {
				return service.NewProvider(b, cfg.Chain.Wallet, cfg.Chain.ReceiptPoll)
			},
		),
	)
}
