package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llama_lend/internal/models"
)

const sample = `
telegram:
  chat_id: 42
chain:
  id: 1
  rpc_url: http://localhost:8545
markets:
  - id: wsteth
    kind: mint
    controller: "0x100dAa78fC509Db39Ef7D04DE0c1ABD299f4C6CE"
    amm: "0x37417B2238AA52D0DD2D6252d989E728e8f706e4"
    collateral: {symbol: wstETH, address: "0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0", decimals: 18}
    borrowed: {symbol: crvUSD, address: "0xf939E0A03FB07F59A73314E73794Be0E57ac1B4E", decimals: 18}
    has_route_leverage: true
positions:
  - market_id: wsteth
    user: "0x00000000000000000000000000000000000000aa"
quote_stale_time: 45s
`

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(rpcURLENV, "http://node:8545")

	cfg, err := Load(write(t, sample))
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Telegram.ChatID)
	assert.Equal(t, "http://node:8545", cfg.Chain.RPCURL)
	assert.Equal(t, 45*time.Second, cfg.QuoteStaleTime)
	assert.Equal(t, 15*time.Second, cfg.UserStaleTime)
	assert.Equal(t, 10, cfg.DefaultRange)
	assert.Equal(t, 0.1, cfg.DefaultSlippage)

	m, ok := cfg.Market("wsteth")
	require.True(t, ok)
	assert.Equal(t, models.MarketMint, m.Kind)
	assert.Equal(t, int64(1), m.ChainID)
	assert.Equal(t, int32(18), m.Collateral.Decimals)

	ps := cfg.WatchedPositions()
	require.Len(t, ps, 1)
	assert.Equal(t, "wsteth", ps[0].Market.ID)
}

func TestLoadRejectsUnknownMarket(t *testing.T) {
	_, err := Load(write(t, "positions:\n  - market_id: nope\n    user: x\n"))
	assert.Error(t, err)
}

func TestLoadRejectsBadRange(t *testing.T) {
	_, err := Load(write(t, "default_range: 60\n"))
	assert.Error(t, err)
}
