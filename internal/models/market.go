package models

// MarketKind — тип рынка: mint (crvUSD) или lend (одна пара, vault).
type MarketKind string

const (
	MarketMint MarketKind = "mint"
	MarketLend MarketKind = "lend"
)

// Token описывает токен залога или долга.
type Token struct {
	Symbol   string `yaml:"symbol" json:"symbol"`
	Address  string `yaml:"address" json:"address"`
	Decimals int32  `yaml:"decimals" json:"decimals"`
}

// Market — неизменяемые данные рынка на время сессии.
type Market struct {
	ID      string     `yaml:"id" json:"id"`
	ChainID int64      `yaml:"chain_id" json:"chain_id"`
	Kind    MarketKind `yaml:"kind" json:"kind"`

	Controller string `yaml:"controller" json:"controller"`
	AMM        string `yaml:"amm" json:"amm"`
	Vault      string `yaml:"vault,omitempty" json:"vault,omitempty"`
	// адрес старого zap-контракта, пустой или нулевой если его нет
	LeverageZap string `yaml:"leverage_zap,omitempty" json:"leverage_zap,omitempty"`

	Collateral Token `yaml:"collateral" json:"collateral"`
	Borrowed   Token `yaml:"borrowed" json:"borrowed"`

	HasNativeLeverage bool `yaml:"has_native_leverage" json:"has_native_leverage"`
	HasZapLeverage    bool `yaml:"has_zap_leverage" json:"has_zap_leverage"`
	HasRouteLeverage  bool `yaml:"has_route_leverage" json:"has_route_leverage"`

	// допустимый диапазон N (количество бэндов)
	MinBands int `yaml:"min_bands" json:"min_bands"`
	MaxBands int `yaml:"max_bands" json:"max_bands"`
}

const zeroAddress = "0x0000000000000000000000000000000000000000"

// HasLegacyZap — есть ли у рынка ненулевой адрес старого zap.
func (m Market) HasLegacyZap() bool {
	return m.LeverageZap != "" && m.LeverageZap != zeroAddress
}

func (m Market) Scope() Scope {
	return Scope{ChainID: m.ChainID, MarketID: m.ID}
}
