package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bands — пара номеров бэндов [n1, n2] в том порядке, как вернул контракт.
type Bands [2]int

// Ascending возвращает бэнды по возрастанию.
func (b Bands) Ascending() Bands {
	if b[0] > b[1] {
		return Bands{b[1], b[0]}
	}
	return b
}

// Prices — пара цен границ диапазона.
type Prices [2]decimal.Decimal

// UserState — user_state контроллера.
type UserState struct {
	Collateral decimal.Decimal
	Stablecoin decimal.Decimal
	Debt       decimal.Decimal
	N          int
}

// LoanDetails — состояние займа пользователя на конкретном рынке.
type LoanDetails struct {
	Health          decimal.Decimal
	HealthNotFull   decimal.Decimal
	Bands           Bands
	State           UserState
	OraclePriceBand *int
	LiquidationBand *int
	UpdatedAt       time.Time
}

// WatchedPosition — позиция из конфига, за которой следит монитор.
type WatchedPosition struct {
	Market Market `yaml:"market"`
	User   string `yaml:"user"`
}

func (w WatchedPosition) Scope() Scope {
	return Scope{ChainID: w.Market.ChainID, MarketID: w.Market.ID, UserAddress: w.User}
}
