package service

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp принимает unix-секунды числом или строкой и ISO-время без зоны (UTC).
type Timestamp struct {
	time.Time
}

var isoLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999999"}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(b, `"`))
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t.Time = time.Unix(sec, 0).UTC()
		return nil
	}
	for _, layout := range isoLayouts {
		if v, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("pricesapi: bad timestamp %q", raw)
}

var hundred = decimal.NewFromInt(100)

type TokenRef struct {
	Symbol        string           `json:"symbol"`
	Address       string           `json:"address"`
	RebasingYield *decimal.Decimal `json:"rebasing_yield"`
}

// Market — рынок из /v1/lending/markets/{chain}.
type Market struct {
	Name        string          `json:"name"`
	Controller  string          `json:"controller"`
	Vault       string          `json:"vault"`
	LLAMMA      string          `json:"llamma"`
	Rate        decimal.Decimal `json:"rate"`
	BorrowAPY   decimal.Decimal `json:"borrow_apy"`
	LendAPY     decimal.Decimal `json:"lend_apy"`
	NLoans      int             `json:"n_loans"`
	PriceOracle decimal.Decimal `json:"price_oracle"`
	AMMPrice    decimal.Decimal `json:"amm_price"`
	TotalDebt   decimal.Decimal `json:"total_debt"`
	TotalAssets decimal.Decimal `json:"total_assets"`
	MinBand     int             `json:"min_band"`
	MaxBand     int             `json:"max_band"`
	Leverage    decimal.Decimal `json:"leverage"`
	MaxLTV      decimal.Decimal `json:"max_ltv"`
	CreatedAt   Timestamp       `json:"created_at"`

	CollateralToken TokenRef `json:"collateral_token"`
	BorrowedToken   TokenRef `json:"borrowed_token"`
}

// Snapshot — снимок рынка. APY в ответе в процентах, здесь доли.
type Snapshot struct {
	Rate              decimal.Decimal `json:"rate"`
	BorrowAPY         decimal.Decimal `json:"borrow_apy"`
	LendAPY           decimal.Decimal `json:"lend_apy"`
	NLoans            int             `json:"n_loans"`
	PriceOracle       decimal.Decimal `json:"price_oracle"`
	AMMPrice          decimal.Decimal `json:"amm_price"`
	TotalDebt         decimal.Decimal `json:"total_debt"`
	MinBand           decimal.Decimal `json:"min_band"`
	MaxBand           decimal.Decimal `json:"max_band"`
	CollateralBalance decimal.Decimal `json:"collateral_balance"`
	BorrowedBalance   decimal.Decimal `json:"borrowed_balance"`
	Timestamp         Timestamp       `json:"timestamp"`
}

// UserStats — позиция пользователя из /v1/lending/users/{chain}/{user}/{controller}/stats.
type UserStats struct {
	Health          decimal.Decimal `json:"health"`
	HealthFull      decimal.Decimal `json:"health_full"`
	N1              int             `json:"n1"`
	N2              int             `json:"n2"`
	N               int             `json:"n"`
	Debt            decimal.Decimal `json:"debt"`
	Collateral      decimal.Decimal `json:"collateral"`
	Borrowed        decimal.Decimal `json:"borrowed"`
	SoftLiquidation bool            `json:"soft_liquidation"`
	TotalDeposited  decimal.Decimal `json:"total_deposited"`
	Loss            decimal.Decimal `json:"loss"`
	LossPct         decimal.Decimal `json:"loss_pct"`
	OraclePrice     decimal.Decimal `json:"oracle_price"`
	BlockNumber     uint64          `json:"block_number"`
	Timestamp       Timestamp       `json:"timestamp"`
}

type usdPrice struct {
	Address     string    `json:"address"`
	USDPrice    float64   `json:"usd_price"`
	LastUpdated Timestamp `json:"last_updated"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}
