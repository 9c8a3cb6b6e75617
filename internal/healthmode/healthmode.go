// Package healthmode классифицирует близость позиции к ликвидации.
// Без I/O и без общего состояния: вызывается заново на каждый набор входных чисел.
package healthmode

import (
	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
)

// State — дискретное состояние позиции.
type State int

const (
	Healthy State = iota
	CloseToLiquidation
	SoftLiquidation
	HardLiquidation
)

func (s State) String() string {
	switch s {
	case CloseToLiquidation:
		return "close_to_liquidation"
	case SoftLiquidation:
		return "soft_liquidation"
	case HardLiquidation:
		return "hard_liquidation"
	}
	return "healthy"
}

// Label и Tooltip — подписи для статуса позиции.
func (s State) Label() string {
	switch s {
	case CloseToLiquidation:
		return "Close to liquidation"
	case SoftLiquidation:
		return "Soft liquidation"
	case HardLiquidation:
		return "Hard liquidatable"
	}
	return "Healthy"
}

func (s State) Tooltip() string {
	switch s {
	case SoftLiquidation:
		return "Soft liquidation is the initial process of collateral being converted into stablecoin, you may experience some degree of loss."
	case HardLiquidation:
		return "Hard liquidation is like a usual liquidation, which can happen only if you experience significant losses in soft liquidation so that you get below 0 health."
	}
	return ""
}

// CloseBandDistance — позиция близка к ликвидации, если её нижний бэнд
// не дальше этого числа бэндов от бэнда цены оракула.
const CloseBandDistance = 2

// SoftLiquidationDust — остаток stablecoin в бэндах меньше этого считаем пылью.
var SoftLiquidationDust = decimal.RequireFromString("0.1")

// Input — сырые данные позиции.
type Input struct {
	// Health — health(full=true), HealthNotFull — health(full=false), в процентах
	Health        decimal.Decimal
	HealthNotFull decimal.Decimal
	Bands         models.Bands
	// LiquidationBand задан, если позиция уже в ликвидации
	LiquidationBand *int
	OraclePriceBand *int
	// Stablecoin — часть позиции в borrowed-токене (user_state[1])
	Stablecoin decimal.Decimal
}

// IsCloseToLiquidation — нижний бэнд (по возрастанию) в пределах CloseBandDistance от бэнда оракула.
// Без бэнда оракула ответ всегда false, в том числе для позиции с liquidationBand.
func IsCloseToLiquidation(firstBand int, _ *int, oraclePriceBand *int) bool {
	if oraclePriceBand == nil {
		return false
	}
	return firstBand <= *oraclePriceBand+CloseBandDistance
}

// Classify — hard, если health(full=false) < 0; soft, если в бэндах есть stablecoin
// сверх пыли; close — по расстоянию до бэнда оракула.
func Classify(in Input) State {
	switch {
	case in.HealthNotFull.IsNegative():
		return HardLiquidation
	case in.Stablecoin.GreaterThan(SoftLiquidationDust):
		return SoftLiquidation
	case IsCloseToLiquidation(in.Bands.Ascending()[0], in.LiquidationBand, in.OraclePriceBand):
		return CloseToLiquidation
	}
	return Healthy
}

// FromDetails собирает Input из состояния займа.
func FromDetails(d models.LoanDetails) Input {
	return Input{
		Health:          d.Health,
		HealthNotFull:   d.HealthNotFull,
		Bands:           d.Bands,
		LiquidationBand: d.LiquidationBand,
		OraclePriceBand: d.OraclePriceBand,
		Stablecoin:      d.State.Stablecoin,
	}
}

// DisplayHealth — какое значение health показывать: not-full, если оно отрицательное.
func DisplayHealth(full, notFull decimal.Decimal) decimal.Decimal {
	if notFull.IsNegative() {
		return notFull
	}
	return full
}
