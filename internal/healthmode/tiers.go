package healthmode

import "github.com/shopspring/decimal"

// Level — уровень риска по величине health.
type Level int

const (
	LevelHealthy Level = iota
	LevelCaution
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelCaution:
		return "caution"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	}
	return "healthy"
}

// Tier — строка таблицы: health строго меньше Below попадает в Level.
type Tier struct {
	Below   decimal.Decimal
	Level   Level
	Message string
}

// Tiers проверяются по порядку, первая подходящая строка выигрывает.
var Tiers = []Tier{
	{Below: decimal.NewFromInt(5), Level: LevelCritical, Message: "Health is critical, the position can be hard liquidated."},
	{Below: decimal.NewFromInt(15), Level: LevelWarning, Message: "Health is low, consider repaying or adding collateral."},
	{Below: decimal.NewFromInt(50), Level: LevelCaution, Message: "Health is moderate, keep an eye on the oracle price."},
}

var healthyTier = Tier{Level: LevelHealthy}

// TierFor возвращает строку таблицы для health.
func TierFor(health decimal.Decimal) Tier {
	return tierIn(Tiers, health)
}

func tierIn(tiers []Tier, health decimal.Decimal) Tier {
	for _, t := range tiers {
		if health.LessThan(t.Below) {
			return t
		}
	}
	return healthyTier
}

// Worse — стало ли хуже: по состоянию, а при равном — по уровню.
func Worse(prevState State, prevLevel Level, nextState State, nextLevel Level) bool {
	if nextState != prevState {
		return nextState > prevState
	}
	return nextLevel > prevLevel
}
