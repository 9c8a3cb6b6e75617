package market

import (
	"llama_lend/internal/errs"
	"llama_lend/internal/models"
)

// Variant — какой кодовый путь контракта используется.
type Variant int

const (
	VariantUnleveraged Variant = iota + 1
	VariantLegacyLeverage
	VariantNativeLeverage
	VariantRouteLeverage
)

func (v Variant) String() string {
	switch v {
	case VariantUnleveraged:
		return "unleveraged"
	case VariantLegacyLeverage:
		return "legacy-leverage"
	case VariantNativeLeverage:
		return "native-leverage"
	case VariantRouteLeverage:
		return "route-leverage"
	}
	return "unknown"
}

// Implementation — закрытое множество вариантов. Новый вариант обязан реализовать Flow
// для всех видов операций, иначе не скомпилируется.
type Implementation interface {
	Variant() Variant
	Flow(kind models.MutationKind) (Flow, error)
	sealed()
}

type Unleveraged struct{ API LoanAPI }

type LegacyLeverage struct{ API LegacyLeverageAPI }

type NativeLeverage struct{ API LeverageAPI }

type RouteLeverage struct{ API RouteLeverageAPI }

func (Unleveraged) Variant() Variant    { return VariantUnleveraged }
func (LegacyLeverage) Variant() Variant { return VariantLegacyLeverage }
func (NativeLeverage) Variant() Variant { return VariantNativeLeverage }
func (RouteLeverage) Variant() Variant  { return VariantRouteLeverage }

func (Unleveraged) sealed()    {}
func (LegacyLeverage) sealed() {}
func (NativeLeverage) sealed() {}
func (RouteLeverage) sealed()  {}

// Resolve выбирает вариант по рынку и флагу плеча. Чистая функция: без I/O и кэша.
// Если ни один вариант не подходит — ошибка конфигурации, молча откатываться нельзя.
func Resolve(h Handle, leverageEnabled bool) (Implementation, error) {
	if h == nil {
		return nil, errs.Configuration("Resolve", "market handle is nil")
	}
	info := h.Info()

	if !leverageEnabled {
		if h.Loan() == nil {
			return nil, errs.Configuration("Resolve", "market %s has no loan surface", info.ID)
		}
		return Unleveraged{API: h.Loan()}, nil
	}

	switch info.Kind {
	case models.MarketLend:
		if info.HasNativeLeverage && h.Leverage() != nil {
			return NativeLeverage{API: h.Leverage()}, nil
		}
	case models.MarketMint:
		if rl := h.RouteLeverage(); info.HasRouteLeverage && rl != nil && rl.HasLeverage() {
			return RouteLeverage{API: rl}, nil
		}
		if info.HasLegacyZap() && h.LegacyLeverage() != nil {
			return LegacyLeverage{API: h.LegacyLeverage()}, nil
		}
	}
	return nil, errs.Configuration("Resolve", "leverage is not supported by %s market %s", info.Kind, info.ID)
}
