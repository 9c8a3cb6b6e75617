package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RequestParams — каноничное представление одного намерения пользователя.
// Все суммы в decimal, никаких float.
type RequestParams struct {
	ChainID     int64
	MarketID    string
	UserAddress string

	UserCollateral decimal.Decimal
	UserBorrowed   decimal.Decimal
	Debt           decimal.Decimal
	// залог позиции, который продаётся при repay с плечом
	StateCollateral decimal.Decimal
	Range           int
	Slippage        decimal.Decimal

	LeverageEnabled bool
	RouteID         string

	MaxDebt       *decimal.Decimal
	MaxCollateral *decimal.Decimal
}

func (p RequestParams) Scope() Scope {
	return Scope{ChainID: p.ChainID, MarketID: p.MarketID, UserAddress: p.UserAddress}
}

// Field — имя поля, участвующего в ключе запроса.
type Field string

const (
	FieldChain           Field = "chainId"
	FieldMarket          Field = "marketId"
	FieldUser            Field = "userAddress"
	FieldUserCollateral  Field = "userCollateral"
	FieldUserBorrowed    Field = "userBorrowed"
	FieldDebt            Field = "debt"
	FieldStateCollateral Field = "stateCollateral"
	FieldRange           Field = "range"
	FieldSlippage        Field = "slippage"
	FieldLeverage        Field = "leverageEnabled"
	FieldRoute           Field = "routeId"
	FieldMaxDebt         Field = "maxDebt"
	FieldMaxCollateral   Field = "maxCollateral"
)

// KeyOf строит стабильный ключ только из перечисленных полей.
// Порядок полей задаёт вызывающий, суммы приводятся к каноничной строке decimal.
func (p RequestParams) KeyOf(fields ...Field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(string(f))
		b.WriteByte('=')
		b.WriteString(p.value(f))
	}
	return b.String()
}

func (p RequestParams) value(f Field) string {
	switch f {
	case FieldChain:
		return fmt.Sprint(p.ChainID)
	case FieldMarket:
		return p.MarketID
	case FieldUser:
		return strings.ToLower(p.UserAddress)
	case FieldUserCollateral:
		return p.UserCollateral.String()
	case FieldUserBorrowed:
		return p.UserBorrowed.String()
	case FieldDebt:
		return p.Debt.String()
	case FieldStateCollateral:
		return p.StateCollateral.String()
	case FieldRange:
		return fmt.Sprint(p.Range)
	case FieldSlippage:
		return p.Slippage.String()
	case FieldLeverage:
		return fmt.Sprint(p.LeverageEnabled)
	case FieldRoute:
		return p.RouteID
	case FieldMaxDebt:
		return optional(p.MaxDebt)
	case FieldMaxCollateral:
		return optional(p.MaxCollateral)
	}
	panic("models: unknown key field " + string(f))
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
