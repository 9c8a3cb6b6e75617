// Package params приводит значения формы к каноничным RequestParams.
package params

import (
	"strings"

	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
	"llama_lend/internal/validation"
)

// Form — значения формы, nil означает «не заполнено».
type Form struct {
	UserCollateral  *string
	UserBorrowed    *string
	Debt            *string
	StateCollateral *string
	Range           *int
	Slippage        *string
	LeverageEnabled *bool
	RouteID         *string
	MaxDebt         *string
	MaxCollateral   *string
}

// Defaults — значения по умолчанию для незаполненных полей.
type Defaults struct {
	Range    int
	Slippage decimal.Decimal
}

var DefaultDefaults = Defaults{
	Range:    10,
	Slippage: decimal.RequireFromString("0.1"),
}

// Target — кто и на каком рынке.
type Target struct {
	ChainID     int64
	MarketID    string
	UserAddress string
}

// Normalize заполняет пропуски дефолтами и парсит суммы в decimal.
// Непарсящаяся сумма — ошибка валидации по этому полю.
func Normalize(t Target, f Form, def Defaults) (models.RequestParams, error) {
	s := validation.New()
	p := models.RequestParams{
		ChainID:     t.ChainID,
		MarketID:    t.MarketID,
		UserAddress: t.UserAddress,
		Range:       def.Range,
		Slippage:    def.Slippage,
	}

	p.UserCollateral = amount(s, models.FieldUserCollateral, f.UserCollateral)
	p.UserBorrowed = amount(s, models.FieldUserBorrowed, f.UserBorrowed)
	p.Debt = amount(s, models.FieldDebt, f.Debt)
	p.StateCollateral = amount(s, models.FieldStateCollateral, f.StateCollateral)
	if f.Slippage != nil && strings.TrimSpace(*f.Slippage) != "" {
		p.Slippage = amount(s, models.FieldSlippage, f.Slippage)
	}
	if f.Range != nil {
		p.Range = *f.Range
	}
	if f.LeverageEnabled != nil {
		p.LeverageEnabled = *f.LeverageEnabled
	}
	if f.RouteID != nil {
		p.RouteID = strings.TrimSpace(*f.RouteID)
	}
	p.MaxDebt = optionalAmount(s, models.FieldMaxDebt, f.MaxDebt)
	p.MaxCollateral = optionalAmount(s, models.FieldMaxCollateral, f.MaxCollateral)

	return p, s.Err()
}

func amount(s *validation.Suite, field models.Field, v *string) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	raw := strings.TrimSpace(*v)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	s.Test(string(field), err == nil, "amount is not a number")
	return d
}

func optionalAmount(s *validation.Suite, field models.Field, v *string) *decimal.Decimal {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	d := amount(s, field, v)
	return &d
}
