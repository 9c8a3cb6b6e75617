package validation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"llama_lend/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
)

// RangeBounds — допустимые значения N, если рынок их не задал.
type RangeBounds struct {
	Min int
	Max int
}

var DefaultRangeBounds = RangeBounds{Min: 4, Max: 50}

// Borrow — набор проверок для параметров займа.
// Используется и в запросах графа, и в транзакциях.
func Borrow(p models.RequestParams, bounds RangeBounds) *Suite {
	s := New()
	Market(s, p)
	NonNegative(s, string(models.FieldUserCollateral), p.UserCollateral)
	NonNegative(s, string(models.FieldUserBorrowed), p.UserBorrowed)
	NonNegative(s, string(models.FieldDebt), p.Debt)
	s.Testf(string(models.FieldRange), p.Range >= bounds.Min && p.Range <= bounds.Max,
		"range must be between %d and %d", bounds.Min, bounds.Max)
	Slippage(s, p.Slippage)
	if p.MaxDebt != nil {
		s.Test(string(models.FieldDebt), p.Debt.LessThanOrEqual(*p.MaxDebt), "debt exceeds max borrowable")
	}
	if p.MaxCollateral != nil {
		s.Test(string(models.FieldUserCollateral), p.UserCollateral.LessThanOrEqual(*p.MaxCollateral),
			"collateral exceeds available balance")
	}
	return s
}

// Market — сеть и рынок указаны.
func Market(s *Suite, p models.RequestParams) *Suite {
	s.Test(string(models.FieldChain), p.ChainID > 0, "chain id is required")
	s.Test(string(models.FieldMarket), p.MarketID != "", "market id is required")
	return s
}

// User — адрес пользователя корректный.
func User(s *Suite, address string) *Suite {
	s.Test(string(models.FieldUser), common.IsHexAddress(address), "wallet address is invalid")
	return s
}

func NonNegative(s *Suite, field string, v decimal.Decimal) *Suite {
	return s.Test(field, !v.IsNegative(), "amount must not be negative")
}

func Positive(s *Suite, field string, v decimal.Decimal) *Suite {
	return s.Test(field, v.IsPositive(), "amount must be greater than zero")
}

func Slippage(s *Suite, v decimal.Decimal) *Suite {
	return s.Test(string(models.FieldSlippage), !v.IsNegative() && v.LessThanOrEqual(hundred),
		"slippage must be between 0 and 100")
}
