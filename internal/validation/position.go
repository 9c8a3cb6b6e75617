package validation

import (
	"llama_lend/internal/models"
)

// MaxRecv — проверки для расчёта максимального займа: долг и лимиты сюда не входят.
func MaxRecv(p models.RequestParams, bounds RangeBounds) *Suite {
	s := New()
	Market(s, p)
	NonNegative(s, string(models.FieldUserCollateral), p.UserCollateral)
	NonNegative(s, string(models.FieldUserBorrowed), p.UserBorrowed)
	s.Testf(string(models.FieldRange), p.Range >= bounds.Min && p.Range <= bounds.Max,
		"range must be between %d and %d", bounds.Min, bounds.Max)
	return s
}

// Repay — погашение: MaxDebt здесь означает текущий долг позиции.
func Repay(p models.RequestParams) *Suite {
	s := New()
	Market(s, p)
	NonNegative(s, string(models.FieldStateCollateral), p.StateCollateral)
	NonNegative(s, string(models.FieldUserCollateral), p.UserCollateral)
	NonNegative(s, string(models.FieldUserBorrowed), p.UserBorrowed)
	NonNegative(s, string(models.FieldDebt), p.Debt)
	Slippage(s, p.Slippage)
	if p.MaxDebt != nil {
		s.Test(string(models.FieldDebt), p.Debt.LessThanOrEqual(*p.MaxDebt), "amount exceeds outstanding debt")
	}
	if p.MaxCollateral != nil {
		s.Test(string(models.FieldStateCollateral), p.StateCollateral.LessThanOrEqual(*p.MaxCollateral),
			"collateral exceeds position collateral")
	}
	return s
}

// Collateral — добавление и вывод залога. MaxCollateral — баланс кошелька
// для добавления или максимально выводимый залог для вывода.
func Collateral(p models.RequestParams) *Suite {
	s := New()
	Market(s, p)
	Positive(s, string(models.FieldUserCollateral), p.UserCollateral)
	if p.MaxCollateral != nil {
		s.Test(string(models.FieldUserCollateral), p.UserCollateral.LessThanOrEqual(*p.MaxCollateral),
			"collateral exceeds available amount")
	}
	return s
}

// Stake — депозит borrowed-токена в vault.
func Stake(p models.RequestParams) *Suite {
	s := New()
	Market(s, p)
	Positive(s, string(models.FieldUserBorrowed), p.UserBorrowed)
	return s
}
