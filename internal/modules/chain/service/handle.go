package service

import (
	"llama_lend/internal/market"
	"llama_lend/internal/models"
)

// Handle — рынок без подписи: чтения пользователя и котировки без плеча из контроллера.
// Плечо и vault отдаёт подписывающий SDK.
type Handle struct {
	meta models.Market
	user *Reader
	loan *Loan
}

var _ market.Handle = (*Handle)(nil)

func (h *Handle) Info() models.Market                      { return h.meta }
func (h *Handle) Loan() market.LoanAPI                     { return h.loan }
func (h *Handle) Leverage() market.LeverageAPI             { return nil }
func (h *Handle) RouteLeverage() market.RouteLeverageAPI   { return nil }
func (h *Handle) LegacyLeverage() market.LegacyLeverageAPI { return nil }
func (h *Handle) Vault() market.VaultAPI                   { return nil }
func (h *Handle) User() market.UserAPI                     { return h.user }

// NewRegistry собирает реестр из рынков конфига. wallet может быть пустым.
func NewRegistry(backend Backend, markets []models.Market, wallet string) (*market.StaticRegistry, error) {
	reg := market.NewStaticRegistry()
	for _, m := range markets {
		r, err := NewReader(backend, m)
		if err != nil {
			return nil, err
		}
		reg.Add(&Handle{meta: m, user: r, loan: NewLoan(r, wallet)})
	}
	return reg, nil
}
