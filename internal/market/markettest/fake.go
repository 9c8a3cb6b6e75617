// Package markettest — записывающие фейки SDK рынка для тестов.
package markettest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"llama_lend/internal/market"
	"llama_lend/internal/models"
)

// Calls — журнал вызовов SDK в порядке поступления.
type Calls struct {
	mu   sync.Mutex
	list []string
}

func (c *Calls) add(name string, args ...any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	c.mu.Lock()
	c.list = append(c.list, name+"("+strings.Join(parts, ",")+")")
	c.mu.Unlock()
}

func (c *Calls) List() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.list...)
}

// Count — сколько раз вызывали метод name.
func (c *Calls) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.list {
		if strings.HasPrefix(s, name+"(") {
			n++
		}
	}
	return n
}

// Market — Handle с подставляемыми поверхностями.
type Market struct {
	Meta      models.Market
	LoanAPI   market.LoanAPI
	Lev       market.LeverageAPI
	Route     market.RouteLeverageAPI
	Legacy    market.LegacyLeverageAPI
	VaultAPI  market.VaultAPI
	UserReads market.UserAPI
}

func (m *Market) Info() models.Market                      { return m.Meta }
func (m *Market) Loan() market.LoanAPI                     { return m.LoanAPI }
func (m *Market) Leverage() market.LeverageAPI             { return m.Lev }
func (m *Market) RouteLeverage() market.RouteLeverageAPI   { return m.Route }
func (m *Market) LegacyLeverage() market.LegacyLeverageAPI { return m.Legacy }
func (m *Market) Vault() market.VaultAPI                   { return m.VaultAPI }
func (m *Market) User() market.UserAPI                     { return m.UserReads }

// Approval — общее состояние allowance для фейков.
type Approval struct {
	mu       sync.Mutex
	approved bool
	// StaysUnapproved: approve проходит, но allowance не меняется
	StaysUnapproved bool
	Hashes          []string
	Err             error
}

func (a *Approval) Set(v bool) {
	a.mu.Lock()
	a.approved = v
	a.mu.Unlock()
}

func (a *Approval) Get() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.approved
}

func (a *Approval) approve() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return nil, a.Err
	}
	if !a.StaysUnapproved {
		a.approved = true
	}
	if len(a.Hashes) == 0 {
		return []string{"0xapprove"}, nil
	}
	return a.Hashes, nil
}

// Quotes — ответы чтений.
type Quotes struct {
	MaxDebt     decimal.Decimal
	Expected    market.Expected
	PriceImpact decimal.Decimal
	Bands       models.Bands
	Health      decimal.Decimal
	Prices      models.Prices
	Gas         uint64
	ApproveGas  uint64
	// Err возвращается всеми чтениями
	Err error
}

// Exec — результат записи.
type Exec struct {
	Hash string
	Err  error
}

func (e Exec) result() (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	if e.Hash == "" {
		return "0xaction", nil
	}
	return e.Hash, nil
}
