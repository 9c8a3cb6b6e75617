package models

import (
	"fmt"
	"strings"
)

// Scope — (сеть, рынок, пользователь), по которому инвалидируется кэш после транзакции.
// Пустой UserAddress означает данные уровня рынка.
type Scope struct {
	ChainID     int64
	MarketID    string
	UserAddress string
}

// Scoped реализуют все параметры запросов.
type Scoped interface {
	Scope() Scope
}

func (s Scope) Scope() Scope { return s }

func (s Scope) String() string {
	if s.UserAddress == "" {
		return fmt.Sprintf("%d/%s", s.ChainID, s.MarketID)
	}
	return fmt.Sprintf("%d/%s/%s", s.ChainID, s.MarketID, strings.ToLower(s.UserAddress))
}

// Covers — попадает ли other под инвалидацию s.
// Записи уровня рынка (без пользователя) тоже попадают.
func (s Scope) Covers(other Scope) bool {
	if s.ChainID != other.ChainID || s.MarketID != other.MarketID {
		return false
	}
	if other.UserAddress == "" || s.UserAddress == "" {
		return true
	}
	return strings.EqualFold(s.UserAddress, other.UserAddress)
}
