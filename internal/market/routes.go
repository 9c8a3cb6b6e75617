package market

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"llama_lend/internal/errs"
)

// Route — выбранный маршрут свопа внешнего агрегатора.
type Route struct {
	ID          string
	ChainID     int64
	TokenIn     string
	TokenOut    string
	AmountIn    decimal.Decimal
	AmountOut   decimal.Decimal
	PriceImpact decimal.Decimal
	Router      string
	QuotedAt    time.Time
}

// RouteQuote — запрос котировки.
type RouteQuote struct {
	ChainID  int64
	TokenIn  string
	TokenOut string
	AmountIn decimal.Decimal
	Slippage decimal.Decimal
}

// ErrNoRoute — агрегатор не нашёл ни одного маршрута.
var ErrNoRoute = stderrors.New("market: no swap route found")

// RouteQuoter — внешний агрегатор (Odos и т.п.).
type RouteQuoter interface {
	Quote(ctx context.Context, q RouteQuote) ([]Route, error)
}

// RouteStore — write-through кэш маршрутов по id: котировка кладёт, запись читает.
type RouteStore struct {
	mu     sync.RWMutex
	routes map[string]Route
}

func NewRouteStore() *RouteStore {
	return &RouteStore{routes: make(map[string]Route)}
}

func (s *RouteStore) Put(routes ...Route) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range routes {
		s.routes[r.ID] = r
	}
}

func (s *RouteStore) Get(id string) (Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.routes[id]
	return r, ok
}

// Require — маршрут должен быть выбран и известен.
func (s *RouteStore) Require(id string) (Route, error) {
	if id == "" {
		return Route{}, errs.Configuration("RouteStore.Require", "route id is empty")
	}
	r, ok := s.Get(id)
	if !ok {
		return Route{}, errs.Configuration("RouteStore.Require", "route %s was not quoted", id)
	}
	return r, nil
}

func (s *RouteStore) Clear() {
	s.mu.Lock()
	s.routes = make(map[string]Route)
	s.mu.Unlock()
}
