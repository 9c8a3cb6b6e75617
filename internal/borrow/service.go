// Package borrow — граф производных значений форм займа и определения транзакций поверх него.
package borrow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"llama_lend/internal/market"
	"llama_lend/internal/models"
	"llama_lend/internal/query"
	"llama_lend/internal/validation"
	"llama_lend/internal/wallet"
)

// RateSource — курс токена в USD.
type RateSource interface {
	USDRate(ctx context.Context, chainID int64, token models.Token) (float64, error)
}

type Config struct {
	Bounds         validation.RangeBounds
	QuoteStaleTime time.Duration
	UserStaleTime  time.Duration
	// параллелизм первого и второго прохода пакетных чтений
	BatchFirst  int
	BatchSecond int
}

var DefaultConfig = Config{
	Bounds:         validation.DefaultRangeBounds,
	QuoteStaleTime: 30 * time.Second,
	UserStaleTime:  15 * time.Second,
	BatchFirst:     8,
	BatchSecond:    2,
}

type Service struct {
	client   *query.Client
	registry market.Registry
	wallet   wallet.Provider
	routes   *market.RouteStore
	quoter   market.RouteQuoter
	rates    RateSource
	cfg      Config
	log      *zap.Logger

	CreateLoan *FlowQueries
	BorrowMore *FlowQueries
	Repay      *FlowQueries
	User       *UserQueries
	Approvals  *ApprovalQueries
}

type Option func(*Service)

func WithRouteQuoter(q market.RouteQuoter) Option { return func(s *Service) { s.quoter = q } }

func WithRates(r RateSource) Option { return func(s *Service) { s.rates = r } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func WithConfig(c Config) Option { return func(s *Service) { s.cfg = c } }

func New(c *query.Client, registry market.Registry, w wallet.Provider, routes *market.RouteStore, opts ...Option) *Service {
	s := &Service{
		client:   c,
		registry: registry,
		wallet:   w,
		routes:   routes,
		cfg:      DefaultConfig,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.routes == nil {
		s.routes = market.NewRouteStore()
	}
	s.CreateLoan = newFlowQueries(s, models.MutationCreateLoan)
	s.BorrowMore = newFlowQueries(s, models.MutationBorrowMore)
	s.Repay = newFlowQueries(s, models.MutationRepay)
	s.User = newUserQueries(s)
	s.Approvals = newApprovalQueries(s)
	return s
}

// Flow — узлы для вида операции, nil для операций без графа котировок.
func (s *Service) Flow(kind models.MutationKind) *FlowQueries {
	switch kind {
	case models.MutationCreateLoan:
		return s.CreateLoan
	case models.MutationBorrowMore:
		return s.BorrowMore
	case models.MutationRepay:
		return s.Repay
	}
	return nil
}

func (s *Service) Routes() *market.RouteStore { return s.routes }

// resolve — рынок, вариант и Flow для параметров. Без сети.
func (s *Service) resolve(p models.RequestParams, kind models.MutationKind) (market.Handle, market.Flow, error) {
	h, err := s.registry.Market(p.ChainID, p.MarketID)
	if err != nil {
		return nil, nil, err
	}
	impl, err := market.Resolve(h, p.LeverageEnabled)
	if err != nil {
		return nil, nil, err
	}
	f, err := impl.Flow(kind)
	if err != nil {
		return nil, nil, err
	}
	return h, f, nil
}

// Variant — какой вариант будет использован, ноль если рынок не резолвится.
func (s *Service) Variant(p models.RequestParams) market.Variant {
	h, err := s.registry.Market(p.ChainID, p.MarketID)
	if err != nil {
		return 0
	}
	impl, err := market.Resolve(h, p.LeverageEnabled)
	if err != nil {
		return 0
	}
	return impl.Variant()
}

// InvalidateAllUserMarketDetails инвалидирует все узлы рынка и пользователя.
func (s *Service) InvalidateAllUserMarketDetails(scope models.Scope) int {
	n := s.client.InvalidateScope(scope)
	s.log.Debug("user market details invalidated", zap.Stringer("scope", scope), zap.Int("entries", n))
	return n
}
