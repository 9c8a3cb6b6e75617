package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"llama_lend/internal/borrow"
	"llama_lend/internal/models"
	"llama_lend/internal/params"
)

// Quoter — котировки открытия займа через граф запросов.
type Quoter struct {
	Flow     *borrow.FlowQueries
	Markets  func(id string) (models.Market, bool)
	Defaults params.Defaults
	// адрес кошелька; пустой — без оценки газа
	User string
	// Create — отправка create-loan; nil — /borrow выключена
	Create Submitter
}

const quoteUsage = "Usage: /quote MARKET COLLATERAL [DEBT] [RANGE]"

// /quote wsteth 2 1000 10
func (t *Telegram) handleQuote(ctx context.Context, chatID int64, args string) {
	if t.quoter == nil {
		t.Send(chatID, "Quotes are disabled")
		return
	}
	m, p, ok := t.loanArgs(chatID, args, 2, quoteUsage)
	if !ok {
		return
	}

	q := t.quoter.quote(ctx, p)
	if q.err != nil {
		t.log.Info("telegram: quote", zap.String("market", m.ID), zap.Error(q.err))
	}
	t.Send(chatID, formatQuote(m, p, q))
}

// loanArgs разбирает MARKET COLLATERAL [DEBT] [RANGE] через нормализатор формы.
// На ошибке сам отвечает в чат.
func (t *Telegram) loanArgs(chatID int64, args string, minFields int, usage string) (models.Market, models.RequestParams, bool) {
	fields := strings.Fields(args)
	if len(fields) < minFields || len(fields) > 4 {
		t.Send(chatID, usage)
		return models.Market{}, models.RequestParams{}, false
	}
	m, ok := t.quoter.Markets(fields[0])
	if !ok {
		t.Send(chatID, fmt.Sprintf("Unknown market `%s`", fields[0]))
		return models.Market{}, models.RequestParams{}, false
	}

	form := params.Form{UserCollateral: &fields[1]}
	if len(fields) > 2 {
		form.Debt = &fields[2]
	}
	if len(fields) > 3 {
		n, err := strconv.Atoi(fields[3])
		if err != nil {
			t.Send(chatID, usage)
			return models.Market{}, models.RequestParams{}, false
		}
		form.Range = &n
	}
	p, err := params.Normalize(params.Target{ChainID: m.ChainID, MarketID: m.ID, UserAddress: t.quoter.User}, form, t.quoter.Defaults)
	if err != nil {
		t.Send(chatID, "Bad input: "+err.Error())
		return models.Market{}, models.RequestParams{}, false
	}
	return m, p, true
}

// quote — что удалось посчитать; err — последняя ошибка узла.
type quote struct {
	maxDebt *decimal.Decimal
	bands   *models.Bands
	health  *decimal.Decimal
	prices  *models.Prices
	gas     *borrow.GasEstimate
	err     error
}

func (q *Quoter) quote(ctx context.Context, p models.RequestParams) quote {
	var out quote
	if r, err := q.Flow.MaxRecv.Fetch(ctx, p); err == nil {
		out.maxDebt = &r.MaxDebt
	} else {
		out.err = err
	}
	if !p.Debt.IsPositive() {
		return out
	}

	if b, err := q.Flow.Bands.Fetch(ctx, p); err == nil {
		out.bands = &b
	} else {
		out.err = err
	}
	if h, err := q.Flow.Health.Fetch(ctx, p); err == nil {
		out.health = &h
	} else {
		out.err = err
	}
	if pr, err := q.Flow.Prices.Fetch(ctx, p); err == nil {
		out.prices = &pr
	} else {
		out.err = err
	}
	if q.User != "" {
		if g, err := q.Flow.Gas.Fetch(ctx, p); err == nil {
			out.gas = &g
		} else {
			out.err = err
		}
	}
	return out
}
