package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"llama_lend/internal/errs"
	"llama_lend/internal/models"
)

// chainNames — имена сетей в путях prices API.
var chainNames = map[int64]string{
	1:     "ethereum",
	10:    "optimism",
	100:   "gnosis",
	137:   "polygon",
	146:   "sonic",
	252:   "fraxtal",
	8453:  "base",
	42161: "arbitrum",
}

func ChainName(chainID int64) (string, bool) {
	name, ok := chainNames[chainID]
	return name, ok
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) get(ctx context.Context, op string, out any, parts ...string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pricesapi.%s: %w", op, err)
		}
	}()

	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	u := c.baseURL + "/" + strings.Join(escaped, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Network(op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Network(op, err)
	}
	switch {
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return errs.Network(op, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	c.log.Debug("pricesapi: fetched", zap.String("url", u))
	return nil
}

func chainPath(op string, chainID int64) (string, error) {
	name, ok := ChainName(chainID)
	if !ok {
		return "", errs.Configuration("pricesapi."+op, "chain %d is not served by prices api", chainID)
	}
	return name, nil
}

// Markets — все lend-рынки сети.
func (c *Client) Markets(ctx context.Context, chainID int64) ([]Market, error) {
	chain, err := chainPath("Markets", chainID)
	if err != nil {
		return nil, err
	}
	var resp envelope[[]Market]
	if err := c.get(ctx, "Markets", &resp, "v1", "lending", "markets", chain); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Snapshots — история рынка, APY переведены из процентов в доли.
func (c *Client) Snapshots(ctx context.Context, chainID int64, controller string) ([]Snapshot, error) {
	chain, err := chainPath("Snapshots", chainID)
	if err != nil {
		return nil, err
	}
	var resp envelope[[]Snapshot]
	if err := c.get(ctx, "Snapshots", &resp, "v1", "lending", "markets", chain, controller, "snapshots"); err != nil {
		return nil, err
	}
	for i := range resp.Data {
		resp.Data[i].BorrowAPY = resp.Data[i].BorrowAPY.Div(hundred)
		resp.Data[i].LendAPY = resp.Data[i].LendAPY.Div(hundred)
	}
	return resp.Data, nil
}

// UserStats — позиция пользователя по данным индексатора. Ответ без конверта.
func (c *Client) UserStats(ctx context.Context, chainID int64, user, controller string) (UserStats, error) {
	chain, err := chainPath("UserStats", chainID)
	if err != nil {
		return UserStats{}, err
	}
	var resp UserStats
	if err := c.get(ctx, "UserStats", &resp, "v1", "lending", "users", chain, strings.ToLower(user), controller, "stats"); err != nil {
		return UserStats{}, err
	}
	return resp, nil
}

// USDRate — курс токена в USD.
func (c *Client) USDRate(ctx context.Context, chainID int64, token models.Token) (float64, error) {
	chain, err := chainPath("USDRate", chainID)
	if err != nil {
		return 0, err
	}
	var resp envelope[usdPrice]
	if err := c.get(ctx, "USDRate", &resp, "v1", "usd_price", chain, strings.ToLower(token.Address)); err != nil {
		return 0, err
	}
	return resp.Data.USDPrice, nil
}
