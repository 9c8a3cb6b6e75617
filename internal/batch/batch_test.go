package batch

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllRespectsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	worker := func(_ context.Context, i int) (int, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return i * 2, nil
	}
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	res := FetchAll(context.Background(), items, worker, 3)
	assert.Len(t, res.Results, 20)
	assert.Empty(t, res.Errors)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, 38, res.Results[19])
}

func TestFetchAllPartialFailure(t *testing.T) {
	boom := errors.New("rpc error")
	items := []string{"a", "b", "c", "d", "e"}
	res := FetchAll(context.Background(), items, func(_ context.Context, s string) (string, error) {
		if s == "b" || s == "d" {
			return "", boom
		}
		return s + "!", nil
	}, 2)

	assert.Len(t, res.Results, 3)
	assert.Len(t, res.Errors, 2)
	assert.Equal(t, len(items), len(res.Results)+len(res.Errors))
	assert.ErrorIs(t, res.Errors["b"], boom)
}

func TestFetchAllWithRetrySecondPassAndSentinel(t *testing.T) {
	var mu sync.Mutex
	attempts := map[string]int{}
	worker := func(_ context.Context, token string) (float64, error) {
		mu.Lock()
		attempts[token]++
		n := attempts[token]
		mu.Unlock()
		switch {
		case token == "crv" && n == 1:
			return 0, errors.New("rate limited")
		case token == "dead":
			return 0, errors.New("no price")
		}
		return 1.5, nil
	}

	res := FetchAllWithRetry(context.Background(), []string{"weth", "crv", "dead"}, worker, Retry[float64]{First: 4, Second: 1, Sentinel: NaNRate})
	require.Len(t, res.Results, 3)
	assert.Equal(t, 1.5, res.Results["crv"])
	assert.True(t, math.IsNaN(res.Results["dead"]))
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors, "dead")
	assert.Equal(t, 1, attempts["weth"])
	assert.Equal(t, 2, attempts["crv"])
}

func TestBalanceSentinel(t *testing.T) {
	res := FetchAllWithRetry(context.Background(), []string{"usdc"}, func(context.Context, string) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("down")
	}, Retry[decimal.Decimal]{First: 2, Second: 1, Sentinel: ZeroBalance})
	assert.Equal(t, "0", res.Results["usdc"].String())
}

func TestFetchAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := FetchAll(ctx, []int{1, 2, 3}, func(context.Context, int) (int, error) { return 0, nil }, 1)
	assert.Equal(t, 3, len(res.Results)+len(res.Errors))
}
