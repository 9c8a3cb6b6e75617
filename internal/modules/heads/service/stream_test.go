package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusSpy struct {
	mu      sync.Mutex
	history []bool
}

func (s *statusSpy) SetHeadsConnected(v bool) {
	s.mu.Lock()
	s.history = append(s.history, v)
	s.mu.Unlock()
}

func (s *statusSpy) Seen() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.history...)
}

// node отдаёт по одному блоку на соединение и закрывает его.
func node(t *testing.T) string {
	t.Helper()
	var (
		upgrader websocket.Upgrader
		conns    atomic.Int64
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := conns.Add(1)

		_, msg, err := conn.ReadMessage()
		if err != nil || !strings.Contains(string(msg), "newHeads") {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":1,"result":"0xsub"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		head := fmt.Sprintf(`{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":"0xsub","result":{"number":"0x%x","hash":"0xh%d","timestamp":"0x6553f100"}}}`, 100+n, n)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(head))
		time.Sleep(20 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamReconnects(t *testing.T) {
	spy := &statusSpy{}
	c := NewClient(node(t), nil, WithStatus(spy), WithIntervals(time.Second, 5*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	heads := c.Stream(ctx)
	first := <-heads
	second := <-heads
	cancel()

	assert.Equal(t, uint64(101), first.Number)
	assert.Equal(t, "0xh1", first.Hash)
	assert.Equal(t, int64(0x6553f100), first.Timestamp.Unix())
	assert.Equal(t, uint64(102), second.Number)

	for range heads {
	}
	seen := spy.Seen()
	require.GreaterOrEqual(t, len(seen), 3)
	assert.Equal(t, []bool{true, false, true}, seen[:3])
}

func TestStreamClosesOnCancel(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1", nil, WithIntervals(time.Second, time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	heads := c.Stream(ctx)
	cancel()

	select {
	case _, ok := <-heads:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close")
	}
}
