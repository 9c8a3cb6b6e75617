package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Head — заголовок нового блока.
type Head struct {
	Number    uint64
	Hash      string
	Timestamp time.Time
}

// Status получает смену состояния подписки.
type Status interface {
	SetHeadsConnected(v bool)
}

type Client struct {
	url      string
	dialer   *websocket.Dialer
	log      *zap.Logger
	status   Status
	ping     time.Duration
	redial   time.Duration
	subFrame []byte
}

type Option func(*Client)

func WithStatus(s Status) Option { return func(c *Client) { c.status = s } }

// WithIntervals задаёт период ping и паузу перед переподключением.
func WithIntervals(ping, redial time.Duration) Option {
	return func(c *Client) { c.ping, c.redial = ping, redial }
}

func NewClient(url string, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		url:      url,
		dialer:   websocket.DefaultDialer,
		log:      log,
		ping:     20 * time.Second,
		redial:   time.Second,
		subFrame: []byte(`{"jsonrpc":"2.0","id":1,"method":"eth_subscribe","params":["newHeads"]}`),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) setConnected(v bool) {
	if c.status != nil {
		c.status.SetHeadsConnected(v)
	}
}

type frame struct {
	ID     *int `json:"id"`
	Result any  `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Method string `json:"method"`
	Params struct {
		Subscription string `json:"subscription"`
		Result       struct {
			Number    string `json:"number"`
			Hash      string `json:"hash"`
			Timestamp string `json:"timestamp"`
		} `json:"result"`
	} `json:"params"`
}

// Stream — поток новых блоков. Соединение переподключается, пока жив ctx.
func (c *Client) Stream(ctx context.Context) <-chan Head {
	ch := make(chan Head)

	go func() {
		defer close(ch)
		for {
			c.session(ctx, ch)
			c.setConnected(false)

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.redial):
			}
		}
	}()

	return ch
}

// session — одно соединение, живёт до первой ошибки чтения.
func (c *Client) session(ctx context.Context, ch chan<- Head) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.log.Warn("heads: dial", zap.String("url", c.url), zap.Error(err))
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	if err := conn.WriteMessage(websocket.TextMessage, c.subFrame); err != nil {
		c.log.Warn("heads: subscribe", zap.Error(err))
		return
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(c.ping)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				// разблокирует ReadMessage
				_ = conn.Close()
				return
			case <-done:
				return
			case <-t.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.log.Warn("heads: read", zap.Error(err))
			}
			return
		}

		var f frame
		if err := sonic.Unmarshal(msg, &f); err != nil {
			continue
		}
		switch {
		case f.Error != nil:
			c.log.Warn("heads: subscription rejected", zap.Int("code", f.Error.Code), zap.String("message", f.Error.Message))
			return
		case f.ID != nil:
			c.log.Info("heads: subscribed", zap.Any("subscription", f.Result))
			c.setConnected(true)
			continue
		case f.Method != "eth_subscription":
			continue
		}

		head, err := parseHead(f)
		if err != nil {
			c.log.Debug("heads: bad head", zap.Error(err))
			continue
		}
		select {
		case ch <- head:
		case <-ctx.Done():
			return
		}
	}
}

func parseHead(f frame) (Head, error) {
	number, err := hexutil.DecodeUint64(f.Params.Result.Number)
	if err != nil {
		return Head{}, err
	}
	ts, err := hexutil.DecodeUint64(f.Params.Result.Timestamp)
	if err != nil {
		return Head{}, err
	}
	return Head{
		Number:    number,
		Hash:      f.Params.Result.Hash,
		Timestamp: time.Unix(int64(ts), 0).UTC(),
	}, nil
}
