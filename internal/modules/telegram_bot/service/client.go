package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"llama_lend/internal/models"
	monitor "llama_lend/internal/modules/monitor/service"
	"llama_lend/internal/mutation"
)

// Sender — то, что бот делает с Telegram API.
type Sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Positions — монитор позиций.
type Positions interface {
	Status(ctx context.Context) []monitor.Report
	Positions() []models.WatchedPosition
}

// Telegram отвечает на команды из одного разрешённого чата.
type Telegram struct {
	bot      *tgbot.BotAPI
	sender   Sender
	chatID   int64
	monitor  Positions
	history  mutation.History
	quoter   *Quoter
	log      *zap.Logger
	timeout  time.Duration
	stopping chan struct{}

	// отправка из /borrow живёт дольше команды
	submitTimeout time.Duration
	submitting    atomic.Bool
	sendMu        sync.Mutex
}

// NewTelegram: quoter может быть nil, тогда /quote выключена.
func NewTelegram(bot *tgbot.BotAPI, chatID int64, mon Positions, history mutation.History, quoter *Quoter, log *zap.Logger) *Telegram {
	t := newTelegram(bot, chatID, mon, history, quoter, log)
	t.bot = bot
	return t
}

func newTelegram(sender Sender, chatID int64, mon Positions, history mutation.History, quoter *Quoter, log *zap.Logger) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{
		sender:   sender,
		chatID:   chatID,
		monitor:  mon,
		history:  history,
		quoter:   quoter,
		log:      log,
		timeout:  10 * time.Second,
		stopping: make(chan struct{}),

		submitTimeout: 5 * time.Minute,
	}
}

func (t *Telegram) Send(chatID int64, text string) {
	msg := tgbot.NewMessage(chatID, text)
	msg.ParseMode = tgbot.ModeMarkdown
	t.sendMu.Lock()
	_, err := t.sender.Send(msg)
	t.sendMu.Unlock()
	if err != nil {
		t.log.Warn("telegram: send", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// Start читает апдейты, пока не вызван Stop.
func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-t.stopping:
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				reqCtx, cancel := context.WithTimeout(ctx, t.timeout)
				t.handleUpdate(reqCtx, update)
				cancel()
			}
		}
	}()
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
	close(t.stopping)
}
