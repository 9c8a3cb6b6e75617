package notify

import (
	"fmt"
	"strings"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Level — тип уведомления.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notifier interface {
	Notify(msg string, level Level)
}

func prefix(level Level) string {
	switch level {
	case LevelSuccess:
		return "✅ "
	case LevelError:
		return "❌ "
	}
	return "ℹ️ "
}

// Telegram — пассивный нотифайер в один чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	log    *zap.Logger
}

func NewTelegram(bot *tgbot.BotAPI, chatID int64, log *zap.Logger) *Telegram {
	return &Telegram{bot: bot, chatID: chatID, log: log}
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		t.log.Warn("telegram send failed", zap.Error(err))
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

func (t *Telegram) Notify(msg string, level Level) { t.Send(prefix(level) + msg) }

// Stdout — заглушка, всё пишет в лог.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log} }

func (s *Stdout) Notify(msg string, level Level) {
	s.log.Info(prefix(level)+msg, zap.String("level", string(level)))
}

// Message — одно уведомление, сохранённое Recorder.
type Message struct {
	Text  string
	Level Level
}

// Recorder запоминает уведомления, нужен в тестах.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Notify(msg string, level Level) {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Text: msg, Level: level})
	r.mu.Unlock()
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

func (r *Recorder) String() string {
	var b strings.Builder
	for _, m := range r.Messages() {
		fmt.Fprintf(&b, "[%s] %s\n", m.Level, m.Text)
	}
	return b.String()
}
