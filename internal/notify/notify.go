// Package notify: короткие сообщения для пользователя и оператора
// ("сохранено", "не хватает 20%", ошибки). Получатель передаётся явно.
package notify

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Carsk101/acutea/internal/metrics"
	"github.com/Carsk101/acutea/internal/tg"
)

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type Sink interface {
	Notify(ctx context.Context, n Notice)
}

type Nop struct{}

func (Nop) Notify(context.Context, Notice) {}

// Collector копит уведомления одного запроса.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func (c *Collector) Notify(_ context.Context, n Notice) {
	c.mu.Lock()
	c.notices = append(c.notices, n)
	c.mu.Unlock()
}

// Notices возвращает копию; пустой список, а не nil, чтобы в JSON был [].
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Notify(_ context.Context, n Notice) {
	metrics.Notices.WithLabelValues(string(n.Level)).Inc()
	if s.Log == nil {
		return
	}
	switch n.Level {
	case Error:
		s.Log.Warn(n.Message, zap.String("level", string(n.Level)))
	default:
		s.Log.Info(n.Message, zap.String("level", string(n.Level)))
	}
}

// TelegramSink пересылает уведомления в чаты операторов.
// Уровни ниже MinLevel отбрасываются.
type TelegramSink struct {
	Bot      tg.Sender
	ChatIDs  []int64
	MinLevel Level
	Log      *zap.Logger
}

func rank(l Level) int {
	switch l {
	case Error:
		return 2
	case Info:
		return 1
	default:
		return 0
	}
}

func (s TelegramSink) Notify(_ context.Context, n Notice) {
	if s.Bot == nil || rank(n.Level) < rank(s.MinLevel) {
		return
	}
	text := prefix(n.Level) + n.Message
	for _, id := range s.ChatIDs {
		if err := tg.SendText(s.Bot, id, text); err != nil && s.Log != nil {
			s.Log.Warn("telegram: не удалось отправить уведомление", zap.Int64("chat_id", id), zap.Error(err))
		}
	}
}

func prefix(l Level) string {
	switch l {
	case Error:
		return "⚠️ "
	case Success:
		return "✅ "
	default:
		return "ℹ️ "
	}
}

// Multi рассылает уведомление всем получателям по очереди.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}

// Messages: тексты уведомлений через перевод строки; удобно в логах и тестах.
func Messages(ns []Notice) string {
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, n.Message)
	}
	return strings.Join(parts, "\n")
}
