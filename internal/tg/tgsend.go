package tg

import (
	"context"
	"errors"
	"net"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Carsk101/acutea/internal/observability"
)

// Sender: часть *tgbotapi.BotAPI, которой достаточно для отправки сообщений.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewBot создаёт клиента Bot API. Токен проверяется запросом getMe.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// Считаем системными: 429, 5xx от Bot API и сетевые ошибки. 4xx (чат не найден,
// кривая разметка) в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func Send(bot Sender, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := bot.Send(msg)
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return m, err
}

// SendText отправляет простой текст без разметки.
func SendText(bot Sender, chatID int64, text string) error {
	_, err := Send(bot, tgbotapi.NewMessage(chatID, text))
	return err
}
