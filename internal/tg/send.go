package tg

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/siakad/internal/observability"
)

// Sender is the part of *tgbotapi.BotAPI used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// maxRetryAfter caps the flood-control pause before the single retry.
var maxRetryAfter = 10 * time.Second

// transient: flood control, Bot API 5xx, transport errors. Только их шлём в Sentry;
// "chat not found" и прочие 4xx относятся к конкретному чату.
func transient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

func retryAfter(err error) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) || apiErr.RetryAfter <= 0 {
		return 0, false
	}
	return min(time.Duration(apiErr.RetryAfter)*time.Second, maxRetryAfter), true
}

// send delivers msg, retrying once when the Bot API asks to slow down.
func send(ctx context.Context, bot Sender, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := bot.Send(msg)
	if wait, ok := retryAfter(err); ok {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return m, err
		case <-t.C:
		}
		m, err = bot.Send(msg)
	}
	if transient(err) {
		observability.CaptureErr(err)
	}
	return m, err
}
