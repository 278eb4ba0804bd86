package tg

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/siakad/internal/metrics"
	"github.com/Spok95/siakad/internal/models"
)

const maxDetail = 300

// Notifier posts new room complaints to the facility team's chats.
type Notifier struct {
	bot   Sender
	chats []int64
	log   *zap.Logger
}

// NewNotifier connects to the Bot API with token.
func NewNotifier(token string, chats []int64, log *zap.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return NewNotifierWith(bot, chats, log), nil
}

func NewNotifierWith(bot Sender, chats []int64, log *zap.Logger) *Notifier {
	return &Notifier{bot: bot, chats: chats, log: log}
}

// ComplaintFiled sends one message per chat. Errors are logged and counted,
// never returned: a lost notification must not fail the complaint.
func (n *Notifier) ComplaintFiled(ctx context.Context, c models.Complaint, room models.Room, nim string) {
	text := ComplaintText(c, room, nim)
	for _, chat := range n.chats {
		if ctx.Err() != nil {
			metrics.Notifications.WithLabelValues("canceled").Inc()
			return
		}
		if _, err := send(ctx, n.bot, tgbotapi.NewMessage(chat, text)); err != nil {
			metrics.Notifications.WithLabelValues("error").Inc()
			n.log.Warn("complaint notification failed",
				zap.Int64("chat_id", chat), zap.Int64("aduan_id", c.ID), zap.Error(err))
			continue
		}
		metrics.Notifications.WithLabelValues("ok").Inc()
	}
}

// ComplaintText renders the message body.
func ComplaintText(c models.Complaint, room models.Room, nim string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Aduan baru: %s %s\n", room.BuildingName, room.Name)
	detail := strings.TrimSpace(c.Detail)
	if r := []rune(detail); len(r) > maxDetail {
		detail = string(r[:maxDetail]) + "…"
	}
	b.WriteString(detail)
	if nim != "" {
		fmt.Fprintf(&b, "\nPelapor: %s", nim)
	}
	fmt.Fprintf(&b, "\nStatus: %s", c.Status.Label())
	return b.String()
}
