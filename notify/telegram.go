package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a short alert to the shop admins' chat.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) OrderStatusChanged(_ context.Context, ev OrderEvent) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatAlert(ev))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// FormatAlert renders the alert text.
func FormatAlert(ev OrderEvent) string {
	from := ev.FromStatus
	if from == "" {
		from = "new"
	}
	text := fmt.Sprintf("Order %s (%s, %s): %s → %s", ev.OrderNumber, ev.Name, ev.Phone, from, ev.ToStatus)
	if ev.Note != "" {
		text += "\n" + ev.Note
	}
	return text
}
