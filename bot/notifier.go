package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"sewa-attendance/internal/services"
)

// Notifier posts attendance events to the authorized chat
type Notifier struct {
	sender Sender
	chatID int64
	logger *zap.Logger
}

// NewNotifier creates a notifier. It does nothing when api is nil or chatID is 0.
func NewNotifier(api *tgbotapi.BotAPI, chatID int64, logger *zap.Logger) *Notifier {
	n := &Notifier{chatID: chatID, logger: logger}
	if api != nil {
		n.sender = api
	}
	return n
}

// SendNotification sends a notification to the authorized chat
func (n *Notifier) SendNotification(message string) {
	if n.sender == nil || n.chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, message)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error("failed to send notification", zap.Int64("chat_id", n.chatID), zap.Error(err))
	}
}

// Ensure Notifier implements the BotNotifier interface
var _ services.BotNotifier = (*Notifier)(nil)
