package bot

import (
	"context"
	"time"

	"slotbook/internal/booking"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// chatSlotView renders the slot selector into a chat: a placeholder
// message, optionally followed by one inline button per slot. The
// offered labels are persisted in the session draft so a later
// callback can be checked against them.
type chatSlotView struct {
	bot    *Bot
	chatID int64
}

func (v *chatSlotView) SetPlaceholder(text string) {
	v.storeSlots(nil)
	v.bot.sendMessage(v.chatID, text)
}

func (v *chatSlotView) SetOptions(placeholder string, options []string) {
	v.storeSlots(options)

	// An empty option list resets the selector without chat noise.
	if len(options) == 0 {
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, label := range options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackSlot+label),
		))
	}

	msg := tgbotapi.NewMessage(v.chatID, placeholder)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := v.bot.tg.Send(msg); err != nil {
		v.bot.logger.Error().Err(err).Int64("chat_id", v.chatID).Msg("failed to send slot options")
	}
}

func (v *chatSlotView) storeSlots(options []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := v.bot.sessions.SetSlots(ctx, v.chatID, options); err != nil {
		v.bot.logger.Error().Err(err).Int64("chat_id", v.chatID).Msg("failed to store offered slots")
	}
}

// chatStatusView renders status messages and alerts as chat messages.
type chatStatusView struct {
	bot    *Bot
	chatID int64
}

func (v *chatStatusView) SetStatus(text string, severity booking.Severity) {
	switch severity {
	case booking.SeveritySuccess:
		text = "✅ " + text
	case booking.SeverityError:
		text = "❌ " + text
	}
	v.bot.sendMessage(v.chatID, text)
}

func (v *chatStatusView) Alert(text string) {
	v.bot.sendMessage(v.chatID, "⚠️ "+text)
}
