package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotbook/internal/booking"
	"slotbook/internal/export"
	"slotbook/internal/form"
	"slotbook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Conversation steps of the booking flow.
const (
	StateEnterDate    = "enter_date"
	StateSelectSlot   = "select_slot"
	StateEnterName    = "enter_name"
	StateEnterService = "enter_service"
	StateEnterPhone   = "enter_phone"
	StateEnterAddress = "enter_address"
	StateEnterNotes   = "enter_notes"
	StateConfirm      = "confirm"
)

// Callback data prefixes.
const (
	callbackSlot    = "slot:"
	callbackConfirm = "confirm"
	callbackCancel  = "cancel"
)

const skipNotes = "-"

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg.Command())
		return
	}

	state, err := b.sessions.GetSession(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	if state == nil {
		b.sendMessage(chatID, "Send /book to start a new appointment.")
		return
	}

	text := strings.TrimSpace(msg.Text)

	switch state.Step {
	case StateEnterDate:
		b.handleDate(ctx, chatID, text)
	case StateSelectSlot:
		b.handleSlotText(ctx, chatID, state, text)
	case StateEnterName:
		b.storeAndAdvance(ctx, chatID, form.FieldName, text, StateEnterService, "What service do you need?")
	case StateEnterService:
		b.storeAndAdvance(ctx, chatID, form.FieldService, text, StateEnterPhone, "Your phone number (10 digits)?")
	case StateEnterPhone:
		b.handlePhone(ctx, chatID, text)
	case StateEnterAddress:
		b.storeAndAdvance(ctx, chatID, form.FieldAddress, text, StateEnterNotes, "Any notes for the technician? Send "+skipNotes+" to skip.")
	case StateEnterNotes:
		b.handleNotes(ctx, chatID, text)
	case StateConfirm:
		b.sendMessage(chatID, "Please use the buttons above to confirm or cancel.")
	default:
		b.sendMessage(chatID, "Send /book to start a new appointment.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command string) {
	switch command {
	case "start":
		b.sendMessage(chatID, "Welcome to the appointment bot!\n"+
			"/book - book an appointment\n"+
			"/mybookings - your confirmed bookings\n"+
			"/export - export this week's bookings\n"+
			"/cancel - discard the current draft")
	case "book":
		if err := b.sessions.SetSession(ctx, chatID, StateEnterDate, nil); err != nil {
			b.sendMessage(chatID, "Something went wrong, please try again.")
			return
		}
		b.sendMessage(chatID, "What date would you like? (YYYY-MM-DD)")
	case "cancel":
		if err := b.sessions.ClearSession(ctx, chatID); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to clear session")
		}
		b.sendMessage(chatID, "Draft discarded.")
	case "mybookings":
		b.handleMyBookings(ctx, chatID)
	case "export":
		b.handleExport(ctx, chatID)
	default:
		b.sendMessage(chatID, "Unknown command. Send /start for help.")
	}
}

// handleDate runs the slot loader for the entered date. The loader
// renders the outcome through the chat slot view; the draft advances
// to slot selection only when options were actually offered.
func (b *Bot) handleDate(ctx context.Context, chatID int64, date string) {
	if _, err := time.Parse(form.DateLayout, date); err != nil {
		b.sendMessage(chatID, "That doesn't look like a date. Please use YYYY-MM-DD.")
		return
	}

	if err := b.sessions.SetField(ctx, chatID, form.FieldDate, date); err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}

	b.io(chatID).loader.Load(ctx, date)

	state, err := b.sessions.GetSession(ctx, chatID)
	if err != nil || state == nil {
		return
	}
	if len(state.Slots) > 0 {
		if err := b.sessions.Advance(ctx, chatID, StateSelectSlot); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to advance session")
		}
	}
}

func (b *Bot) handleSlotText(ctx context.Context, chatID int64, state *models.SessionState, text string) {
	for _, label := range state.Slots {
		if label == text {
			b.acceptSlot(ctx, chatID, label)
			return
		}
	}

	// A date-looking message restarts the slot query.
	if _, err := time.Parse(form.DateLayout, text); err == nil {
		b.handleDate(ctx, chatID, text)
		return
	}

	b.sendMessage(chatID, "Please pick one of the offered times, or send a new date.")
}

func (b *Bot) acceptSlot(ctx context.Context, chatID int64, label string) {
	if err := b.sessions.SetField(ctx, chatID, form.FieldTime, label); err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	if err := b.sessions.Advance(ctx, chatID, StateEnterName); err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("Time %s it is. What's your name?", label))
}

func (b *Bot) handlePhone(ctx context.Context, chatID int64, text string) {
	fs := form.NewFieldSet(form.Field{Name: form.FieldPhone, Value: text, Required: true})
	if !b.validator.Validate(fs) {
		b.sendMessage(chatID, "A phone number is exactly 10 digits, e.g. 5551234567.")
		return
	}
	b.storeAndAdvance(ctx, chatID, form.FieldPhone, text, StateEnterAddress, "Your address?")
}

func (b *Bot) handleNotes(ctx context.Context, chatID int64, text string) {
	if text == skipNotes {
		text = ""
	}
	if err := b.sessions.SetField(ctx, chatID, form.FieldNotes, text); err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	if err := b.sessions.Advance(ctx, chatID, StateConfirm); err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	b.sendSummary(ctx, chatID)
}

func (b *Bot) storeAndAdvance(ctx context.Context, chatID int64, field, value, nextStep, prompt string) {
	if strings.TrimSpace(value) == "" {
		b.sendMessage(chatID, "This field is required.")
		return
	}
	if err := b.sessions.SetField(ctx, chatID, field, value); err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	if err := b.sessions.Advance(ctx, chatID, nextStep); err != nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}
	b.sendMessage(chatID, prompt)
}

func (b *Bot) sendSummary(ctx context.Context, chatID int64) {
	state, err := b.sessions.GetSession(ctx, chatID)
	if err != nil || state == nil {
		b.sendMessage(chatID, "Something went wrong, please try again.")
		return
	}

	notes := state.GetField(form.FieldNotes)
	if notes == "" {
		notes = "N/A"
	}

	summary := fmt.Sprintf("Please confirm your appointment:\n\n"+
		"📅 %s at %s\n"+
		"👤 %s\n"+
		"🔧 %s\n"+
		"📞 %s\n"+
		"📍 %s\n"+
		"📝 %s",
		state.GetField(form.FieldDate), state.GetField(form.FieldTime),
		state.GetField(form.FieldName), state.GetField(form.FieldService),
		state.GetField(form.FieldPhone), state.GetField(form.FieldAddress),
		notes,
	)

	msg := tgbotapi.NewMessage(chatID, summary)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", callbackConfirm),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel),
		),
	)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send summary")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	// Acknowledge the button press.
	if _, err := b.tg.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to answer callback")
	}

	state, err := b.sessions.GetSession(ctx, chatID)
	if err != nil || state == nil {
		b.sendMessage(chatID, "This booking has expired. Send /book to start over.")
		return
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, callbackSlot):
		if state.Step != StateSelectSlot {
			return
		}
		label := strings.TrimPrefix(data, callbackSlot)
		for _, offered := range state.Slots {
			if offered == label {
				b.acceptSlot(ctx, chatID, label)
				return
			}
		}
		b.sendMessage(chatID, "That time is no longer offered. Please send the date again.")

	case data == callbackConfirm:
		if state.Step != StateConfirm {
			return
		}
		b.submit(ctx, chatID, state)

	case data == callbackCancel:
		if err := b.sessions.ClearSession(ctx, chatID); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to clear session")
		}
		b.sendMessage(chatID, "Draft discarded.")
	}
}

// submit replays the draft into a field set and runs the booking
// submitter. On success the draft is cleared and the confirmed
// appointment lands in the local history.
func (b *Bot) submit(ctx context.Context, chatID int64, state *models.SessionState) {
	fs := form.NewBookingFieldSet()
	for _, f := range fs.Fields() {
		fs.Set(f.Name, state.GetField(f.Name))
	}

	err := b.io(chatID).submitter.Submit(ctx, fs)
	switch {
	case err == nil:
		if err := b.sessions.ClearSession(ctx, chatID); err != nil {
			b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to clear session")
		}
	case errors.Is(err, booking.ErrValidation):
		b.sendMessage(chatID, "Invalid fields: "+strings.Join(fs.InvalidNames(), ", ")+". Send /book to start over.")
	case errors.Is(err, booking.ErrSubmissionInFlight):
		b.sendMessage(chatID, "Your booking is already being processed.")
	}
	// Rejections and transport failures were already reported through
	// the status view; the draft stays so the user can retry.
}

func (b *Bot) handleMyBookings(ctx context.Context, chatID int64) {
	appts, err := b.history.BySession(ctx, chatID)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to load history")
		b.sendMessage(chatID, "Could not load your bookings.")
		return
	}
	if len(appts) == 0 {
		b.sendMessage(chatID, "You have no confirmed bookings yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Your bookings:\n")
	for _, appt := range appts {
		fmt.Fprintf(&sb, "\n🔹 %s at %s - %s", appt.Date, appt.Time, appt.Service)
	}
	b.sendMessage(chatID, sb.String())
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	now := time.Now()
	start := now.Format(form.DateLayout)
	end := now.AddDate(0, 0, 6).Format(form.DateLayout)

	appts, err := b.history.ByDateRange(ctx, start, end)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to load history for export")
		b.sendMessage(chatID, "Could not export bookings.")
		return
	}

	path, err := export.ToExcel(b.cfg.Exports.Path, start, end, appts)
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("export failed")
		b.sendMessage(chatID, "Could not export bookings.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	if _, err := b.tg.Send(doc); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send export")
		b.sendMessage(chatID, "💾 Export saved to "+path)
	}
}
