package bot

import (
	"context"
	"sync"
	"time"

	"slotbook/internal/booking"
	"slotbook/internal/config"
	"slotbook/internal/events"
	"slotbook/internal/form"
	"slotbook/internal/history"
	"slotbook/internal/scheduler"
	"slotbook/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sender is the subset of the Telegram API the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// apiSender adapts *tgbotapi.BotAPI to the Sender interface.
type apiSender struct {
	*tgbotapi.BotAPI
}

func (s apiSender) GetSelf() tgbotapi.User {
	return s.Self
}

// chatIO bundles the per-chat views and the components bound to them.
type chatIO struct {
	slotView   *chatSlotView
	statusView *chatStatusView
	loader     *booking.Loader
	submitter  *booking.Submitter
}

// Bot walks a Telegram user through the booking form: date, slot,
// contact fields, confirmation. Drafts live in the session service so
// a restart does not lose a half-filled form.
type Bot struct {
	tg        Sender
	cfg       *config.Config
	client    *scheduler.Client
	sessions  *service.SessionService
	history   *history.Store
	eventBus  *events.EventBus
	validator *form.Validator
	limiter   *chatLimiter
	logger    *zerolog.Logger

	mu  sync.Mutex
	ios map[int64]*chatIO
}

// NewBot connects to Telegram and assembles the bot.
func NewBot(cfg *config.Config, client *scheduler.Client, sessions *service.SessionService, historyStore *history.Store, eventBus *events.EventBus, logger *zerolog.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, err
	}
	botAPI.Debug = cfg.Telegram.Debug

	return newBotWithSender(apiSender{botAPI}, cfg, client, sessions, historyStore, eventBus, logger), nil
}

func newBotWithSender(tg Sender, cfg *config.Config, client *scheduler.Client, sessions *service.SessionService, historyStore *history.Store, eventBus *events.EventBus, logger *zerolog.Logger) *Bot {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Bot{
		tg:        tg,
		cfg:       cfg,
		client:    client,
		sessions:  sessions,
		history:   historyStore,
		eventBus:  eventBus,
		validator: form.NewValidator(),
		limiter:   newChatLimiter(cfg.Bot.RateLimitRPS, cfg.Bot.RateLimitBurst),
		logger:    logger,
	}
}

// Start consumes updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tg.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			b.tg.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			// Each update runs on its own goroutine so a slow slot
			// query never blocks the loop; a newer date change then
			// supersedes the in-flight one.
			go b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		chatID := chatIDOf(update)
		if chatID == 0 {
			return
		}

		if !b.limiter.allow(chatID) {
			l.Warn().Int64("chat_id", chatID).Msg("rate limit exceeded")
			return
		}

		switch {
		case update.CallbackQuery != nil:
			b.handleCallback(updateCtx, update.CallbackQuery)
		case update.Message != nil:
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func chatIDOf(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// io returns the per-chat views and components, creating them on
// first use. The loader keeps its own sequence counter, so the
// stale-response guard works per chat.
func (b *Bot) io(chatID int64) *chatIO {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ios == nil {
		b.ios = make(map[int64]*chatIO)
	}
	if io, ok := b.ios[chatID]; ok {
		return io
	}

	slotView := &chatSlotView{bot: b, chatID: chatID}
	statusView := &chatStatusView{bot: b, chatID: chatID}
	io := &chatIO{
		slotView:   slotView,
		statusView: statusView,
		loader:     booking.NewLoader(b.client, slotView, b.eventBus, b.cfg.Scheduler.Timeout(), b.logger),
		submitter:  booking.NewSubmitter(b.validator, b.client, statusView, slotView, statusView, b.eventBus, b.cfg.Scheduler.Timeout(), b.logger),
	}
	io.submitter.BindSession(chatID)
	b.ios[chatID] = io
	return io
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.tg.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}
