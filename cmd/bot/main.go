package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"slotbook/internal/bot"
	"slotbook/internal/config"
	"slotbook/internal/domain"
	"slotbook/internal/events"
	"slotbook/internal/history"
	"slotbook/internal/logging"
	"slotbook/internal/metrics"
	"slotbook/internal/models"
	"slotbook/internal/repository"
	"slotbook/internal/scheduler"
	"slotbook/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg); err != nil {
		logger.Error().Err(err).Msg("Failed to prepare data directories")
		return err
	}

	historyStore, err := history.NewStore(cfg.History.Path)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open history store")
		return err
	}
	defer historyStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, sessions := initSessionService(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	eventBus := events.NewEventBus()
	subscribeHistory(eventBus, historyStore, logger)

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	client := scheduler.NewClient(cfg.Scheduler.BaseURL, cfg.Scheduler.Timeout(), logger)

	telegramBot, err := bot.NewBot(cfg, client, sessions, historyStore, eventBus, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create bot")
		return err
	}

	logger.Info().Str("scheduler", cfg.Scheduler.BaseURL).Msg("Bot starting...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, &logger, closer, nil
}

func prepareDirectories(cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.History.Path), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(cfg.Exports.Path, 0o755)
}

// initSessionService wires the draft storage: Redis when configured,
// with an in-memory fallback so the bot survives a Redis outage.
func initSessionService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, *service.SessionService) {
	ttl := cfg.Bot.SessionTTL()

	if cfg.Redis.Address == "" {
		logger.Info().Msg("Redis not configured, using in-memory sessions")
		return nil, service.NewSessionService(repository.NewMemoryStateRepository(ttl), logger)
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, falling back to memory until it recovers")
	}

	primary := repository.NewRedisStateRepository(redisClient, ttl)
	fallback := repository.NewMemoryStateRepository(ttl)
	stateRepo := repository.NewFailoverStateRepository(primary, fallback, logger)

	return redisClient, service.NewSessionService(stateRepo, logger)
}

// subscribeHistory records every confirmed appointment into the local
// journal.
func subscribeHistory(bus *events.EventBus, recorder domain.HistoryRecorder, logger *zerolog.Logger) {
	bus.Subscribe(events.EventAppointmentBooked, func(ev *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		appt := &models.Appointment{
			SessionID: payload.SessionID,
			Name:      payload.Name,
			Date:      payload.Date,
			Time:      payload.Time,
			Service:   payload.Service,
			Phone:     payload.Phone,
			Address:   payload.Address,
			Notes:     payload.Notes,
		}
		if err := recorder.Record(ctx, appt); err != nil {
			logger.Error().Err(err).Str("date", appt.Date).Str("time", appt.Time).Msg("event bus: record appointment")
		}
		return nil
	})
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Int("port", port).Msg("Prometheus metrics server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
