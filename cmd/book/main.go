package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"slotbook/internal/booking"
	"slotbook/internal/config"
	"slotbook/internal/events"
	"slotbook/internal/form"
	"slotbook/internal/logging"
	"slotbook/internal/scheduler"

	"github.com/rs/zerolog"
)

// stdoutSlotView prints the slot selector state to the terminal.
type stdoutSlotView struct{}

func (stdoutSlotView) SetPlaceholder(text string) {
	fmt.Println(text)
}

func (stdoutSlotView) SetOptions(placeholder string, options []string) {
	if len(options) == 0 {
		return
	}
	fmt.Println(placeholder + ":")
	for _, label := range options {
		fmt.Println("  " + label)
	}
}

type stdoutStatusView struct{}

func (stdoutStatusView) SetStatus(text string, severity booking.Severity) {
	switch severity {
	case booking.SeveritySuccess:
		fmt.Println("OK: " + text)
	case booking.SeverityError:
		fmt.Fprintln(os.Stderr, "ERROR: "+text)
	default:
		fmt.Println(text)
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var (
		baseURL = flag.String("scheduler", "", "scheduling service base URL (overrides config)")
		date    = flag.String("date", "", "appointment date, YYYY-MM-DD")
		slot    = flag.String("time", "", "slot label, e.g. \"02:00 PM\" (empty: list slots)")
		name    = flag.String("name", "", "customer name")
		svc     = flag.String("service", "", "requested service")
		phone   = flag.String("phone", "", "contact phone, 10 digits")
		address = flag.String("address", "", "service address")
		notes   = flag.String("notes", "", "notes for the technician")
	)
	flag.Parse()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if *baseURL != "" {
		cfg.Scheduler.BaseURL = *baseURL
	}
	if cfg.Scheduler.BaseURL == "" {
		return fmt.Errorf("no scheduler URL; set -scheduler or scheduler.base_url in config")
	}
	if *date == "" {
		flag.Usage()
		return fmt.Errorf("-date is required")
	}

	client := scheduler.NewClient(cfg.Scheduler.BaseURL, cfg.Scheduler.Timeout(), logger)
	ctx := context.Background()

	if *slot == "" {
		loader := booking.NewLoader(client, stdoutSlotView{}, events.NewEventBus(), cfg.Scheduler.Timeout(), logger)
		loader.Load(ctx, *date)
		return nil
	}

	fs := form.NewBookingFieldSet()
	fs.Set(form.FieldName, *name)
	fs.Set(form.FieldDate, *date)
	fs.Set(form.FieldTime, *slot)
	fs.Set(form.FieldService, *svc)
	fs.Set(form.FieldPhone, *phone)
	fs.Set(form.FieldAddress, *address)
	fs.Set(form.FieldNotes, *notes)

	submitter := booking.NewSubmitter(
		form.NewValidator(), client, stdoutStatusView{}, stdoutSlotView{}, nil,
		events.NewEventBus(), cfg.Scheduler.Timeout(), logger,
	)

	if err := submitter.Submit(ctx, fs); err != nil {
		// The status view already reported the failure; the exit code
		// is the machine-readable signal.
		os.Exit(1)
	}
	return nil
}

func loadConfig() (*config.Config, *zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// No config file: flags carry everything the one-shot client
		// needs.
		nop := zerolog.Nop()
		return &config.Config{}, &nop, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, _, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
