package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Bot        BotConfig        `yaml:"bot"`
	History    HistoryConfig    `yaml:"history"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// SchedulerConfig points at the remote scheduling service.
type SchedulerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c SchedulerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type BotConfig struct {
	SessionTTLMinutes int     `yaml:"session_ttl_minutes"`
	RateLimitRPS      float64 `yaml:"rate_limit_rps"`
	RateLimitBurst    int     `yaml:"rate_limit_burst"`
}

func (c BotConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; when present it feeds os.ExpandEnv below.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Scheduler.BaseURL == "" {
		return errors.New("scheduler base_url is required")
	}

	if c.Scheduler.TimeoutSeconds < 0 {
		return errors.New("scheduler timeout_seconds must not be negative")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Scheduler.TimeoutSeconds == 0 {
		c.Scheduler.TimeoutSeconds = 10
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	// Bot defaults
	if c.Bot.SessionTTLMinutes == 0 {
		c.Bot.SessionTTLMinutes = 30
	}
	if c.Bot.RateLimitRPS == 0 {
		c.Bot.RateLimitRPS = 1
	}
	if c.Bot.RateLimitBurst == 0 {
		c.Bot.RateLimitBurst = 5
	}

	if c.History.Path == "" {
		c.History.Path = "data/history.db"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
