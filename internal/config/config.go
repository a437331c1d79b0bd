package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/model"
	"StockSentinel/internal/notifier"
	"StockSentinel/internal/strategy"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Telegram holds bot credentials.
type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// DataSource selects the market data provider.
type DataSource struct {
	Provider       string        `yaml:"provider" validate:"oneof=yahoo eodhd alpaca mock"`
	BaseURL        string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey         string        `yaml:"api_key" validate:"required_if=Provider eodhd"`
	APISecret      string        `yaml:"api_secret"`
	HistoryDays    int           `yaml:"history_days" validate:"gte=50"`
	RequestsPerSec int           `yaml:"requests_per_sec" validate:"gt=0"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Cache configures the optional Redis bar cache.
type Cache struct {
	RedisAddr     string        `yaml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	TTL           time.Duration `yaml:"ttl"`
}

// Watchlist names the symbols to analyze.
type Watchlist struct {
	File    string   `yaml:"file"`
	Symbols []string `yaml:"symbols"`
}

// Schedule controls the daily alert job.
type Schedule struct {
	AlertTime  string `yaml:"alert_time" validate:"omitempty,datetime=15:04"`
	AlertCron  string `yaml:"alert_cron"`
	Timezone   string `yaml:"timezone" validate:"timezone"`
	RunOnStart bool   `yaml:"run_on_start"`
}

// Alerts controls what the consolidated alert contains.
type Alerts struct {
	Enabled        bool                   `yaml:"enabled"`
	Actionable     []model.Recommendation `yaml:"actionable" validate:"dive,oneof=STRONG_BUY BUY WEAK_BUY HOLD WEAK_SELL SELL STRONG_SELL"`
	TopBuys        int                    `yaml:"top_buys" validate:"gt=0"`
	TopStrongSells int                    `yaml:"top_strong_sells" validate:"gt=0"`
}

// Config holds all application configuration.
type Config struct {
	Telegram   Telegram        `yaml:"telegram"`
	DataSource DataSource      `yaml:"data_source"`
	Cache      Cache           `yaml:"cache"`
	Engine     strategy.Config `yaml:"engine"`
	Watchlist  Watchlist       `yaml:"watchlist"`
	Schedule   Schedule        `yaml:"schedule"`
	Alerts     Alerts          `yaml:"alerts"`
	Database   struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
	} `yaml:"server"`
	Analysis struct {
		Workers int `yaml:"workers" validate:"gte=1,lte=64"`
	} `yaml:"analysis"`
	Proxy    string `yaml:"proxy" validate:"omitempty,url"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.DataSource.Provider = "yahoo"
	cfg.DataSource.HistoryDays = 365
	cfg.DataSource.RequestsPerSec = 5
	cfg.DataSource.Timeout = 30 * time.Second
	cfg.Cache.TTL = 6 * time.Hour
	cfg.Engine = strategy.DefaultConfig()
	cfg.Watchlist.File = "input.txt"
	cfg.Schedule.AlertTime = "08:00"
	cfg.Schedule.Timezone = "Asia/Kolkata"
	cfg.Alerts.Enabled = true
	cfg.Alerts.Actionable = []model.Recommendation{model.StrongBuy, model.Buy, model.StrongSell}
	cfg.Alerts.TopBuys = 3
	cfg.Alerts.TopStrongSells = 2
	cfg.Database.SQLitePath = "data/stock_sentinel.db"
	cfg.Server.Listen = "127.0.0.1:8080"
	cfg.Analysis.Workers = 1
	cfg.LogLevel = "info"
	return cfg
}

// Load reads envFile (if present) into the process environment, then the
// YAML file at path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"DATA_PROVIDER":      &c.DataSource.Provider,
		"DATA_BASE_URL":      &c.DataSource.BaseURL,
		"DATA_API_KEY":       &c.DataSource.APIKey,
		"DATA_API_SECRET":    &c.DataSource.APISecret,
		"REDIS_ADDR":         &c.Cache.RedisAddr,
		"REDIS_PASSWORD":     &c.Cache.RedisPassword,
		"WATCHLIST_FILE":     &c.Watchlist.File,
		"ALERT_TIME":         &c.Schedule.AlertTime,
		"ALERT_CRON":         &c.Schedule.AlertCron,
		"ALERT_TIMEZONE":     &c.Schedule.Timezone,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"LISTEN_ADDR":        &c.Server.Listen,
		"HTTPS_PROXY":        &c.Proxy,
		"LOG_LEVEL":          &c.LogLevel,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ANALYSIS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ANALYSIS_WORKERS: %w", err)
		}
		c.Analysis.Workers = n
	}
	if v := os.Getenv("ALERTS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALERTS_ENABLED: %w", err)
		}
		c.Alerts.Enabled = b
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				c.Watchlist.Symbols = append(c.Watchlist.Symbols, s)
			}
		}
	}
	return nil
}

// AlertSpec returns the cron expression of the daily alert. An explicit
// alert_cron wins over alert_time.
func (c *Config) AlertSpec() string {
	if c.Schedule.AlertCron != "" {
		return c.Schedule.AlertCron
	}
	t, err := time.Parse("15:04", c.Schedule.AlertTime)
	if err != nil {
		t = time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
	}
	return fmt.Sprintf("0 %d %d * * *", t.Minute(), t.Hour())
}

// Location returns the alert time zone, UTC when unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SourceOptions maps the data source and cache sections onto the collector.
func (c *Config) SourceOptions() collector.SourceOptions {
	return collector.SourceOptions{
		Provider:       c.DataSource.Provider,
		APIKey:         c.DataSource.APIKey,
		APISecret:      c.DataSource.APISecret,
		BaseURL:        c.DataSource.BaseURL,
		RequestsPerSec: c.DataSource.RequestsPerSec,
		Timeout:        c.DataSource.Timeout,
		ProxyURL:       c.Proxy,
		Cache: collector.CacheOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			TTL:      c.Cache.TTL,
		},
	}
}

// AlertOptions maps the alerts section onto the notifier.
func (c *Config) AlertOptions() notifier.AlertOptions {
	return notifier.AlertOptions{
		Actionable:     c.Alerts.Actionable,
		TopBuys:        c.Alerts.TopBuys,
		TopStrongSells: c.Alerts.TopStrongSells,
	}
}

var validate = validator.New()

// Validate checks field constraints and the engine settings. Telegram
// credentials are only required when alerts are enabled.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("%w: engine: %v", ErrInvalid, err)
	}
	if c.Alerts.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("%w: telegram.bot_token is required when alerts are enabled", ErrInvalid)
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("%w: telegram.chat_id is required when alerts are enabled", ErrInvalid)
		}
	}
	return nil
}
