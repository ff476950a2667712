package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"SignalSentinel/internal/analysis"
	"SignalSentinel/internal/filter"
	"SignalSentinel/internal/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Log        logger.Config `yaml:"log"`
	Telegram   Telegram      `yaml:"telegram"`
	DataSource DataSource    `yaml:"data_source"`
	Predictor  Predictor     `yaml:"predictor"`
	Database   Database      `yaml:"database"`
	Redis      Redis         `yaml:"redis"`
	Schedule   Schedule      `yaml:"schedule"`
	Analysis   Analysis      `yaml:"analysis"`
	Metrics    Metrics       `yaml:"metrics"`
	Watchlist  []string      `yaml:"watchlist"`
	Proxy      string        `yaml:"proxy"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type DataSource struct {
	Provider    string `yaml:"provider" default:"yahoo" validate:"oneof=yahoo fmp mock"`
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	HistoryDays int    `yaml:"history_days" default:"1460" validate:"gt=0"`
}

type Predictor struct {
	URL     string        `yaml:"url" validate:"omitempty,url"`
	Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	Retries int           `yaml:"retries" default:"2" validate:"gte=0,lte=10"`
}

type Database struct {
	SQLitePath string `yaml:"sqlite_path" default:"data/signal_sentinel.db" validate:"required"`
}

type Redis struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	Prefix   string        `yaml:"prefix" default:"sentinel"`
	TTL      time.Duration `yaml:"ttl" default:"24h"`
}

type Schedule struct {
	IngestCron  string `yaml:"ingest_cron" default:"0 30 21 * * 1-5" validate:"required"`
	AnalyzeCron string `yaml:"analyze_cron" default:"0 0 22 * * 1-5" validate:"required"`
}

// Analysis holds the periods and sizes of one run.
type Analysis struct {
	Workers             int     `yaml:"workers" default:"4" validate:"gte=1"`
	HistoryLimit        int     `yaml:"history_limit" default:"500" validate:"gte=0"`
	WindowSize          int     `yaml:"window_size" default:"60" validate:"gt=0"`
	SMAPeriod           int     `yaml:"sma_period" default:"30" validate:"gt=0"`
	RSIPeriod           int     `yaml:"rsi_period" default:"14" validate:"gt=0"`
	MACDShort           int     `yaml:"macd_short" default:"12" validate:"gt=0"`
	MACDLong            int     `yaml:"macd_long" default:"26" validate:"gt=0"`
	MACDSignal          int     `yaml:"macd_signal" default:"9" validate:"gt=0"`
	BollingerPeriod     int     `yaml:"bollinger_period" default:"20" validate:"gt=0"`
	BollingerK          float64 `yaml:"bollinger_k" default:"2.0" validate:"gt=0"`
	DaysToCoverLookback int     `yaml:"days_to_cover_lookback" default:"30" validate:"gt=0"`
	TotalShortPositions float64 `yaml:"total_short_positions" default:"1000000" validate:"gte=0"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" default:":9090" validate:"required_if=Enabled true"`
}

// Params converts the section to pipeline parameters.
func (a Analysis) Params() analysis.Params {
	return analysis.Params{
		HistoryLimit:        a.HistoryLimit,
		WindowSize:          a.WindowSize,
		SMAPeriod:           a.SMAPeriod,
		RSIPeriod:           a.RSIPeriod,
		MACDShort:           a.MACDShort,
		MACDLong:            a.MACDLong,
		MACDSignal:          a.MACDSignal,
		BollingerPeriod:     a.BollingerPeriod,
		BollingerK:          a.BollingerK,
		DaysToCoverLookback: a.DaysToCoverLookback,
		TotalShortPositions: a.TotalShortPositions,
		Filter:              filter.DefaultParams(),
	}
}

// PathFromEnv returns $CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("FMP_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("PREDICTOR_URL"); v != "" {
		cfg.Predictor.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Watchlist = SplitSymbols(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("ANALYSIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Workers = n
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	cfg.Watchlist = NormalizeSymbols(cfg.Watchlist)

	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config %s: failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	if c.Analysis.MACDShort >= c.Analysis.MACDLong {
		return fmt.Errorf("analysis.macd_short (%d) must be below analysis.macd_long (%d)",
			c.Analysis.MACDShort, c.Analysis.MACDLong)
	}
	if c.DataSource.Provider == "fmp" && c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required for the fmp provider")
	}
	return nil
}

// ValidateTelegram checks the settings needed by the chat bot.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// SplitSymbols parses a comma separated ticker list.
func SplitSymbols(s string) []string {
	return NormalizeSymbols(strings.Split(s, ","))
}

// NormalizeSymbols upper-cases and trims tickers, dropping blanks and duplicates.
func NormalizeSymbols(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
