package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"SignalSentinel/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "FMP_API_KEY", "PREDICTOR_URL", "SQLITE_PATH",
		"REDIS_ADDR", "WATCHLIST", "LOG_LEVEL", "HTTPS_PROXY", "ANALYSIS_WORKERS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, 1460, cfg.DataSource.HistoryDays)
	assert.Equal(t, 10*time.Second, cfg.Predictor.Timeout)
	assert.Equal(t, "data/signal_sentinel.db", cfg.Database.SQLitePath)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Schedule.AnalyzeCron)
	assert.Equal(t, 2.0, cfg.Analysis.BollingerK)
	assert.Empty(t, cfg.Watchlist)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, analysis.DefaultParams(), withoutLimit(cfg.Analysis.Params()))
}

func withoutLimit(p analysis.Params) analysis.Params {
	p.HistoryLimit = 0
	return p
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
telegram:
  bot_token: file-token
  chat_id: "42"
data_source:
  provider: fmp
  api_key: file-key
predictor:
  url: http://localhost:8500/predict
  timeout: 3s
analysis:
  sma_period: 10
  rsi_period: 7
watchlist: [aapl, " msft", AAPL]
`), 0o644))

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("ANALYSIS_WORKERS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateTelegram())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "fmp", cfg.DataSource.Provider)
	assert.Equal(t, 3*time.Second, cfg.Predictor.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Watchlist)

	p := cfg.Analysis.Params()
	assert.Equal(t, 10, p.SMAPeriod)
	assert.Equal(t, 7, p.RSIPeriod)
	assert.Equal(t, 26, p.MACDLong)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [unterminated"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "Provider"},
		{"fmp without key", func(c *Config) { c.DataSource.Provider = "fmp" }, "api_key"},
		{"macd order", func(c *Config) { c.Analysis.MACDShort = 30 }, "macd_short"},
		{"zero window", func(c *Config) { c.Analysis.WindowSize = -1 }, "WindowSize"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "Level"},
		{"bad predictor url", func(c *Config) { c.Predictor.URL = "not a url" }, "URL"},
		{"metrics without addr", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Addr = "" }, "Addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateTelegram(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.ValidateTelegram(), "bot_token")
	cfg.Telegram.BotToken = "t"
	assert.ErrorContains(t, cfg.ValidateTelegram(), "chat_id")
}

func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "TSLA"}, SplitSymbols(" aapl,,tsla, AAPL "))
	assert.Empty(t, SplitSymbols(""))
}
