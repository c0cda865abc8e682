package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"market-narrator/internal/domain"
)

var envKeys = []string{
	"NARRATOR_CONFIG", "OPENAI_API_KEY", "OPENAI_MODEL", "REALTIME_TEMPERATURE", "PREDICTION_TEMPERATURE",
	"OPENAI_MAX_TOKENS", "NARRATOR_MAX_HISTORY", "BINANCE_BASE_URL", "FEAR_GREED_BASE_URL",
	"CRYPTOCOMPARE_BASE_URL", "NARRATOR_PAIR", "SENTIMENT_LIMIT", "HISTORY_DAYS", "HISTORY_QUOTE",
	"PUBLISH_SINK", "PUBLISH_INTERVAL", "MAX_MESSAGE_LENGTH", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	"TELEGRAM_BOT_COMMANDS", "REDIS_URL", "REDIS_STREAM", "REDIS_STREAM_MAX_LEN", "PORT",
	"ANALYSIS_SCHEDULE", "TARGET_PRICE", "TARGET_DATE", "MCP_TRANSPORT", "MCP_HTTP_BIND",
	"MCP_HTTP_PORT", "SSH_PORT", "SSH_HOST_KEY_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.OpenAIModel != "gpt-3.5-turbo" || cfg.MaxTokens != 1000 {
		t.Fatalf("unexpected model defaults: %+v", cfg)
	}
	if cfg.RealtimeTemperature != 0 || cfg.PredictionTemperature != 0.7 {
		t.Fatalf("unexpected temperatures: %v %v", cfg.RealtimeTemperature, cfg.PredictionTemperature)
	}
	if cfg.BinanceBaseURL != "https://api.binance.com" || cfg.FearGreedBaseURL != "https://api.alternative.me" {
		t.Fatalf("unexpected base urls: %+v", cfg)
	}
	if cfg.PublishSink != SinkLog || cfg.PublishInterval != 2*time.Second || cfg.MaxMessageLength != 280 {
		t.Fatalf("unexpected publish defaults: %+v", cfg)
	}
	if cfg.TradingPair() != (domain.Pair{Base: "BTC", Quote: "USDT"}) {
		t.Fatalf("unexpected pair: %+v", cfg.TradingPair())
	}
	if cfg.HistoryQuote != "USD" || cfg.HistoryDays != 30 || cfg.SentimentLimit != 30 {
		t.Fatalf("unexpected data defaults: %+v", cfg)
	}
	if cfg.MCPTransport != "stdio" || cfg.MCPHTTPPort != 8090 {
		t.Fatalf("unexpected mcp defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("PREDICTION_TEMPERATURE", "0.3")
	t.Setenv("NARRATOR_PAIR", "eth/usdc")
	t.Setenv("PUBLISH_SINK", "Redis")
	t.Setenv("PUBLISH_INTERVAL", "500ms")
	t.Setenv("REDIS_URL", "redis:6379")

	cfg := Load()
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.PredictionTemperature != 0.3 {
		t.Fatalf("unexpected narrator config: %+v", cfg)
	}
	if cfg.TradingPair() != (domain.Pair{Base: "ETH", Quote: "USDC"}) {
		t.Fatalf("unexpected pair: %+v", cfg.TradingPair())
	}
	if cfg.PublishSink != SinkRedis || cfg.PublishInterval != 500*time.Millisecond || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected publish config: %+v", cfg)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_MAX_TOKENS", "bad")
	t.Setenv("PREDICTION_TEMPERATURE", "5")
	t.Setenv("NARRATOR_PAIR", "XYZABC")
	t.Setenv("PUBLISH_SINK", "twitter")
	t.Setenv("PUBLISH_INTERVAL", "soon")
	t.Setenv("MCP_TRANSPORT", "grpc")

	cfg := Load()
	if cfg.MaxTokens != 1000 || cfg.PredictionTemperature != 0.7 {
		t.Fatalf("invalid narrator values should fall back: %+v", cfg)
	}
	if cfg.Pair != "BTCUSDT" || cfg.PublishSink != SinkLog || cfg.PublishInterval != 2*time.Second {
		t.Fatalf("invalid pipeline values should fall back: %+v", cfg)
	}
	if cfg.MCPTransport != "stdio" {
		t.Fatalf("expected stdio fallback, got %s", cfg.MCPTransport)
	}
}

func TestTelegramSinkWithoutCredentialsFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBLISH_SINK", "telegram")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	if cfg := Load(); cfg.PublishSink != SinkLog {
		t.Fatalf("expected log sink without token, got %s", cfg.PublishSink)
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	cfg := Load()
	if cfg.PublishSink != SinkTelegram || cfg.TelegramChatID != -100123 {
		t.Fatalf("unexpected telegram config: %+v", cfg)
	}
}

func TestLoadFileOverlaidByEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "narrator.yaml")
	yaml := `openai_model: gpt-4o
pair: SOLUSDT
history_days: 14
publish_interval: 3s
max_message_length: 500
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HISTORY_DAYS", "7")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAIModel != "gpt-4o" || cfg.Pair != "SOLUSDT" || cfg.MaxMessageLength != 500 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.PublishInterval != 3*time.Second {
		t.Fatalf("expected 3s interval, got %v", cfg.PublishInterval)
	}
	if cfg.HistoryDays != 7 {
		t.Fatalf("env should override file, got %d", cfg.HistoryDays)
	}
}

func TestLoadFileErrors(t *testing.T) {
	clearEnv(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("missing file should be tolerated: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("history_days: [oops"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}

	t.Setenv("NARRATOR_CONFIG", path)
	if cfg := Load(); cfg.HistoryDays != 30 {
		t.Fatalf("Load should fall back to defaults on a bad file, got %d", cfg.HistoryDays)
	}
}
