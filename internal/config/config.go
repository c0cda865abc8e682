package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"market-narrator/internal/domain"
	"market-narrator/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	SinkLog      = "log"
	SinkTelegram = "telegram"
	SinkRedis    = "redis"
)

type Config struct {
	OpenAIAPIKey          string  `yaml:"openai_api_key"`
	OpenAIModel           string  `yaml:"openai_model"`
	RealtimeTemperature   float64 `yaml:"realtime_temperature"`
	PredictionTemperature float64 `yaml:"prediction_temperature"`
	MaxTokens             int     `yaml:"max_tokens"`
	MaxHistory            int     `yaml:"max_history"`

	BinanceBaseURL       string `yaml:"binance_base_url"`
	FearGreedBaseURL     string `yaml:"fear_greed_base_url"`
	CryptoCompareBaseURL string `yaml:"cryptocompare_base_url"`

	// Outbound requests per minute across all providers; 0 is unlimited.
	ProviderRateLimit int `yaml:"provider_rate_limit"`

	Pair           string `yaml:"pair"`
	SentimentLimit int    `yaml:"sentiment_limit"`
	HistoryDays    int    `yaml:"history_days"`
	HistoryQuote   string `yaml:"history_quote"`

	PublishSink         string        `yaml:"publish_sink"`
	PublishInterval     time.Duration `yaml:"publish_interval"`
	MaxMessageLength    int           `yaml:"max_message_length"`
	TelegramBotToken    string        `yaml:"telegram_bot_token"`
	TelegramChatID      int64         `yaml:"telegram_chat_id"`
	RedisURL            string        `yaml:"redis_url"`
	RedisStream         string        `yaml:"redis_stream"`
	RedisStreamMaxLen   int64         `yaml:"redis_stream_max_len"`
	TelegramBotCommands bool          `yaml:"telegram_bot_commands"`

	HTTPPort         int    `yaml:"http_port"`
	AnalysisSchedule string `yaml:"analysis_schedule"`
	TargetPrice      string `yaml:"target_price"`
	TargetDate       string `yaml:"target_date"`

	MCPTransport string `yaml:"mcp_transport"`
	MCPHTTPBind  string `yaml:"mcp_http_bind"`
	MCPHTTPPort  int    `yaml:"mcp_http_port"`

	SSHPort               int    `yaml:"ssh_port"`
	SSHHostKeyPath        string `yaml:"ssh_host_key_path"`
	// Empty accepts every client key.
	SSHAuthorizedKeysPath string `yaml:"ssh_authorized_keys_path"`
}

// Load reads the optional YAML file named by NARRATOR_CONFIG, then applies
// environment overrides and defaults. A bad file is reported and ignored.
func Load() *Config {
	cfg, err := LoadFile(os.Getenv("NARRATOR_CONFIG"))
	if err != nil {
		logger.Warn("config file ignored", zap.Error(err))
		cfg = &Config{}
		applyEnv(cfg)
		applyDefaults(cfg)
	}
	return cfg
}

// LoadFile is Load with an explicit path. An empty or missing path yields
// env and defaults only.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAIModel, "OPENAI_MODEL")
	setFloat(&cfg.RealtimeTemperature, "REALTIME_TEMPERATURE")
	setFloat(&cfg.PredictionTemperature, "PREDICTION_TEMPERATURE")
	setInt(&cfg.MaxTokens, "OPENAI_MAX_TOKENS")
	setInt(&cfg.MaxHistory, "NARRATOR_MAX_HISTORY")

	setString(&cfg.BinanceBaseURL, "BINANCE_BASE_URL")
	setString(&cfg.FearGreedBaseURL, "FEAR_GREED_BASE_URL")
	setString(&cfg.CryptoCompareBaseURL, "CRYPTOCOMPARE_BASE_URL")
	setInt(&cfg.ProviderRateLimit, "PROVIDER_RATE_LIMIT")

	setString(&cfg.Pair, "NARRATOR_PAIR")
	setInt(&cfg.SentimentLimit, "SENTIMENT_LIMIT")
	setInt(&cfg.HistoryDays, "HISTORY_DAYS")
	setString(&cfg.HistoryQuote, "HISTORY_QUOTE")

	setString(&cfg.PublishSink, "PUBLISH_SINK")
	if v := strings.TrimSpace(os.Getenv("PUBLISH_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PublishInterval = d
		} else {
			logger.Warn("invalid PUBLISH_INTERVAL, ignoring", zap.String("value", v))
		}
	}
	setInt(&cfg.MaxMessageLength, "MAX_MESSAGE_LENGTH")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		} else {
			logger.Warn("invalid TELEGRAM_CHAT_ID, ignoring", zap.String("value", v))
		}
	}
	setBool(&cfg.TelegramBotCommands, "TELEGRAM_BOT_COMMANDS")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisStream, "REDIS_STREAM")
	if v := strings.TrimSpace(os.Getenv("REDIS_STREAM_MAX_LEN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RedisStreamMaxLen = n
		}
	}

	setInt(&cfg.HTTPPort, "PORT")
	setString(&cfg.AnalysisSchedule, "ANALYSIS_SCHEDULE")
	setString(&cfg.TargetPrice, "TARGET_PRICE")
	setString(&cfg.TargetDate, "TARGET_DATE")

	setString(&cfg.MCPTransport, "MCP_TRANSPORT")
	setString(&cfg.MCPHTTPBind, "MCP_HTTP_BIND")
	setInt(&cfg.MCPHTTPPort, "MCP_HTTP_PORT")

	setInt(&cfg.SSHPort, "SSH_PORT")
	setString(&cfg.SSHHostKeyPath, "SSH_HOST_KEY_PATH")
	setString(&cfg.SSHAuthorizedKeysPath, "SSH_AUTHORIZED_KEYS")
}

func applyDefaults(cfg *Config) {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, narration will fail")
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-3.5-turbo"
	}
	if cfg.RealtimeTemperature < 0 || cfg.RealtimeTemperature > 2 {
		logger.Warn("realtime temperature out of range, defaulting to 0", zap.Float64("value", cfg.RealtimeTemperature))
		cfg.RealtimeTemperature = 0
	}
	if cfg.PredictionTemperature == 0 {
		cfg.PredictionTemperature = 0.7
	}
	if cfg.PredictionTemperature < 0 || cfg.PredictionTemperature > 2 {
		logger.Warn("prediction temperature out of range, defaulting to 0.7", zap.Float64("value", cfg.PredictionTemperature))
		cfg.PredictionTemperature = 0.7
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 20
	}

	if cfg.BinanceBaseURL == "" {
		cfg.BinanceBaseURL = "https://api.binance.com"
	}
	if cfg.FearGreedBaseURL == "" {
		cfg.FearGreedBaseURL = "https://api.alternative.me"
	}
	if cfg.CryptoCompareBaseURL == "" {
		cfg.CryptoCompareBaseURL = "https://min-api.cryptocompare.com"
	}
	cfg.ProviderRateLimit = max(cfg.ProviderRateLimit, 0)

	if cfg.Pair == "" {
		cfg.Pair = "BTCUSDT"
	}
	if _, err := domain.ParsePair(cfg.Pair); err != nil {
		logger.Warn("invalid pair, defaulting to BTCUSDT", zap.String("value", cfg.Pair), zap.Error(err))
		cfg.Pair = "BTCUSDT"
	}
	if cfg.SentimentLimit <= 0 {
		cfg.SentimentLimit = 30
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 30
	}
	if cfg.HistoryQuote == "" {
		cfg.HistoryQuote = "USD"
	}
	cfg.HistoryQuote = strings.ToUpper(cfg.HistoryQuote)

	cfg.PublishSink = strings.ToLower(strings.TrimSpace(cfg.PublishSink))
	switch cfg.PublishSink {
	case "":
		cfg.PublishSink = SinkLog
	case SinkLog, SinkTelegram, SinkRedis:
	default:
		logger.Warn("unsupported publish sink, defaulting to log", zap.String("value", cfg.PublishSink))
		cfg.PublishSink = SinkLog
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = 2 * time.Second
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 280
	}
	if cfg.PublishSink == SinkTelegram && (cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0) {
		logger.Warn("telegram sink needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID, defaulting to log")
		cfg.PublishSink = SinkLog
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.RedisStream == "" {
		cfg.RedisStream = "narrator:messages"
	}

	if cfg.HTTPPort <= 0 {
		cfg.HTTPPort = 8080
	}
	if cfg.TargetPrice == "" {
		cfg.TargetPrice = "$97k-$100k"
	}
	if cfg.TargetDate == "" {
		cfg.TargetDate = "31 de dezembro de 2024"
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		logger.Warn("unsupported MCP_TRANSPORT, defaulting to stdio", zap.String("value", cfg.MCPTransport))
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}
	if cfg.MCPHTTPPort <= 0 {
		cfg.MCPHTTPPort = 8090
	}

	if cfg.SSHPort <= 0 {
		cfg.SSHPort = 2222
	}
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/narrator_ed25519"
	}
}

// TradingPair returns the configured pair. It is validated by Load.
func (c *Config) TradingPair() domain.Pair {
	p, err := domain.ParsePair(c.Pair)
	if err != nil {
		return domain.Pair{Base: "BTC", Quote: "USDT"}
	}
	return p
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logger.Warn("invalid integer setting, ignoring", zap.String("key", key), zap.String("value", v))
		return
	}
	*dst = n
}

func setFloat(dst *float64, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("invalid number setting, ignoring", zap.String("key", key), zap.String("value", v))
		return
	}
	*dst = n
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = strings.EqualFold(v, "true")
	}
}
