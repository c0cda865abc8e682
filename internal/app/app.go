// Package app assembles the providers, services and pipeline shared by the
// binaries under cmd/.
package app

import (
	"fmt"
	"net/http"

	"market-narrator/internal/config"
	"market-narrator/internal/narrator"
	"market-narrator/internal/pipeline"
	"market-narrator/internal/provider"
	"market-narrator/internal/publish"
	"market-narrator/internal/service"
	"market-narrator/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	newHTTPClient      = func() *http.Client { return &http.Client{} }
	newLLMClient       = narrator.NewOpenAIClient
	newTelegramBotFunc = publish.NewTelegramBot
)

// Components is everything a binary may need. Runner is nil when no OpenAI
// key is configured.
type Components struct {
	Ticker    *provider.BinanceProvider
	Sentiment *provider.FearGreedProvider
	History   *provider.CryptoCompareProvider
	Market    *service.MarketService
	Publisher *publish.Publisher
	Runner    *pipeline.Runner
	Defaults  pipeline.Request
}

// Build wires the components from cfg. redisClient is optional; it backs
// the ticker cache and the redis publish sink.
func Build(tracer trace.Tracer, cfg *config.Config, redisClient *redis.Client) (*Components, error) {
	fetcher := provider.NewFetcher(newHTTPClient())
	if cfg.ProviderRateLimit > 0 {
		fetcher.WithLimiter(provider.PerMinute(cfg.ProviderRateLimit))
	}

	c := &Components{
		Ticker:    provider.NewBinanceProvider(tracer, fetcher, cfg.BinanceBaseURL),
		Sentiment: provider.NewFearGreedProvider(tracer, fetcher, cfg.FearGreedBaseURL),
		History:   provider.NewCryptoCompareProvider(tracer, fetcher, cfg.CryptoCompareBaseURL, cfg.HistoryQuote),
		Defaults: pipeline.Request{
			Pair:        cfg.TradingPair(),
			TargetPrice: cfg.TargetPrice,
			TargetDate:  cfg.TargetDate,
		},
	}

	var cacheClient service.RedisClient
	if redisClient != nil {
		cacheClient = redisClient
	}
	c.Market = service.NewMarketService(tracer, c.Ticker, c.Sentiment, c.History, cacheClient)

	sink, err := NewSink(tracer, cfg, redisClient)
	if err != nil {
		return nil, err
	}
	c.Publisher = publish.NewPublisher(tracer, sink, publish.NewGate(cfg.PublishInterval), cfg.MaxMessageLength)

	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, analysis pipeline disabled")
		return c, nil
	}
	narr := narrator.New(tracer, newLLMClient(cfg.OpenAIAPIKey), narrator.Config{
		Model:                 cfg.OpenAIModel,
		RealtimeTemperature:   cfg.RealtimeTemperature,
		PredictionTemperature: cfg.PredictionTemperature,
		MaxTokens:             cfg.MaxTokens,
		MaxHistory:            cfg.MaxHistory,
	})
	c.Runner = pipeline.NewRunner(tracer, c.Ticker, c.Sentiment, c.History, narr, c.Publisher, pipeline.Options{
		SentimentLimit: cfg.SentimentLimit,
		HistoryDays:    cfg.HistoryDays,
	})
	logger.Info("analysis pipeline enabled",
		zap.String("pair", c.Defaults.Pair.Symbol()),
		zap.String("model", cfg.OpenAIModel),
		zap.String("sink", sink.Name()),
	)
	return c, nil
}

// NewSink returns the publish sink selected by cfg.PublishSink.
func NewSink(tracer trace.Tracer, cfg *config.Config, redisClient *redis.Client) (publish.Sink, error) {
	switch cfg.PublishSink {
	case config.SinkTelegram:
		bot, err := newTelegramBotFunc(cfg.TelegramBotToken)
		if err != nil {
			return nil, fmt.Errorf("telegram sink: %w", err)
		}
		return publish.NewTelegramSink(tracer, bot, cfg.TelegramChatID), nil
	case config.SinkRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis sink: no redis client")
		}
		return publish.NewRedisStreamSink(tracer, redisClient, cfg.RedisStream, cfg.RedisStreamMaxLen), nil
	default:
		return publish.NewLogSink(logger.GetLogger()), nil
	}
}
