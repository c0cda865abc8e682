package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"market-narrator/internal/domain"
	"market-narrator/internal/normalize"
	"market-narrator/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tickerCacheTTL = 15 * time.Second

var ErrUnsupportedPair = errors.New("unsupported trading pair")

type TickerProvider interface {
	FetchTicker(ctx context.Context, pair domain.Pair) (*domain.TickerSnapshot, error)
}

type SentimentProvider interface {
	FetchSamples(ctx context.Context, limit int) ([]domain.SentimentSample, error)
}

type HistoryProvider interface {
	FetchDailyBars(ctx context.Context, pair domain.Pair, days int) ([]domain.HistoricalBar, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// TickerView pairs an exchange ticker with its normalized form.
type TickerView struct {
	Pair       domain.Pair           `json:"pair"`
	Raw        domain.TickerSnapshot `json:"raw"`
	Normalized domain.TickerSnapshot `json:"normalized"`
}

// MarketService answers ad-hoc market reads for the API, MCP and TUI
// surfaces. Pipeline runs go to the providers directly.
type MarketService struct {
	tracer    trace.Tracer
	ticker    TickerProvider
	sentiment SentimentProvider
	history   HistoryProvider
	redis     RedisClient
}

func NewMarketService(
	tracer trace.Tracer,
	ticker TickerProvider,
	sentiment SentimentProvider,
	history HistoryProvider,
	redisClient RedisClient,
) *MarketService {
	return &MarketService{
		tracer:    tracer,
		ticker:    ticker,
		sentiment: sentiment,
		history:   history,
		redis:     redisClient,
	}
}

// ParseSymbol wraps domain.ParsePair so callers can match ErrUnsupportedPair.
func ParseSymbol(symbol string) (domain.Pair, error) {
	pair, err := domain.ParsePair(symbol)
	if err != nil {
		return domain.Pair{}, fmt.Errorf("%w: %v", ErrUnsupportedPair, err)
	}
	return pair, nil
}

// GetTicker returns the raw and normalized ticker for symbol. A recent
// answer may be served from Redis.
func (s *MarketService) GetTicker(ctx context.Context, symbol string) (*TickerView, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-ticker")
	defer span.End()

	pair, err := ParseSymbol(symbol)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("symbol", pair.Symbol()))

	if s.redis != nil {
		cached, err := s.getTickerCache(ctx, pair)
		if err != nil {
			logger.Warn("redis cache read error", zap.String("symbol", pair.Symbol()), zap.Error(err))
		}
		if cached != nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	raw, err := s.ticker.FetchTicker(ctx, pair)
	if err != nil {
		return nil, err
	}
	normalized, err := normalize.Ticker(*raw)
	if err != nil {
		return nil, err
	}

	view := &TickerView{Pair: pair, Raw: *raw, Normalized: normalized}
	if s.redis != nil {
		if err := s.setTickerCache(ctx, view); err != nil {
			logger.Warn("redis cache write error", zap.String("symbol", pair.Symbol()), zap.Error(err))
		}
	}
	return view, nil
}

func (s *MarketService) GetSentiment(ctx context.Context, limit int) ([]domain.SentimentSample, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-sentiment")
	defer span.End()

	if limit <= 0 {
		limit = 1
	}
	return s.sentiment.FetchSamples(ctx, limit)
}

func (s *MarketService) GetHistory(ctx context.Context, symbol string, days int) ([]domain.HistoricalBar, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-history")
	defer span.End()

	pair, err := ParseSymbol(symbol)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("symbol", pair.Symbol()), attribute.Int("days", days))
	return s.history.FetchDailyBars(ctx, pair, days)
}

func tickerCacheKey(pair domain.Pair) string {
	return "ticker:" + pair.Symbol()
}

func (s *MarketService) setTickerCache(ctx context.Context, view *TickerView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, tickerCacheKey(view.Pair), data, tickerCacheTTL).Err()
}

func (s *MarketService) getTickerCache(ctx context.Context, pair domain.Pair) (*TickerView, error) {
	data, err := s.redis.Get(ctx, tickerCacheKey(pair)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var view TickerView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	return &view, nil
}
