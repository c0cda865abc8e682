package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"market-narrator/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const binanceBaseURL = "https://api.binance.com"

// BinanceProvider reads 24h ticker statistics from the Binance spot API.
type BinanceProvider struct {
	fetcher *Fetcher
	baseURL string
	tracer  trace.Tracer
	now     func() time.Time
}

func NewBinanceProvider(tracer trace.Tracer, fetcher *Fetcher, baseURL string) *BinanceProvider {
	if baseURL == "" {
		baseURL = binanceBaseURL
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	return &BinanceProvider{
		fetcher: fetcher,
		baseURL: baseURL,
		tracer:  tracer,
		now:     time.Now,
	}
}

// FetchTicker returns the raw (un-normalized) 24h snapshot for pair.
func (p *BinanceProvider) FetchTicker(ctx context.Context, pair domain.Pair) (*domain.TickerSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "binance.fetch-ticker")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", pair.Symbol()))

	endpoint := strings.TrimRight(p.baseURL, "/") + "/api/v3/ticker/24hr?symbol=" + url.QueryEscape(pair.Symbol())

	var payload struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		PriceChangePercent string `json:"priceChangePercent"`
		Volume             string `json:"volume"`
		QuoteVolume        string `json:"quoteVolume"`
		HighPrice          string `json:"highPrice"`
		LowPrice           string `json:"lowPrice"`
	}
	if err := p.fetcher.GetJSON(ctx, endpoint, &payload); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch %s ticker: %w", pair.Symbol(), err)
	}
	if payload.LastPrice == "" {
		err := &domain.DecodeError{URL: endpoint, Err: fmt.Errorf("ticker response has no lastPrice")}
		span.RecordError(err)
		return nil, err
	}

	symbol := payload.Symbol
	if symbol == "" {
		symbol = pair.Symbol()
	}
	return &domain.TickerSnapshot{
		Symbol:             symbol,
		LastPrice:          payload.LastPrice,
		HighPrice:          payload.HighPrice,
		LowPrice:           payload.LowPrice,
		PriceChangePercent: payload.PriceChangePercent,
		Volume:             payload.Volume,
		QuoteVolume:        payload.QuoteVolume,
		FetchedAt:          p.now().UTC(),
	}, nil
}
