package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"market-narrator/internal/domain"
)

func TestBinanceFetchTicker(t *testing.T) {
	fetcher := NewFetcher(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v3/ticker/24hr" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Fatalf("unexpected symbol: %s", got)
		}
		body := `{"symbol":"BTCUSDT","priceChange":"2366.10","priceChangePercent":"2.500","lastPrice":"97000.10000000","highPrice":"98000.00000000","lowPrice":"95000.00000000","volume":"1234.56780000","quoteVolume":"120000000.00000000"}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	})})

	p := NewBinanceProvider(testTracer, fetcher, "https://example.com")
	fixed := time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	snap, err := p.FetchTicker(context.Background(), domain.Pair{Base: "BTC", Quote: "USDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Symbol != "BTCUSDT" || snap.LastPrice != "97000.10000000" || snap.Volume != "1234.56780000" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.PriceChangePercent != "2.500" || snap.QuoteVolume != "120000000.00000000" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !snap.FetchedAt.Equal(fixed) {
		t.Fatalf("unexpected fetch time: %v", snap.FetchedAt)
	}
}

func TestBinanceFetchTickerInvalidSymbol(t *testing.T) {
	p := NewBinanceProvider(testTracer, stubFetcher(http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`), "https://example.com")

	_, err := p.FetchTicker(context.Background(), domain.Pair{Base: "NOPE", Quote: "USDT"})
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
}

func TestBinanceFetchTickerMissingPrice(t *testing.T) {
	p := NewBinanceProvider(testTracer, stubFetcher(http.StatusOK, `{"symbol":"BTCUSDT"}`), "https://example.com")

	_, err := p.FetchTicker(context.Background(), domain.Pair{Base: "BTC", Quote: "USDT"})
	var decErr *domain.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %T: %v", err, err)
	}
}
