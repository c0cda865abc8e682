package mcptools

import (
	"context"
	"fmt"
	"time"

	"market-narrator/internal/domain"
	"market-narrator/internal/extract"
	"market-narrator/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type MarketReader interface {
	GetTicker(ctx context.Context, symbol string) (*service.TickerView, error)
	GetSentiment(ctx context.Context, limit int) ([]domain.SentimentSample, error)
	GetHistory(ctx context.Context, symbol string, days int) ([]domain.HistoricalBar, error)
}

type TickerInput struct {
	Symbol string `json:"symbol" jsonschema:"trading pair such as BTCUSDT or eth/usdt"`
}

type Ticker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
}

type TickerOutput struct {
	Pair       string `json:"pair"`
	Name       string `json:"name"`
	Raw        Ticker `json:"raw"`
	Normalized Ticker `json:"normalized"`
	FetchedAt  string `json:"fetchedAt"`
}

type FearGreedInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of daily readings, newest first (default 1)"`
}

type Sentiment struct {
	Value          int    `json:"value"`
	Classification string `json:"classification"`
	Date           string `json:"date"`
}

type FearGreedOutput struct {
	Samples []Sentiment `json:"samples"`
}

type HistoryInput struct {
	Symbol string `json:"symbol" jsonschema:"trading pair such as BTCUSDT"`
	Days   int    `json:"days,omitempty" jsonschema:"number of trailing days (default 30)"`
}

type Bar struct {
	Date       string  `json:"date"`
	Close      float64 `json:"close"`
	VolumeFrom float64 `json:"volumeFrom"`
	VolumeTo   float64 `json:"volumeTo"`
}

type HistoryOutput struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

type ExtractInput struct {
	Kind string `json:"kind" jsonschema:"report kind, realtime or prediction"`
	Text any    `json:"text" jsonschema:"report text to parse, must be a string"`
}

type ExtractOutput struct {
	Kind     string                    `json:"kind"`
	Figures  *domain.RealtimeFigures   `json:"figures,omitempty"`
	Analysis *domain.ExtractedAnalysis `json:"analysis,omitempty"`
}

// Tools implements the MCP tool handlers over market reads and the
// extractor.
type Tools struct {
	market MarketReader
}

func NewTools(market MarketReader) *Tools {
	return &Tools{market: market}
}

// NewServer builds an MCP server exposing the market and extraction tools.
func NewServer(market MarketReader, version string) *mcp.Server {
	tools := NewTools(market)
	server := mcp.NewServer(&mcp.Implementation{Name: "market-narrator", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_ticker",
		Description: "Get the 24h exchange ticker for a trading pair, raw and normalized to two decimals",
	}, tools.GetTicker)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_fear_greed_index",
		Description: "Get recent Fear & Greed index readings",
	}, tools.GetFearGreed)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_historical_prices",
		Description: "Get trailing daily closing prices and volumes",
	}, tools.GetHistory)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_analysis",
		Description: "Extract structured fields from a realtime or prediction report",
	}, tools.Extract)

	return server
}

func (t *Tools) GetTicker(ctx context.Context, _ *mcp.CallToolRequest, in TickerInput) (*mcp.CallToolResult, TickerOutput, error) {
	view, err := t.market.GetTicker(ctx, in.Symbol)
	if err != nil {
		return nil, TickerOutput{}, err
	}
	return nil, TickerOutput{
		Pair:       view.Pair.Symbol(),
		Name:       view.Pair.Name(),
		Raw:        tickerDTO(view.Raw),
		Normalized: tickerDTO(view.Normalized),
		FetchedAt:  view.Raw.FetchedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (t *Tools) GetFearGreed(ctx context.Context, _ *mcp.CallToolRequest, in FearGreedInput) (*mcp.CallToolResult, FearGreedOutput, error) {
	samples, err := t.market.GetSentiment(ctx, max(in.Limit, 1))
	if err != nil {
		return nil, FearGreedOutput{}, err
	}
	out := FearGreedOutput{Samples: make([]Sentiment, len(samples))}
	for i, s := range samples {
		out.Samples[i] = Sentiment{Value: s.Value, Classification: s.Classification, Date: s.Timestamp.UTC().Format("2006-01-02")}
	}
	return nil, out, nil
}

func (t *Tools) GetHistory(ctx context.Context, _ *mcp.CallToolRequest, in HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	days := in.Days
	if days <= 0 {
		days = 30
	}
	bars, err := t.market.GetHistory(ctx, in.Symbol, days)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	out := HistoryOutput{Symbol: in.Symbol, Bars: make([]Bar, len(bars))}
	for i, b := range bars {
		out.Bars[i] = Bar{Date: b.Time.UTC().Format("2006-01-02"), Close: b.Close, VolumeFrom: b.VolumeFrom, VolumeTo: b.VolumeTo}
	}
	return nil, out, nil
}

func (t *Tools) Extract(_ context.Context, _ *mcp.CallToolRequest, in ExtractInput) (*mcp.CallToolResult, ExtractOutput, error) {
	switch in.Kind {
	case "realtime":
		figures, err := extract.RealtimeValue(in.Text)
		if err != nil {
			return nil, ExtractOutput{}, err
		}
		return nil, ExtractOutput{Kind: in.Kind, Figures: &figures}, nil
	case "prediction":
		analysis, err := extract.PredictionValue(in.Text)
		if err != nil {
			return nil, ExtractOutput{}, err
		}
		return nil, ExtractOutput{Kind: in.Kind, Analysis: &analysis}, nil
	default:
		return nil, ExtractOutput{}, fmt.Errorf("unknown report kind %q, want realtime or prediction", in.Kind)
	}
}

func tickerDTO(t domain.TickerSnapshot) Ticker {
	return Ticker{
		Symbol:             t.Symbol,
		LastPrice:          t.LastPrice,
		PriceChangePercent: t.PriceChangePercent,
		Volume:             t.Volume,
		QuoteVolume:        t.QuoteVolume,
		HighPrice:          t.HighPrice,
		LowPrice:           t.LowPrice,
	}
}
