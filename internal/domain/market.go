package domain

import (
	"fmt"
	"strings"
	"time"
)

// KnownQuotes lists quote assets recognised when splitting a compact pair
// symbol such as BTCUSDT. Longer suffixes are tried first.
var KnownQuotes = []string{"FDUSD", "USDT", "USDC", "BUSD", "TUSD", "USD", "EUR", "BRL", "BTC", "ETH", "BNB"}

// Pair identifies the market being analyzed.
type Pair struct {
	Base  string `json:"base" yaml:"base"`
	Quote string `json:"quote" yaml:"quote"`
}

// ParsePair accepts "BTCUSDT", "btc/usdt", "BTC-USDT" or "BTC_USDT".
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Pair{}, fmt.Errorf("empty trading pair")
	}
	if i := strings.IndexAny(s, "/-_"); i >= 0 {
		base, quote := s[:i], s[i+1:]
		if base == "" || quote == "" {
			return Pair{}, fmt.Errorf("malformed trading pair %q", s)
		}
		return Pair{Base: base, Quote: quote}, nil
	}
	for _, q := range KnownQuotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return Pair{Base: strings.TrimSuffix(s, q), Quote: q}, nil
		}
	}
	return Pair{}, fmt.Errorf("unknown quote asset in trading pair %q", s)
}

// Symbol renders the exchange form, e.g. BTCUSDT.
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}

// Name is the display name of the base asset, e.g. Bitcoin.
func (p Pair) Name() string {
	return AssetName(p.Base)
}

func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// TickerSnapshot is a point-in-time 24h summary of a pair. Numeric fields
// are decimal strings exactly as served by the exchange until normalized.
type TickerSnapshot struct {
	Symbol             string    `json:"symbol"`
	LastPrice          string    `json:"lastPrice"`
	HighPrice          string    `json:"highPrice"`
	LowPrice           string    `json:"lowPrice"`
	PriceChangePercent string    `json:"priceChangePercent"`
	Volume             string    `json:"volume"`
	QuoteVolume        string    `json:"quoteVolume"`
	FetchedAt          time.Time `json:"fetchedAt"`
}

// NamedValue is one numeric ticker field.
type NamedValue struct {
	Name  string
	Value string
}

// Fields lists the numeric fields in a stable order.
func (t TickerSnapshot) Fields() []NamedValue {
	return []NamedValue{
		{Name: "lastPrice", Value: t.LastPrice},
		{Name: "priceChangePercent", Value: t.PriceChangePercent},
		{Name: "volume", Value: t.Volume},
		{Name: "quoteVolume", Value: t.QuoteVolume},
		{Name: "highPrice", Value: t.HighPrice},
		{Name: "lowPrice", Value: t.LowPrice},
	}
}

// SentimentSample is one Fear & Greed index reading.
type SentimentSample struct {
	Value          int       `json:"value"`
	Classification string    `json:"classification"`
	Timestamp      time.Time `json:"timestamp"`
}

// HistoricalBar is one daily bar.
type HistoricalBar struct {
	Close      float64   `json:"close"`
	VolumeFrom float64   `json:"volumeFrom"`
	VolumeTo   float64   `json:"volumeTo"`
	Time       time.Time `json:"time"`
}

var assetNames = map[string]string{
	"BTC":  "Bitcoin",
	"ETH":  "Ethereum",
	"SOL":  "Solana",
	"XRP":  "XRP",
	"ADA":  "Cardano",
	"DOGE": "Dogecoin",
	"BNB":  "BNB",
}

// AssetName returns the display name of a base asset, or the upper-cased
// ticker when it is not known.
func AssetName(base string) string {
	if name, ok := assetNames[strings.ToUpper(base)]; ok {
		return name
	}
	return strings.ToUpper(base)
}
