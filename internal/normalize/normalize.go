// Package normalize renders exchange decimal strings in the fixed
// two-place form the narrator is told never to alter.
package normalize

import (
	"strings"

	"market-narrator/internal/domain"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every numeric field carries
// after normalization.
const Places = 2

// Decimal2 rounds s half away from zero to two decimal places.
func Decimal2(s string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return d.StringFixed(Places), nil
}

// Ticker returns a copy of snap with every numeric field in fixed two-place
// form. Symbol and fetch time are carried over untouched.
func Ticker(snap domain.TickerSnapshot) (domain.TickerSnapshot, error) {
	out := snap
	targets := []struct {
		name string
		dst  *string
	}{
		{"lastPrice", &out.LastPrice},
		{"priceChangePercent", &out.PriceChangePercent},
		{"volume", &out.Volume},
		{"quoteVolume", &out.QuoteVolume},
		{"highPrice", &out.HighPrice},
		{"lowPrice", &out.LowPrice},
	}
	for _, t := range targets {
		v, err := Decimal2(*t.dst)
		if err != nil {
			return domain.TickerSnapshot{}, &domain.ParseError{Field: t.name, Value: *t.dst, Err: err}
		}
		*t.dst = v
	}
	return out, nil
}
