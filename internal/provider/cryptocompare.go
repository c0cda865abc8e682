package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"market-narrator/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const cryptoCompareBaseURL = "https://min-api.cryptocompare.com"

// CryptoCompareProvider reads daily OHLCV history.
type CryptoCompareProvider struct {
	fetcher *Fetcher
	baseURL string
	quote   string
	tracer  trace.Tracer
}

// NewCryptoCompareProvider builds a provider. quote overrides the pair's
// quote asset for history lookups (CryptoCompare prices most pairs in USD);
// pass "" to use the pair's own quote.
func NewCryptoCompareProvider(tracer trace.Tracer, fetcher *Fetcher, baseURL, quote string) *CryptoCompareProvider {
	if baseURL == "" {
		baseURL = cryptoCompareBaseURL
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	return &CryptoCompareProvider{
		fetcher: fetcher,
		baseURL: baseURL,
		quote:   strings.ToUpper(strings.TrimSpace(quote)),
		tracer:  tracer,
	}
}

// FetchDailyBars returns up to days trailing daily bars, oldest first.
func (p *CryptoCompareProvider) FetchDailyBars(ctx context.Context, pair domain.Pair, days int) ([]domain.HistoricalBar, error) {
	ctx, span := p.tracer.Start(ctx, "cryptocompare.fetch-daily-bars")
	defer span.End()
	if days <= 0 {
		days = 30
	}
	quote := p.quote
	if quote == "" {
		quote = pair.Quote
	}
	span.SetAttributes(attribute.String("fsym", pair.Base), attribute.String("tsym", quote), attribute.Int("days", days))

	q := url.Values{}
	q.Set("fsym", pair.Base)
	q.Set("tsym", quote)
	q.Set("limit", fmt.Sprint(days))
	endpoint := strings.TrimRight(p.baseURL, "/") + "/data/v2/histoday?" + q.Encode()

	body, err := p.fetcher.GetRaw(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch %s/%s history: %w", pair.Base, quote, err)
	}

	doc := gjson.ParseBytes(body)
	if strings.EqualFold(doc.Get("Response").String(), "Error") {
		return nil, &domain.NetworkError{URL: endpoint, StatusCode: 200, Body: doc.Get("Message").String()}
	}

	rows := doc.Get("Data.Data")
	if !rows.IsArray() {
		rows = doc.Get("Data")
	}
	if !rows.IsArray() {
		return nil, &domain.DecodeError{URL: endpoint, Err: fmt.Errorf("history response has no Data array")}
	}

	all := rows.Array()
	if len(all) > days {
		all = all[len(all)-days:]
	}
	bars := make([]domain.HistoricalBar, 0, len(all))
	for _, row := range all {
		closeVal := row.Get("close")
		if closeVal.Type != gjson.Number {
			return nil, &domain.ParseError{Field: "close", Value: closeVal.Raw}
		}
		ts := row.Get("time")
		if ts.Type != gjson.Number {
			return nil, &domain.ParseError{Field: "time", Value: ts.Raw}
		}
		bars = append(bars, domain.HistoricalBar{
			Close:      closeVal.Float(),
			VolumeFrom: row.Get("volumefrom").Float(),
			VolumeTo:   row.Get("volumeto").Float(),
			Time:       time.Unix(ts.Int(), 0).UTC(),
		})
	}
	return bars, nil
}
