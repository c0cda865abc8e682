package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"market-narrator/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const fearGreedBaseURL = "https://api.alternative.me"

type FearGreedProvider struct {
	fetcher *Fetcher
	baseURL string
	tracer  trace.Tracer
}

func NewFearGreedProvider(tracer trace.Tracer, fetcher *Fetcher, baseURL string) *FearGreedProvider {
	if baseURL == "" {
		baseURL = fearGreedBaseURL
	}
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	return &FearGreedProvider{
		fetcher: fetcher,
		baseURL: baseURL,
		tracer:  tracer,
	}
}

// FetchLatest returns the most recent index reading.
func (p *FearGreedProvider) FetchLatest(ctx context.Context) (*domain.SentimentSample, error) {
	samples, err := p.FetchSamples(ctx, 1)
	if err != nil {
		return nil, err
	}
	return &samples[0], nil
}

// FetchSamples returns up to limit readings, newest first.
func (p *FearGreedProvider) FetchSamples(ctx context.Context, limit int) ([]domain.SentimentSample, error) {
	ctx, span := p.tracer.Start(ctx, "feargreed.fetch-samples")
	defer span.End()
	if limit <= 0 {
		limit = 1
	}
	span.SetAttributes(attribute.Int("limit", limit))

	url := fmt.Sprintf("%s/fng/?limit=%d", strings.TrimRight(p.baseURL, "/"), limit)

	var payload struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
			Timestamp      string `json:"timestamp"`
		} `json:"data"`
	}
	if err := p.fetcher.GetJSON(ctx, url, &payload); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch fear & greed index: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, &domain.DecodeError{URL: url, Err: fmt.Errorf("fear & greed response has no rows")}
	}

	samples := make([]domain.SentimentSample, 0, min(limit, len(payload.Data)))
	for i, row := range payload.Data {
		if i >= limit {
			break
		}
		value, err := strconv.Atoi(strings.TrimSpace(row.Value))
		if err != nil {
			return nil, &domain.ParseError{Field: "fear & greed value", Value: row.Value, Err: err}
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(row.Timestamp), 10, 64)
		if err != nil {
			return nil, &domain.ParseError{Field: "fear & greed timestamp", Value: row.Timestamp, Err: err}
		}
		if ts > 1_000_000_000_000 {
			ts = ts / 1000
		}
		samples = append(samples, domain.SentimentSample{
			Value:          value,
			Classification: row.Classification,
			Timestamp:      time.Unix(ts, 0).UTC(),
		})
	}
	return samples, nil
}
