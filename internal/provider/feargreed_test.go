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

func TestFearGreedFetchLatest(t *testing.T) {
	fetcher := NewFetcher(&http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/fng/" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("limit") != "1" {
			t.Fatalf("unexpected limit: %s", req.URL.RawQuery)
		}
		body := `{"data":[{"value":"63","value_classification":"Greed","timestamp":"1771009800","time_until_update":"1111"}]}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(http.Header),
		}, nil
	})})
	p := NewFearGreedProvider(testTracer, fetcher, "https://example.com")

	point, err := p.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point.Value != 63 || point.Classification != "Greed" {
		t.Fatalf("unexpected point: %+v", point)
	}
	if !point.Timestamp.Equal(time.Unix(1771009800, 0).UTC()) {
		t.Fatalf("unexpected timestamp: %v", point.Timestamp)
	}
}

func TestFearGreedFetchSamplesNewestFirst(t *testing.T) {
	body := `{"name":"Fear and Greed Index","data":[
		{"value":"76","value_classification":"Extreme Greed","timestamp":"1733011200"},
		{"value":"80","value_classification":"Extreme Greed","timestamp":"1732924800"},
		{"value":"55","value_classification":"Greed","timestamp":"1732838400"}
	],"metadata":{"error":null}}`
	p := NewFearGreedProvider(testTracer, stubFetcher(http.StatusOK, body), "https://example.com")

	samples, err := p.FetchSamples(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Value != 76 || !samples[0].Timestamp.After(samples[1].Timestamp) {
		t.Fatalf("samples not newest first: %+v", samples)
	}
}

func TestFearGreedNonNumericValue(t *testing.T) {
	body := `{"data":[{"value":"high","value_classification":"Greed","timestamp":"1733011200"}]}`
	p := NewFearGreedProvider(testTracer, stubFetcher(http.StatusOK, body), "https://example.com")

	_, err := p.FetchSamples(context.Background(), 30)
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
}

func TestFearGreedEmptyData(t *testing.T) {
	p := NewFearGreedProvider(testTracer, stubFetcher(http.StatusOK, `{"data":[]}`), "https://example.com")

	_, err := p.FetchSamples(context.Background(), 30)
	var decErr *domain.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %T: %v", err, err)
	}
}
