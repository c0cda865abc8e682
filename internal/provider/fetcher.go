package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"market-narrator/internal/domain"

	"github.com/tidwall/gjson"
)

const maxErrorBody = 512

// Fetcher performs plain GET requests against JSON endpoints. It does not
// retry and leaves timeouts to the underlying transport.
type Fetcher struct {
	client  *http.Client
	limiter *RateLimiter
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client}
}

// WithLimiter throttles every request through l. A nil limiter disables
// throttling.
func (f *Fetcher) WithLimiter(l *RateLimiter) *Fetcher {
	f.limiter = l
	return f
}

// GetRaw returns the body of a successful response after checking that it
// is well-formed JSON.
func (f *Fetcher) GetRaw(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &domain.NetworkError{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.NetworkError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.NetworkError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, &domain.DecodeError{URL: url, Err: fmt.Errorf("response body is not valid JSON")}
	}
	return body, nil
}

// GetJSON decodes a successful response into out.
func (f *Fetcher) GetJSON(ctx context.Context, url string, out any) error {
	body, err := f.GetRaw(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.DecodeError{URL: url, Err: err}
	}
	return nil
}
