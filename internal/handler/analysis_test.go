package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"market-narrator/internal/domain"
	"market-narrator/internal/pipeline"
)

func stringsReader(s string) io.Reader {
	if s == "" {
		return nil
	}
	return strings.NewReader(s)
}

func TestExtractRealtime(t *testing.T) {
	r := newTestRouter(&marketStub{}, nil)

	w := serve(r, http.MethodPost, "/api/extract", `{"kind":"realtime","text":"- Preço Atual: $97000.10\n- Alta: $98000.00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Figures domain.RealtimeFigures `json:"figures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Figures.LastPrice != domain.Found("97000.10") || body.Figures.LowPrice.Found {
		t.Fatalf("unexpected figures: %+v", body.Figures)
	}
	if len(body.Figures.Missing) != 4 {
		t.Fatalf("expected 4 missing fields, got %v", body.Figures.Missing)
	}
}

func TestExtractPrediction(t *testing.T) {
	r := newTestRouter(&marketStub{}, nil)

	w := serve(r, http.MethodPost, "/api/extract", `{"kind":"prediction","text":"Confiança: Alta\n"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Analysis domain.ExtractedAnalysis `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Analysis.Confidence != domain.Found("Alta") {
		t.Fatalf("unexpected analysis: %+v", body.Analysis)
	}
}

func TestExtractRejectsBadRequest(t *testing.T) {
	r := newTestRouter(&marketStub{}, nil)

	for _, payload := range []string{`{"kind":"tweet","text":"x"}`, `{"kind":"realtime"}`, `not json`} {
		if w := serve(r, http.MethodPost, "/api/extract", payload); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", payload, w.Code)
		}
	}
}

func TestExtractRejectsNonTextInput(t *testing.T) {
	r := newTestRouter(&marketStub{}, nil)

	for _, payload := range []string{`{"kind":"realtime","text":42}`, `{"kind":"prediction","text":["a","b"]}`, `{"kind":"prediction","text":{"body":"x"}}`} {
		w := serve(r, http.MethodPost, "/api/extract", payload)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", payload, w.Code)
		}
		if !strings.Contains(w.Body.String(), "must be text") {
			t.Fatalf("%s: unexpected body %s", payload, w.Body.String())
		}
	}
}

func TestRunAnalysisUnavailable(t *testing.T) {
	r := newTestRouter(&marketStub{}, nil)
	if w := serve(r, http.MethodPost, "/api/analysis", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRunAnalysisUsesDefaults(t *testing.T) {
	runner := &runnerStub{}
	r := newTestRouter(&marketStub{}, runner)

	w := serve(r, http.MethodPost, "/api/analysis", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if runner.last.Pair.Symbol() != "BTCUSDT" || runner.last.TargetPrice != "$97k-$100k" || runner.last.Publish {
		t.Fatalf("unexpected request: %+v", runner.last)
	}
}

func TestRunAnalysisOverrides(t *testing.T) {
	runner := &runnerStub{}
	r := newTestRouter(&marketStub{}, runner)

	w := serve(r, http.MethodPost, "/api/analysis", `{"symbol":"eth/usdt","targetPrice":"$5k","publish":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if runner.last.Pair.Symbol() != "ETHUSDT" || runner.last.TargetPrice != "$5k" || runner.last.TargetDate != "31 de dezembro de 2024" || !runner.last.Publish {
		t.Fatalf("unexpected request: %+v", runner.last)
	}

	if w := serve(r, http.MethodPost, "/api/analysis", `{"symbol":"XYZABC"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad symbol, got %d", w.Code)
	}
}

func TestRunAnalysisFailure(t *testing.T) {
	runner := &runnerStub{err: &domain.NetworkError{URL: "x", StatusCode: 503}}
	r := newTestRouter(&marketStub{}, runner)

	if w := serve(r, http.MethodPost, "/api/analysis", ""); w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}

	runner.err = errors.New("publish message 1: sink down")
	runner.partial = true
	w := serve(r, http.MethodPost, "/api/analysis", "")
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), `"result"`) {
		t.Fatalf("expected partial result with 500, got %d: %s", w.Code, w.Body.String())
	}
}

type runnerStub struct {
	last    pipeline.Request
	err     error
	partial bool
}

func (r *runnerStub) Run(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	r.last = req
	res := &pipeline.Result{Pair: req.Pair, Messages: []string{"a", "b", "c", "d"}}
	if r.err != nil {
		if r.partial {
			return res, r.err
		}
		return nil, r.err
	}
	return res, nil
}
