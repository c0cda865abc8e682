package handler

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	cases := []struct {
		name     string
		runner   AnalysisRunner
		analysis bool
	}{
		{name: "market only", runner: nil, analysis: false},
		{name: "with pipeline", runner: &runnerStub{}, analysis: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newTestRouter(&marketStub{}, tc.runner), http.MethodGet, "/health", "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			var body healthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("parse error: %v", err)
			}
			want := healthResponse{Status: "healthy", Analysis: tc.analysis, Pair: "BTCUSDT"}
			if body != want {
				t.Errorf("unexpected body: %+v", body)
			}
		})
	}
}
