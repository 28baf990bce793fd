package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aquaquant/llm"
	"aquaquant/predictor"
)

type fakeAdvisor struct {
	advisory *llm.Advisory
	err      error
}

func (f *fakeAdvisor) Advise(ctx context.Context, prediction predictor.Prediction) (*llm.Advisory, error) {
	return f.advisory, f.err
}

func TestHandleAnalysis(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPredictor(&fakeProvider{prediction: predictor.Prediction{Nitrate: 8, Sulphate: 30, PH: 7.4}})
	SetAdvisor(&fakeAdvisor{advisory: &llm.Advisory{Quality: "good", Risk: "low", Usage: "drinking", Reason: "all values within limits"}})
	defer func() {
		SetPredictor(nil)
		SetAdvisor(nil)
	}()

	body := `{"temperature":"21","date":"2020/04"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analysis", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		Advisory llm.Advisory `json:"advisory"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Advisory.Quality != "good" {
		t.Fatalf("unexpected advisory: %+v", payload.Advisory)
	}
}

func TestHandleAnalysisWithoutAdvisor(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPredictor(&fakeProvider{})
	SetAdvisor(nil)
	defer SetPredictor(nil)

	body := `{"temperature":"21","date":"2020/04"}`
	req := httptest.NewRequest(http.MethodPost, "/api/analysis", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
