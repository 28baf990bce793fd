package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aquaquant/ml"
	"aquaquant/predictor"
)

type fakeProvider struct {
	prediction predictor.Prediction
	err        error

	lastObs ml.Observation
}

func (f *fakeProvider) Predict(obs ml.Observation) (predictor.Prediction, error) {
	f.lastObs = obs
	return f.prediction, f.err
}

func (f *fakeProvider) Info() predictor.ModelInfo {
	return predictor.ModelInfo{ModelType: "feedforward", InputDim: 4, OutputDim: 3}
}

func TestHandlePredict(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)

	provider := &fakeProvider{prediction: predictor.Prediction{
		Nitrate:     12.5,
		Sulphate:    48.2,
		PH:          7.1,
		Temperature: 24,
		Date:        "2019/08",
		CreatedAt:   time.Now(),
	}}
	SetPredictor(provider)
	saved := false
	savePrediction = func(p predictor.Prediction) error {
		saved = true
		return nil
	}
	defer func() {
		SetPredictor(nil)
		savePrediction = defaultSavePrediction
	}()

	body := `{"temperature":"24","date":"2019/08"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload["nitrate"].(float64) != 12.5 {
		t.Fatalf("unexpected nitrate: %v", payload["nitrate"])
	}
	formatted := payload["formatted"].(map[string]interface{})
	if formatted["ph"] != "pH Value: 7.10" {
		t.Fatalf("unexpected formatted ph: %v", formatted["ph"])
	}
	if provider.lastObs.Year != 2019 || provider.lastObs.Month != 8 {
		t.Fatalf("unexpected observation: %+v", provider.lastObs)
	}
	if !saved {
		t.Fatal("expected prediction to be saved")
	}
}

func TestHandlePredictInvalidInput(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPredictor(&fakeProvider{})
	defer SetPredictor(nil)

	cases := []string{
		`{"temperature":"warm","date":"2019/08"}`,
		`{"temperature":"24","date":"08/2019"}`,
		`{"temperature":"24","date":"2019-08"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
	}
}

func TestHandlePredictModelFailure(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPredictor(&fakeProvider{err: errors.New("matrix dimension mismatch")})
	defer SetPredictor(nil)

	body := `{"temperature":"24","date":"2019/08"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestHandlePredictNoProvider(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPredictor(nil)

	body := `{"temperature":"24","date":"2019/08"}`
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestHandleModelInfo(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	SetPredictor(&fakeProvider{})
	defer SetPredictor(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/model", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var info predictor.ModelInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if info.InputDim != 4 || info.OutputDim != 3 {
		t.Fatalf("unexpected info: %+v", info)
	}
}
