package db

import (
	"path/filepath"
	"testing"
	"time"

	"aquaquant/predictor"
)

func TestSaveAndQueryPredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	if err := InitDB(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer Close()

	base := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p := predictor.Prediction{
			Station:     "KL01",
			Temperature: 20 + float64(i),
			Date:        "2021/05",
			Nitrate:     10 + float64(i),
			Sulphate:    40,
			PH:          7,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := SavePrediction(p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	predictions, err := QueryPredictions(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(predictions) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(predictions))
	}
	if predictions[0].Temperature != 22 {
		t.Fatalf("expected newest first, got %+v", predictions[0])
	}
	if predictions[0].Station != "KL01" {
		t.Fatalf("unexpected station: %q", predictions[0].Station)
	}
}
