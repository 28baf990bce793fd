package predictor

import (
	"errors"
	"testing"
)

func TestParseObservation(t *testing.T) {
	obs, err := ParseObservation("23.4", "2018/07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Temperature != 23.4 {
		t.Fatalf("unexpected temperature: %v", obs.Temperature)
	}
	if obs.Year != 2018 || obs.Month != 7 {
		t.Fatalf("unexpected date: %d/%d", obs.Year, obs.Month)
	}
}

func TestParseObservationUnpaddedMonth(t *testing.T) {
	obs, err := ParseObservation("5", "2012/3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs.Month != 3 {
		t.Fatalf("unexpected month: %d", obs.Month)
	}
}

func TestParseObservationTrimsSpace(t *testing.T) {
	if _, err := ParseObservation(" 10.5 ", " 2020/01 "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseObservationInvalid(t *testing.T) {
	cases := []struct {
		name string
		temp string
		date string
	}{
		{"empty temperature", "", "2018/07"},
		{"non-numeric temperature", "warm", "2018/07"},
		{"nan temperature", "NaN", "2018/07"},
		{"empty date", "20", ""},
		{"dash separator", "20", "2018-07"},
		{"month only", "20", "07"},
		{"month out of range", "20", "2018/13"},
		{"day included", "20", "2018/07/15"},
	}

	for _, tc := range cases {
		_, err := ParseObservation(tc.temp, tc.date)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}
