package predictor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"aquaquant/ml"
)

// ErrInvalidInput marks user input errors so the HTTP layer can tell them
// apart from inference failures.
var ErrInvalidInput = errors.New("invalid input")

func ParseObservation(tempStr, dateStr string) (ml.Observation, error) {
	tempStr = strings.TrimSpace(tempStr)
	dateStr = strings.TrimSpace(dateStr)

	if tempStr == "" {
		return ml.Observation{}, fmt.Errorf("%w: temperature is required", ErrInvalidInput)
	}
	temperature, err := strconv.ParseFloat(tempStr, 64)
	if err != nil {
		return ml.Observation{}, fmt.Errorf("%w: temperature must be a number", ErrInvalidInput)
	}
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return ml.Observation{}, fmt.Errorf("%w: temperature must be finite", ErrInvalidInput)
	}

	if dateStr == "" {
		return ml.Observation{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	date, err := parseYearMonth(dateStr)
	if err != nil {
		return ml.Observation{}, fmt.Errorf("%w: date must be in YYYY/MM format", ErrInvalidInput)
	}

	return ml.Observation{
		Temperature: temperature,
		Year:        date.Year(),
		Month:       int(date.Month()),
	}, nil
}

func parseYearMonth(value string) (time.Time, error) {
	// strptime("%Y/%m") accepts both padded and unpadded months.
	date, err := time.Parse("2006/01", value)
	if err == nil {
		return date, nil
	}
	return time.Parse("2006/1", value)
}
