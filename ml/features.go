package ml

import (
	"errors"
	"math"
)

// BaseYear is the first year of the training window; the model was fitted
// on year offsets relative to it.
const BaseYear = 2010

type Observation struct {
	Temperature float64
	Year        int
	Month       int

	Station string
}

func EncodeObservation(obs Observation) ([]float64, error) {
	if obs.Month < 1 || obs.Month > 12 {
		return nil, errors.New("month out of range")
	}
	monthSin := math.Sin(2 * math.Pi * float64(obs.Month) / 12)
	monthCos := math.Cos(2 * math.Pi * float64(obs.Month) / 12)
	yearOffset := float64(obs.Year - BaseYear)

	return []float64{obs.Temperature, monthSin, monthCos, yearOffset}, nil
}

func FeatureNames() []string {
	return []string{
		"Temperature",
		"MonthSin",
		"MonthCos",
		"YearOffset",
	}
}

func OutputNames() []string {
	return []string{
		"Nitrate",
		"Sulphate",
		"PH",
	}
}
