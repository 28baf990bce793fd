package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

func LoadScaler(path string) (*MinMaxScaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scaler MinMaxScaler
	if err := json.Unmarshal(payload, &scaler); err != nil {
		return nil, err
	}
	if err := scaler.validate(); err != nil {
		return nil, fmt.Errorf("invalid scaler %s: %w", path, err)
	}
	return &scaler, nil
}

func (s *MinMaxScaler) Save(path string) error {
	if err := s.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (s *MinMaxScaler) Dim() int {
	return len(s.Min)
}

func (s *MinMaxScaler) Transform(vector []float64) ([]float64, error) {
	if len(vector) != len(s.Min) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.Min), len(vector))
	}
	result := make([]float64, len(vector))
	for i, value := range vector {
		span := s.Max[i] - s.Min[i]
		if span == 0 {
			result[i] = 0
			continue
		}
		result[i] = (value - s.Min[i]) / span
	}
	return result, nil
}

func (s *MinMaxScaler) InverseTransform(vector []float64) ([]float64, error) {
	if len(vector) != len(s.Min) {
		return nil, fmt.Errorf("scaler expects %d values, got %d", len(s.Min), len(vector))
	}
	result := make([]float64, len(vector))
	for i, value := range vector {
		span := s.Max[i] - s.Min[i]
		if span == 0 {
			result[i] = s.Min[i]
			continue
		}
		result[i] = value*span + s.Min[i]
	}
	return result, nil
}

func (s *MinMaxScaler) validate() error {
	if len(s.Min) == 0 {
		return errors.New("scaler is empty")
	}
	if len(s.Min) != len(s.Max) {
		return errors.New("min and max size mismatch")
	}
	for i := range s.Min {
		if s.Max[i] < s.Min[i] {
			return fmt.Errorf("column %d: max below min", i)
		}
	}
	return nil
}
