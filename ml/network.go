package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

type FeedforwardNetwork struct {
	layers []DenseLayer
}

type DenseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

func (n *FeedforwardNetwork) Predict(features []float64) ([]float64, error) {
	if len(n.layers) == 0 {
		return nil, errors.New("model not loaded")
	}
	if len(features) != len(n.layers[0].Weights) {
		return nil, fmt.Errorf("model expects %d features, got %d", len(n.layers[0].Weights), len(features))
	}

	current := features
	for i, layer := range n.layers {
		next := make([]float64, len(layer.Biases))
		copy(next, layer.Biases)
		for j, row := range layer.Weights {
			for k := range next {
				next[k] += current[j] * row[k]
			}
		}
		activated, err := applyActivation(next, layer.Activation)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		current = activated
	}
	return current, nil
}

func (n *FeedforwardNetwork) Save(path string) error {
	if len(n.layers) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.Marshal(n.layers)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (n *FeedforwardNetwork) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var layers []DenseLayer
	if err := json.Unmarshal(payload, &layers); err != nil {
		return err
	}
	if err := validateLayers(layers); err != nil {
		return fmt.Errorf("invalid model %s: %w", path, err)
	}
	n.layers = layers
	return nil
}

func (n *FeedforwardNetwork) SetLayers(layers []DenseLayer) error {
	if err := validateLayers(layers); err != nil {
		return err
	}
	n.layers = layers
	return nil
}

func (n *FeedforwardNetwork) InputDim() int {
	if len(n.layers) == 0 {
		return 0
	}
	return len(n.layers[0].Weights)
}

func (n *FeedforwardNetwork) OutputDim() int {
	if len(n.layers) == 0 {
		return 0
	}
	return len(n.layers[len(n.layers)-1].Biases)
}

func (n *FeedforwardNetwork) LayerSizes() []int {
	if len(n.layers) == 0 {
		return nil
	}
	sizes := make([]int, 0, len(n.layers)+1)
	sizes = append(sizes, len(n.layers[0].Weights))
	for _, layer := range n.layers {
		sizes = append(sizes, len(layer.Biases))
	}
	return sizes
}

func validateLayers(layers []DenseLayer) error {
	if len(layers) == 0 {
		return errors.New("no layers")
	}
	prevWidth := len(layers[0].Weights)
	for i, layer := range layers {
		if len(layer.Weights) == 0 || len(layer.Biases) == 0 {
			return fmt.Errorf("layer %d is empty", i)
		}
		if len(layer.Weights) != prevWidth {
			return fmt.Errorf("layer %d expects %d inputs, got %d", i, prevWidth, len(layer.Weights))
		}
		for j, row := range layer.Weights {
			if len(row) != len(layer.Biases) {
				return fmt.Errorf("layer %d row %d: %d weights for %d units", i, j, len(row), len(layer.Biases))
			}
		}
		if _, err := applyActivation(make([]float64, 1), layer.Activation); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		prevWidth = len(layer.Biases)
	}
	return nil
}

func applyActivation(values []float64, name string) ([]float64, error) {
	result := make([]float64, len(values))
	switch name {
	case "relu":
		for i, v := range values {
			if v > 0 {
				result[i] = v
			}
		}
	case "sigmoid":
		for i, v := range values {
			result[i] = 1 / (1 + math.Exp(-v))
		}
	case "tanh":
		for i, v := range values {
			result[i] = math.Tanh(v)
		}
	case "linear", "":
		copy(result, values)
	default:
		return nil, fmt.Errorf("unsupported activation %q", name)
	}
	return result, nil
}
