package ml

import (
	"math"
	"path/filepath"
	"testing"
)

func identityLayers(width int) []DenseLayer {
	weights := make([][]float64, width)
	biases := make([]float64, width)
	for i := range weights {
		weights[i] = make([]float64, width)
		weights[i][i] = 1
	}
	return []DenseLayer{{Weights: weights, Biases: biases, Activation: "linear"}}
}

func TestFeedforwardIdentity(t *testing.T) {
	network := &FeedforwardNetwork{}
	if err := network.SetLayers(identityLayers(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := []float64{1, -2, 3.5, 0}
	output, err := network.Predict(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range input {
		if output[i] != input[i] {
			t.Fatalf("column %d: got %v want %v", i, output[i], input[i])
		}
	}
}

func TestFeedforwardRelu(t *testing.T) {
	network := &FeedforwardNetwork{}
	layers := identityLayers(2)
	layers[0].Activation = "relu"
	if err := network.SetLayers(layers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output, err := network.Predict([]float64{-3, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output[0] != 0 || output[1] != 2 {
		t.Fatalf("unexpected relu output: %v", output)
	}
}

func TestFeedforwardTwoLayers(t *testing.T) {
	network := &FeedforwardNetwork{}
	layers := []DenseLayer{
		{
			Weights:    [][]float64{{1, 0}, {0, 1}},
			Biases:     []float64{1, -1},
			Activation: "linear",
		},
		{
			Weights:    [][]float64{{2}, {3}},
			Biases:     []float64{0.5},
			Activation: "linear",
		},
	}
	if err := network.SetLayers(layers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// (4+1)*2 + (5-1)*3 + 0.5
	output, err := network.Predict([]float64{4, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(output[0]-22.5) > 1e-12 {
		t.Fatalf("got %v want 22.5", output[0])
	}
}

func TestFeedforwardSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	network := &FeedforwardNetwork{}
	if err := network.SetLayers(identityLayers(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := network.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded := &FeedforwardNetwork{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.InputDim() != 3 || loaded.OutputDim() != 3 {
		t.Fatalf("unexpected dims: %d in, %d out", loaded.InputDim(), loaded.OutputDim())
	}
}

func TestFeedforwardLoadMissingFile(t *testing.T) {
	network := &FeedforwardNetwork{}
	if err := network.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFeedforwardRejectsDimensionMismatch(t *testing.T) {
	network := &FeedforwardNetwork{}
	if err := network.SetLayers(identityLayers(4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := network.Predict([]float64{1, 2}); err == nil {
		t.Fatal("expected error")
	}
}

func TestFeedforwardRejectsBrokenChain(t *testing.T) {
	layers := []DenseLayer{
		{Weights: [][]float64{{1, 1}}, Biases: []float64{0, 0}, Activation: "linear"},
		{Weights: [][]float64{{1}, {1}, {1}}, Biases: []float64{0}, Activation: "linear"},
	}
	network := &FeedforwardNetwork{}
	if err := network.SetLayers(layers); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadModelUnsupportedType(t *testing.T) {
	if _, err := LoadModel("decision_tree", "model.json"); err == nil {
		t.Fatal("expected error")
	}
}
