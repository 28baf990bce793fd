package predictor

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"aquaquant/ml"
)

const (
	ModelFile   = "model.json"
	XScalerFile = "x_scaler.json"
	YScalerFile = "y_scaler.json"

	defaultCacheSize = 512
)

type Prediction struct {
	Nitrate  float64 `json:"nitrate"`
	Sulphate float64 `json:"sulphate"`
	PH       float64 `json:"ph"`

	Temperature float64   `json:"temperature"`
	Date        string    `json:"date"`
	Station     string    `json:"station,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Formatted reproduces the display labels of the desktop predictor.
func (p Prediction) Formatted() map[string]string {
	return map[string]string{
		"nitrate":  fmt.Sprintf("Nitrate (NO₃): %.2f mg/L", p.Nitrate),
		"sulphate": fmt.Sprintf("Sulphate (SO₄): %.2f mg/L", p.Sulphate),
		"ph":       fmt.Sprintf("pH Value: %.2f", p.PH),
	}
}

type ModelInfo struct {
	ModelType  string    `json:"model_type"`
	LayerSizes []int     `json:"layer_sizes"`
	InputDim   int       `json:"input_dim"`
	OutputDim  int       `json:"output_dim"`
	LoadedAt   time.Time `json:"loaded_at"`
}

type Predictor struct {
	mu       sync.RWMutex
	model    ml.RegressionModel
	xScaler  *ml.MinMaxScaler
	yScaler  *ml.MinMaxScaler
	loadedAt time.Time

	dir      string
	cache    *lru.Cache[string, Prediction]
	onReload func(ModelInfo)
}

func New(artifactDir string) (*Predictor, error) {
	cache, err := lru.New[string, Prediction](defaultCacheSize)
	if err != nil {
		return nil, err
	}
	p := &Predictor{dir: artifactDir, cache: cache}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload loads the three artifacts. The previous model keeps serving when
// any of them fails to load or validate.
func (p *Predictor) Reload() error {
	model, err := ml.LoadModel("feedforward", filepath.Join(p.dir, ModelFile))
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	xScaler, err := ml.LoadScaler(filepath.Join(p.dir, XScalerFile))
	if err != nil {
		return fmt.Errorf("load input scaler: %w", err)
	}
	yScaler, err := ml.LoadScaler(filepath.Join(p.dir, YScalerFile))
	if err != nil {
		return fmt.Errorf("load output scaler: %w", err)
	}

	network, ok := model.(*ml.FeedforwardNetwork)
	if !ok {
		return errors.New("unexpected model implementation")
	}
	if xScaler.Dim() != network.InputDim() {
		return fmt.Errorf("input scaler has %d columns, model expects %d", xScaler.Dim(), network.InputDim())
	}
	if yScaler.Dim() != network.OutputDim() {
		return fmt.Errorf("output scaler has %d columns, model produces %d", yScaler.Dim(), network.OutputDim())
	}
	if network.OutputDim() != len(ml.OutputNames()) {
		return fmt.Errorf("model produces %d outputs, want %d", network.OutputDim(), len(ml.OutputNames()))
	}

	p.mu.Lock()
	p.model = model
	p.xScaler = xScaler
	p.yScaler = yScaler
	p.loadedAt = time.Now()
	p.mu.Unlock()
	p.cache.Purge()
	return nil
}

func (p *Predictor) Predict(obs ml.Observation) (Prediction, error) {
	key := cacheKey(obs)
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}

	vector, err := ml.EncodeObservation(obs)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	p.mu.RLock()
	model, xScaler, yScaler := p.model, p.xScaler, p.yScaler
	p.mu.RUnlock()

	scaled, err := xScaler.Transform(vector)
	if err != nil {
		return Prediction{}, err
	}
	raw, err := model.Predict(scaled)
	if err != nil {
		return Prediction{}, err
	}
	outputs, err := yScaler.InverseTransform(raw)
	if err != nil {
		return Prediction{}, err
	}
	if len(outputs) != 3 {
		return Prediction{}, fmt.Errorf("model produced %d outputs, want 3", len(outputs))
	}

	prediction := Prediction{
		Nitrate:     outputs[0],
		Sulphate:    outputs[1],
		PH:          outputs[2],
		Temperature: obs.Temperature,
		Date:        fmt.Sprintf("%04d/%02d", obs.Year, obs.Month),
		Station:     obs.Station,
		CreatedAt:   time.Now(),
	}
	p.cache.Add(key, prediction)
	return prediction, nil
}

func (p *Predictor) Info() ModelInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info := ModelInfo{ModelType: "feedforward", LoadedAt: p.loadedAt}
	if network, ok := p.model.(*ml.FeedforwardNetwork); ok {
		info.LayerSizes = network.LayerSizes()
		info.InputDim = network.InputDim()
		info.OutputDim = network.OutputDim()
	}
	return info
}

func cacheKey(obs ml.Observation) string {
	return fmt.Sprintf("%.6f|%04d/%02d|%s", obs.Temperature, obs.Year, obs.Month, obs.Station)
}
