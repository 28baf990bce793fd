package ml

type RegressionModel interface {
	Predict(features []float64) ([]float64, error)
	Save(path string) error
	Load(path string) error
}
