package ml

import (
	"errors"
)

func LoadModel(modelType, path string) (RegressionModel, error) {
	switch modelType {
	case "feedforward":
		model := &FeedforwardNetwork{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, errors.New("unsupported model type")
	}
}
