package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"aquaquant/db"
	"aquaquant/llm"
	"aquaquant/logging"
	"aquaquant/ml"
	"aquaquant/monitoring"
	"aquaquant/predictor"
	"aquaquant/stations"
)

// PredictionProvider 预测服务接口
type PredictionProvider interface {
	Predict(obs ml.Observation) (predictor.Prediction, error)
	Info() predictor.ModelInfo
}

// Advisor 水质解读接口
type Advisor interface {
	Advise(ctx context.Context, prediction predictor.Prediction) (*llm.Advisory, error)
}

var (
	predictionProvider PredictionProvider
	advisor            Advisor
	eventHub           *monitoring.Hub
	inferenceMetrics   *monitoring.InferenceMetrics
	stationCatalog     *stations.Catalog

	// 可注入，便于测试
	savePrediction   = defaultSavePrediction
	queryPredictions = defaultQueryPredictions
)

func defaultSavePrediction(p predictor.Prediction) error {
	return db.SavePrediction(p)
}

func defaultQueryPredictions(limit int) ([]predictor.Prediction, error) {
	return db.QueryPredictions(limit)
}

func SetPredictor(p PredictionProvider) {
	predictionProvider = p
}

func SetAdvisor(a Advisor) {
	advisor = a
}

func SetHub(h *monitoring.Hub) {
	eventHub = h
}

func SetMetrics(m *monitoring.InferenceMetrics) {
	inferenceMetrics = m
}

func SetStations(c *stations.Catalog) {
	stationCatalog = c
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("GET /api/predictions", handlePredictions)
	mux.HandleFunc("GET /api/model", handleModelInfo)
	mux.HandleFunc("GET /api/stations", handleStations)
	mux.HandleFunc("GET /api/metrics", handleMetrics)
	mux.HandleFunc("POST /api/analysis", handleAnalysis)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type predictRequest struct {
	Temperature string `json:"temperature"`
	Date        string `json:"date"`
	Station     string `json:"station"`
}

type predictResponse struct {
	predictor.Prediction
	Formatted map[string]string `json:"formatted"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	if predictionProvider == nil {
		writeError(w, "predictor not initialized", http.StatusServiceUnavailable)
		return
	}

	var request predictRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prediction, err := runPrediction(request)
	if err != nil {
		if errors.Is(err, predictor.ErrInvalidInput) {
			if inferenceMetrics != nil {
				inferenceMetrics.RecordInputError()
			}
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if inferenceMetrics != nil {
			inferenceMetrics.RecordModelError()
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// 历史写入尽力而为，失败不影响响应
	if err := savePrediction(prediction); err != nil {
		logging.L().Warn("failed to save prediction", zap.Error(err))
	}
	if eventHub != nil {
		eventHub.Publish(monitoring.PredictionEvent, prediction)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(predictResponse{
		Prediction: prediction,
		Formatted:  prediction.Formatted(),
	})
}

func runPrediction(request predictRequest) (predictor.Prediction, error) {
	start := time.Now()

	obs, err := predictor.ParseObservation(request.Temperature, request.Date)
	if err != nil {
		return predictor.Prediction{}, err
	}
	obs.Station = request.Station

	prediction, err := predictionProvider.Predict(obs)
	if err != nil {
		return predictor.Prediction{}, err
	}

	if inferenceMetrics != nil {
		inferenceMetrics.RecordRequest(time.Since(start))
	}
	return prediction, nil
}

func handlePredictions(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	predictions, err := queryPredictions(limit)
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func handleModelInfo(w http.ResponseWriter, r *http.Request) {
	if predictionProvider == nil {
		writeError(w, "predictor not initialized", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(predictionProvider.Info())
}

func handleStations(w http.ResponseWriter, r *http.Request) {
	list := []stations.Station{}
	if stationCatalog != nil {
		list = stationCatalog.List()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"stations": list,
		"count":    len(list),
	})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	if inferenceMetrics == nil {
		writeError(w, "metrics not initialized", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(inferenceMetrics.Snapshot())
}

func handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if advisor == nil {
		writeError(w, "advisor not configured", http.StatusServiceUnavailable)
		return
	}
	if predictionProvider == nil {
		writeError(w, "predictor not initialized", http.StatusServiceUnavailable)
		return
	}

	var request predictRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	prediction, err := runPrediction(request)
	if err != nil {
		if errors.Is(err, predictor.ErrInvalidInput) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	advisory, err := advisor.Advise(r.Context(), prediction)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"prediction": prediction,
		"advisory":   advisory,
	})
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
