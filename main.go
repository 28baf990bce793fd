package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"aquaquant/db"
	qhttp "aquaquant/http"
	"aquaquant/llm"
	"aquaquant/logging"
	"aquaquant/monitoring"
	"aquaquant/predictor"
	"aquaquant/stations"
)

type Config struct {
	Artifacts struct {
		Dir       string `yaml:"dir"`
		HotReload bool   `yaml:"hot_reload"`
	} `yaml:"artifacts"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Stations struct {
		Path     string `yaml:"path"`
		Encoding string `yaml:"encoding"`
	} `yaml:"stations"`
	Llm struct {
		APIKey         string `yaml:"api_key"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxTokens      int    `yaml:"max_tokens"`
	} `yaml:"llm"`
}

func main() {
	// 1. Load config; start with a stderr logger until the config names a file
	logging.Init("info", "")

	config, err := loadConfig("config.yaml")
	if err != nil {
		logging.L().Fatal("failed to load config", zap.Error(err))
	}

	if err := logging.Init(config.Log.Level, config.Log.File); err != nil {
		logging.L().Fatal("failed to initialize logging", zap.Error(err))
	}
	defer logging.Sync()

	// 2. Initialize database
	if err := db.InitDB(config.Database.Path); err != nil {
		logging.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	logging.L().Info("database initialized", zap.String("path", config.Database.Path))

	// 3. Load model and scalers; loading failure is fatal for the session
	p, err := predictor.New(config.Artifacts.Dir)
	if err != nil {
		logging.L().Fatal("could not load model or scalers",
			zap.String("dir", config.Artifacts.Dir),
			zap.Error(err))
	}
	logging.L().Info("artifacts loaded", zap.Any("model", p.Info()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := monitoring.NewHub()
	go hub.Start()
	defer hub.Stop()

	if config.Artifacts.HotReload {
		p.OnReload(func(info predictor.ModelInfo) {
			hub.Publish(monitoring.ModelReloadEvent, info)
		})
		if err := p.Watch(ctx); err != nil {
			logging.L().Warn("artifact watcher disabled", zap.Error(err))
		}
	}

	catalog, err := stations.LoadCatalog(config.Stations.Path, config.Stations.Encoding)
	if err != nil {
		logging.L().Fatal("failed to load station catalog", zap.Error(err))
	}
	if catalog.Len() > 0 {
		logging.L().Info("station catalog loaded", zap.Int("stations", catalog.Len()))
	}

	qhttp.SetPredictor(p)
	qhttp.SetHub(hub)
	qhttp.SetMetrics(monitoring.NewInferenceMetrics())
	qhttp.SetStations(catalog)
	if config.Llm.APIKey != "" {
		timeout := time.Duration(config.Llm.TimeoutSeconds) * time.Second
		qhttp.SetAdvisor(llm.NewDeepSeekAdvisor(config.Llm.APIKey, config.Llm.Model, timeout, config.Llm.MaxTokens))
	}

	// 4. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{Port: config.Http.Port})
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logging.L().Fatal("http server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.L().Info("shutting down")

	if err := server.Stop(); err != nil {
		logging.L().Warn("server forced to shutdown", zap.Error(err))
	}
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
