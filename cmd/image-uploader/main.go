package main

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/bloggerimageuploader/internal/config"
	"github.com/Lllllllleong/bloggerimageuploader/internal/services"
	"github.com/Lllllllleong/bloggerimageuploader/internal/transport/httpapi"
)

// entryPoint is the function name configured in GCP.
const entryPoint = "HandleImageUploader"

var (
	cfg               *config.Config
	processorInstance *services.ProcessorFunction
	once              sync.Once
	initErr           error
)

func init() {
	cfg = config.Load()

	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.LogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	router := httpapi.NewRouter(httpapi.Options{
		Processor:   processor,
		Environment: cfg.Environment,
		Description: "Serverless API to upload WordPress post images to " + storeLabel(cfg.StorageBackend),
		Debug:       cfg.LogLevel == "debug",
	})
	functions.HTTP(entryPoint, router.ServeHTTP)
}

// processor initializes the pipeline once. A configuration error is reported
// on every request instead of crashing the instance.
func processor(ctx context.Context) (httpapi.Processor, error) {
	once.Do(func() {
		processorInstance, initErr = services.NewProcessor(cfg)
	})
	if initErr != nil {
		slog.Error("Critical: Processor initialization failed", "error", initErr)
		return nil, initErr
	}
	return processorInstance, nil
}

func storeLabel(backend string) string {
	if backend == config.BackendGCS {
		return "Google Cloud Storage"
	}
	return "Google Drive"
}

// main runs the always-on server. Unlike the serverless path, missing
// configuration is fatal here.
func main() {
	if _, err := processor(context.Background()); err != nil {
		os.Exit(1)
	}

	if os.Getenv("FUNCTION_TARGET") == "" {
		os.Setenv("FUNCTION_TARGET", entryPoint)
	}

	slog.Info("Starting server.", "port", cfg.Port, "environment", cfg.Environment)
	if err := funcframework.Start(cfg.Port); err != nil {
		slog.Error("Server stopped.", "error", err)
		os.Exit(1)
	}
}
