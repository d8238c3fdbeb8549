package main

import (
	"context"
	"embed"
	"log"
	"os"
	"os/signal"
	"syscall"

	"inequalitymap/adapters/source"
	"inequalitymap/internal"
	"inequalitymap/internal/config"
	"inequalitymap/internal/dataset"
	"inequalitymap/ui"
	"inequalitymap/ui/services"

	"github.com/joho/godotenv"
)

//go:embed ui/templates/** ui/static/** ui/pages/*
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	internal.DefaultLogger = logger
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One dataset for the whole process, loaded lazily and shared
	src := source.FromConfig(appConfig.Data, logger)
	cache := dataset.NewCache(src, logger)
	dataService := services.NewDataService(cache, appConfig.Data.RoundPrecision)

	server, err := ui.NewServer(ui.ServerOptions{
		Files:          embeddedFiles,
		Data:           dataService,
		Logger:         logger,
		GinMode:        appConfig.Server.GinMode,
		ShowEvaluation: appConfig.Pages.ShowEvaluation,
	})
	if err != nil {
		logger.Error("Failed to initialize server: %v", err)
		os.Exit(1)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		profiler := ui.NewProfilingApp(logger)
		go func() {
			if err := profiler.Start(ctx, ":"+appConfig.Profiling.Port); err != nil {
				logger.Warn("pprof server stopped: %v", err)
			}
		}()
	}

	server.WarmUp(ctx)

	logger.Info("Dataset source: %s", src.Describe())
	if err := server.Start(ctx, ":"+appConfig.Server.Port); err != nil {
		logger.Error("Server stopped: %v", err)
		os.Exit(1)
	}
}
