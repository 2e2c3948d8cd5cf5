package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sentinel/internal"
	"sentinel/internal/config"
	"sentinel/internal/dataset"
	"sentinel/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLevel(appConfig.Log.Level))

	loader := dataset.NewLoader(appConfig.Data.File, dataset.Options{
		Watch:  appConfig.Data.Watch,
		Strict: appConfig.Data.StrictNormalization,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Parse once at startup so a broken dataset shows up in the logs before
	// the first request. The server still starts and reports the error per
	// request until the file is fixed.
	if table, err := loader.Load(ctx); err != nil {
		logger.Error("Initial dataset load failed: %v", err)
	} else {
		logger.Info("Serving %d countries from %s", table.Len(), loader.Path())
	}

	server, err := ui.NewServer(loader, ui.Config{
		GinMode:        appConfig.Server.GinMode,
		DefaultMinRank: appConfig.Filters.DefaultMinRank,
		DefaultMaxRank: appConfig.Filters.DefaultMaxRank,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
