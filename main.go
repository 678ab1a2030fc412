package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"autorisk/internal"
	"autorisk/internal/api"
	"autorisk/internal/config"
	"autorisk/internal/container"
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

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level))

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.Data.Preload {
		if err := appContainer.Preload(context.Background()); err != nil {
			logger.Error("preload failed: %v", err)
			return
		}
		logger.Info("tables preloaded")
	}

	server := api.NewServer(appContainer, logger.With("component", "api"))
	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		logger.Error("server stopped: %v", err)
	}
}
