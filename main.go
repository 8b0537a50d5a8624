package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dashviz/adapters/datareadiness/coercer"
	"dashviz/internal"
	"dashviz/internal/config"
	"dashviz/internal/dataset"
	"dashviz/internal/session"
	"dashviz/ui"
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

	level, err := internal.ParseLogLevel(appConfig.Log.Level)
	if err != nil {
		log.Printf("Invalid LOG_LEVEL, using INFO: %v", err)
	}
	internal.DefaultLogger.SetLevel(level)

	coercion := coercer.DefaultCoercionConfig()
	coercion.NumericThreshold = appConfig.Inference.NumericThreshold
	coercion.TemporalThreshold = appConfig.Inference.TemporalThreshold
	loader := dataset.NewLoader(coercion)
	sessions := session.NewManager(loader, appConfig.Dashboard.Columns)

	server, err := ui.NewServer(appConfig, sessions)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
