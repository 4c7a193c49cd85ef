package main

import (
	"fmt"
	"os"

	"github.com/PrinceTyagiSec/Library-Management-System/internal/config"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/logger"
	"github.com/PrinceTyagiSec/Library-Management-System/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	// Create server
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("api", cfg.API.BaseURL).Msg("Starting library frontend...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
