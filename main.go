package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"estadocuenta/cmd"
	"estadocuenta/internal/config"
	"estadocuenta/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands validate the config again and report it; here it only picks
	// the logger settings.
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting estadocuenta")

	cmd.Execute()

	log.Debug().Msg("estadocuenta finished")
	os.Exit(0)
}
