package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/amlaw/client-portal/internal/config"
	"github.com/amlaw/client-portal/internal/logger"
	"github.com/amlaw/client-portal/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer, err := logger.Setup(cfg.Logging, cfg.IsDevelopment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	log.Info().Str("host", cfg.Database.Host).Int("port", cfg.Database.Port).Msg("Connecting to database")

	if *down > 0 {
		err = postgres.RollbackMigrations(cfg.Database.DSN(), *down)
	} else {
		err = postgres.RunMigrations(cfg.Database.DSN())
	}
	if err != nil {
		log.Error().Err(err).Msg("Migration failed")
		closer.Close()
		os.Exit(1)
	}
}
