package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fooddelivery/cmd"
	"fooddelivery/config"
	"fooddelivery/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, envFile string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&envFile, "env-file", ".env", "Optional dotenv file with FOOD_* overrides")
	flag.Parse()

	// a missing .env is normal outside local development
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	app, err := cmd.NewBuilder(cfg).Build(context.Background())
	if err != nil {
		return err
	}
	return app.Run()
}
