package cmd

import (
	"context"
	"errors"
	"fmt"

	"fooddelivery/config"
	"fooddelivery/infrastructure/persistence/mysql"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// RunRelay runs the outbox relay on its own, for deployments that keep the
// API replicas free of broker connections. It returns nil once ctx is
// cancelled.
func RunRelay(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.Type == "mock" {
		return errors.New("the relay needs database.type mysql or sqlite; in-memory mode forwards events from the API process")
	}

	db, err := NewMySQLConfig(cfg).Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(db)
	if cfg.Database.AutoMigrate {
		if err := mysql.AutoMigrate(db); err != nil {
			return err
		}
	}

	publisher, err := NewBrokerPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	relay, err := mysql.NewOutboxRelay(mysql.NewOutboxRepository(db), publisher, RelayOptions(cfg))
	if err != nil {
		return err
	}

	logger.Info("Outbox relay started",
		zap.String("broker", cfg.Worker.Broker),
		zap.Duration("poll_interval", cfg.Worker.PollInterval),
		zap.Int("batch_size", cfg.Worker.BatchSize))
	defer logger.Info("Outbox relay stopped")

	if err := relay.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
