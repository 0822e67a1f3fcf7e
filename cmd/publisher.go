package cmd

import (
	"fmt"

	"fooddelivery/config"
	"fooddelivery/infrastructure/messaging"
	"fooddelivery/infrastructure/persistence/mysql"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// NotificationEvents are the domain events relayed to the notification broker.
var NotificationEvents = []string{
	"order.placed",
	"order.payment_recorded",
	"order.payment_succeeded",
	"order.payment_failed",
	"order.status_changed",
	"order.cancelled",
	"cart.cleared",
}

// BrokerPublisher is a messaging.Publisher that owns a connection.
type BrokerPublisher interface {
	messaging.Publisher
	Close() error
}

// NewBrokerPublisher opens the broker selected by worker.broker.
func NewBrokerPublisher(cfg *config.Config) (BrokerPublisher, error) {
	switch cfg.Worker.Broker {
	case "kafka":
		p, err := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		logger.Info("Notifications go to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic))
		return p, nil
	case "rabbitmq":
		p, err := messaging.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, fmt.Errorf("failed to create rabbitmq publisher: %w", err)
		}
		logger.Info("Notifications go to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
		return p, nil
	case "", "log":
		return messaging.NewLogPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported broker: %q", cfg.Worker.Broker)
	}
}

// RelayOptions maps the worker section onto the outbox relay.
func RelayOptions(cfg *config.Config) mysql.RelayOptions {
	return mysql.RelayOptions{
		PollInterval: cfg.Worker.PollInterval,
		BatchSize:    cfg.Worker.BatchSize,
		MaxRetries:   cfg.Worker.MaxRetries,
		StaleAfter:   cfg.Worker.StaleAfter,
	}
}
