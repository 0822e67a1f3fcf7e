package mysql

import (
	"context"
	"errors"
	"time"

	"fooddelivery/infrastructure/messaging"
	"fooddelivery/infrastructure/persistence/mysql/po"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// RelayOptions tunes the outbox relay.
type RelayOptions struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxRetries is the number of failed publishes after which an event is
	// parked as FAILED.
	MaxRetries int
	// StaleAfter requeues events left PROCESSING by a relay that died
	// mid-publish. Zero means five minutes.
	StaleAfter time.Duration
}

func (o *RelayOptions) validate() error {
	switch {
	case o.PollInterval <= 0:
		return errors.New("outbox relay: poll interval must be positive")
	case o.BatchSize <= 0:
		return errors.New("outbox relay: batch size must be positive")
	case o.MaxRetries <= 0:
		return errors.New("outbox relay: max retries must be positive")
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = 5 * time.Minute
	}
	return nil
}

// RelayStats is the outcome of one batch.
type RelayStats struct {
	Published int
	Failed    int
	Skipped   int
}

// OutboxRelay moves order and cart notifications from outbox_events to the
// broker. Delivery is at-least-once: consumers deduplicate on the envelope's
// event_id.
type OutboxRelay struct {
	outbox    *OutboxRepository
	publisher messaging.Publisher
	opts      RelayOptions
	log       *zap.Logger
}

func NewOutboxRelay(outbox *OutboxRepository, publisher messaging.Publisher, opts RelayOptions) (*OutboxRelay, error) {
	if outbox == nil || publisher == nil {
		return nil, errors.New("outbox relay: repository and publisher are required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		opts:      opts,
		log:       logger.With(zap.String("component", "outbox_relay")),
	}, nil
}

// Run drains the backlog once, then polls until ctx ends.
func (r *OutboxRelay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		r.tick(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *OutboxRelay) tick(ctx context.Context) {
	if n, err := r.outbox.RequeueStale(ctx, r.opts.StaleAfter); err != nil {
		r.log.Warn("requeue stale events", zap.Error(err))
	} else if n > 0 {
		r.log.Info("requeued stale events", zap.Int64("count", n))
	}

	stats, err := r.ProcessBatch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.log.Error("outbox batch", zap.Error(err))
		}
		return
	}
	if stats.Published+stats.Failed > 0 {
		r.log.Debug("outbox batch",
			zap.Int("published", stats.Published),
			zap.Int("failed", stats.Failed),
			zap.Int("skipped", stats.Skipped))
	}
}

// ProcessBatch relays up to BatchSize pending events, oldest first.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (RelayStats, error) {
	var stats RelayStats
	rows, err := r.outbox.GetPendingEvents(ctx, r.opts.BatchSize)
	if err != nil {
		return stats, err
	}

	for _, row := range rows {
		// Another relay instance may have claimed it since the read.
		if err := r.outbox.MarkEventProcessing(ctx, row.ID); err != nil {
			stats.Skipped++
			continue
		}
		if r.relay(ctx, row) {
			stats.Published++
		} else {
			stats.Failed++
		}
	}
	return stats, nil
}

func (r *OutboxRelay) relay(ctx context.Context, row *po.OutboxEventPO) bool {
	log := r.log.With(
		zap.String("event_id", row.ID),
		zap.String("event_type", row.EventType),
		zap.String("aggregate_id", row.AggregateID))

	err := r.publisher.Publish(ctx, messaging.Message{
		ID:          row.ID,
		AggregateID: row.AggregateID,
		EventType:   row.EventType,
		Payload:     []byte(row.Payload),
	})
	if err != nil {
		log.Warn("publish failed", zap.Int("attempt", row.RetryCount+1), zap.Error(err))
		if err := r.outbox.MarkEventFailed(ctx, row.ID, r.opts.MaxRetries); err != nil {
			log.Error("record publish failure", zap.Error(err))
		}
		return false
	}
	if err := r.outbox.MarkEventPublished(ctx, row.ID); err != nil {
		// The stale sweep puts it back; the consumer sees a duplicate.
		log.Error("mark published", zap.Error(err))
		return false
	}
	return true
}
