package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xpump/platform/internal/domain"
	"github.com/xpump/platform/internal/guard"
	"github.com/xpump/platform/internal/infra/metrics"
)

// TopicPrefix namespaces every topic the outbox publishes to.
const TopicPrefix = "xpump"

// OutboxStore reads and acknowledges rows of the event_outbox table.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRow, error)
	MarkPublished(ctx context.Context, seqIDs []int64) error
}

// Publisher delivers one message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxTopic returns the Kafka topic for an event: xpump.<aggregate>.<event>.
func OutboxTopic(aggregate domain.AggregateType, event domain.EventType) string {
	return TopicPrefix + "." + string(aggregate) + "." + string(event)
}

type outboxEnvelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxPoller polls the event_outbox table and publishes events to Kafka.
type OutboxPoller struct {
	store     OutboxStore
	producer  Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(store OutboxStore, producer Publisher, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		store:     store,
		producer:  producer,
		logger:    logger,
		interval:  500 * time.Millisecond,
		batchSize: 100,
	}
}

// WithPolling overrides the poll interval and batch size. Non-positive values keep the defaults.
func (p *OutboxPoller) WithPolling(interval time.Duration, batchSize int) *OutboxPoller {
	if interval > 0 {
		p.interval = interval
	}
	if batchSize > 0 {
		p.batchSize = batchSize
	}
	return p
}

// Run polls until ctx is cancelled. It always returns nil on cancellation so it
// can be used directly as an errgroup member.
func (p *OutboxPoller) Run(ctx context.Context) error {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return nil
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// PollOnce publishes one batch and acknowledges the events that were delivered.
// Events after the first failed publish stay in the outbox to keep per-user order.
func (p *OutboxPoller) PollOnce(ctx context.Context) (int, error) {
	rows, err := p.store.FetchUnpublished(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	published := make([]int64, 0, len(rows))
	for _, e := range rows {
		topic := OutboxTopic(e.AggregateType, e.EventType)
		msg, err := json.Marshal(outboxEnvelope{
			EventID:       e.EventID,
			AggregateType: string(e.AggregateType),
			AggregateID:   e.AggregateID,
			EventType:     string(e.EventType),
			Payload:       e.Payload,
			OccurredAt:    e.OccurredAt,
		})
		if err != nil {
			return 0, fmt.Errorf("encode event %s: %w", e.EventID, err)
		}

		if err := p.producer.Publish(ctx, topic, []byte(e.PartitionKey), msg); err != nil {
			var open *guard.ErrCircuitOpen
			if errors.As(err, &open) {
				metrics.OutboxSkipped.WithLabelValues(topic).Inc()
				p.logger.Warn("outbox topic circuit open", "topic", topic, "reason", open.Reason)
			} else {
				p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			}
			break
		}
		metrics.OutboxPublished.WithLabelValues(topic).Inc()
		published = append(published, e.SeqID)
	}

	if err := p.store.MarkPublished(ctx, published); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}

	p.logger.Debug("outbox poll complete", "published", len(published))
	return len(published), nil
}
