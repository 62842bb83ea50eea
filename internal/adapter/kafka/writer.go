package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// eventTypeInterval tags every published message.
const eventTypeInterval = "earthquake_interval"

// Writer publishes timeline intervals to a Kafka topic.
// It implements pipeline.IntervalPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured interval topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishIntervals writes every interval in a single WriteMessages call.
// Messages are keyed by event id so revisions of one event share a partition.
func (w *Writer) PublishIntervals(ctx context.Context, intervals []domain.QuakeInterval) error {
	if len(intervals) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(intervals))
	for i := range intervals {
		msg, err := serializeToMessage(intervals[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish intervals: %w", err)
	}
	w.logger.Debug("intervals published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(iv domain.QuakeInterval) (kafkago.Message, error) {
	data, err := json.Marshal(iv)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize interval: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(iv.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventTypeInterval)},
			{Key: "generated_at", Value: []byte(iv.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
