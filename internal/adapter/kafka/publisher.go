package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/illine/geomagnetic-forecast/internal/config"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher sends raw bulletin text to the source topic. The collector uses it
// to feed the pipeline.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured source topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSourceTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBulletin writes one bulletin. source identifies where it came from,
// typically the fetch URL, and is used as the message key.
func (p *Publisher) PublishBulletin(ctx context.Context, source, text string, fetchedAt time.Time) error {
	msg := bulletinMessage(source, text, fetchedAt)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish bulletin: %w", err)
	}
	p.logger.Info("bulletin published", "source", source, "bytes", len(text))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func bulletinMessage(source, text string, fetchedAt time.Time) kafkago.Message {
	return kafkago.Message{
		Key:   []byte(source),
		Value: []byte(text),
		Time:  fetchedAt,
		Headers: []kafkago.Header{
			{Key: "content_type", Value: []byte("text/plain")},
			{Key: "fetched_at", Value: []byte(fetchedAt.UTC().Format(time.RFC3339))},
		},
	}
}
