package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/illine/geomagnetic-forecast/internal/config"
	"github.com/illine/geomagnetic-forecast/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces hourly forecast messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes hourly forecasts to the sink topic in a
// single WriteMessages call. Keys are the forecast hour, so a newer bulletin
// for the same hour lands on the same partition after the older one.
func (w *Writer) LoadBatch(ctx context.Context, forecasts []domain.HourlyForecast) error {
	if len(forecasts) == 0 {
		return nil
	}
	processedAt := domain.Now()
	msgs := make([]kafkago.Message, len(forecasts))
	for i := range forecasts {
		msg, err := serializeToMessage(forecasts[i], processedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write forecasts: %w", err)
	}
	w.logger.Debug("published forecasts", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an hourly forecast into a Kafka message.
func serializeToMessage(f domain.HourlyForecast, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(domain.ToDTO(f))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(f.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "forecast_date", Value: []byte(f.Date.Format(domain.DateLayout))},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
