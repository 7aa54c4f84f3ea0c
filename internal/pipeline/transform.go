package pipeline

import (
	"context"
	"log/slog"

	"github.com/illine/geomagnetic-forecast/internal/domain"
)

// BulletinTransformer implements Transformer by parsing the message value as
// bulletin text against the current UTC date.
type BulletinTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a BulletinTransformer.
func NewTransformer(logger *slog.Logger) *BulletinTransformer {
	return &BulletinTransformer{logger: logger}
}

func (t *BulletinTransformer) Transform(_ context.Context, raw domain.RawEvent) ([]domain.HourlyForecast, error) {
	today := domain.Today()
	forecasts, err := domain.ParseBulletin(string(raw.Value), today)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("bulletin parsed",
		"key", string(raw.Key),
		"forecast_date", today.Format(domain.DateLayout),
		"records", len(forecasts),
	)
	return forecasts, nil
}
