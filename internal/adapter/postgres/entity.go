package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/illine/geomagnetic-forecast/internal/domain"
)

// forecastNamespace scopes entity IDs so they never collide with other UUIDv5 users.
var forecastNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:geomagnetic-forecast:hourly"))

// ForecastEntity is a row of geomagnetic_forecast.
type ForecastEntity struct {
	ID           uuid.UUID
	ForecastDate time.Time
	ForecastHour int
	KpIndex      int
	UpdatedAt    time.Time
}

// EntityFromForecast maps a domain record to its row. The ID is derived from
// the forecast hour, so reloading a bulletin upserts instead of duplicating.
func EntityFromForecast(f domain.HourlyForecast, updatedAt time.Time) ForecastEntity {
	return ForecastEntity{
		ID:           entityID(f),
		ForecastDate: domain.DateOf(f.Date),
		ForecastHour: f.Hour,
		KpIndex:      f.Index,
		UpdatedAt:    updatedAt.UTC(),
	}
}

// Forecast maps the row back to the domain record.
func (e ForecastEntity) Forecast() domain.HourlyForecast {
	return domain.HourlyForecast{
		Date:  domain.DateOf(e.ForecastDate),
		Hour:  e.ForecastHour,
		Index: e.KpIndex,
	}
}

func entityID(f domain.HourlyForecast) uuid.UUID {
	return uuid.NewSHA1(forecastNamespace, []byte(f.Key()))
}
