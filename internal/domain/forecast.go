package domain

import (
	"context"
	"fmt"
	"time"
)

// HoursPerDay is the number of records a successful parse produces.
const HoursPerDay = 24

// DateLayout is the wire format for forecast dates.
const DateLayout = "2006-01-02"

// HourlyForecast is one hourly Kp index forecast.
type HourlyForecast struct {
	Date  time.Time // calendar date at 00:00 UTC
	Hour  int       // 0-23
	Index int
}

// Time combines Date and Hour into a UTC instant.
func (f HourlyForecast) Time() time.Time {
	return time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), f.Hour, 0, 0, 0, time.UTC)
}

// Key identifies the forecast hour, e.g. "2026-10-19T05".
func (f HourlyForecast) Key() string {
	return fmt.Sprintf("%sT%02d", f.Date.Format(DateLayout), f.Hour)
}

// ForecastDTO is the serialized form exposed over HTTP and Kafka.
type ForecastDTO struct {
	Index        int    `json:"index"`
	Time         int64  `json:"time"` // Unix seconds, see HourlyForecast.Time
	ForecastDate string `json:"forecast_date"`
	ForecastHour int    `json:"forecast_hour"`
}

// ToDTO maps a record to its serialized form.
func ToDTO(f HourlyForecast) ForecastDTO {
	return ForecastDTO{
		Index:        f.Index,
		Time:         f.Time().Unix(),
		ForecastDate: f.Date.Format(DateLayout),
		ForecastHour: f.Hour,
	}
}

// ToDTOs maps records in order.
func ToDTOs(forecasts []HourlyForecast) []ForecastDTO {
	out := make([]ForecastDTO, len(forecasts))
	for i, f := range forecasts {
		out[i] = ToDTO(f)
	}
	return out
}

// FromDTO is the inverse of ToDTO. The instant in Time wins over the
// redundant date and hour fields.
func FromDTO(dto ForecastDTO) HourlyForecast {
	t := time.Unix(dto.Time, 0).UTC()
	return HourlyForecast{
		Date:  DateOf(t),
		Hour:  t.Hour(),
		Index: dto.Index,
	}
}

// MobileForecastDTO is the compact form served to mobile clients. Time is
// the record instant in Unix milliseconds.
type MobileForecastDTO struct {
	Index int   `json:"index"`
	Time  int64 `json:"time"`
}

// ToMobileDTO maps a serialized forecast to its mobile form. A nil dto, an
// unparseable date or an hour outside 0-23 fails with ErrInvalidArgument.
func ToMobileDTO(dto *ForecastDTO) (MobileForecastDTO, error) {
	if dto == nil {
		return MobileForecastDTO{}, fmt.Errorf("%w: nil forecast", ErrInvalidArgument)
	}
	date, err := time.Parse(DateLayout, dto.ForecastDate)
	if err != nil {
		return MobileForecastDTO{}, fmt.Errorf("%w: forecast date %q", ErrInvalidArgument, dto.ForecastDate)
	}
	if dto.ForecastHour < 0 || dto.ForecastHour >= HoursPerDay {
		return MobileForecastDTO{}, fmt.Errorf("%w: forecast hour %d", ErrInvalidArgument, dto.ForecastHour)
	}
	f := HourlyForecast{Date: date, Hour: dto.ForecastHour, Index: dto.Index}
	return MobileForecastDTO{Index: f.Index, Time: f.Time().UnixMilli()}, nil
}

// ToMobileDTOs maps records in order.
func ToMobileDTOs(forecasts []HourlyForecast) []MobileForecastDTO {
	out := make([]MobileForecastDTO, len(forecasts))
	for i, f := range forecasts {
		out[i] = MobileForecastDTO{Index: f.Index, Time: f.Time().UnixMilli()}
	}
	return out
}

// Instant returns the record instant in UTC.
func (m MobileForecastDTO) Instant() time.Time {
	return time.UnixMilli(m.Time).UTC()
}

// DateOf returns t's calendar date, in t's own location, as 00:00 UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RawEvent represents an unprocessed message from the source topic. Value
// holds the bulletin text.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
