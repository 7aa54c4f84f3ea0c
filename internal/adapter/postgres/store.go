package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// migrate driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver

	"github.com/illine/geomagnetic-forecast/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

const upsertForecast = `
	INSERT INTO geomagnetic_forecast (id, forecast_date, forecast_hour, kp_index, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (forecast_date, forecast_hour)
	DO UPDATE SET kp_index = EXCLUDED.kp_index, updated_at = EXCLUDED.updated_at`

const selectByDate = `
	SELECT id, forecast_date, forecast_hour, kp_index, updated_at
	FROM geomagnetic_forecast
	WHERE forecast_date = $1
	ORDER BY forecast_hour`

// Store persists hourly forecasts in PostgreSQL. It implements
// pipeline.BatchLoader and the HTTP ForecastReader.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Migrate applies the embedded schema migrations to dsn. An up-to-date
// schema is not an error.
func Migrate(dsn string, logger *slog.Logger) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("database schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database migrations applied")
	return nil
}

// LoadBatch upserts forecasts in one transaction.
func (s *Store) LoadBatch(ctx context.Context, forecasts []domain.HourlyForecast) (err error) {
	if len(forecasts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertForecast)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := domain.Now()
	for _, f := range forecasts {
		e := EntityFromForecast(f, now)
		if _, err = stmt.ExecContext(ctx, e.ID, e.ForecastDate, e.ForecastHour, e.KpIndex, e.UpdatedAt); err != nil {
			return fmt.Errorf("upsert forecast %s: %w", f.Key(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit forecasts: %w", err)
	}
	s.logger.Debug("stored forecasts", "count", len(forecasts))
	return nil
}

// ForecastsByDate returns the stored hours of date, ascending.
func (s *Store) ForecastsByDate(ctx context.Context, date time.Time) ([]domain.HourlyForecast, error) {
	rows, err := s.db.QueryContext(ctx, selectByDate, domain.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var out []domain.HourlyForecast
	for rows.Next() {
		var e ForecastEntity
		if err := rows.Scan(&e.ID, &e.ForecastDate, &e.ForecastHour, &e.KpIndex, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		out = append(out, e.Forecast())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate forecasts: %w", err)
	}
	return out, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
