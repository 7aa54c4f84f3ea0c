package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultSWPCURL is the NOAA SWPC geomagnetic forecast text product.
const DefaultSWPCURL = "https://services.swpc.noaa.gov/text/3-day-geomag-forecast.txt"

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// SWPC bulletin source for the collector.
	SWPCURL     string
	SWPCTimeout time.Duration

	// Storage. An empty PostgresDSN selects the in-memory store.
	PostgresDSN       string
	ForecastCacheDays int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	swpcTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("SWPC_TIMEOUT", "10s"))
	if err != nil || swpcTimeout <= 0 {
		return nil, errors.New("invalid SWPC_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "geomagnetic-bulletins"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "geomagnetic-forecasts"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "geomagnetic-forecast"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		SWPCURL:     sharedcfg.EnvOrDefault("SWPC_URL", DefaultSWPCURL),
		SWPCTimeout: swpcTimeout,

		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		ForecastCacheDays: parseForecastCacheDays(),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if u, err := url.Parse(cfg.SWPCURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid SWPC_URL")
	}

	return cfg, nil
}

func parseForecastCacheDays() int {
	if s := os.Getenv("FORECAST_CACHE_DAYS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 7
}
