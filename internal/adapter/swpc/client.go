package swpc

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/illine/geomagnetic-forecast/internal/observability"
)

// Client downloads geomagnetic forecast bulletins from the NOAA Space Weather
// Prediction Center, or any server publishing the same text product.
type Client struct {
	client  *resty.Client
	url     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewClient creates a bulletin client for url with a per-request timeout.
func NewClient(url string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "text/plain").
			SetHeader("User-Agent", "geomagnetic-forecast-collector"),
		url:     url,
		logger:  logger,
		metrics: metrics,
	}
}

// URL returns the bulletin location this client fetches.
func (c *Client) URL() string {
	return c.url
}

// FetchBulletin returns the bulletin text. The content is not validated here;
// the parser decides whether it is usable.
func (c *Client) FetchBulletin(ctx context.Context) (string, error) {
	start := time.Now()
	text, err := c.fetch(ctx)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		return "", err
	}
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("bulletin fetched", "url", c.url, "bytes", len(text))
	return text, nil
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		return "", fmt.Errorf("fetch bulletin: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("swpc returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	text := resp.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("swpc returned an empty bulletin")
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
