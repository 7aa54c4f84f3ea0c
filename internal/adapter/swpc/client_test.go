package swpc

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illine/geomagnetic-forecast/internal/observability"
)

const sampleBulletin = ":Product: Geomagnetic Forecast\n:Issued: 2026 Oct 18 2205 UTC\n"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observability.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	metrics := observability.NewMetricsForTesting()
	return NewClient(srv.URL+"/text/3-day-geomag-forecast.txt", time.Second, slog.Default(), metrics), metrics
}

func TestFetchBulletin_Success(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text/3-day-geomag-forecast.txt", r.URL.Path)
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(sampleBulletin))
	})

	text, err := client.FetchBulletin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleBulletin, text)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("success")), 0)
	assert.True(t, strings.HasSuffix(client.URL(), "/text/3-day-geomag-forecast.txt"))
}

func TestFetchBulletin_NonOK(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream maintenance", http.StatusServiceUnavailable)
	})

	_, err := client.FetchBulletin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "upstream maintenance")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchRequests.WithLabelValues("error")), 0)
}

func TestFetchBulletin_Empty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("  \n"))
	})

	_, err := client.FetchBulletin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty bulletin")
}

func TestFetchBulletin_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleBulletin))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchBulletin(ctx)
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}
