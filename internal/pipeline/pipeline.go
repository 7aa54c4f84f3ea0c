package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/illine/geomagnetic-forecast/internal/domain"
	"github.com/illine/geomagnetic-forecast/internal/observability"
)

// BatchExtractor reads up to batchSize raw bulletins from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer parses a raw bulletin into today's hourly forecasts.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) ([]domain.HourlyForecast, error)
}

// BatchLoader writes hourly forecasts to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, forecasts []domain.HourlyForecast) error
}

// Loaders fans a batch out to several loaders in order, stopping at the first error.
type Loaders []BatchLoader

func (ls Loaders) LoadBatch(ctx context.Context, forecasts []domain.HourlyForecast) error {
	for _, l := range ls {
		if err := l.LoadBatch(ctx, forecasts); err != nil {
			return err
		}
	}
	return nil
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one forecast,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any forecasts yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.BulletinsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	loaded, ok := p.transformAndLoad(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// transformAndLoad parses each bulletin in the batch, loads the records of the
// successful ones, and commits offsets. A bulletin that fails to parse is
// committed and skipped; retrying it would fail the same way. Returns the
// number of loaded records and false if the pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	var out []domain.HourlyForecast
	successfulRaws := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		forecasts, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			kind := errorKind(err)
			p.logger.Warn("bulletin rejected, skipping message",
				"error", err,
				"kind", kind,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ParseErrors.WithLabelValues(kind).Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		out = append(out, forecasts...)
		successfulRaws = append(successfulRaws, raw)
	}

	if len(out) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.logger.Error("load batch failed", "error", err, "records", len(out))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.RecordsProduced.Add(float64(len(out)))

	for _, raw := range successfulRaws {
		p.commitOffset(ctx, raw)
	}

	return len(out), true
}

// errorKind labels a transform error for metrics and logs.
func errorKind(err error) string {
	if kind := domain.KindOf(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		return "invalid_argument"
	}
	return "other"
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
