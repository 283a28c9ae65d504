package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
	"github.com/couchcryptid/storm-data-hsda/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw volume messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a raw volume message into a classified output event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader publishes classified volumes to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline pulls radar volumes, classifies them and publishes the results.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
	backoff     time.Duration
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
		backoff:     initialBackoff,
	}
}

// CheckReadiness returns nil once at least one classified volume has been
// published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no classified volume published yet")
	}
	return nil
}

// Run processes volume batches until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for ctx.Err() == nil {
		if !p.step(ctx) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// batchReport tallies the outcome of one batch of volumes.
type batchReport struct {
	volumes   int
	rejected  int
	hailFound int
	noHail    int
}

func (r *batchReport) count(out domain.OutputEvent) {
	switch out.Headers[domain.HeaderStatus] {
	case "hail_found":
		r.hailFound++
	case "no_hail":
		r.noHail++
	}
}

// step runs one extract, classify and publish cycle. It returns false when
// the pipeline should stop.
func (p *Pipeline) step(ctx context.Context) bool {
	start := time.Now()

	raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract volumes failed", "error", err)
		return p.wait(ctx)
	}
	if len(raws) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))
	p.backoff = initialBackoff

	report := batchReport{volumes: len(raws)}
	outs, accepted := p.classify(ctx, raws, &report)
	if len(outs) == 0 {
		return true
	}

	if err := p.loader.LoadBatch(ctx, outs); err != nil {
		// Offsets stay uncommitted so the volumes are redelivered.
		p.logger.Error("publish classified volumes failed", "error", err, "volumes", len(outs))
		return p.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(outs)))
	for _, raw := range accepted {
		p.commit(ctx, raw)
	}

	elapsed := time.Since(start)
	p.metrics.BatchProcessingDuration.Observe(elapsed.Seconds())
	p.ready.Store(true)
	p.logger.Info("volume batch published",
		"volumes", report.volumes,
		"rejected", report.rejected,
		"hail_found", report.hailFound,
		"no_hail", report.noHail,
		"elapsed", elapsed,
	)
	return true
}

// classify transforms every raw volume. Rejected volumes are committed at once
// so a poison message is never redelivered.
func (p *Pipeline) classify(ctx context.Context, raws []domain.RawEvent, report *batchReport) ([]domain.OutputEvent, []domain.RawEvent) {
	outs := make([]domain.OutputEvent, 0, len(raws))
	accepted := make([]domain.RawEvent, 0, len(raws))

	for _, raw := range raws {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("volume rejected",
				"error", err,
				"key", string(raw.Key),
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			report.rejected++
			p.commit(ctx, raw)
			continue
		}
		report.count(out)
		outs = append(outs, out)
		accepted = append(accepted, raw)
	}
	return outs, accepted
}

// wait sleeps for the current backoff and doubles it. It returns false if ctx
// ends first.
func (p *Pipeline) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, p.backoff) {
		return false
	}
	p.backoff = retry.NextBackoff(p.backoff, maxBackoff)
	return true
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
