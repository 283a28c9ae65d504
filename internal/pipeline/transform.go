package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
	"github.com/couchcryptid/storm-data-hsda/internal/hsda"
	"github.com/couchcryptid/storm-data-hsda/internal/observability"
	"github.com/couchcryptid/storm-data-hsda/internal/sounding"
)

// TransformOptions are the run constants applied to every volume.
type TransformOptions struct {
	HailCodes    []int
	DZDROffset   float64
	CBBThreshold float64
	// Compress zstd-encodes published volumes.
	Compress bool
}

// VolumeTransformer implements Transformer by running the HSDA engine over
// each decoded volume.
type VolumeTransformer struct {
	engine   *hsda.Engine
	resolver *sounding.Resolver
	opts     TransformOptions
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a VolumeTransformer.
func NewTransformer(engine *hsda.Engine, resolver *sounding.Resolver, opts TransformOptions, logger *slog.Logger, metrics *observability.Metrics) *VolumeTransformer {
	return &VolumeTransformer{
		engine:   engine,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *VolumeTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	msg, err := domain.ParseVolumeMessage(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	vol, err := msg.ToVolume()
	if err != nil {
		return domain.OutputEvent{}, err
	}

	// A volume without candidates needs no sounding, but one it carries is
	// still cached for later scans.
	hasCandidates := len(hsda.HailMask(vol.Classification, t.opts.HailCodes)) > 0
	var thresholds domain.SoundingThresholds
	var source sounding.Source
	if hasCandidates || msg.Sounding != nil || msg.Profile != nil {
		thresholds, source, err = t.resolver.Resolve(msg)
		if err != nil {
			t.metrics.SoundingLookups.WithLabelValues(string(source), "failed").Inc()
			if hasCandidates {
				return domain.OutputEvent{}, err
			}
			t.logger.Warn("ignoring unusable sounding on volume without hail candidates",
				"volume_id", msg.VolumeID, "error", err)
		} else {
			t.metrics.SoundingLookups.WithLabelValues(string(source), "resolved").Inc()
		}
	}

	consts := hsda.Constants{
		Thresholds:   thresholds,
		DZDROffset:   t.opts.DZDROffset,
		HailCodes:    t.opts.HailCodes,
		CBBThreshold: t.opts.CBBThreshold,
	}
	if msg.DZDROffset != nil {
		consts.DZDROffset = *msg.DZDROffset
	}

	res, err := t.engine.Classify(vol, consts)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	t.record(res.Summary)

	t.logger.Debug("volume classified",
		"volume_id", msg.VolumeID,
		"station", msg.Station,
		"run_id", res.Summary.RunID,
		"status", res.Summary.Status,
		"candidates", res.Summary.Candidates,
		"classified", res.Summary.Classified,
		"failed", res.Summary.Failed,
		"sounding_source", source,
	)
	if res.Summary.Failed > 0 {
		t.logger.Warn("voxels failed during classification",
			"volume_id", msg.VolumeID, "failed", res.Summary.Failed)
	}

	out, err := domain.SerializeClassifiedVolume(domain.ClassifiedVolume{
		VolumeID:       msg.VolumeID,
		Station:        msg.Station,
		ScanTime:       msg.ScanTime,
		Shape:          res.Shape,
		Classification: res.Classification,
		LongName:       domain.LongName,
		StandardName:   domain.StandardName,
		Legend:         res.Legend(),
		Status:         string(res.Summary.Status),
		Summary:        res.Summary.ToWire(),
		ProcessedAt:    domain.Now(),
	}, t.opts.Compress)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("volume %s: %w", msg.VolumeID, err)
	}
	return out, nil
}

func (t *VolumeTransformer) record(s hsda.Summary) {
	t.metrics.Voxels.WithLabelValues(string(hsda.StatusClassified)).Add(float64(s.Classified))
	t.metrics.Voxels.WithLabelValues(string(hsda.StatusSkippedMissing)).Add(float64(s.Skipped))
	t.metrics.Voxels.WithLabelValues(string(hsda.StatusFailed)).Add(float64(s.Failed))
	for h := hsda.Small; h <= hsda.Giant; h++ {
		t.metrics.HailClassified.WithLabelValues(h.String()).Add(float64(s.BySize[h-1]))
	}
	if s.Status == hsda.RunNoHail {
		t.metrics.NoHailVolumes.Inc()
	}
	t.metrics.EngineDuration.Observe(s.Elapsed.Seconds())
}
