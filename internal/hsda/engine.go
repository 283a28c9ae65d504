package hsda

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// Constants are the per-run parameters shared by every voxel.
type Constants struct {
	Thresholds domain.SoundingThresholds
	// DZDROffset is the ZDR bias (dB) added to ZDR-tied breakpoints.
	DZDROffset float64
	// HailCodes are the upstream classification codes treated as hail candidates.
	HailCodes    []int
	CBBThreshold float64
}

// DefaultConstants returns the constants used when nothing is configured.
func DefaultConstants(t domain.SoundingThresholds) Constants {
	return Constants{
		Thresholds:   t,
		HailCodes:    slices.Clone(domain.DefaultHailCodes),
		CBBThreshold: DefaultCBBThreshold,
	}
}

// Validate checks the constants before a run.
func (c Constants) Validate() error {
	return c.validate(true)
}

// validate skips the sounding thresholds when no voxel will be banded.
func (c Constants) validate(needThresholds bool) error {
	var errs []error
	if needThresholds {
		if err := c.Thresholds.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if math.IsNaN(c.DZDROffset) || math.IsInf(c.DZDROffset, 0) {
		errs = append(errs, errors.New("dzdr offset must be finite"))
	}
	if len(c.HailCodes) == 0 {
		errs = append(errs, errors.New("at least one hail code is required"))
	}
	if !(c.CBBThreshold > 0) || math.IsInf(c.CBBThreshold, 0) {
		errs = append(errs, fmt.Errorf("cbb threshold must be positive, got %g", c.CBBThreshold))
	}
	return errors.Join(errs...)
}

type scoreFunc func(b Band, v Voxel, q Quality, dzdr float64) Scores

// Engine refines hail candidates of a volume into size classes. It holds no
// per-run state and is safe for concurrent use.
type Engine struct {
	set     *MembershipSet
	workers int
	logger  *slog.Logger
	clock   clockwork.Clock
	score   scoreFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the goroutines used per run. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger used for per-voxel failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the clock used to time runs.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// NewEngine creates an engine over a membership table. A nil set selects the
// built-in table.
func NewEngine(set *MembershipSet, opts ...Option) *Engine {
	if set == nil {
		set = DefaultMembershipSet()
	}
	e := &Engine{
		set:     set,
		workers: runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
		clock:   clockwork.NewRealClock(),
	}
	e.score = set.Score
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HailMask returns the indices whose classification is one of codes, in
// ascending order.
func HailMask(classification, codes []int) []int {
	var mask []int
	for i, c := range classification {
		if slices.Contains(codes, c) {
			mask = append(mask, i)
		}
	}
	return mask
}

// Classify scores every hail candidate of vol and writes the refined codes
// into a copy of its classification grid. Sounding thresholds are only
// required when the volume has candidates. Structural problems with the volume
// or the constants fail the whole run before any voxel is scored. Problems
// with a single voxel are recorded in its VoxelResult and never abort the run.
func (e *Engine) Classify(vol *domain.Volume, c Constants) (*Result, error) {
	start := e.clock.Now()
	if err := vol.Validate(); err != nil {
		return nil, fmt.Errorf("classify volume %q: %w", vol.ID, err)
	}
	mask := HailMask(vol.Classification, c.HailCodes)
	if err := c.validate(len(mask) > 0); err != nil {
		return nil, fmt.Errorf("classify volume %q: %w", vol.ID, err)
	}

	out := slices.Clone(vol.Classification)
	voxels := make([]VoxelResult, len(mask))

	if len(mask) > 0 {
		quality := ComputeQualityGrid(vol, c.CBBThreshold, e.workers)
		zh := vol.Field(domain.FieldReflectivity)
		zdr := vol.Field(domain.FieldDifferentialReflectivity)
		rhv := vol.Field(domain.FieldCorrelationCoefficient)
		alt := vol.Field(domain.FieldAltitude)

		var g errgroup.Group
		g.SetLimit(e.workers)
		for _, p := range partition(len(mask), e.workers) {
			g.Go(func() error {
				for k := p.lo; k < p.hi; k++ {
					i := mask[k]
					v := Voxel{ZH: zh[i], ZDR: zdr[i], RHV: rhv[i], Altitude: alt[i]}
					r := e.classifyVoxel(i, v, quality.At(i), c)
					if r.Status == StatusClassified {
						out[i] = int(r.Size.Code())
					}
					voxels[k] = r
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	return &Result{
		Shape:          slices.Clone(vol.Shape),
		Classification: out,
		Voxels:         voxels,
		Summary:        summarize(uuid.NewString(), voxels, e.clock.Since(start)),
	}, nil
}

func (e *Engine) classifyVoxel(i int, v Voxel, q Quality, c Constants) (r VoxelResult) {
	if v.Missing() {
		return VoxelResult{Index: i, Status: StatusSkippedMissing, Reason: "missing zh, zdr, rhv or altitude"}
	}

	defer func() {
		if p := recover(); p != nil {
			e.logger.Warn("voxel scoring failed", "voxel", i, "error", p)
			r = VoxelResult{Index: i, Status: StatusFailed, Reason: fmt.Sprint(p)}
		}
	}()

	b := BandFor(v.Altitude, c.Thresholds)
	scores := e.score(b, v, q, c.DZDROffset)
	return VoxelResult{
		Index:  i,
		Status: StatusClassified,
		Band:   b,
		Scores: scores,
		Size:   Decide(scores, v.ZDR),
	}
}
