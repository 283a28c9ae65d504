package hsda

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// DefaultCBBThreshold is the beam blockage fraction at which the blockage
// penalty reaches its reference value.
const DefaultCBBThreshold = 0.5

// Below these values ZDR/RHOHV carry no information, so the RHOHV penalty is
// dropped from the ZDR and RHOHV confidences.
const (
	qualityMinRHV  = 0.8
	qualityMinDBZH = 25.0
)

// Quality holds per-voxel confidence in [0, 1] for ZH, ZDR and RHOHV.
type Quality struct {
	ZH  float64
	ZDR float64
	RHV float64
}

// QualityAt computes the confidence vector of one voxel from differential
// phase (deg), SNR (dB), RHOHV, reflectivity (dBZ) and cumulative beam
// blockage. A missing input drives the affected confidence to 0.
func QualityAt(dbzh, phi, rhv, snr, cbb, cbbThreshold float64) Quality {
	noise := math.Pow(10, -0.1*snr)

	ac := phi / 600
	bc := noise
	cc := phi / 300
	dc := (1 - rhv) / 0.5
	fc := phi / 100
	gc := dc
	hc := noise
	// The published model also defines Ec = 3.16228*noise for KDP, which is not scored here.

	if rhv < qualityMinRHV || dbzh < qualityMinDBZH {
		dc, gc = 0, 0
	}

	t := cbb / cbbThreshold

	return Quality{
		ZH:  clampUnit(math.Exp(-0.69 * (ac*ac + bc*bc + t*t))),
		ZDR: clampUnit(math.Exp(-0.69 * (cc*cc + dc*dc + t*t))),
		RHV: clampUnit(math.Exp(-0.69 * (fc*fc + gc*gc + hc*hc))),
	}
}

// QualityGrid holds the confidence vectors of a whole volume, one slice per
// variable.
type QualityGrid struct {
	ZH  []float64
	ZDR []float64
	RHV []float64
}

// At returns the confidence vector of voxel i.
func (g *QualityGrid) At(i int) Quality {
	return Quality{ZH: g.ZH[i], ZDR: g.ZDR[i], RHV: g.RHV[i]}
}

// ComputeQualityGrid evaluates QualityAt over every voxel of a validated
// volume, splitting the index space across at most workers goroutines.
func ComputeQualityGrid(vol *domain.Volume, cbbThreshold float64, workers int) *QualityGrid {
	workers = max(workers, 1)
	n := vol.Size()
	grid := &QualityGrid{
		ZH:  make([]float64, n),
		ZDR: make([]float64, n),
		RHV: make([]float64, n),
	}

	dbzh := vol.Field(domain.FieldReflectivity)
	phi := vol.Field(domain.FieldDifferentialPhase)
	rhv := vol.Field(domain.FieldCorrelationCoefficient)
	snr := vol.Field(domain.FieldSNR)
	cbb := vol.Field(domain.FieldCBB)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, p := range partition(n, workers) {
		g.Go(func() error {
			for i := p.lo; i < p.hi; i++ {
				q := QualityAt(dbzh[i], phi[i], rhv[i], snr[i], cbb[i], cbbThreshold)
				grid.ZH[i], grid.ZDR[i], grid.RHV[i] = q.ZH, q.ZDR, q.RHV
			}
			return nil
		})
	}
	_ = g.Wait()

	return grid
}

// clampUnit limits v to [0, 1] and maps NaN to 0.
func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

type span struct{ lo, hi int }

// partition splits [0, n) into at most parts contiguous, non-empty spans.
func partition(n, parts int) []span {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	spans := make([]span, 0, parts)
	for lo := 0; lo < n; lo += size {
		spans = append(spans, span{lo: lo, hi: min(lo+size, n)})
	}
	return spans
}
