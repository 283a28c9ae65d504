package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Field names a per-voxel scalar grid of a volume.
type Field string

const (
	FieldReflectivity             Field = "reflectivity"
	FieldDifferentialReflectivity Field = "differential_reflectivity"
	FieldCorrelationCoefficient   Field = "cross_correlation_ratio"
	FieldDifferentialPhase        Field = "differential_phase"
	FieldSNR                      Field = "snr"
	FieldCBB                      Field = "cbb"
	FieldAltitude                 Field = "altitude"
)

// RequiredFields lists the fields a volume needs before it can be scored.
var RequiredFields = []Field{
	FieldReflectivity,
	FieldDifferentialReflectivity,
	FieldCorrelationCoefficient,
	FieldDifferentialPhase,
	FieldSNR,
	FieldCBB,
	FieldAltitude,
}

var (
	// ErrShapeMismatch reports grids that do not share the volume's index space.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrMissingField reports a required grid that is absent from the volume.
	ErrMissingField = errors.New("missing field")
)

// Volume is one radar volume: aligned scalar grids plus the upstream
// hydrometeor classification.
type Volume struct {
	ID             string
	Station        string
	ScanTime       time.Time
	Shape          []int
	Fields         map[Field][]float64
	Classification []int
}

// Size returns the number of voxels implied by the shape, or 0 for an empty
// or invalid shape.
func (v *Volume) Size() int {
	return shapeSize(v.Shape)
}

// Field returns the named grid, or nil when the volume does not carry it.
func (v *Volume) Field(f Field) []float64 {
	return v.Fields[f]
}

// Validate checks that every required grid is present and has exactly one
// sample per voxel.
func (v *Volume) Validate() error {
	n := v.Size()
	if n == 0 {
		return fmt.Errorf("volume %q: invalid shape %v: %w", v.ID, v.Shape, ErrShapeMismatch)
	}
	if len(v.Classification) != n {
		return fmt.Errorf("volume %q: classification has %d samples, want %d: %w",
			v.ID, len(v.Classification), n, ErrShapeMismatch)
	}
	for _, f := range RequiredFields {
		data, ok := v.Fields[f]
		if !ok || data == nil {
			return fmt.Errorf("volume %q: %s: %w", v.ID, f, ErrMissingField)
		}
		if len(data) != n {
			return fmt.Errorf("volume %q: %s has %d samples, want %d: %w",
				v.ID, f, len(data), n, ErrShapeMismatch)
		}
	}
	return nil
}

// IsMissing reports whether a sample carries no valid measurement.
func IsMissing(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}

func shapeSize(shape []int) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range shape {
		if d <= 0 || n > math.MaxInt/d {
			return 0
		}
		n *= d
	}
	return n
}
