package hsda

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// HailSize is a refined hail class.
type HailSize int

const (
	Small HailSize = iota + 1
	Large
	Giant
)

// NumSizes is the number of hail size classes.
const NumSizes = 3

var sizeNames = [NumSizes + 1]string{"", "small", "large", "giant"}

func (h HailSize) String() string {
	if h < Small || h > Giant {
		return fmt.Sprintf("size(%d)", int(h))
	}
	return sizeNames[h]
}

// Variable is a scored polarimetric variable.
type Variable int

const (
	ZH Variable = iota
	ZDR
	RHV
)

// NumVariables is the number of scored variables.
const NumVariables = 3

var variableNames = [NumVariables]string{"zh", "zdr", "rhv"}

func (v Variable) String() string {
	if v < ZH || v > RHV {
		return fmt.Sprintf("variable(%d)", int(v))
	}
	return variableNames[v]
}

// Weights are the band weights of ZH, ZDR and RHOHV.
type Weights struct {
	ZH  float64 `json:"zh"`
	ZDR float64 `json:"zdr"`
	RHV float64 `json:"rhv"`
}

// ClassSpec holds the membership breakpoints of one size class.
type ClassSpec struct {
	ZH  Breakpoints `json:"zh"`
	ZDR Breakpoints `json:"zdr"`
	RHV Breakpoints `json:"rhv"`
}

// BandSpec holds the weights and class memberships of one altitude band.
type BandSpec struct {
	Weights Weights   `json:"weights"`
	Small   ClassSpec `json:"small"`
	Large   ClassSpec `json:"large"`
	Giant   ClassSpec `json:"giant"`
}

// TableSpec is the serialisable form of a membership table.
// ValidReflectivity is the [min, max] dBZ range over which dynamic breakpoints
// are checked for ordering.
type TableSpec struct {
	ValidReflectivity [2]float64          `json:"valid_reflectivity"`
	Bands             map[string]BandSpec `json:"bands"`
}

// MembershipSet is an immutable, validated membership table shared by every
// voxel evaluation.
type MembershipSet struct {
	mf      [NumBands][NumSizes][NumVariables]Breakpoints
	weights [NumBands]Weights
	spec    TableSpec
}

// reflectivitySweepStep is the dBZ step used to check dynamic breakpoints.
const reflectivitySweepStep = 0.5

// maxReflectivitySpan bounds a table's valid reflectivity range (dBZ).
const maxReflectivitySpan = 200

// NewMembershipSet validates a table and freezes it. Every band must be
// present, weights must be finite and non-negative, fixed breakpoints must be
// ordered, and dynamic breakpoints must stay ordered across the table's valid
// reflectivity range.
func NewMembershipSet(spec TableSpec) (*MembershipSet, error) {
	lo, hi := spec.ValidReflectivity[0], spec.ValidReflectivity[1]
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
		return nil, fmt.Errorf("membership table: invalid reflectivity range [%g, %g]", lo, hi)
	}
	if hi-lo > maxReflectivitySpan {
		return nil, fmt.Errorf("membership table: reflectivity range [%g, %g] wider than %g dBZ", lo, hi, float64(maxReflectivitySpan))
	}

	set := &MembershipSet{spec: spec}
	var errs []error
	for b := A1; b <= A6; b++ {
		bs, ok := spec.Bands[b.String()]
		if !ok {
			errs = append(errs, fmt.Errorf("band %s: missing", b))
			continue
		}
		if err := checkWeights(bs.Weights); err != nil {
			errs = append(errs, fmt.Errorf("band %s: %w", b, err))
		}
		set.weights[b-1] = bs.Weights

		for i, cs := range [NumSizes]ClassSpec{bs.Small, bs.Large, bs.Giant} {
			size := HailSize(i + 1)
			for v, bp := range [NumVariables]Breakpoints{cs.ZH, cs.ZDR, cs.RHV} {
				if err := checkBreakpoints(bp, lo, hi); err != nil {
					errs = append(errs, fmt.Errorf("band %s %s %s: %w", b, size, Variable(v), err))
				}
				set.mf[b-1][size-1][v] = bp
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("membership table: %w", err)
	}
	return set, nil
}

// LoadMembershipSet decodes a JSON TableSpec and validates it.
func LoadMembershipSet(r io.Reader) (*MembershipSet, error) {
	var spec TableSpec
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode membership table: %w", err)
	}
	return NewMembershipSet(spec)
}

// Breakpoints returns the membership breakpoints for a band, size and variable.
func (s *MembershipSet) Breakpoints(b Band, h HailSize, v Variable) Breakpoints {
	return s.mf[b-1][h-1][v]
}

// Weights returns the variable weights of a band.
func (s *MembershipSet) Weights(b Band) Weights {
	return s.weights[b-1]
}

// Spec returns the table the set was built from.
func (s *MembershipSet) Spec() TableSpec {
	return s.spec
}

func checkWeights(w Weights) error {
	for _, v := range []float64{w.ZH, w.ZDR, w.RHV} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("weights must be finite and non-negative, got %+v", w)
		}
	}
	return nil
}

func checkBreakpoints(bp Breakpoints, lo, hi float64) error {
	switch bp.Kind {
	case KindFixed:
		return bp.check(lo)
	case KindDynamic:
		for _, g := range bp.Dynamic {
			if _, ok := generatorNames[g.Fn]; !ok {
				return fmt.Errorf("unknown breakpoint generator %d", int(g.Fn))
			}
		}
		steps := int((hi - lo) / reflectivitySweepStep)
		for i := 0; i <= steps; i++ {
			if err := bp.check(lo + float64(i)*reflectivitySweepStep); err != nil {
				return err
			}
		}
		return bp.check(hi)
	default:
		return errors.New("breakpoints not set")
	}
}
