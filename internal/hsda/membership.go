package hsda

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Trapezoid evaluates a trapezoidal membership function with breakpoints
// a <= b <= c <= d: 0 outside (a, d), a linear ramp on (a, b), 1 on [b, c] and
// a linear ramp down on (c, d). A zero-width ramp degenerates to a step and
// never divides by zero. Unordered breakpoints are evaluated as is.
func Trapezoid(x, a, b, c, d float64) float64 {
	var y float64
	switch {
	case x > a && x < b:
		y = (x - a) / (b - a)
	case x >= b && x <= c:
		y = 1
	case x > c && x < d:
		y = (d - x) / (d - c)
	}
	return clampUnit(y)
}

// GeneratorFunc selects a breakpoint generator. Generators let a breakpoint
// slide with the voxel's reflectivity and the global ZDR bias.
type GeneratorFunc int

const (
	// GenConstant yields the offset unchanged.
	GenConstant GeneratorFunc = iota + 1
	// GenConstantZDR yields offset + ZDR bias, for fixed ZDR breakpoints that
	// must follow the radar's ZDR calibration.
	GenConstantZDR
	// GenRainZDR follows the mean rain ZDR-ZH relation
	// -0.5 + 2.5e-3 ZH + 7.5e-4 ZH², shifted by offset + ZDR bias.
	GenRainZDR
)

var generatorNames = map[GeneratorFunc]string{
	GenConstant:    "constant",
	GenConstantZDR: "constant_zdr",
	GenRainZDR:     "rain_zdr",
}

func (f GeneratorFunc) String() string {
	if name, ok := generatorNames[f]; ok {
		return name
	}
	return fmt.Sprintf("generator(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f GeneratorFunc) MarshalText() ([]byte, error) {
	name, ok := generatorNames[f]
	if !ok {
		return nil, fmt.Errorf("unknown breakpoint generator %d", int(f))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *GeneratorFunc) UnmarshalText(text []byte) error {
	for fn, name := range generatorNames {
		if name == string(text) {
			*f = fn
			return nil
		}
	}
	return fmt.Errorf("unknown breakpoint generator %q", text)
}

// Eval computes the breakpoint for reflectivity zh (dBZ) and ZDR bias dzdr (dB).
func (f GeneratorFunc) Eval(offset, zh, dzdr float64) float64 {
	switch f {
	case GenConstant:
		return offset
	case GenConstantZDR:
		return offset + dzdr
	case GenRainZDR:
		return -0.5 + 2.5e-3*zh + 7.5e-4*zh*zh + offset + dzdr
	default:
		return math.NaN()
	}
}

// Generator is one dynamic breakpoint: a generator function and its offset.
type Generator struct {
	Fn     GeneratorFunc `json:"fn"`
	Offset float64       `json:"offset"`
}

// BreakpointKind tags the variant held by Breakpoints.
type BreakpointKind int

const (
	KindFixed BreakpointKind = iota + 1
	KindDynamic
)

// Breakpoints are the four trapezoid breakpoints of one membership function,
// either fixed numbers or generators resolved per voxel.
//
// On the wire a fixed set is [a, b, c, d] and a dynamic set is a four-element
// array of {"fn": ..., "offset": ...} objects.
type Breakpoints struct {
	Kind    BreakpointKind
	Fixed   [4]float64
	Dynamic [4]Generator
}

// Fixed returns fixed breakpoints.
func Fixed(a, b, c, d float64) Breakpoints {
	return Breakpoints{Kind: KindFixed, Fixed: [4]float64{a, b, c, d}}
}

// Dynamic returns breakpoints computed per voxel by generators.
func Dynamic(a, b, c, d Generator) Breakpoints {
	return Breakpoints{Kind: KindDynamic, Dynamic: [4]Generator{a, b, c, d}}
}

// Resolve returns the concrete breakpoints for a voxel with reflectivity zh
// under ZDR bias dzdr.
func (bp Breakpoints) Resolve(zh, dzdr float64) (a, b, c, d float64) {
	if bp.Kind != KindDynamic {
		return bp.Fixed[0], bp.Fixed[1], bp.Fixed[2], bp.Fixed[3]
	}
	g := bp.Dynamic
	return g[0].Fn.Eval(g[0].Offset, zh, dzdr),
		g[1].Fn.Eval(g[1].Offset, zh, dzdr),
		g[2].Fn.Eval(g[2].Offset, zh, dzdr),
		g[3].Fn.Eval(g[3].Offset, zh, dzdr)
}

// Membership evaluates the membership of value for a voxel with reflectivity
// zh. The result is always in [0, 1].
func Membership(value, zh float64, bp Breakpoints, dzdr float64) float64 {
	a, b, c, d := bp.Resolve(zh, dzdr)
	return Trapezoid(value, a, b, c, d)
}

var errUnordered = errors.New("breakpoints must satisfy a <= b <= c <= d")

// check verifies ordering at one reflectivity.
func (bp Breakpoints) check(zh float64) error {
	a, b, c, d := bp.Resolve(zh, 0)
	for _, v := range []float64{a, b, c, d} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite breakpoint at %.1f dBZ", zh)
		}
	}
	if a > b || b > c || c > d {
		return fmt.Errorf("%w: got (%g, %g, %g, %g) at %.1f dBZ", errUnordered, a, b, c, d, zh)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (bp Breakpoints) MarshalJSON() ([]byte, error) {
	if bp.Kind == KindDynamic {
		return json.Marshal(bp.Dynamic)
	}
	return json.Marshal(bp.Fixed)
}

// UnmarshalJSON implements json.Unmarshaler.
func (bp *Breakpoints) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("breakpoints: %w", err)
	}
	if len(items) != 4 {
		return fmt.Errorf("breakpoints: want 4 entries, got %d", len(items))
	}

	dynamic := 0
	for _, item := range items {
		if bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			dynamic++
		}
	}

	switch dynamic {
	case 0:
		var fixed [4]float64
		if err := json.Unmarshal(data, &fixed); err != nil {
			return fmt.Errorf("breakpoints: %w", err)
		}
		*bp = Breakpoints{Kind: KindFixed, Fixed: fixed}
	case 4:
		var gens [4]Generator
		if err := json.Unmarshal(data, &gens); err != nil {
			return fmt.Errorf("breakpoints: %w", err)
		}
		*bp = Breakpoints{Kind: KindDynamic, Dynamic: gens}
	default:
		return errors.New("breakpoints: mix of numbers and generators; use constant generators instead")
	}
	return nil
}
