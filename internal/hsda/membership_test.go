package hsda

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrapezoid_Shape(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
		{2, 1},
		{2.5, 0.5},
		{3, 0},
		{4, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Trapezoid(tt.x, 0, 1, 2, 3), 1e-12, "x=%v", tt.x)
	}
}

func TestTrapezoid_DegenerateRamps(t *testing.T) {
	// a == b: step up at a.
	assert.Equal(t, 1.0, Trapezoid(0, 0, 0, 1, 2))
	assert.Equal(t, 0.0, Trapezoid(-0.001, 0, 0, 1, 2))
	// c == d: step down after c.
	assert.Equal(t, 1.0, Trapezoid(1, 0, 0, 1, 1))
	assert.Equal(t, 0.0, Trapezoid(1.001, 0, 0, 1, 1))
	// fully collapsed.
	assert.Equal(t, 1.0, Trapezoid(5, 5, 5, 5, 5))
	assert.False(t, math.IsNaN(Trapezoid(5, 5, 5, 5, 5)))
}

func TestMembership_Bounds(t *testing.T) {
	sets := []Breakpoints{
		Fixed(0, 1, 2, 3),
		Fixed(3, 1, 2, 0),
		Fixed(-1, -1, 1, 1),
		Fixed(math.NaN(), 0, 1, 2),
		Dynamic(rainZDR(-0.3), rainZDR(0.5), rainZDR(2), rainZDR(3)),
		Dynamic(rainZDR(3), constZDR(0), rainZDR(-2), constZDR(-1)),
		Dynamic(Generator{Fn: 99}, constZDR(0), constZDR(1), constZDR(2)),
	}
	values := []float64{-100, -2, -0.5, 0, 0.3, 0.97, 1, 2.5, 40, 55, 80, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, bp := range sets {
		for _, x := range values {
			for _, zh := range []float64{0, 40, 60, 80, math.NaN()} {
				m := Membership(x, zh, bp, 0.3)
				assert.True(t, m >= 0 && m <= 1, "membership(%v, zh=%v, %+v) = %v", x, zh, bp, m)
			}
		}
	}
}

func TestGeneratorFunc_Eval(t *testing.T) {
	assert.InDelta(t, 0.7, GenConstant.Eval(0.7, 55, 1), 1e-12)
	assert.InDelta(t, 0.5, GenConstantZDR.Eval(0.3, 55, 0.2), 1e-12)
	assert.InDelta(t, 0.8, GenRainZDR.Eval(0, 40, 0), 1e-12)
	assert.InDelta(t, 1.3, GenRainZDR.Eval(0.2, 40, 0.3), 1e-12)
	assert.True(t, math.IsNaN(GeneratorFunc(42).Eval(0, 40, 0)))
}

func TestBreakpoints_Resolve(t *testing.T) {
	a, b, c, d := Fixed(1, 2, 3, 4).Resolve(55, 9)
	assert.Equal(t, [4]float64{1, 2, 3, 4}, [4]float64{a, b, c, d})

	bp := Dynamic(constZDR(-0.5), constZDR(0), rainZDR(-0.5), rainZDR(0.3))
	a, b, c, d = bp.Resolve(40, 0.5)
	assert.InDelta(t, 0.0, a, 1e-12)
	assert.InDelta(t, 0.5, b, 1e-12)
	assert.InDelta(t, 0.8, c, 1e-12)
	assert.InDelta(t, 1.6, d, 1e-12)
}

func TestBreakpoints_JSON(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		var bp Breakpoints
		require.NoError(t, json.Unmarshal([]byte(`[0, 1, 2.5, 3]`), &bp))
		assert.Equal(t, Fixed(0, 1, 2.5, 3), bp)

		out, err := json.Marshal(bp)
		require.NoError(t, err)
		assert.JSONEq(t, `[0, 1, 2.5, 3]`, string(out))
	})

	t.Run("dynamic", func(t *testing.T) {
		in := `[{"fn":"constant_zdr","offset":-0.5},{"fn":"constant","offset":0},
			{"fn":"rain_zdr","offset":-0.5},{"fn":"rain_zdr","offset":0.3}]`
		var bp Breakpoints
		require.NoError(t, json.Unmarshal([]byte(in), &bp))
		want := Dynamic(constZDR(-0.5), Generator{Fn: GenConstant}, rainZDR(-0.5), rainZDR(0.3))
		assert.Equal(t, want, bp)

		out, err := json.Marshal(bp)
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	})

	t.Run("rejects", func(t *testing.T) {
		for name, in := range map[string]string{
			"three entries":     `[0, 1, 2]`,
			"mixed":             `[0, {"fn":"constant","offset":1}, 2, 3]`,
			"unknown generator": `[{"fn":"cubic","offset":0},{"fn":"constant","offset":0},{"fn":"constant","offset":0},{"fn":"constant","offset":0}]`,
			"not an array":      `{"a": 1}`,
		} {
			var bp Breakpoints
			assert.Error(t, json.Unmarshal([]byte(in), &bp), name)
		}
	})
}
