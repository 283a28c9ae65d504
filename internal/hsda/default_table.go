package hsda

// Default membership table.
//
// Aloft (a1, a2) hail is dry and tumbling, so ZDR sits near zero for every
// size and reflectivity does most of the separation. Below the 0 °C level
// (a3-a6) melting small hail carries a water coat that drives ZDR above the
// rain line, while large and giant stones keep ZDR low; those ZDR breakpoints
// are tied to the rain ZDR-ZH relation and slide with reflectivity. RHOHV
// drops with size everywhere as resonance scattering sets in.

func rainZDR(offset float64) Generator  { return Generator{Fn: GenRainZDR, Offset: offset} }
func constZDR(offset float64) Generator { return Generator{Fn: GenConstantZDR, Offset: offset} }

// meltingBand is shared by a3-a6; only the weights differ.
func meltingBand(w Weights) BandSpec {
	return BandSpec{
		Weights: w,
		Small: ClassSpec{
			ZH:  Fixed(40, 48, 55, 60),
			ZDR: Dynamic(rainZDR(-0.3), rainZDR(0.5), rainZDR(2.0), rainZDR(3.0)),
			RHV: Fixed(0.90, 0.93, 0.99, 1.0),
		},
		Large: ClassSpec{
			ZH:  Fixed(48, 55, 62, 67),
			ZDR: Dynamic(constZDR(-0.5), constZDR(0), rainZDR(-0.5), rainZDR(0.3)),
			RHV: Fixed(0.85, 0.89, 0.95, 0.98),
		},
		Giant: ClassSpec{
			ZH:  Fixed(55, 62, 80, 85),
			ZDR: Dynamic(constZDR(-1.0), constZDR(-0.5), constZDR(0.3), rainZDR(-0.4)),
			RHV: Fixed(0.70, 0.76, 0.90, 0.94),
		},
	}
}

// DefaultTableSpec returns the built-in membership table.
func DefaultTableSpec() TableSpec {
	return TableSpec{
		ValidReflectivity: [2]float64{40, 80},
		Bands: map[string]BandSpec{
			"a1": {
				Weights: Weights{ZH: 1.0, ZDR: 0.4, RHV: 0.4},
				Small: ClassSpec{
					ZH:  Fixed(30, 40, 50, 55),
					ZDR: Fixed(-1.0, -0.5, 0.5, 1.0),
					RHV: Fixed(0.95, 0.97, 1.0, 1.01),
				},
				Large: ClassSpec{
					ZH:  Fixed(40, 48, 55, 62),
					ZDR: Fixed(-1.0, -0.5, 0.5, 1.5),
					RHV: Fixed(0.90, 0.94, 1.0, 1.01),
				},
				Giant: ClassSpec{
					ZH:  Fixed(50, 55, 80, 85),
					ZDR: Fixed(-1.0, -0.5, 1.0, 2.0),
					RHV: Fixed(0.80, 0.85, 0.97, 1.0),
				},
			},
			"a2": {
				Weights: Weights{ZH: 1.0, ZDR: 0.6, RHV: 0.6},
				Small: ClassSpec{
					ZH:  Fixed(35, 45, 52, 58),
					ZDR: Fixed(-1.0, -0.3, 1.0, 1.5),
					RHV: Fixed(0.94, 0.96, 1.0, 1.01),
				},
				Large: ClassSpec{
					ZH:  Fixed(45, 52, 58, 64),
					ZDR: Fixed(-1.0, -0.5, 0.7, 1.3),
					RHV: Fixed(0.88, 0.92, 0.98, 1.0),
				},
				Giant: ClassSpec{
					ZH:  Fixed(52, 58, 80, 85),
					ZDR: Fixed(-1.5, -1.0, 0.5, 1.0),
					RHV: Fixed(0.78, 0.83, 0.95, 0.98),
				},
			},
			"a3": meltingBand(Weights{ZH: 0.8, ZDR: 0.8, RHV: 1.0}),
			"a4": meltingBand(Weights{ZH: 0.8, ZDR: 1.0, RHV: 1.0}),
			"a5": meltingBand(Weights{ZH: 0.8, ZDR: 1.0, RHV: 0.8}),
			"a6": meltingBand(Weights{ZH: 0.8, ZDR: 1.0, RHV: 0.6}),
		},
	}
}

// DefaultMembershipSet returns the built-in table, validated.
func DefaultMembershipSet() *MembershipSet {
	set, err := NewMembershipSet(DefaultTableSpec())
	if err != nil {
		panic(err)
	}
	return set
}
