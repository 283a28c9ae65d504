package domain

import (
	"fmt"
	"math"
)

const (
	earthRadiusKm = 6371.0
	// effectiveRadiusFactor models standard atmospheric refraction.
	effectiveRadiusFactor = 4.0 / 3.0
)

// BeamAltitude returns the height (km) of the beam centre above the antenna
// at the given slant range and elevation angle.
func BeamAltitude(rangeKm, elevationDeg float64) float64 {
	re := effectiveRadiusFactor * earthRadiusKm
	theta := elevationDeg * math.Pi / 180
	return math.Sqrt(rangeKm*rangeKm+re*re+2*rangeKm*re*math.Sin(theta)) - re
}

// AltitudeGrid derives the altitude field of a [rays, gates] volume from one
// elevation per ray and one range per gate. radarAltitudeKm shifts the result
// from antenna-relative to the sounding's height reference.
func AltitudeGrid(shape []int, g Geometry) ([]float64, error) {
	if len(shape) != 2 {
		return nil, fmt.Errorf("altitude from geometry needs a 2-D volume, got shape %v: %w", shape, ErrShapeMismatch)
	}
	rays, gates := shape[0], shape[1]
	if len(g.ElevationDeg) != rays || len(g.RangeKm) != gates {
		return nil, fmt.Errorf("geometry has %d elevations and %d ranges for shape %v: %w",
			len(g.ElevationDeg), len(g.RangeKm), shape, ErrShapeMismatch)
	}

	alt := make([]float64, rays*gates)
	for r, elev := range g.ElevationDeg {
		row := alt[r*gates : (r+1)*gates]
		for i, rng := range g.RangeKm {
			row[i] = BeamAltitude(rng, elev) + g.RadarAltitudeKm
		}
	}
	return alt, nil
}
