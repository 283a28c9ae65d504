package sounding

import "math"

// WetBulb returns the wet-bulb temperature (°C) for air temperature tC (°C)
// and relative humidity rh (%), using the empirical fit of Stull (2011). The
// fit is valid for 5-99 % RH and -20 to 50 °C; outside that range it still
// returns a value, which is good enough to locate a crossing.
func WetBulb(tC, rh float64) float64 {
	return tC*math.Atan(0.151977*math.Sqrt(rh+8.313659)) +
		math.Atan(tC+rh) - math.Atan(rh-1.676331) +
		0.00391838*math.Pow(rh, 1.5)*math.Atan(0.023101*rh) -
		4.686035
}
