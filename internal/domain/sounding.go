package domain

import "fmt"

// SoundingThresholds are the heights (km) where the environmental wet-bulb
// temperature crosses -25 °C and 0 °C.
type SoundingThresholds struct {
	WBTMinus25C float64 `json:"wbt_minus25c_km"`
	WBT0C       float64 `json:"wbt_0c_km"`
}

// Validate rejects non-finite heights and a -25 °C level below the 0 °C level.
func (t SoundingThresholds) Validate() error {
	if IsMissing(t.WBTMinus25C) || IsMissing(t.WBT0C) {
		return fmt.Errorf("sounding thresholds must be finite, got -25C=%v 0C=%v", t.WBTMinus25C, t.WBT0C)
	}
	if t.WBTMinus25C < t.WBT0C {
		return fmt.Errorf("sounding thresholds inverted: -25C at %.3f km below 0C at %.3f km", t.WBTMinus25C, t.WBT0C)
	}
	return nil
}

// Profile is an already-parsed environmental sounding, ordered or not.
type Profile struct {
	HeightM      []float64 `json:"height_m" validate:"required,min=2"`
	TemperatureC []float64 `json:"temperature_c" validate:"required,min=2"`
	RHPct        []float64 `json:"rh_pct" validate:"required,min=2"`
}

// Levels returns the number of complete levels, or an error when the columns
// are not aligned.
func (p Profile) Levels() (int, error) {
	n := len(p.HeightM)
	if len(p.TemperatureC) != n || len(p.RHPct) != n {
		return 0, fmt.Errorf("profile columns misaligned: height=%d temperature=%d rh=%d: %w",
			len(p.HeightM), len(p.TemperatureC), len(p.RHPct), ErrShapeMismatch)
	}
	return n, nil
}
