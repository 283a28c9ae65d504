package sounding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// ErrNoCrossing is returned when a profile never cools to the target
// temperature.
var ErrNoCrossing = errors.New("profile does not reach target temperature")

type level struct {
	height float64
	temp   float64
}

// CrossingHeight returns the height at which temps first falls to target when
// walking up the profile. Levels with a missing height or temperature are
// dropped. Between the last level above target and the first at or below it
// the height is linearly interpolated; if the lowest level is already at or
// below target its height is returned.
func CrossingHeight(heights, temps []float64, target float64) (float64, error) {
	if len(heights) != len(temps) {
		return 0, fmt.Errorf("crossing height: %d heights, %d temperatures: %w",
			len(heights), len(temps), domain.ErrShapeMismatch)
	}

	levels := make([]level, 0, len(heights))
	for i := range heights {
		if domain.IsMissing(heights[i]) || domain.IsMissing(temps[i]) {
			continue
		}
		levels = append(levels, level{height: heights[i], temp: temps[i]})
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].height < levels[j].height })

	for i, l := range levels {
		if l.temp > target {
			continue
		}
		if i == 0 {
			return l.height, nil
		}
		above := levels[i-1]
		ratio := (target - l.temp) / (above.temp - l.temp)
		return l.height - ratio*(l.height-above.height), nil
	}
	return 0, fmt.Errorf("crossing height for %g °C over %d levels: %w", target, len(levels), ErrNoCrossing)
}

// ThresholdsFromProfile derives the wet-bulb -25 °C and 0 °C heights (km)
// from a profile given in metres, °C and % RH.
func ThresholdsFromProfile(p domain.Profile) (domain.SoundingThresholds, error) {
	n, err := p.Levels()
	if err != nil {
		return domain.SoundingThresholds{}, err
	}

	wbt := make([]float64, n)
	for i := range n {
		wbt[i] = WetBulb(p.TemperatureC[i], p.RHPct[i])
	}

	zero, err := CrossingHeight(p.HeightM, wbt, 0)
	if err != nil {
		return domain.SoundingThresholds{}, fmt.Errorf("wet-bulb 0C: %w", err)
	}
	minus25, err := CrossingHeight(p.HeightM, wbt, -25)
	if err != nil {
		return domain.SoundingThresholds{}, fmt.Errorf("wet-bulb -25C: %w", err)
	}

	t := domain.SoundingThresholds{WBTMinus25C: minus25 / 1000, WBT0C: zero / 1000}
	if err := t.Validate(); err != nil {
		return domain.SoundingThresholds{}, err
	}
	return t, nil
}
