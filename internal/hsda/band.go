package hsda

import (
	"fmt"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// Band is an altitude band relative to the wet-bulb 0 °C and -25 °C heights.
// A1 is the coldest (highest) band, A6 lies more than 3 km below the 0 °C level.
type Band int

const (
	A1 Band = iota + 1
	A2
	A3
	A4
	A5
	A6
)

// NumBands is the number of altitude bands.
const NumBands = 6

var bandNames = [NumBands + 1]string{"", "a1", "a2", "a3", "a4", "a5", "a6"}

func (b Band) String() string {
	if b < A1 || b > A6 {
		return fmt.Sprintf("band(%d)", int(b))
	}
	return bandNames[b]
}

// ParseBand maps "a1".."a6" to a Band.
func ParseBand(s string) (Band, error) {
	for b := A1; b <= A6; b++ {
		if bandNames[b] == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown altitude band %q", s)
}

// BandFor assigns the altitude band of a voxel at alt km. The first matching
// rule wins, so every altitude resolves to exactly one band. Callers must not
// pass a missing altitude.
func BandFor(alt float64, t domain.SoundingThresholds) Band {
	switch {
	case alt >= t.WBTMinus25C:
		return A1
	case alt >= t.WBT0C:
		return A2
	case alt >= t.WBT0C-1:
		return A3
	case alt >= t.WBT0C-2:
		return A4
	case alt >= t.WBT0C-3:
		return A5
	default:
		return A6
	}
}
