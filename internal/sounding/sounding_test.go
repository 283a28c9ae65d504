package sounding

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// standardProfile cools 6.5 °C/km from 25 °C at the surface with 70 % RH.
func standardProfile() domain.Profile {
	p := domain.Profile{}
	for i := range 13 {
		p.HeightM = append(p.HeightM, float64(i)*1000)
		p.TemperatureC = append(p.TemperatureC, 25-6.5*float64(i))
		p.RHPct = append(p.RHPct, 70)
	}
	return p
}

func TestWetBulb(t *testing.T) {
	// Reference value from Stull (2011).
	assert.InDelta(t, 13.7, WetBulb(20, 50), 0.01)
	assert.Less(t, WetBulb(-10, 80), -10.0)
	assert.InDelta(t, 0, WetBulb(0, 100), 0.2)
}

func TestCrossingHeight(t *testing.T) {
	heights := []float64{0, 1000, 2000}
	temps := []float64{10, 0, -10}

	h, err := CrossingHeight(heights, temps, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1000, h, 1e-9)

	h, err = CrossingHeight(heights, temps, -5)
	require.NoError(t, err)
	assert.InDelta(t, 1500, h, 1e-9)

	h, err = CrossingHeight([]float64{2000, 0, 1000}, []float64{-10, 10, 0}, -5)
	require.NoError(t, err)
	assert.InDelta(t, 1500, h, 1e-9, "levels are sorted by height")

	h, err = CrossingHeight([]float64{300, 1300}, []float64{-2, -8}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 300, h, 1e-9, "surface already below target")

	h, err = CrossingHeight([]float64{0, 500, 1000, 2000}, []float64{10, math.NaN(), 0, -10}, 5)
	require.NoError(t, err)
	assert.InDelta(t, 500, h, 1e-9, "missing levels are dropped")

	_, err = CrossingHeight(heights, []float64{30, 20, 10}, 0)
	require.ErrorIs(t, err, ErrNoCrossing)

	_, err = CrossingHeight(heights, temps[:2], 0)
	require.ErrorIs(t, err, domain.ErrShapeMismatch)
}

func TestThresholdsFromProfile(t *testing.T) {
	got, err := ThresholdsFromProfile(standardProfile())
	require.NoError(t, err)
	assert.InDelta(t, 3.4578, got.WBT0C, 1e-3)
	assert.InDelta(t, 7.5857, got.WBTMinus25C, 1e-3)
}

func TestThresholdsFromProfile_Errors(t *testing.T) {
	warm := standardProfile()
	for i := range warm.TemperatureC {
		warm.TemperatureC[i] = 30
	}
	_, err := ThresholdsFromProfile(warm)
	require.ErrorIs(t, err, ErrNoCrossing)
	assert.Contains(t, err.Error(), "wet-bulb 0C")

	short := standardProfile()
	short.RHPct = short.RHPct[:4]
	_, err = ThresholdsFromProfile(short)
	require.ErrorIs(t, err, domain.ErrShapeMismatch)
}

func TestCache_WindowKey(t *testing.T) {
	c := NewCache(4*time.Hour, 8)
	scan := time.Date(2024, 4, 26, 22, 10, 0, 0, time.UTC)
	th := domain.SoundingThresholds{WBTMinus25C: 7.5, WBT0C: 4.2}

	c.Put("KTLX", scan, th)

	got, ok := c.Get("KTLX", scan.Add(90*time.Minute))
	require.True(t, ok, "same window")
	assert.Equal(t, th, got)

	_, ok = c.Get("KTLX", scan.Add(3*time.Hour))
	assert.False(t, ok, "next window")
	_, ok = c.Get("KFWS", scan)
	assert.False(t, ok, "other station")

	assert.Equal(t, "KTLX|2024-04-26T20:00:00Z", c.Key("KTLX", scan))
	assert.Equal(t, c.Key("KTLX", scan), c.Key("KTLX", scan.In(time.FixedZone("CDT", -5*3600))))
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(time.Hour, 2)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	th := domain.SoundingThresholds{WBTMinus25C: 7, WBT0C: 4}

	c.Put("A", base, th)
	c.Put("B", base, th)
	_, _ = c.Get("A", base)
	c.Put("C", base, th)

	_, okA := c.Get("A", base)
	_, okB := c.Get("B", base)
	_, okC := c.Get("C", base)
	assert.True(t, okA)
	assert.False(t, okB, "B was least recently used")
	assert.True(t, okC)
	assert.Equal(t, 2, c.Len())
}

func TestCache_UpdateExisting(t *testing.T) {
	c := NewCache(0, 1)
	scan := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	c.Put("KTLX", scan, domain.SoundingThresholds{WBTMinus25C: 7, WBT0C: 4})
	c.Put("KTLX", scan, domain.SoundingThresholds{WBTMinus25C: 8, WBT0C: 5})

	got, ok := c.Get("KTLX", scan)
	require.True(t, ok)
	assert.InDelta(t, 5, got.WBT0C, 1e-9)
	assert.Equal(t, 1, c.Len())
}

func TestResolver_Resolve(t *testing.T) {
	scan := time.Date(2024, 4, 26, 22, 10, 0, 0, time.UTC)
	explicit := domain.SoundingThresholds{WBTMinus25C: 7.5, WBT0C: 4.2}
	profile := standardProfile()

	t.Run("message thresholds win and are cached", func(t *testing.T) {
		r := NewResolver(NewCache(DefaultWindow, 4))
		got, src, err := r.Resolve(domain.VolumeMessage{
			VolumeID: "v1", Station: "KTLX", ScanTime: scan, Sounding: &explicit, Profile: &profile,
		})
		require.NoError(t, err)
		assert.Equal(t, SourceMessage, src)
		assert.Equal(t, explicit, got)

		got, src, err = r.Resolve(domain.VolumeMessage{VolumeID: "v2", Station: "KTLX", ScanTime: scan.Add(time.Minute)})
		require.NoError(t, err)
		assert.Equal(t, SourceCache, src)
		assert.Equal(t, explicit, got)
	})

	t.Run("profile", func(t *testing.T) {
		r := NewResolver(NewCache(DefaultWindow, 4))
		got, src, err := r.Resolve(domain.VolumeMessage{VolumeID: "v1", Station: "KTLX", ScanTime: scan, Profile: &profile})
		require.NoError(t, err)
		assert.Equal(t, SourceProfile, src)
		assert.InDelta(t, 3.4578, got.WBT0C, 1e-3)
	})

	t.Run("nothing available", func(t *testing.T) {
		r := NewResolver(NewCache(DefaultWindow, 4))
		_, _, err := r.Resolve(domain.VolumeMessage{VolumeID: "v1", Station: "KTLX", ScanTime: scan})
		require.ErrorIs(t, err, ErrNoSounding)
	})

	t.Run("inverted message thresholds", func(t *testing.T) {
		r := NewResolver(NewCache(DefaultWindow, 4))
		bad := domain.SoundingThresholds{WBTMinus25C: 2, WBT0C: 4}
		_, _, err := r.Resolve(domain.VolumeMessage{VolumeID: "v1", Station: "KTLX", ScanTime: scan, Sounding: &bad})
		require.Error(t, err)
		assert.Equal(t, 0, r.cache.Len())
	})
}
