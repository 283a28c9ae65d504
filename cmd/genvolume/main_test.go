package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

func testOptions() options {
	return options{
		station:     "KTLX",
		scanTime:    time.Date(2024, time.April, 26, 22, 10, 35, 0, time.UTC),
		rays:        8,
		gates:       24,
		seed:        7,
		peakDBZ:     68,
		missingRate: 0.02,
	}
}

func TestGenerate_ProducesParsableVolume(t *testing.T) {
	msg := generate(testOptions())

	value, headers, err := domain.EncodeVolumeMessage(msg, true)
	require.NoError(t, err)
	parsed, err := domain.ParseVolumeMessage(domain.RawEvent{Value: value, Headers: headers})
	require.NoError(t, err)

	vol, err := parsed.ToVolume()
	require.NoError(t, err)
	require.NoError(t, vol.Validate())
	assert.Equal(t, "KTLX-20240426-221035", parsed.VolumeID)

	var candidates int
	for _, c := range parsed.Classification {
		if c == hailCode {
			candidates++
		}
	}
	assert.Positive(t, candidates, "cell core should produce hail candidates")
	require.NotNil(t, parsed.Sounding)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(testOptions())
	b := generate(testOptions())
	assert.Equal(t, a, b)

	o := testOptions()
	o.seed = 8
	assert.NotEqual(t, a.Fields, generate(o).Fields)
}

func TestGenerate_Profile(t *testing.T) {
	o := testOptions()
	o.withProfile = true
	msg := generate(o)

	assert.Nil(t, msg.Sounding)
	require.NotNil(t, msg.Profile)
	n, err := msg.Profile.Levels()
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}
