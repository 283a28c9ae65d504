package sounding

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

// ErrNoSounding is returned when a volume carries no sounding and none is
// cached for its station and window.
var ErrNoSounding = errors.New("no sounding available")

// Source tells where resolved thresholds came from.
type Source string

const (
	SourceMessage Source = "message"
	SourceProfile Source = "profile"
	SourceCache   Source = "cache"
)

// Resolver finds the sounding thresholds for a volume message.
type Resolver struct {
	cache *Cache
}

// NewResolver creates a resolver backed by cache.
func NewResolver(cache *Cache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve prefers thresholds carried by the message, then thresholds derived
// from a carried profile, then thresholds cached for the same station and
// window. Thresholds taken from the message are cached for later volumes.
func (r *Resolver) Resolve(msg domain.VolumeMessage) (domain.SoundingThresholds, Source, error) {
	if msg.Sounding != nil {
		t := *msg.Sounding
		if err := t.Validate(); err != nil {
			return domain.SoundingThresholds{}, SourceMessage, fmt.Errorf("volume %s: %w", msg.VolumeID, err)
		}
		r.cache.Put(msg.Station, msg.ScanTime, t)
		return t, SourceMessage, nil
	}

	if msg.Profile != nil {
		t, err := ThresholdsFromProfile(*msg.Profile)
		if err != nil {
			return domain.SoundingThresholds{}, SourceProfile, fmt.Errorf("volume %s: profile: %w", msg.VolumeID, err)
		}
		r.cache.Put(msg.Station, msg.ScanTime, t)
		return t, SourceProfile, nil
	}

	if t, ok := r.cache.Get(msg.Station, msg.ScanTime); ok {
		return t, SourceCache, nil
	}
	return domain.SoundingThresholds{}, SourceCache, fmt.Errorf("volume %s (%s): %w",
		msg.VolumeID, r.cache.Key(msg.Station, msg.ScanTime), ErrNoSounding)
}
