package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Geometry describes the scan of a [rays, gates] volume.
type Geometry struct {
	RangeKm         []float64 `json:"range_km" validate:"required,min=1"`
	ElevationDeg    []float64 `json:"elevation_deg" validate:"required,min=1"`
	RadarAltitudeKm float64   `json:"radar_altitude_km,omitempty"`
}

// VolumeMessage is the JSON document published by the volume producer.
// Missing samples are encoded as FillValue.
type VolumeMessage struct {
	VolumeID       string               `json:"volume_id" validate:"required"`
	Station        string               `json:"station" validate:"required"`
	ScanTime       time.Time            `json:"scan_time" validate:"required"`
	Shape          []int                `json:"shape" validate:"required,min=1,dive,gt=0"`
	FillValue      *float64             `json:"fill_value,omitempty"`
	Fields         map[string][]float64 `json:"fields" validate:"required"`
	Classification []int                `json:"classification" validate:"required"`
	Geometry       *Geometry            `json:"geometry,omitempty" validate:"omitempty"`
	Sounding       *SoundingThresholds  `json:"sounding,omitempty"`
	Profile        *Profile             `json:"profile,omitempty" validate:"omitempty"`
	DZDROffset     *float64             `json:"dzdr_offset,omitempty"`
}

// Summary mirrors the engine's run summary on the wire.
type Summary struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Candidates int            `json:"candidates"`
	Classified int            `json:"classified"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	BySize     map[string]int `json:"by_size,omitempty"`
	MeanScore  float64        `json:"mean_score"`
	ElapsedMS  float64        `json:"elapsed_ms"`
}

// ClassifiedVolume is the refined classification grid published downstream.
type ClassifiedVolume struct {
	VolumeID       string    `json:"volume_id"`
	Station        string    `json:"station"`
	ScanTime       time.Time `json:"scan_time"`
	Shape          []int     `json:"shape"`
	Classification []int     `json:"classification"`
	LongName       string    `json:"long_name"`
	StandardName   string    `json:"standard_name"`
	Legend         string    `json:"legend"`
	Status         string    `json:"status"`
	Summary        Summary   `json:"summary"`
	ProcessedAt    time.Time `json:"processed_at"`
}
