package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/zstd"
)

// Header names and values used on volume messages.
const (
	HeaderContentEncoding = "content-encoding"
	HeaderStatus          = "hsda_status"
	HeaderProcessedAt     = "processed_at"
	EncodingZstd          = "zstd"
)

// DefaultFillValue marks a missing sample when the producer does not set one.
const DefaultFillValue = -9999.0

var (
	validate = validator.New()

	// Encoder and Decoder are safe for concurrent EncodeAll/DecodeAll calls.
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// ParseVolumeMessage decompresses (when flagged) and decodes a raw source
// message, then validates its envelope.
func ParseVolumeMessage(raw RawEvent) (VolumeMessage, error) {
	payload, err := decodePayload(raw.Value, raw.Headers)
	if err != nil {
		return VolumeMessage{}, fmt.Errorf("parse volume message: %w", err)
	}

	var msg VolumeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return VolumeMessage{}, fmt.Errorf("parse volume message: %w", err)
	}
	if err := validate.Struct(msg); err != nil {
		return VolumeMessage{}, fmt.Errorf("validate volume message: %w", err)
	}
	return msg, nil
}

// ToVolume converts the wire message into an in-memory volume: fill values
// become NaN and, when no altitude field is shipped, altitude is derived from
// the scan geometry.
func (m VolumeMessage) ToVolume() (*Volume, error) {
	fill := DefaultFillValue
	if m.FillValue != nil {
		fill = *m.FillValue
	}

	fields := make(map[Field][]float64, len(m.Fields)+1)
	for name, data := range m.Fields {
		fields[Field(name)] = unfill(data, fill)
	}

	if _, ok := fields[FieldAltitude]; !ok && m.Geometry != nil {
		alt, err := AltitudeGrid(m.Shape, *m.Geometry)
		if err != nil {
			return nil, fmt.Errorf("volume %q: derive altitude: %w", m.VolumeID, err)
		}
		fields[FieldAltitude] = alt
	}

	return &Volume{
		ID:             m.VolumeID,
		Station:        m.Station,
		ScanTime:       m.ScanTime,
		Shape:          slices.Clone(m.Shape),
		Fields:         fields,
		Classification: m.Classification,
	}, nil
}

// EncodeVolumeMessage marshals a volume message, optionally zstd-compressed,
// and returns the headers a producer should attach.
func EncodeVolumeMessage(m VolumeMessage, compress bool) ([]byte, map[string]string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, nil, fmt.Errorf("encode volume message: %w", err)
	}
	headers := map[string]string{}
	if compress {
		data = zstdEncoder.EncodeAll(data, nil)
		headers[HeaderContentEncoding] = EncodingZstd
	}
	return data, headers, nil
}

// SerializeClassifiedVolume marshals a classified volume into a sink message
// keyed by volume ID.
func SerializeClassifiedVolume(cv ClassifiedVolume, compress bool) (OutputEvent, error) {
	data, err := json.Marshal(cv)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize classified volume: %w", err)
	}

	headers := map[string]string{
		HeaderStatus:      cv.Status,
		HeaderProcessedAt: cv.ProcessedAt.Format(time.RFC3339),
	}
	if compress {
		data = zstdEncoder.EncodeAll(data, nil)
		headers[HeaderContentEncoding] = EncodingZstd
	}

	return OutputEvent{
		Key:     []byte(cv.VolumeID),
		Value:   data,
		Headers: headers,
	}, nil
}

// DecodeClassifiedVolume is the inverse of SerializeClassifiedVolume.
func DecodeClassifiedVolume(value []byte, headers map[string]string) (ClassifiedVolume, error) {
	payload, err := decodePayload(value, headers)
	if err != nil {
		return ClassifiedVolume{}, fmt.Errorf("decode classified volume: %w", err)
	}
	var cv ClassifiedVolume
	if err := json.Unmarshal(payload, &cv); err != nil {
		return ClassifiedVolume{}, fmt.Errorf("decode classified volume: %w", err)
	}
	return cv, nil
}

// Refill is the inverse of the fill-value conversion done by ToVolume.
func Refill(data []float64, fill float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		if IsMissing(v) {
			out[i] = fill
			continue
		}
		out[i] = v
	}
	return out
}

func decodePayload(value []byte, headers map[string]string) ([]byte, error) {
	switch enc := headers[HeaderContentEncoding]; enc {
	case "", "identity":
		return value, nil
	case EncodingZstd:
		out, err := zstdDecoder.DecodeAll(value, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}

func unfill(data []float64, fill float64) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		if v == fill {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}
