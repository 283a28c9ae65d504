// Package domain models polarimetric radar volumes and the hydrometeor
// classification grids that the hail size discrimination engine refines.
//
// # Volume Layout
//
// A volume is a set of scalar fields sampled on one shared index space. Every
// field is stored flat in row-major order, so for a 2-D volume of shape
// [rays, gates] the sample at (ray, gate) lives at index ray*gates + gate.
// Higher-dimensional volumes follow the same rule with the last axis varying
// fastest. All fields of a volume must have exactly prod(shape) samples.
//
// Fields carried per voxel:
//
//	reflectivity              ZH, dBZ
//	differential_reflectivity ZDR, dB
//	cross_correlation_ratio   RHOHV, unitless (0-1)
//	differential_phase        PHIDP, degrees
//	snr                       signal-to-noise ratio, dB
//	cbb                       cumulative beam blockage fraction (0-1)
//	altitude                  height of the beam centre, km
//
// The classification grid holds integer hydrometeor codes produced by an
// upstream classifier (see [Legend]).
//
// # Missing Values
//
// JSON cannot represent NaN, so on the wire a missing sample is written as the
// message fill value (-9999 unless the producer overrides it). In memory every
// missing sample is NaN and is detected with [IsMissing]. Missing values are
// tracked per field: a voxel can have a valid reflectivity and a missing ZDR.
//
// # Altitude
//
// When the producer does not ship an altitude field, it is derived from the
// beam geometry with the 4/3 effective earth radius model (see
// [BeamAltitude]). This requires a 2-D [rays, gates] volume with one elevation
// per ray and one range per gate.
//
// # Sounding Thresholds
//
// Altitude bands are anchored on the heights (km) where the environmental
// wet-bulb temperature crosses 0 °C and -25 °C. Producers either ship the two
// heights directly or a temperature/humidity profile from which they are
// interpolated (package sounding).
//
// # Payload Encoding
//
// Message values are JSON. Large volumes are usually zstd-compressed, which is
// signalled by the "content-encoding: zstd" header. See [ParseVolumeMessage]
// and [SerializeClassifiedVolume].
package domain
