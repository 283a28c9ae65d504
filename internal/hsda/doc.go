// Package hsda implements the Hail Size Discrimination Algorithm: a fuzzy
// logic classifier that refines voxels flagged as hail by an upstream
// hydrometeor classifier into small (< 25 mm), large (25-50 mm) and giant
// (> 50 mm) hail.
//
// For every hail-candidate voxel the engine
//
//  1. assigns one of six altitude bands from the wet-bulb 0 °C and -25 °C
//     heights ([BandFor]),
//  2. evaluates trapezoidal memberships of ZH, ZDR and RHOHV for each size
//     class using band-specific breakpoints, some of which slide with
//     reflectivity and the ZDR bias ([Membership]),
//  3. combines them into one aggregate per class, weighted by band weights and
//     per-voxel data quality ([Aggregate], [QualityAt]),
//  4. picks the class with the largest aggregate, preferring the larger size on
//     exact ties, and applies the low-confidence and high-ZDR overrides
//     ([Decide]).
//
// Every voxel is scored independently, so [Engine.Classify] spreads the
// candidate set over a bounded number of goroutines. Results are written into
// a fresh copy of the classification grid; the input is never modified.
package hsda
