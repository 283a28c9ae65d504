package hsda

import "math"

// disqualifyBelow is the membership below which a class scores 0 no matter
// how well the other variables fit.
const disqualifyBelow = 0.2

// Voxel holds the scored observations of one hail candidate.
type Voxel struct {
	ZH       float64 // dBZ
	ZDR      float64 // dB
	RHV      float64
	Altitude float64 // km
}

// Missing reports whether any scored input is absent.
func (v Voxel) Missing() bool {
	for _, x := range []float64{v.ZH, v.ZDR, v.RHV, v.Altitude} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

// Scores are the aggregate memberships of small, large and giant hail.
type Scores [NumSizes]float64

// Of returns the score of one size class.
func (s Scores) Of(h HailSize) float64 {
	return s[h-1]
}

// Memberships returns the ZH, ZDR and RHOHV memberships of v for one class.
func (s *MembershipSet) Memberships(b Band, h HailSize, v Voxel, dzdr float64) [NumVariables]float64 {
	return [NumVariables]float64{
		Membership(v.ZH, v.ZH, s.Breakpoints(b, h, ZH), dzdr),
		Membership(v.ZDR, v.ZH, s.Breakpoints(b, h, ZDR), dzdr),
		Membership(v.RHV, v.ZH, s.Breakpoints(b, h, RHV), dzdr),
	}
}

// Aggregate combines the three memberships of one size class into a single
// quality-weighted score in [0, 1]. A class with any membership below 0.2 is
// disqualified and scores exactly 0. When every weighted quality is 0 the
// score is 0.
func Aggregate(set *MembershipSet, b Band, h HailSize, v Voxel, q Quality, dzdr float64) float64 {
	mf := set.Memberships(b, h, v, dzdr)
	if min(mf[ZH], mf[ZDR], mf[RHV]) < disqualifyBelow {
		return 0
	}

	w := set.Weights(b)
	wzh, wzdr, wrhv := w.ZH*q.ZH, w.ZDR*q.ZDR, w.RHV*q.RHV
	den := wzh + wzdr + wrhv
	if !(den > 0) || math.IsInf(den, 0) {
		return 0
	}
	return clampUnit((wzh*mf[ZH] + wzdr*mf[ZDR] + wrhv*mf[RHV]) / den)
}

// Score aggregates every size class for a voxel in band b.
func (s *MembershipSet) Score(b Band, v Voxel, q Quality, dzdr float64) Scores {
	var out Scores
	for h := Small; h <= Giant; h++ {
		out[h-1] = Aggregate(s, b, h, v, q, dzdr)
	}
	return out
}
