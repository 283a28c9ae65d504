package hsda

import "github.com/couchcryptid/storm-data-hsda/internal/domain"

const (
	// minWinningScore is the aggregate below which a decision falls back to
	// small hail.
	minWinningScore = 0.6
	// maxHailZDR is the ZDR (dB) at or above which large and giant hail are
	// implausible.
	maxHailZDR = 2.0
)

// Decide picks the hail size from the class aggregates. The highest score
// wins and exact ties go to the larger size. The result is forced to small
// when the winning score is below 0.6, or when the winner is large or giant
// while zdr is at least 2 dB.
func Decide(s Scores, zdr float64) HailSize {
	winner := Small
	for h := Small; h <= Giant; h++ {
		if s.Of(h) >= s.Of(winner) {
			winner = h
		}
	}

	if s.Of(winner) < minWinningScore {
		return Small
	}
	if winner != Small && zdr >= maxHailZDR {
		return Small
	}
	return winner
}

// Code maps a hail size to its classification code.
func (h HailSize) Code() domain.ClassCode {
	switch h {
	case Large:
		return domain.CodeLargeHail
	case Giant:
		return domain.CodeGiantHail
	default:
		return domain.CodeSmallHail
	}
}
