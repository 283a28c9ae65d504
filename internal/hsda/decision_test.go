package hsda

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/storm-data-hsda/internal/domain"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		zdr    float64
		want   HailSize
	}{
		{"three-way tie goes to giant", Scores{0.8, 0.8, 0.8}, 0, Giant},
		{"small-large tie goes to large", Scores{0.7, 0.7, 0.1}, 0, Large},
		{"clear small", Scores{0.9, 0.3, 0.1}, 0, Small},
		{"clear large", Scores{0.2, 0.75, 0.61}, 1, Large},
		{"weak winner falls back to small", Scores{0.5, 0.59, 0.3}, 0, Small},
		{"all zero", Scores{}, 0, Small},
		{"high zdr vetoes giant", Scores{0.1, 0.2, 0.9}, 2.0, Small},
		{"zdr just below veto", Scores{0.1, 0.2, 0.9}, 1.99, Giant},
		{"high zdr vetoes large", Scores{0.1, 0.9, 0.2}, 3.5, Small},
		{"high zdr keeps small", Scores{0.9, 0.2, 0.2}, 3.5, Small},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.scores, tt.zdr))
		})
	}
}

func TestHailSize_Code(t *testing.T) {
	assert.Equal(t, domain.CodeSmallHail, Small.Code())
	assert.Equal(t, domain.CodeLargeHail, Large.Code())
	assert.Equal(t, domain.CodeGiantHail, Giant.Code())
	assert.Equal(t, domain.ClassCode(11), Small.Code())
	assert.Equal(t, domain.ClassCode(13), Giant.Code())
}
