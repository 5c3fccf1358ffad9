package scoring

import (
	"testing"

	"github.com/jonathan/interview-agent/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestBandFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  types.Band
	}{
		{0.0, types.BandL1},
		{0.39, types.BandL1},
		{0.40, types.BandL2},
		{0.59, types.BandL2},
		{0.60, types.BandL3},
		{0.79, types.BandL3},
		{0.80, types.BandL4},
		{1.0, types.BandL4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFromScore(tt.score), "score %.2f", tt.score)
	}
}

func TestBandFromScore_MonotonicAndTotal(t *testing.T) {
	order := map[types.Band]int{
		types.BandL1: 1,
		types.BandL2: 2,
		types.BandL3: 3,
		types.BandL4: 4,
	}

	for _, thresholds := range []Thresholds{DefaultThresholds(), StrictThresholds()} {
		prev := 0
		for i := 0; i <= 100; i++ {
			score := float64(i) / 100
			band := thresholds.BandFromScore(score)

			// Total: every score maps to one of the four bands.
			rank, known := order[band]
			assert.True(t, known, "score %.2f mapped to unknown band %s", score, band)

			// Monotonic non-decreasing.
			assert.GreaterOrEqual(t, rank, prev, "band regressed at score %.2f", score)
			prev = rank
		}
	}
}

func TestThresholdsValid(t *testing.T) {
	assert.True(t, DefaultThresholds().Valid())
	assert.True(t, StrictThresholds().Valid())
	assert.False(t, Thresholds{L2: 0.6, L3: 0.5, L4: 0.8}.Valid())
	assert.False(t, Thresholds{L2: 0, L3: 0.5, L4: 0.8}.Valid())
	assert.False(t, Thresholds{L2: 0.2, L3: 0.5, L4: 1.0}.Valid())
}

func TestMean(t *testing.T) {
	assert.InDelta(t, 0.0, Mean(nil), 1e-9)
	assert.InDelta(t, 0.5, Mean([]float64{0.5}), 1e-9)
	assert.InDelta(t, 0.6, Mean([]float64{0.4, 0.6, 0.8}), 1e-9)
}
