// Package scoring converts continuous grading scores into ordinal bands.
package scoring

import "github.com/jonathan/interview-agent/internal/types"

// Thresholds partitions [0,1] into the four bands. A score lands in the
// lowest band whose upper bound is strictly greater than it: s < L2 is L1,
// s < L3 is L2, s < L4 is L3, everything else L4.
type Thresholds struct {
	L2 float64 `json:"l2"`
	L3 float64 `json:"l3"`
	L4 float64 `json:"l4"`
}

// DefaultThresholds is the canonical banding scheme. Two schemes shipped in
// earlier engine revisions; the generous one is canonical because it is the
// one the serving path used. The strict scheme remains available as
// StrictThresholds for callers that want the old behavior.
func DefaultThresholds() Thresholds {
	return Thresholds{L2: 0.40, L3: 0.60, L4: 0.80}
}

// StrictThresholds is the legacy banding scheme (<=0.25 / <=0.50 / <=0.75).
// Expressed in strict-upper-bound form the boundary scores shift up by the
// smallest representable step; in practice grading scores never land exactly
// on a boundary.
func StrictThresholds() Thresholds {
	return Thresholds{L2: 0.25, L3: 0.50, L4: 0.75}
}

// Valid reports whether the thresholds are strictly increasing within (0,1).
func (t Thresholds) Valid() bool {
	return t.L2 > 0 && t.L2 < t.L3 && t.L3 < t.L4 && t.L4 < 1
}

// BandFromScore maps a score to its band. Total over all float inputs:
// anything below L2's bound is L1, anything at or above L4's bound is L4.
func (t Thresholds) BandFromScore(score float64) types.Band {
	switch {
	case score < t.L2:
		return types.BandL1
	case score < t.L3:
		return types.BandL2
	case score < t.L4:
		return types.BandL3
	default:
		return types.BandL4
	}
}

// BandFromScore maps a score to a band using the canonical thresholds.
func BandFromScore(score float64) types.Band {
	return DefaultThresholds().BandFromScore(score)
}

// Mean returns the arithmetic mean of scores, or 0 for an empty slice.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
