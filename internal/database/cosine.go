package database

import "math"

// CosineDistance compares two packed baseline vectors, returning 0 for
// identical calibration snapshots up to 2 for opposite ones. Baselines
// packed from different channel sets (mismatched lengths), empty or
// all-zero vectors count as maximally distant rather than erroring, so
// matching never fails on a degenerate profile.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2.0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1], float error can push the ratio slightly outside.
	if similarity > 1 {
		similarity = 1
	}
	if similarity < -1 {
		similarity = -1
	}

	return 1 - similarity
}
