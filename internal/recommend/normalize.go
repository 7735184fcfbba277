package recommend

import (
	"math"
	"sort"
)

// MaxNormalize divides every score by the largest one. When the maximum is
// not positive every score maps to 0.
func MaxNormalize(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}

	for id, s := range scores {
		if maxScore == 0 {
			out[id] = 0
			continue
		}
		out[id] = s / maxScore
	}
	return out
}

// ZScore standardizes scores against the population mean and standard
// deviation. Zero deviation, including the all-zero and empty cases, maps
// every score to 0.
func ZScore(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	mean, std := meanStd(scores)
	for id, s := range scores {
		if std == 0 {
			out[id] = 0
			continue
		}
		out[id] = (s - mean) / std
	}
	return out
}

// meanStd sums in key order so repeated calls agree bit for bit, and reports
// zero deviation for identical scores instead of float residue.
func meanStd(scores map[string]float64) (mean, std float64) {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	first := scores[ids[0]]
	identical := true
	for _, id := range ids {
		if scores[id] != first {
			identical = false
		}
		mean += scores[id]
	}
	mean /= float64(len(ids))
	if identical {
		return first, 0
	}

	var variance float64
	for _, id := range ids {
		d := scores[id] - mean
		variance += d * d
	}
	variance /= float64(len(ids))

	return mean, math.Sqrt(variance)
}
