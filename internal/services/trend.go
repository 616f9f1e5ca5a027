package services

import (
	"math"

	"github.com/tbourn/go-companion-backend/internal/domain"
)

// trendThreshold is the minimum half-over-half change in mean score that
// counts as a direction.
const trendThreshold = 0.3

// ClassifyTrend compares the mean of the second half of a date-ordered score
// series with the mean of the first half. The split index is len/2, so for an
// odd length the second half holds the extra element. Fewer than two scores
// is always stable.
func ClassifyTrend(scores []float64) domain.Trend {
	if len(scores) < 2 {
		return domain.TrendStable
	}
	mid := len(scores) / 2
	diff := mean(scores[mid:]) - mean(scores[:mid])
	switch {
	case diff > trendThreshold:
		return domain.TrendImproving
	case diff < -trendThreshold:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// round2 rounds half away from zero to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
