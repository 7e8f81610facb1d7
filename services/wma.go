// services/wma.go
package services

import (
	"math"

	"gorm.io/datatypes"
)

// ComputeWMA returns the linearly weighted moving average over the first
// window elements of recentScores (newest first): the newest score is
// weighted window, the oldest 1, and the sum is divided by the triangular
// number window*(window+1)/2, rounded to 2 decimals.
//
// ok is false when there are fewer than window scores. That is not an
// error; it means the stat is below its history threshold and must be
// omitted, not reported as zero.
func ComputeWMA(recentScores []int, window int) (wma float64, ok bool) {
	if window <= 0 || len(recentScores) < window {
		return 0, false
	}
	numerator := 0
	for i := 0; i < window; i++ {
		numerator += recentScores[i] * (window - i)
	}
	denominator := window * (window + 1) / 2
	return round2(float64(numerator) / float64(denominator)), true
}

// round2 rounds half away from zero to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// PeakUpdate is the outcome of comparing a freshly computed value against a
// stored peak.
type PeakUpdate struct {
	Value float64
	On    datatypes.Date
	IsNew bool
}

// UpdatePeak decides whether current beats the stored peak. The comparison
// is strict: a tie keeps the old peak and its date. A nil stored peak means
// no peak has ever been recorded, so any value becomes one.
func UpdatePeak(current float64, storedPeak *float64, storedOn *datatypes.Date, today datatypes.Date) PeakUpdate {
	if storedPeak != nil && current <= *storedPeak {
		on := today
		if storedOn != nil {
			on = *storedOn
		}
		return PeakUpdate{Value: *storedPeak, On: on, IsNew: false}
	}
	return PeakUpdate{Value: current, On: today, IsNew: true}
}
