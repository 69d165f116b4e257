package indicators

import "math"

// SMA returns the simple moving average of the trailing window ending at the
// last element of series. Returns (0, false) when fewer than window points
// are available, mirroring an undefined rolling mean.
func SMA(series []float64, window int) (float64, bool) {
	if window <= 0 || len(series) < window {
		return 0, false
	}
	var sum float64
	for _, v := range series[len(series)-window:] {
		sum += v
	}
	return sum / float64(window), true
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round4 rounds to 4 decimal places, the precision every persisted decimal
// in the system carries.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
