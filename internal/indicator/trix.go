package indicator

import "math"

// TRIX returns the one-bar rate of change of a triple-smoothed EMA, scaled
// to a percentage. With the classifier's period of 30 the warm-up window is
// long; most of a trading day's first bars are NaN by construction.
func TRIX(close []float64, period int) []float64 {
	n := len(close)
	out := nanPrefix(n, n)

	triple := EMA(EMA(EMA(close, period), period), period)

	for i := 1; i < n; i++ {
		if math.IsNaN(triple[i]) || math.IsNaN(triple[i-1]) || triple[i-1] == 0 {
			continue
		}

		out[i] = 100.0 * (triple[i] - triple[i-1]) / triple[i-1]
	}

	return out
}
