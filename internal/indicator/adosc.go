package indicator

import "math"

// ADOSC returns the Chaikin A/D oscillator: the difference between a fast
// and a slow EMA of the cumulative accumulation/distribution line.
func ADOSC(high, low, close, volume []float64, fastPeriod, slowPeriod int) []float64 {
	n := len(close)
	out := nanPrefix(n, n)

	ad := make([]float64, n)
	cum := 0.0

	for i := 0; i < n; i++ {
		span := high[i] - low[i]
		if span != 0 {
			mfm := ((close[i] - low[i]) - (high[i] - close[i])) / span
			cum += mfm * volume[i]
		}

		ad[i] = cum
	}

	fast := EMA(ad, fastPeriod)
	slow := EMA(ad, slowPeriod)

	for i := 0; i < n; i++ {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			continue
		}

		out[i] = fast[i] - slow[i]
	}

	return out
}
