package indicator

import "math"

// PPO returns the Percentage Price Oscillator: 100*(fastEMA-slowEMA)/slowEMA.
func PPO(close []float64, fastPeriod, slowPeriod int) []float64 {
	n := len(close)
	out := nanPrefix(n, n)

	fast := EMA(close, fastPeriod)
	slow := EMA(close, slowPeriod)

	for i := 0; i < n; i++ {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) || slow[i] == 0 {
			continue
		}

		out[i] = 100.0 * (fast[i] - slow[i]) / slow[i]
	}

	return out
}
