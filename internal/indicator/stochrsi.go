package indicator

import "math"

// StochRSI returns the stochastic oscillator applied to the RSI series:
// fast %K over a kPeriod window of RSI values, and %D as its dPeriod SMA.
func StochRSI(close []float64, rsiPeriod, kPeriod, dPeriod int) (k, d []float64) {
	n := len(close)
	rsi := RSI(close, rsiPeriod)

	k = nanPrefix(n, n)

	defined := 0

	for i, v := range rsi {
		if math.IsNaN(v) {
			defined = 0
			continue
		}

		defined++
		if defined < kPeriod {
			continue
		}

		highest := v
		lowest := v

		for j := i - kPeriod + 1; j <= i; j++ {
			highest = math.Max(highest, rsi[j])
			lowest = math.Min(lowest, rsi[j])
		}

		span := highest - lowest
		if span == 0 {
			k[i] = 0
			continue
		}

		k[i] = 100.0 * (v - lowest) / span
	}

	d = SMA(k, dPeriod)

	return k, d
}
