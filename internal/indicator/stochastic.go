package indicator

import "math"

// Stochastic returns the slow %K and %D series using the classic
// fastK/slowK/slowD periods (5,3,3 by default in the classifier).
func Stochastic(high, low, close []float64, fastKPeriod, slowKPeriod, slowDPeriod int) (k, d []float64) {
	fastK := rawStochastic(high, low, close, fastKPeriod)
	k = SMA(fastK, slowKPeriod)
	d = SMA(k, slowDPeriod)

	return k, d
}

// rawStochastic computes fast %K: the close's position inside the trailing
// high/low range, scaled to 0-100.
func rawStochastic(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := nanPrefix(n, period-1)

	for i := period - 1; i < n; i++ {
		highest := high[i]
		lowest := low[i]

		for j := i - period + 1; j <= i; j++ {
			highest = math.Max(highest, high[j])
			lowest = math.Min(lowest, low[j])
		}

		span := highest - lowest
		if span == 0 {
			out[i] = 50
			continue
		}

		out[i] = 100.0 * (close[i] - lowest) / span
	}

	return out
}
