package indicator

import "math"

// CCI returns the Commodity Channel Index over the typical price
// (high+low+close)/3 with the given period. The first period-1 positions
// are NaN.
func CCI(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := nanPrefix(n, period-1)

	tp := make([]float64, n)
	for i := range tp {
		tp[i] = (high[i] + low[i] + close[i]) / 3.0
	}

	sma := SMA(tp, period)

	for i := period - 1; i < n; i++ {
		meanDev := 0.0
		for j := i - period + 1; j <= i; j++ {
			meanDev += math.Abs(tp[j] - sma[i])
		}

		meanDev /= float64(period)

		if meanDev == 0 {
			out[i] = 0
			continue
		}

		out[i] = (tp[i] - sma[i]) / (0.015 * meanDev)
	}

	return out
}
