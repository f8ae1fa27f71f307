package indicator

import "math"

// MACD returns the MACD line, signal line, and histogram for the given
// fast/slow/signal periods. Histogram values are defined once both the slow
// EMA and the signal EMA have warmed up.
func MACD(close []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal, hist []float64) {
	n := len(close)

	fast := EMA(close, fastPeriod)
	slow := EMA(close, slowPeriod)

	macd = make([]float64, n)
	for i := range macd {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			macd[i] = math.NaN()
			continue
		}

		macd[i] = fast[i] - slow[i]
	}

	signal = EMA(macd, signalPeriod)

	hist = make([]float64, n)
	for i := range hist {
		if math.IsNaN(macd[i]) || math.IsNaN(signal[i]) {
			hist[i] = math.NaN()
			continue
		}

		hist[i] = macd[i] - signal[i]
	}

	return macd, signal, hist
}
