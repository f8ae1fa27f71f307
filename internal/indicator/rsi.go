package indicator

// RSI returns the Relative Strength Index with Wilder smoothing. The first
// period positions are NaN.
func RSI(close []float64, period int) []float64 {
	n := len(close)
	out := nanPrefix(n, period)

	if n <= period {
		return out
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 1; i <= period; i++ {
		change := close[i] - close[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		change := close[i] - close[i-1]

		gain := 0.0
		loss := 0.0

		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}

		return 100
	}

	rs := avgGain / avgLoss

	return 100.0 - 100.0/(1.0+rs)
}
