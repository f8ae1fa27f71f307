package indicator

// CMO returns the Chande Momentum Oscillator with the given period:
// 100*(sumGains-sumLosses)/(sumGains+sumLosses) over the trailing window.
// The first period positions are NaN.
func CMO(close []float64, period int) []float64 {
	n := len(close)
	out := nanPrefix(n, period)

	for i := period; i < n; i++ {
		gains := 0.0
		losses := 0.0

		for j := i - period + 1; j <= i; j++ {
			change := close[j] - close[j-1]
			if change > 0 {
				gains += change
			} else {
				losses -= change
			}
		}

		total := gains + losses
		if total == 0 {
			out[i] = 0
			continue
		}

		out[i] = 100.0 * (gains - losses) / total
	}

	return out
}
