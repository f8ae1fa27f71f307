package indicator

// BOP returns the Balance of Power series: (close-open)/(high-low) per bar.
// Bars with no range produce zero, not NaN.
func BOP(open, high, low, close []float64) []float64 {
	out := make([]float64, len(close))

	for i := range close {
		span := high[i] - low[i]
		if span == 0 {
			continue
		}

		out[i] = (close[i] - open[i]) / span
	}

	return out
}
