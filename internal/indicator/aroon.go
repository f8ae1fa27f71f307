package indicator

// Aroon returns the Aroon up and down series for the given period. A value
// is defined once period+1 bars are available; the oscillator used by the
// classifier is down minus up.
func Aroon(high, low []float64, period int) (up, down []float64) {
	n := len(high)
	up = nanPrefix(n, period)
	down = nanPrefix(n, period)

	for i := period; i < n; i++ {
		highestIdx := i
		lowestIdx := i

		for j := i - period; j <= i; j++ {
			if high[j] >= high[highestIdx] {
				highestIdx = j
			}

			if low[j] <= low[lowestIdx] {
				lowestIdx = j
			}
		}

		up[i] = 100.0 * float64(period-(i-highestIdx)) / float64(period)
		down[i] = 100.0 * float64(period-(i-lowestIdx)) / float64(period)
	}

	return up, down
}
