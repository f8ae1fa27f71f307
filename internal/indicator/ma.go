package indicator

import "math"

// SMA returns the simple moving average of values with the given period.
// A position is NaN until its trailing window holds period defined values,
// so NaN warm-up prefixes in the input propagate instead of poisoning the
// running sum.
func SMA(values []float64, period int) []float64 {
	out := nanPrefix(len(values), len(values))

	sum := 0.0
	defined := 0

	for i, v := range values {
		if math.IsNaN(v) {
			sum = 0
			defined = 0

			continue
		}

		sum += v
		defined++

		if defined > period {
			sum -= values[i-period]
		}

		if defined >= period {
			out[i] = sum / float64(period)
		}
	}

	return out
}

// EMA returns the exponential moving average of values with the given
// period, seeded with the SMA of the first period values. The first
// period-1 positions are NaN. NaN inputs delay the seed until a full
// window of defined values is available.
func EMA(values []float64, period int) []float64 {
	out := nanPrefix(len(values), len(values))
	multiplier := 2.0 / (float64(period) + 1.0)

	seeded := false
	sum := 0.0
	count := 0
	prev := 0.0

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}

		if !seeded {
			sum += v
			count++

			if count == period {
				prev = sum / float64(period)
				out[i] = prev
				seeded = true
			}

			continue
		}

		prev = (v-prev)*multiplier + prev
		out[i] = prev
	}

	return out
}
