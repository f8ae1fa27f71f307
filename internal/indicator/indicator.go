// Package indicator computes technical indicator series over aligned OHLCV
// bars. Every function returns a slice of the same length as its input;
// positions inside an indicator's warm-up window hold NaN.
package indicator

import "math"

// nan fills the first n positions of a fresh slice of length length with NaN.
func nanPrefix(length, n int) []float64 {
	out := make([]float64, length)

	if n > length {
		n = length
	}

	for i := 0; i < n; i++ {
		out[i] = math.NaN()
	}

	return out
}

// IsDefined reports whether an indicator value is outside its warm-up window.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}
