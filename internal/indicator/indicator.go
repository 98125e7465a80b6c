// Package indicator holds the technical indicator engine: pure transforms
// over equal-length float series. Every function returns a slice of the same
// length as its input, with math.NaN() marking positions where history is
// insufficient. Inputs are never mutated.
package indicator

import "math"

// ewm runs an exponential smoothing recurrence with the given alpha. Leading
// NaN values stay NaN; the recurrence seeds at the first defined value, and
// an interior NaN carries the previous smoothed value forward.
func ewm(values []float64, alpha float64) []float64 {
	out := make([]float64, len(values))
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = prev
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// EMA computes the exponential moving average with span smoothing,
// alpha = 2/(length+1). A length of 1 degenerates to the identity.
func EMA(values []float64, length int) []float64 {
	if length <= 0 {
		return nil
	}
	return ewm(values, 2/(float64(length)+1))
}

// wilder computes the Wilder exponential average used by RSI and ATR,
// alpha = 1/length (center-of-mass length-1). This is deliberately a
// different smoothing constant than EMA's span formula.
func wilder(values []float64, length int) []float64 {
	return ewm(values, 1/float64(length))
}

// SMA computes the arithmetic mean of the trailing window. The first
// length-1 positions are NaN.
func SMA(values []float64, length int) []float64 {
	if length <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= length {
			sum -= values[i-length]
		}
		if i < length-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(length)
	}
	return out
}
