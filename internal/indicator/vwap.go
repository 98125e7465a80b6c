package indicator

import "math"

// VWAP computes the volume-weighted average price, cumulative from the
// start of the series: running sum of typical price times volume over the
// running sum of volume. Bars with zero volume yield NaN instead of a
// division by zero.
func VWAP(high, low, closes, volume []float64) []float64 {
	n := len(closes)
	if n == 0 || len(high) != n || len(low) != n || len(volume) != n {
		return nil
	}
	out := make([]float64, n)
	cumPV := 0.0
	cumVol := 0.0
	for i := 0; i < n; i++ {
		tp := (high[i] + low[i] + closes[i]) / 3
		cumPV += tp * volume[i]
		cumVol += volume[i]
		if volume[i] == 0 || cumVol == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = cumPV / cumVol
	}
	return out
}
