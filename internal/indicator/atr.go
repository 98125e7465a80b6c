package indicator

import "math"

// TrueRange computes the per-bar true range: the largest of high-low,
// |high - previous close| and |low - previous close|. The first bar has no
// previous close and uses high-low alone.
func TrueRange(high, low, closes []float64) []float64 {
	if len(high) == 0 || len(high) != len(low) || len(high) != len(closes) {
		return nil
	}
	out := make([]float64, len(high))
	out[0] = high[0] - low[0]
	for i := 1; i < len(high); i++ {
		prevClose := closes[i-1]
		tr := high[i] - low[i]
		tr = math.Max(tr, math.Abs(high[i]-prevClose))
		tr = math.Max(tr, math.Abs(low[i]-prevClose))
		out[i] = tr
	}
	return out
}

// ATR computes the Average True Range: the true range smoothed with the same
// Wilder average RSI uses.
func ATR(high, low, closes []float64, length int) []float64 {
	if length <= 0 {
		return nil
	}
	tr := TrueRange(high, low, closes)
	if tr == nil {
		return nil
	}
	return wilder(tr, length)
}
