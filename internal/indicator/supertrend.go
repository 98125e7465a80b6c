package indicator

// Supertrend computes the Supertrend direction series: -1 bullish, +1
// bearish. The bands and direction are an explicit left fold over bar
// index: each bar's bands depend on the previous bar's bands and close,
// and the direction flips only on a close beyond the active band. The
// strict > / < comparisons are load-bearing: strategies key off the exact
// flip bar.
func Supertrend(high, low, closes []float64, factor float64, atrLen int) []float64 {
	atr := ATR(high, low, closes, atrLen)
	if atr == nil || len(closes) == 0 {
		return nil
	}

	n := len(closes)
	rawUpper := make([]float64, n)
	rawLower := make([]float64, n)
	for i := 0; i < n; i++ {
		hl2 := (high[i] + low[i]) / 2
		rawUpper[i] = hl2 + factor*atr[i]
		rawLower[i] = hl2 - factor*atr[i]
	}

	upper := make([]float64, n)
	lower := make([]float64, n)
	direction := make([]float64, n)
	upper[0] = rawUpper[0]
	lower[0] = rawLower[0]
	direction[0] = 1 // start bearish until proven otherwise

	for i := 1; i < n; i++ {
		// Lower band ratchets up, or resets after a close below it.
		if rawLower[i] > lower[i-1] || closes[i-1] < lower[i-1] {
			lower[i] = rawLower[i]
		} else {
			lower[i] = lower[i-1]
		}

		// Upper band ratchets down, or resets after a close above it.
		if rawUpper[i] < upper[i-1] || closes[i-1] > upper[i-1] {
			upper[i] = rawUpper[i]
		} else {
			upper[i] = upper[i-1]
		}

		if direction[i-1] == 1 {
			if closes[i] > upper[i] {
				direction[i] = -1
			} else {
				direction[i] = 1
			}
		} else {
			if closes[i] < lower[i] {
				direction[i] = 1
			} else {
				direction[i] = -1
			}
		}
	}
	return direction
}
