package indicator

import "math"

// BollingerBands computes the upper, middle and lower bands: a rolling
// simple moving average plus/minus stdDev times the rolling population
// standard deviation over the same window.
func BollingerBands(closes []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	if period <= 0 {
		return nil, nil, nil
	}

	middle = SMA(closes, period)
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))

	for i := range closes {
		if i < period-1 {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			continue
		}
		mean := middle[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - mean
			variance += d * d
		}
		offset := stdDev * math.Sqrt(variance/float64(period))
		upper[i] = mean + offset
		lower[i] = mean - offset
	}
	return upper, middle, lower
}
