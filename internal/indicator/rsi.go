package indicator

import "math"

// RSI computes the Wilder-smoothed Relative Strength Index over the given
// period. Output is within [0, 100]; the first position is NaN (no delta),
// and positions where the average loss is zero are NaN rather than a
// division blow-up.
func RSI(values []float64, length int) []float64 {
	if length <= 0 || len(values) == 0 {
		return nil
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	gains[0] = math.NaN()
	losses[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}

	avgGain := wilder(gains, length)
	avgLoss := wilder(losses, length)

	out := make([]float64, len(values))
	for i := range out {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) || avgLoss[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
