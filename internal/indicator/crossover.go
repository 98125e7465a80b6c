package indicator

// Crossover reports, per index, whether a crossed from at-or-below b to
// above b between consecutive bars. The first element is always false.
// NaN values never satisfy either comparison.
func Crossover(a, b []float64) []bool {
	if len(a) != len(b) {
		return nil
	}
	out := make([]bool, len(a))
	for i := 1; i < len(a); i++ {
		out[i] = a[i-1] <= b[i-1] && a[i] > b[i]
	}
	return out
}

// Crossunder reports, per index, whether a crossed from at-or-above b to
// below b between consecutive bars. The first element is always false.
func Crossunder(a, b []float64) []bool {
	if len(a) != len(b) {
		return nil
	}
	out := make([]bool, len(a))
	for i := 1; i < len(a); i++ {
		out[i] = a[i-1] >= b[i-1] && a[i] < b[i]
	}
	return out
}
