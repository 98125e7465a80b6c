package indicator

// MACD computes the Moving Average Convergence Divergence trio: the MACD
// line (fast EMA minus slow EMA), its signal line (EMA of the MACD line),
// and the histogram (line minus signal).
func MACD(closes []float64, fast, slow, signalLen int) (line, signal, histogram []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	if emaFast == nil || emaSlow == nil {
		return nil, nil, nil
	}

	line = make([]float64, len(closes))
	for i := range line {
		line[i] = emaFast[i] - emaSlow[i]
	}

	signal = EMA(line, signalLen)
	if signal == nil {
		return nil, nil, nil
	}

	histogram = make([]float64, len(closes))
	for i := range histogram {
		histogram[i] = line[i] - signal[i]
	}
	return line, signal, histogram
}
