package strategy

import (
	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
)

// KeyMACDCrossover is the registry key for the MACD Crossover strategy.
const KeyMACDCrossover = "macd_crossover"

// MACDCrossover is a trend strategy: the MACD line crossing its signal
// line with the histogram and RSI agreeing on direction.
type MACDCrossover struct{}

func NewMACDCrossover() *MACDCrossover { return &MACDCrossover{} }

func (m *MACDCrossover) Meta() Metadata {
	return Metadata{
		Key:           KeyMACDCrossover,
		Name:          "MACD Crossover",
		Description:   "MACD crosses Signal line + histogram confirms + RSI filter.",
		SignalsPerDay: "4-6",
		BestFor:       "15m, 1H",
		Style:         "Trend",
		Color:         "#fb7185",
	}
}

func (m *MACDCrossover) GenerateSignals(s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal {
	if s.Len() < 26 {
		return nil
	}
	if err := s.Require(candle.ColClose, indicator.ColRSI14, indicator.ColATR14); err != nil {
		return nil
	}

	closes, _ := s.Column(candle.ColClose)
	rsi, _ := s.Column(indicator.ColRSI14)
	atr, _ := s.Column(indicator.ColATR14)

	line, lineOK := s.Column(indicator.ColMACD)
	sigLine, sigOK := s.Column(indicator.ColMACDSignal)
	hist, histOK := s.Column(indicator.ColMACDHist)
	if !lineOK || !sigOK || !histOK {
		line, sigLine, hist = indicator.MACD(closes, 12, 26, 9)
	}

	var signals []signal.Signal
	for i := 1; i < s.Len(); i++ {
		switch {
		case line[i-1] <= sigLine[i-1] && line[i] > sigLine[i] && hist[i] > 0 && rsi[i] > 50:
			signals = append(signals, buildSignal(s, i, signal.Buy, atr[i], rsi[i], tsFn, KeyMACDCrossover, symbol))
		case line[i-1] >= sigLine[i-1] && line[i] < sigLine[i] && hist[i] < 0 && rsi[i] < 50:
			signals = append(signals, buildSignal(s, i, signal.Sell, atr[i], rsi[i], tsFn, KeyMACDCrossover, symbol))
		}
	}
	return signals
}
