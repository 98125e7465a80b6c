package strategy

import (
	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
)

// KeyProMTF is the registry key for the Pro MTF strategy.
const KeyProMTF = "pro_mtf"

// ProMTF is a conservative swing strategy: an EMA 9/21 cross must align
// with RSI momentum, the EMA 200 trend and the Supertrend direction before
// a signal fires.
type ProMTF struct{}

func NewProMTF() *ProMTF { return &ProMTF{} }

func (p *ProMTF) Meta() Metadata {
	return Metadata{
		Key:           KeyProMTF,
		Name:          "Pro MTF",
		Description:   "EMA 9/21 cross + RSI + EMA 200 trend + Supertrend. Best for swing trading.",
		SignalsPerDay: "1-3",
		BestFor:       "1D, 1W",
		Style:         "Swing",
		Color:         "#3b82f6",
	}
}

func (p *ProMTF) GenerateSignals(s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal {
	if s.Len() < 2 {
		return nil
	}
	if err := s.Require(candle.ColClose, indicator.ColEMA9, indicator.ColEMA21,
		indicator.ColEMA200, indicator.ColRSI14, indicator.ColATR14, indicator.ColSupertrend); err != nil {
		return nil
	}
	crossUp, ok := s.Flag(indicator.FlagCrossover921)
	if !ok {
		return nil
	}
	crossDown, ok := s.Flag(indicator.FlagCrossunder921)
	if !ok {
		return nil
	}

	closes, _ := s.Column(candle.ColClose)
	ema200, _ := s.Column(indicator.ColEMA200)
	rsi, _ := s.Column(indicator.ColRSI14)
	atr, _ := s.Column(indicator.ColATR14)
	st, _ := s.Column(indicator.ColSupertrend)

	var signals []signal.Signal
	for i := 1; i < s.Len(); i++ {
		switch {
		case crossUp[i] && rsi[i] > 50 && closes[i] > ema200[i] && st[i] < 0:
			signals = append(signals, buildSignal(s, i, signal.Buy, atr[i], rsi[i], tsFn, KeyProMTF, symbol))
		case crossDown[i] && rsi[i] < 50 && closes[i] < ema200[i] && st[i] > 0:
			signals = append(signals, buildSignal(s, i, signal.Sell, atr[i], rsi[i], tsFn, KeyProMTF, symbol))
		}
	}
	return signals
}
