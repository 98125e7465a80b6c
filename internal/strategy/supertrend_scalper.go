package strategy

import (
	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
)

// KeySupertrendScalper is the registry key for the Supertrend Scalper
// strategy.
const KeySupertrendScalper = "supertrend_scalper"

// ColSupertrendScalper is the column holding the fast Supertrend(2, 7)
// direction, distinct from the default Supertrend(3, 10) column.
const ColSupertrendScalper = "supertrend_scalper"

// SupertrendScalper is an aggressive scalping strategy: it trades every
// direction flip of a fast Supertrend, with a loose RSI gate.
type SupertrendScalper struct{}

func NewSupertrendScalper() *SupertrendScalper { return &SupertrendScalper{} }

func (st *SupertrendScalper) Meta() Metadata {
	return Metadata{
		Key:           KeySupertrendScalper,
		Name:          "ST Scalper",
		Description:   "Fast Supertrend(2,7) direction flip + RSI confirmation. Most signals.",
		SignalsPerDay: "6-12",
		BestFor:       "5m",
		Style:         "Scalping",
		Color:         "#f97316",
	}
}

func (st *SupertrendScalper) GenerateSignals(s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal {
	if s.Len() < 2 {
		return nil
	}
	if err := s.Require(candle.ColClose, candle.ColHigh, candle.ColLow,
		indicator.ColRSI14, indicator.ColATR14); err != nil {
		return nil
	}

	closes, _ := s.Column(candle.ColClose)
	high, _ := s.Column(candle.ColHigh)
	low, _ := s.Column(candle.ColLow)
	rsi, _ := s.Column(indicator.ColRSI14)
	atr, _ := s.Column(indicator.ColATR14)

	direction, ok := s.Column(ColSupertrendScalper)
	if !ok {
		direction = indicator.Supertrend(high, low, closes, 2.0, 7)
	}

	var signals []signal.Signal
	for i := 1; i < s.Len(); i++ {
		switch {
		case direction[i-1] > 0 && direction[i] < 0 && rsi[i] > 45:
			signals = append(signals, buildSignal(s, i, signal.Buy, atr[i], rsi[i], tsFn, KeySupertrendScalper, symbol))
		case direction[i-1] < 0 && direction[i] > 0 && rsi[i] < 55:
			signals = append(signals, buildSignal(s, i, signal.Sell, atr[i], rsi[i], tsFn, KeySupertrendScalper, symbol))
		}
	}
	return signals
}
