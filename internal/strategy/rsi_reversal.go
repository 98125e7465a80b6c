package strategy

import (
	"math"

	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
)

// KeyRSIReversal is the registry key for the RSI Reversal strategy.
const KeyRSIReversal = "rsi_reversal"

// RSIReversal is a mean-reversion strategy: RSI leaving the oversold or
// overbought zone, filtered by the EMA 50 trend side.
type RSIReversal struct{}

func NewRSIReversal() *RSIReversal { return &RSIReversal{} }

func (r *RSIReversal) Meta() Metadata {
	return Metadata{
		Key:           KeyRSIReversal,
		Name:          "RSI Reversal",
		Description:   "RSI exits oversold (<30) or overbought (>70) zones with EMA 50 filter.",
		SignalsPerDay: "3-6",
		BestFor:       "5m, 15m",
		Style:         "Mean Reversion",
		Color:         "#a78bfa",
	}
}

func (r *RSIReversal) GenerateSignals(s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal {
	if s.Len() < 2 {
		return nil
	}
	if err := s.Require(candle.ColClose, indicator.ColRSI14, indicator.ColATR14); err != nil {
		return nil
	}

	closes, _ := s.Column(candle.ColClose)
	rsi, _ := s.Column(indicator.ColRSI14)
	atr, _ := s.Column(indicator.ColATR14)

	ema50, ok := s.Column(indicator.ColEMA50)
	if !ok {
		ema50 = indicator.EMA(closes, 50)
	}

	var signals []signal.Signal
	for i := 1; i < s.Len(); i++ {
		prev := rsi[i-1]
		if math.IsNaN(prev) {
			prev = 50
		}
		switch {
		case prev < 30 && rsi[i] >= 30 && closes[i] > ema50[i]:
			signals = append(signals, buildSignal(s, i, signal.Buy, atr[i], rsi[i], tsFn, KeyRSIReversal, symbol))
		case prev > 70 && rsi[i] <= 70 && closes[i] < ema50[i]:
			signals = append(signals, buildSignal(s, i, signal.Sell, atr[i], rsi[i], tsFn, KeyRSIReversal, symbol))
		}
	}
	return signals
}
