package strategy

import (
	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
)

// KeyVWAPEMA is the registry key for the VWAP + EMA strategy.
const KeyVWAPEMA = "vwap_ema"

// VWAPEMA is a classic intraday strategy: price crossing the cumulative
// VWAP in the direction of the EMA 9/21 spread, with RSI confirming.
type VWAPEMA struct{}

func NewVWAPEMA() *VWAPEMA { return &VWAPEMA{} }

func (v *VWAPEMA) Meta() Metadata {
	return Metadata{
		Key:           KeyVWAPEMA,
		Name:          "VWAP + EMA",
		Description:   "Price vs VWAP crossover + EMA 9/21 direction + RSI. Classic intraday.",
		SignalsPerDay: "4-6",
		BestFor:       "5m, 15m",
		Style:         "Intraday",
		Color:         "#00d084",
	}
}

func (v *VWAPEMA) GenerateSignals(s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal {
	if s.Len() < 2 {
		return nil
	}
	if err := s.Require(candle.ColClose, candle.ColHigh, candle.ColLow, candle.ColVolume,
		indicator.ColEMA9, indicator.ColEMA21, indicator.ColRSI14, indicator.ColATR14); err != nil {
		return nil
	}

	closes, _ := s.Column(candle.ColClose)
	high, _ := s.Column(candle.ColHigh)
	low, _ := s.Column(candle.ColLow)
	volume, _ := s.Column(candle.ColVolume)
	ema9, _ := s.Column(indicator.ColEMA9)
	ema21, _ := s.Column(indicator.ColEMA21)
	rsi, _ := s.Column(indicator.ColRSI14)
	atr, _ := s.Column(indicator.ColATR14)

	vwap := indicator.VWAP(high, low, closes, volume)
	if vwap == nil {
		return nil
	}
	crossUp := indicator.Crossover(closes, vwap)
	crossDown := indicator.Crossunder(closes, vwap)

	var signals []signal.Signal
	for i := 1; i < s.Len(); i++ {
		switch {
		case crossUp[i] && ema9[i] > ema21[i] && rsi[i] > 50:
			signals = append(signals, buildSignal(s, i, signal.Buy, atr[i], rsi[i], tsFn, KeyVWAPEMA, symbol))
		case crossDown[i] && ema9[i] < ema21[i] && rsi[i] < 50:
			signals = append(signals, buildSignal(s, i, signal.Sell, atr[i], rsi[i], tsFn, KeyVWAPEMA, symbol))
		}
	}
	return signals
}
