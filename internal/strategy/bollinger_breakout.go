package strategy

import (
	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
)

// KeyBollingerBreakout is the registry key for the Bollinger Breakout
// strategy.
const KeyBollingerBreakout = "bollinger_breakout"

// BollingerBreakout is a momentum strategy: a close breaking through a
// Bollinger band with RSI momentum and a volume spike above 1.3x the
// 20-bar average.
type BollingerBreakout struct{}

func NewBollingerBreakout() *BollingerBreakout { return &BollingerBreakout{} }

func (b *BollingerBreakout) Meta() Metadata {
	return Metadata{
		Key:           KeyBollingerBreakout,
		Name:          "Bollinger Breakout",
		Description:   "Price breaks Bollinger Band + RSI momentum + volume spike confirmation.",
		SignalsPerDay: "4-6",
		BestFor:       "5m, 15m",
		Style:         "Breakout",
		Color:         "#f0b429",
	}
}

func (b *BollingerBreakout) GenerateSignals(s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal {
	if s.Len() < 20 {
		return nil
	}
	if err := s.Require(candle.ColClose, candle.ColVolume, indicator.ColRSI14, indicator.ColATR14); err != nil {
		return nil
	}

	closes, _ := s.Column(candle.ColClose)
	volume, _ := s.Column(candle.ColVolume)
	rsi, _ := s.Column(indicator.ColRSI14)
	atr, _ := s.Column(indicator.ColATR14)

	bbUpper, upOK := s.Column(indicator.ColBBUpper)
	bbLower, loOK := s.Column(indicator.ColBBLower)
	if !upOK || !loOK {
		bbUpper, _, bbLower = indicator.BollingerBands(closes, 20, 2.0)
	}

	volAvg := indicator.SMA(volume, 20)

	var signals []signal.Signal
	for i := 20; i < s.Len(); i++ {
		volSpike := volume[i] > volAvg[i]*1.3
		switch {
		case closes[i-1] <= bbUpper[i-1] && closes[i] > bbUpper[i] && rsi[i] > 55 && volSpike:
			signals = append(signals, buildSignal(s, i, signal.Buy, atr[i], rsi[i], tsFn, KeyBollingerBreakout, symbol))
		case closes[i-1] >= bbLower[i-1] && closes[i] < bbLower[i] && rsi[i] < 45 && volSpike:
			signals = append(signals, buildSignal(s, i, signal.Sell, atr[i], rsi[i], tsFn, KeyBollingerBreakout, symbol))
		}
	}
	return signals
}
