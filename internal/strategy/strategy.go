// Package strategy
package strategy

import (
	"math"
	"time"

	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/signal"
)

// TimestampFunc maps a bar's time marker to a unix-epoch integer. It is
// supplied by the caller so the engine never reads an ambient clock.
type TimestampFunc func(time.Time) int64

// Metadata is presentation-only strategy information.
type Metadata struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	SignalsPerDay string `json:"signals_day"`
	BestFor       string `json:"best_for"`
	Style         string `json:"style"`
	Color         string `json:"color"`
}

// Strategy scans an indicator-annotated series and emits signals.
// Implementations fail soft: missing columns, empty input or short history
// produce an empty result, never an error.
type Strategy interface {
	Meta() Metadata
	GenerateSignals(s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal
}

// Run is the single entry point for executing a strategy. It short-circuits
// nil or empty input to an empty result and otherwise delegates to the
// strategy's GenerateSignals. Call sites use Run, never GenerateSignals
// directly.
func Run(st Strategy, s *candle.Series, tsFn TimestampFunc, symbol string) []signal.Signal {
	if st == nil || s == nil || s.Len() == 0 {
		return nil
	}
	return st.GenerateSignals(s, tsFn, symbol)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// buildSignal assembles a complete signal at bar i. Shared by all
// strategies: confidence grows with the RSI distance from neutral 50
// (capped at 95), the stop sits one ATR from the close and the target two
// ATRs in the trade direction.
func buildSignal(s *candle.Series, i int, typ signal.Type, atrVal, rsiVal float64, tsFn TimestampFunc, key, symbol string) signal.Signal {
	closes, _ := s.Column(candle.ColClose)
	closePrice := closes[i]

	dist := rsiVal - 50
	if typ == signal.Sell {
		dist = 50 - rsiVal
	}
	if dist < 0 {
		dist = 0
	}
	confidence := math.Min(95, 50+dist*1.8)

	var stop, target float64
	if typ == signal.Buy {
		stop = closePrice - atrVal
		target = closePrice + 2*atrVal
	} else {
		stop = closePrice + atrVal
		target = closePrice - 2*atrVal
	}

	ts := s.Times[i].Unix()
	if tsFn != nil {
		ts = tsFn(s.Times[i])
	}

	return signal.Signal{
		Type:        typ,
		Symbol:      symbol,
		Price:       roundTo(closePrice, 4),
		StopLoss:    roundTo(stop, 4),
		TargetPrice: roundTo(target, 4),
		RSI:         roundTo(rsiVal, 2),
		ATR:         roundTo(atrVal, 4),
		Confidence:  roundTo(confidence, 1),
		Strategy:    key,
		Time:        ts,
	}
}
