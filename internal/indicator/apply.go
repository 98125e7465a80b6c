package indicator

import (
	"fmt"

	"github.com/protrade/terminal/internal/candle"
)

// Column names produced by ApplyAll.
const (
	ColEMA9       = "ema_9"
	ColEMA21      = "ema_21"
	ColEMA50      = "ema_50"
	ColEMA200     = "ema_200"
	ColRSI14      = "rsi_14"
	ColATR14      = "atr_14"
	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColMACDHist   = "macd_hist"
	ColBBUpper    = "bb_upper"
	ColBBMiddle   = "bb_middle"
	ColBBLower    = "bb_lower"
	ColSupertrend = "supertrend"

	FlagCrossover921  = "crossover_9_21"
	FlagCrossunder921 = "crossunder_9_21"
)

// ApplyAll computes the fixed indicator set over a base OHLCV series and
// returns a new annotated series with every warm-up row (any NaN column
// value) dropped. The input series is left untouched. Fails when any base
// column is absent.
func ApplyAll(s *candle.Series) (*candle.Series, error) {
	if s == nil {
		return nil, fmt.Errorf("apply indicators: %w: empty series", candle.ErrMissingColumn)
	}
	if err := s.Require(candle.ColOpen, candle.ColHigh, candle.ColLow, candle.ColClose, candle.ColVolume); err != nil {
		return nil, fmt.Errorf("apply indicators: %w", err)
	}

	out := s.Clone()
	closes, _ := out.Column(candle.ColClose)
	high, _ := out.Column(candle.ColHigh)
	low, _ := out.Column(candle.ColLow)

	ema9 := EMA(closes, 9)
	ema21 := EMA(closes, 21)
	out.SetColumn(ColEMA9, ema9)
	out.SetColumn(ColEMA21, ema21)
	out.SetColumn(ColEMA50, EMA(closes, 50))
	out.SetColumn(ColEMA200, EMA(closes, 200))

	out.SetColumn(ColRSI14, RSI(closes, 14))

	line, signal, hist := MACD(closes, 12, 26, 9)
	out.SetColumn(ColMACD, line)
	out.SetColumn(ColMACDSignal, signal)
	out.SetColumn(ColMACDHist, hist)

	out.SetColumn(ColATR14, ATR(high, low, closes, 14))

	upper, middle, lower := BollingerBands(closes, 20, 2.0)
	out.SetColumn(ColBBUpper, upper)
	out.SetColumn(ColBBMiddle, middle)
	out.SetColumn(ColBBLower, lower)

	out.SetColumn(ColSupertrend, Supertrend(high, low, closes, 3.0, 10))

	out.SetFlag(FlagCrossover921, Crossover(ema9, ema21))
	out.SetFlag(FlagCrossunder921, Crossunder(ema9, ema21))

	return out.DropNaN(), nil
}
