package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
)

// buildSeries constructs an annotated series directly, so each strategy's
// entry conditions can be staged bar by bar.
func buildSeries(t *testing.T, n int, cols map[string][]float64, flags map[string][]bool) *candle.Series {
	t.Helper()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, n)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * 15 * time.Minute)
	}
	s := candle.NewSeries(times)
	for name, col := range cols {
		require.NoError(t, s.SetColumn(name, col))
	}
	for name, f := range flags {
		require.NoError(t, s.SetFlag(name, f))
	}
	return s
}

func constN(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRun_ShortCircuits(t *testing.T) {
	st := NewProMTF()

	assert.Nil(t, Run(nil, buildSeries(t, 1, nil, nil), nil, "BTC-USDT"))
	assert.Nil(t, Run(st, nil, nil, "BTC-USDT"))
	assert.Nil(t, Run(st, candle.FromCandles(nil), nil, "BTC-USDT"))
}

func TestRun_EmptySeriesForAllBuiltins(t *testing.T) {
	empty := candle.FromCandles(nil)
	r := NewRegistry()
	for _, key := range r.Keys() {
		st, _ := r.Get(key)
		assert.Nil(t, Run(st, empty, nil, "BTC-USDT"), key)
	}
}

func TestRSIReversal(t *testing.T) {
	t.Run("buy on oversold exit above EMA50", func(t *testing.T) {
		s := buildSeries(t, 2, map[string][]float64{
			candle.ColClose:      {100, 102},
			indicator.ColRSI14:   {25, 35},
			indicator.ColATR14:   {2, 2},
			indicator.ColEMA50:   {90, 90},
		}, nil)

		signals := Run(NewRSIReversal(), s, func(tm time.Time) int64 { return 42 }, "BTC-USDT")
		require.Len(t, signals, 1)

		sig := signals[0]
		assert.Equal(t, signal.Buy, sig.Type)
		assert.Equal(t, "BTC-USDT", sig.Symbol)
		assert.Equal(t, KeyRSIReversal, sig.Strategy)
		assert.Equal(t, 102.0, sig.Price)
		assert.Equal(t, 100.0, sig.StopLoss, "stop is one ATR below close")
		assert.Equal(t, 106.0, sig.TargetPrice, "target is two ATRs above close")
		assert.Equal(t, 35.0, sig.RSI)
		assert.Equal(t, 2.0, sig.ATR)
		assert.Equal(t, 50.0, sig.Confidence, "RSI below neutral clamps distance to zero")
		assert.Equal(t, int64(42), sig.Time)
	})

	t.Run("sell on overbought exit below EMA50", func(t *testing.T) {
		s := buildSeries(t, 2, map[string][]float64{
			candle.ColClose:      {100, 98},
			indicator.ColRSI14:   {75, 40},
			indicator.ColATR14:   {2, 2},
			indicator.ColEMA50:   {110, 110},
		}, nil)

		signals := Run(NewRSIReversal(), s, nil, "ETH-USDT")
		require.Len(t, signals, 1)

		sig := signals[0]
		assert.Equal(t, signal.Sell, sig.Type)
		assert.Equal(t, 100.0, sig.StopLoss, "stop is one ATR above close")
		assert.Equal(t, 94.0, sig.TargetPrice)
		// dist = 50 - 40 = 10 -> 50 + 18
		assert.Equal(t, 68.0, sig.Confidence)
		assert.Equal(t, s.Times[1].Unix(), sig.Time, "nil tsFn falls back to bar time")
	})

	t.Run("confidence capped at 95", func(t *testing.T) {
		s := buildSeries(t, 2, map[string][]float64{
			candle.ColClose:      {100, 102},
			indicator.ColRSI14:   {25, 85},
			indicator.ColATR14:   {2, 2},
			indicator.ColEMA50:   {90, 90},
		}, nil)

		signals := Run(NewRSIReversal(), s, nil, "BTC-USDT")
		require.Len(t, signals, 1)
		assert.Equal(t, 95.0, signals[0].Confidence)
	})

	t.Run("missing columns yield nothing", func(t *testing.T) {
		s := buildSeries(t, 2, map[string][]float64{
			candle.ColClose: {100, 102},
		}, nil)
		assert.Nil(t, Run(NewRSIReversal(), s, nil, "BTC-USDT"))
	})
}

func TestProMTF(t *testing.T) {
	s := buildSeries(t, 2, map[string][]float64{
		candle.ColClose:          {100, 102},
		indicator.ColEMA9:        {99, 103},
		indicator.ColEMA21:       {100, 101},
		indicator.ColEMA200:      {90, 90},
		indicator.ColRSI14:       {55, 60},
		indicator.ColATR14:       {2, 2},
		indicator.ColSupertrend:  {-1, -1},
	}, map[string][]bool{
		indicator.FlagCrossover921:  {false, true},
		indicator.FlagCrossunder921: {false, false},
	})

	signals := Run(NewProMTF(), s, nil, "BTC-USDT")
	require.Len(t, signals, 1)
	assert.Equal(t, signal.Buy, signals[0].Type)
	assert.Equal(t, KeyProMTF, signals[0].Strategy)
	assert.Equal(t, 68.0, signals[0].Confidence)

	t.Run("bearish supertrend blocks the buy", func(t *testing.T) {
		require.NoError(t, s.SetColumn(indicator.ColSupertrend, []float64{1, 1}))
		assert.Nil(t, Run(NewProMTF(), s, nil, "BTC-USDT"))
	})
}

func TestVWAPEMA(t *testing.T) {
	// vwap = [9.667, 10]; the close crosses it upward on the second bar.
	s := buildSeries(t, 2, map[string][]float64{
		candle.ColClose:     {9, 11},
		candle.ColHigh:      {12, 12},
		candle.ColLow:       {8, 8},
		candle.ColVolume:    {1, 1},
		indicator.ColEMA9:   {10, 11},
		indicator.ColEMA21:  {9, 10},
		indicator.ColRSI14:  {55, 60},
		indicator.ColATR14:  {1, 1},
	}, nil)

	signals := Run(NewVWAPEMA(), s, nil, "BTC-USDT")
	require.Len(t, signals, 1)
	assert.Equal(t, signal.Buy, signals[0].Type)
	assert.Equal(t, KeyVWAPEMA, signals[0].Strategy)

	t.Run("EMA spread against the cross blocks it", func(t *testing.T) {
		require.NoError(t, s.SetColumn(indicator.ColEMA9, []float64{8, 9}))
		assert.Nil(t, Run(NewVWAPEMA(), s, nil, "BTC-USDT"))
	})
}

func TestSupertrendScalper(t *testing.T) {
	cols := map[string][]float64{
		candle.ColClose:      {100, 101},
		candle.ColHigh:       {101, 102},
		candle.ColLow:        {99, 100},
		indicator.ColRSI14:   {60, 60},
		indicator.ColATR14:   {1, 1},
		ColSupertrendScalper: {1, -1},
	}
	s := buildSeries(t, 2, cols, nil)

	signals := Run(NewSupertrendScalper(), s, nil, "BTC-USDT")
	require.Len(t, signals, 1)
	assert.Equal(t, signal.Buy, signals[0].Type)

	t.Run("sell on flip to bearish", func(t *testing.T) {
		require.NoError(t, s.SetColumn(ColSupertrendScalper, []float64{-1, 1}))
		require.NoError(t, s.SetColumn(indicator.ColRSI14, []float64{50, 40}))
		signals := Run(NewSupertrendScalper(), s, nil, "BTC-USDT")
		require.Len(t, signals, 1)
		assert.Equal(t, signal.Sell, signals[0].Type)
	})

	t.Run("no flip, no signal", func(t *testing.T) {
		require.NoError(t, s.SetColumn(ColSupertrendScalper, []float64{1, 1}))
		assert.Nil(t, Run(NewSupertrendScalper(), s, nil, "BTC-USDT"))
	})
}

func TestMACDCrossover(t *testing.T) {
	n := 30
	line := constN(n, -1)
	line[n-1] = 1
	s := buildSeries(t, n, map[string][]float64{
		candle.ColClose:          constN(n, 100),
		indicator.ColRSI14:       constN(n, 60),
		indicator.ColATR14:       constN(n, 1),
		indicator.ColMACD:        line,
		indicator.ColMACDSignal:  constN(n, 0),
		indicator.ColMACDHist:    line,
	}, nil)

	signals := Run(NewMACDCrossover(), s, nil, "BTC-USDT")
	require.Len(t, signals, 1)
	assert.Equal(t, signal.Buy, signals[0].Type)
	assert.Equal(t, int64(29), (signals[0].Time-s.Times[0].Unix())/(15*60), "fires on the cross bar")

	t.Run("below minimum history", func(t *testing.T) {
		short := buildSeries(t, 10, map[string][]float64{
			candle.ColClose:    constN(10, 100),
			indicator.ColRSI14: constN(10, 60),
			indicator.ColATR14: constN(10, 1),
		}, nil)
		assert.Nil(t, Run(NewMACDCrossover(), short, nil, "BTC-USDT"))
	})
}

func TestBollingerBreakout(t *testing.T) {
	n := 22
	closes := constN(n, 100)
	closes[n-1] = 106
	volume := constN(n, 10)
	volume[n-1] = 20

	s := buildSeries(t, n, map[string][]float64{
		candle.ColClose:      closes,
		candle.ColVolume:     volume,
		indicator.ColRSI14:   constN(n, 60),
		indicator.ColATR14:   constN(n, 1),
		indicator.ColBBUpper: constN(n, 105),
		indicator.ColBBLower: constN(n, 95),
	}, nil)

	signals := Run(NewBollingerBreakout(), s, nil, "BTC-USDT")
	require.Len(t, signals, 1)
	assert.Equal(t, signal.Buy, signals[0].Type)
	assert.Equal(t, KeyBollingerBreakout, signals[0].Strategy)

	t.Run("no volume spike, no signal", func(t *testing.T) {
		flat := constN(n, 10)
		require.NoError(t, s.SetColumn(candle.ColVolume, flat))
		assert.Nil(t, Run(NewBollingerBreakout(), s, nil, "BTC-USDT"))
	})
}

func TestBuildSignal_Rounding(t *testing.T) {
	s := buildSeries(t, 1, map[string][]float64{
		candle.ColClose: {100.123456},
	}, nil)

	sig := buildSignal(s, 0, signal.Buy, 1.987654, 63.456789, nil, "test", "BTC-USDT")
	assert.Equal(t, 100.1235, sig.Price)
	assert.Equal(t, 98.1358, sig.StopLoss)
	assert.Equal(t, 104.0988, sig.TargetPrice)
	assert.Equal(t, 63.46, sig.RSI)
	assert.Equal(t, 1.9877, sig.ATR)
}
