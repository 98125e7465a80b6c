package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protrade/terminal/internal/candle"
)

func seriesFromCloses(closes []float64) *candle.Series {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]candle.Candle, len(closes))
	for i, c := range closes {
		candles[i] = candle.Candle{
			Time:   base.Add(time.Duration(i) * 15 * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1,
		}
	}
	return candle.FromCandles(candles)
}

func TestApplyAll(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}

	out, err := ApplyAll(seriesFromCloses(closes))
	require.NoError(t, err)

	// RSI needs one down move (bar 2), Bollinger needs a 20-bar window;
	// every earlier row is warm-up and gets dropped.
	assert.Equal(t, 281, out.Len())

	for _, name := range []string{
		candle.ColClose, ColEMA9, ColEMA21, ColEMA50, ColEMA200,
		ColRSI14, ColATR14, ColMACD, ColMACDSignal, ColMACDHist,
		ColBBUpper, ColBBMiddle, ColBBLower, ColSupertrend,
	} {
		_, ok := out.Column(name)
		assert.True(t, ok, "column %s", name)
	}
	for _, name := range []string{FlagCrossover921, FlagCrossunder921} {
		_, ok := out.Flag(name)
		assert.True(t, ok, "flag %s", name)
	}
}

func TestApplyAll_ShortInput(t *testing.T) {
	out, err := ApplyAll(seriesFromCloses([]float64{100, 101, 100, 102, 101}))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(), "too little history for a 20-bar window")
}

func TestApplyAll_FlatSeries(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100
	}
	out, err := ApplyAll(seriesFromCloses(closes))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(), "flat series has undefined RSI on every bar")
}

func TestApplyAll_MissingColumns(t *testing.T) {
	_, err := ApplyAll(nil)
	assert.ErrorIs(t, err, candle.ErrMissingColumn)

	bare := candle.NewSeries([]time.Time{time.Now()})
	_, err = ApplyAll(bare)
	assert.ErrorIs(t, err, candle.ErrMissingColumn)
}

func TestApplyAll_InputUntouched(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}
	in := seriesFromCloses(closes)

	_, err := ApplyAll(in)
	require.NoError(t, err)

	assert.Equal(t, 60, in.Len())
	assert.ErrorIs(t, in.Require(ColRSI14), candle.ErrMissingColumn)
}
