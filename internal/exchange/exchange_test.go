package exchange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", NormalizeSymbol("btc-usdt"))
	assert.Equal(t, "ETHUSDT", NormalizeSymbol("ETH-USDT"))
	assert.Equal(t, "BTCUSDT", NormalizeSymbol("BTCUSDT"))
}

func TestNormalizeTimeframe(t *testing.T) {
	assert.Equal(t, "15", NormalizeTimeframe("15m"))
	assert.Equal(t, "1", NormalizeTimeframe("1m"))
	assert.Equal(t, "1h", NormalizeTimeframe("1h"))
	assert.Equal(t, "1d", NormalizeTimeframe("1d"))
}

func TestWallex_Retry(t *testing.T) {
	w := NewWallex("", nil)

	t.Run("succeeds after a transient failure", func(t *testing.T) {
		calls := 0
		err := w.retry(3, time.Millisecond, func() error {
			calls++
			if calls < 2 {
				return errors.New("transient")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := w.retry(3, time.Millisecond, func() error {
			calls++
			return errors.New("down")
		})
		assert.Error(t, err)
		assert.Equal(t, 3, calls)
	})
}

func TestWallex_FetchCandles_InvalidTimeframe(t *testing.T) {
	w := NewWallex("", nil)
	_, err := w.FetchCandles(t.Context(), "BTC-USDT", "3m", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}
