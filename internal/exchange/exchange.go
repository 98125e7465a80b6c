// Package exchange provides market-data access for candle feeds.
package exchange

import (
	"context"
	"strings"
	"time"

	"github.com/protrade/terminal/internal/candle"
)

// Exchange fetches OHLCV candles from a market-data source.
type Exchange interface {
	Name() string
	FetchCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]candle.Candle, error)
	FetchLatestCandles(ctx context.Context, symbol, timeframe string, count int) ([]candle.Candle, error)
}

// NormalizeSymbol converts "btc-usdt" style symbols to the exchange's
// "BTCUSDT" form.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

// NormalizeTimeframe maps timeframes to the wire values the API expects:
// minute frames drop the suffix ("15m" -> "15"), larger frames pass through.
func NormalizeTimeframe(timeframe string) string {
	if strings.HasSuffix(timeframe, "m") {
		return strings.TrimSuffix(timeframe, "m")
	}
	return timeframe
}
