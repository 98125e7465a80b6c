package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	wallex "github.com/wallexchange/wallex-go"
	"go.uber.org/zap"

	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/tfutils"
)

// Wallex adapts the Wallex REST API to the Exchange interface.
type Wallex struct {
	client *wallex.Client
	log    *zap.Logger
}

func NewWallex(apiKey string, log *zap.Logger) *Wallex {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wallex{
		client: wallex.New(wallex.ClientOptions{APIKey: apiKey}),
		log:    log,
	}
}

func (w *Wallex) Name() string {
	return "wallex"
}

// retry runs fn with exponential backoff, capped at 5 minutes per wait.
func (w *Wallex) retry(attempts int, delay time.Duration, fn func() error) error {
	backoff := delay
	for i := 1; i <= attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		w.log.Warn("wallex request failed",
			zap.Int("attempt", i),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		if i == attempts {
			break
		}
		time.Sleep(backoff)
		if backoff < 5*time.Minute {
			backoff *= 2
			if backoff > 5*time.Minute {
				backoff = 5 * time.Minute
			}
		}
	}
	return errors.New("all retry attempts failed")
}

// FetchCandles pulls candles for a symbol and timeframe over [start, end].
// Candles that fail validation are skipped.
func (w *Wallex) FetchCandles(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]candle.Candle, error) {
	if !tfutils.IsValidTimeframe(timeframe) {
		return nil, fmt.Errorf("unsupported timeframe: %s", timeframe)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []*wallex.Candle
	err := w.retry(3, 2*time.Second, func() error {
		var err error
		raw, err = w.client.Candles(NormalizeSymbol(symbol), NormalizeTimeframe(timeframe), start, end)
		if err != nil {
			return fmt.Errorf("fetching candles: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s %s: %w", symbol, timeframe, err)
	}

	var candles []candle.Candle
	for _, rc := range raw {
		open, _ := strconv.ParseFloat(string(rc.Open), 64)
		high, _ := strconv.ParseFloat(string(rc.High), 64)
		low, _ := strconv.ParseFloat(string(rc.Low), 64)
		closeP, _ := strconv.ParseFloat(string(rc.Close), 64)
		volume, _ := strconv.ParseFloat(string(rc.Volume), 64)

		c := candle.Candle{
			Time:   rc.Timestamp.UTC().Truncate(time.Minute),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: volume,
		}
		if err := c.Validate(); err != nil {
			w.log.Debug("skipping invalid candle",
				zap.String("symbol", symbol),
				zap.Time("time", c.Time),
				zap.Error(err))
			continue
		}
		candles = append(candles, c)
	}

	w.log.Debug("fetched candles",
		zap.String("symbol", symbol),
		zap.String("timeframe", timeframe),
		zap.Int("count", len(candles)))
	return candles, nil
}

// FetchLatestCandles pulls the most recent count candles.
func (w *Wallex) FetchLatestCandles(ctx context.Context, symbol, timeframe string, count int) ([]candle.Candle, error) {
	duration := tfutils.GetTimeframeDuration(timeframe)
	if duration == 0 {
		return nil, fmt.Errorf("invalid timeframe: %s", timeframe)
	}
	end := time.Now().UTC()
	start := end.Add(-duration * time.Duration(count))
	return w.FetchCandles(ctx, symbol, timeframe, start, end)
}
