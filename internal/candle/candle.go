// Package candle
package candle

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCandle is returned when OHLC ordering or price sign constraints
// are violated at construction.
var ErrInvalidCandle = errors.New("invalid candle")

// Candle is a single immutable OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// New constructs a validated candle.
func New(t time.Time, open, high, low, close, volume float64) (Candle, error) {
	c := Candle{Time: t, Open: open, High: high, Low: low, Close: close, Volume: volume}
	if err := c.Validate(); err != nil {
		return Candle{}, err
	}
	return c, nil
}

// Validate checks the bar's internal consistency.
func (c Candle) Validate() error {
	if c.High < c.Low {
		return fmt.Errorf("%w: high %v < low %v", ErrInvalidCandle, c.High, c.Low)
	}
	if c.High < c.Open {
		return fmt.Errorf("%w: high %v < open %v", ErrInvalidCandle, c.High, c.Open)
	}
	if c.High < c.Close {
		return fmt.Errorf("%w: high %v < close %v", ErrInvalidCandle, c.High, c.Close)
	}
	if c.Low > c.Open {
		return fmt.Errorf("%w: low %v > open %v", ErrInvalidCandle, c.Low, c.Open)
	}
	if c.Low > c.Close {
		return fmt.Errorf("%w: low %v > close %v", ErrInvalidCandle, c.Low, c.Close)
	}
	if c.Open < 0 || c.Close < 0 {
		return fmt.Errorf("%w: prices must be non-negative", ErrInvalidCandle)
	}
	if c.Volume < 0 {
		return fmt.Errorf("%w: volume cannot be negative", ErrInvalidCandle)
	}
	return nil
}

// Range returns high - low.
func (c Candle) Range() float64 { return c.High - c.Low }

// Body returns the absolute open-to-close distance.
func (c Candle) Body() float64 { return math.Abs(c.Close - c.Open) }

// IsBullish reports whether the bar closed above its open.
func (c Candle) IsBullish() bool { return c.Close > c.Open }

// IsBearish reports whether the bar closed below its open.
func (c Candle) IsBearish() bool { return c.Close < c.Open }

// ChangePct returns the open-to-close change in percent, rounded to two
// decimals. Zero when the open is zero.
func (c Candle) ChangePct() float64 {
	if c.Open <= 0 {
		return 0
	}
	return math.Round((c.Close-c.Open)/c.Open*100*100) / 100
}
