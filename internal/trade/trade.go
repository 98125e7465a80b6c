// Package trade
package trade

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/protrade/terminal/internal/signal"
	"github.com/protrade/terminal/internal/tfutils"
)

var (
	// ErrInvalidTrade is returned when the side or price ordering
	// invariant is violated at construction.
	ErrInvalidTrade = errors.New("invalid trade")
	// ErrTradeClosed is returned when Close is called on a trade that is
	// already closed. Close is terminal; exit fields are never rewritten.
	ErrTradeClosed = errors.New("trade already closed")
)

// Status of a trade's lifecycle.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// ExitReason explains why a trade was closed.
type ExitReason string

const (
	ExitTargetHit ExitReason = "Target Hit"
	ExitStopHit   ExitReason = "Stop Hit"
	ExitTime      ExitReason = "Time Exit"
	ExitEOD       ExitReason = "EOD Exit"
	ExitManual    ExitReason = "Manual Close"
)

const defaultExpectedBars = 12

// Trade is a tracked position opened from a signal. It transitions from
// ACTIVE to CLOSED exactly once. A trade is exclusively owned by one
// tracking component; concurrent access needs external mutual exclusion.
type Trade struct {
	Symbol              string      `json:"symbol"`
	Side                signal.Type `json:"side"`
	EntryPrice          float64     `json:"entry_price"`
	TargetPrice         float64     `json:"target_price"`
	StopLoss            float64     `json:"stop_loss"`
	Timeframe           string      `json:"timeframe"`
	Strategy            string      `json:"strategy"`
	Confidence          float64     `json:"confidence"`
	ExpectedTimeMinutes float64     `json:"expected_time_minutes"`
	ExpectedBars        float64     `json:"expected_bars"`
	RSI                 float64     `json:"rsi"`
	ATR                 float64     `json:"atr"`
	EntryTime           time.Time   `json:"entry_time"`
	Status              Status      `json:"status"`
	ExitPrice           *float64    `json:"exit_price,omitempty"`
	ExitReason          ExitReason  `json:"exit_reason,omitempty"`
	PnL                 *float64    `json:"pnl,omitempty"`
	PnLPct              *float64    `json:"pnl_pct,omitempty"`
	ExitTime            *time.Time  `json:"exit_time,omitempty"`
}

// New validates a trade and activates it. Exit fields are cleared.
func New(t Trade) (*Trade, error) {
	if t.Side != signal.Buy && t.Side != signal.Sell {
		return nil, fmt.Errorf("%w: side %q", ErrInvalidTrade, t.Side)
	}
	if t.Side == signal.Buy {
		if !(t.StopLoss < t.EntryPrice && t.EntryPrice < t.TargetPrice) {
			return nil, fmt.Errorf("%w: BUY requires SL(%v) < Entry(%v) < TP(%v)",
				ErrInvalidTrade, t.StopLoss, t.EntryPrice, t.TargetPrice)
		}
	} else {
		if !(t.TargetPrice < t.EntryPrice && t.EntryPrice < t.StopLoss) {
			return nil, fmt.Errorf("%w: SELL requires TP(%v) < Entry(%v) < SL(%v)",
				ErrInvalidTrade, t.TargetPrice, t.EntryPrice, t.StopLoss)
		}
	}

	t.Status = StatusActive
	t.ExitPrice = nil
	t.ExitReason = ""
	t.PnL = nil
	t.PnLPct = nil
	t.ExitTime = nil
	return &t, nil
}

// FromSignal creates an active trade from a signal. The entry timestamp is
// injected by the caller; the expected time to target is derived from the
// expected bars and the timeframe length.
func FromSignal(sig signal.Signal, timeframe string, now time.Time) (*Trade, error) {
	bars := sig.ExpectedBars
	if bars == 0 {
		bars = defaultExpectedBars
	}
	minutes := bars * float64(tfutils.TimeframeMinutes(timeframe))
	if minutes == 0 {
		minutes = 60
	}

	return New(Trade{
		Symbol:              sig.Symbol,
		Side:                sig.Type,
		EntryPrice:          sig.Price,
		TargetPrice:         sig.TargetPrice,
		StopLoss:            sig.StopLoss,
		Timeframe:           timeframe,
		Strategy:            sig.Strategy,
		Confidence:          sig.Confidence,
		ExpectedTimeMinutes: minutes,
		ExpectedBars:        bars,
		RSI:                 sig.RSI,
		ATR:                 sig.ATR,
		EntryTime:           now.UTC(),
	})
}

// IsActive reports whether the trade is still open.
func (t *Trade) IsActive() bool { return t.Status == StatusActive }

// IsProfitable reports whether realized P&L is positive.
func (t *Trade) IsProfitable() bool { return t.PnL != nil && *t.PnL > 0 }

// CheckTargetHit reports whether the current price has reached the target.
func (t *Trade) CheckTargetHit(currentPrice float64) bool {
	if t.Side == signal.Buy {
		return currentPrice >= t.TargetPrice
	}
	return currentPrice <= t.TargetPrice
}

// CheckStopHit reports whether the current price has breached the stop.
func (t *Trade) CheckStopHit(currentPrice float64) bool {
	if t.Side == signal.Buy {
		return currentPrice <= t.StopLoss
	}
	return currentPrice >= t.StopLoss
}

// LivePnL computes the unrealized P&L at the current price for an active
// trade, or the frozen realized P&L once closed.
func (t *Trade) LivePnL(currentPrice float64) float64 {
	if !t.IsActive() {
		if t.PnL != nil {
			return *t.PnL
		}
		return 0
	}
	if t.Side == signal.Buy {
		return roundTo(currentPrice-t.EntryPrice, 4)
	}
	return roundTo(t.EntryPrice-currentPrice, 4)
}

// ElapsedMinutes returns minutes since the trade opened, to one decimal.
func (t *Trade) ElapsedMinutes(now time.Time) float64 {
	return roundTo(now.Sub(t.EntryTime).Minutes(), 1)
}

// Close finalizes the trade: sets exit fields and realized P&L. Only legal
// from ACTIVE.
func (t *Trade) Close(exitPrice float64, reason ExitReason, now time.Time) error {
	if t.Status == StatusClosed {
		return fmt.Errorf("%w: %s", ErrTradeClosed, t.Symbol)
	}

	t.Status = StatusClosed
	rounded := roundTo(exitPrice, 4)
	t.ExitPrice = &rounded
	t.ExitReason = reason
	exitTime := now.UTC()
	t.ExitTime = &exitTime

	var pnl float64
	if t.Side == signal.Buy {
		pnl = roundTo(exitPrice-t.EntryPrice, 4)
	} else {
		pnl = roundTo(t.EntryPrice-exitPrice, 4)
	}
	t.PnL = &pnl

	pct := 0.0
	if t.EntryPrice > 0 {
		pct = roundTo(pnl/t.EntryPrice*100, 2)
	}
	t.PnLPct = &pct
	return nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
