package journal

import (
	"context"
	"time"
)

// Event types recorded by the terminal.
const (
	TypeSignal     = "signal"
	TypeTradeOpen  = "trade_open"
	TypeTradeClose = "trade_close"
	TypeError      = "error"
)

// Event represents a journaled event.
type Event struct {
	Time        time.Time
	Type        string
	Description string
	Data        map[string]any
}

// Journaler interface for journaling events.
type Journaler interface {
	LogEvent(ctx context.Context, event Event) error
	GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error)
}
