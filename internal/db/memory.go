package db

import (
	"context"
	"sync"
	"time"

	"github.com/protrade/terminal/internal/journal"
	"github.com/protrade/terminal/internal/signal"
	"github.com/protrade/terminal/internal/trade"
)

// Memory is an in-memory Storage used in tests and when no database is
// configured.
type Memory struct {
	mu      sync.Mutex
	trades  []trade.Trade
	signals []signal.Signal
	events  []journal.Event
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveTrade(ctx context.Context, t *trade.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, *t)
	return nil
}

func (m *Memory) UpdateTrade(ctx context.Context, t *trade.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.trades {
		if m.trades[i].Symbol == t.Symbol && m.trades[i].EntryTime.Equal(t.EntryTime) {
			m.trades[i] = *t
			return nil
		}
	}
	m.trades = append(m.trades, *t)
	return nil
}

func (m *Memory) GetActiveTrades(ctx context.Context) ([]trade.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []trade.Trade
	for _, t := range m.trades {
		if t.Status == trade.StatusActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) GetTrades(ctx context.Context, symbol string, start, end time.Time) ([]trade.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []trade.Trade
	for _, t := range m.trades {
		if t.Symbol == symbol && !t.EntryTime.Before(start) && !t.EntryTime.After(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) SaveSignal(ctx context.Context, sig signal.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals = append(m.signals, sig)
	return nil
}

func (m *Memory) GetSignals(ctx context.Context, symbol string, start, end time.Time) ([]signal.Signal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []signal.Signal
	for _, sig := range m.signals {
		if sig.Symbol == symbol && sig.Time >= start.Unix() && sig.Time <= end.Unix() {
			out = append(out, sig)
		}
	}
	return out, nil
}

func (m *Memory) LogEvent(ctx context.Context, event journal.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journal.Event
	for _, event := range m.events {
		if event.Type == eventType && !event.Time.Before(start) && !event.Time.After(end) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
