package trade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/protrade/terminal/internal/journal"
	"github.com/protrade/terminal/internal/signal"
)

// ErrSymbolBusy is returned when opening a trade for a symbol that already
// has an active one. One active trade per symbol.
var ErrSymbolBusy = errors.New("active trade exists for symbol")

// Storage persists trade transitions and journal events.
type Storage interface {
	SaveTrade(ctx context.Context, t *Trade) error
	UpdateTrade(ctx context.Context, t *Trade) error
	LogEvent(ctx context.Context, event journal.Event) error
}

// Book owns the open positions: at most one active trade per symbol. All
// access goes through the book's lock; individual trades are never shared
// outside it while active.
type Book struct {
	mu      sync.Mutex
	active  map[string]*Trade
	storage Storage
	log     *zap.Logger
}

// NewBook creates an empty trade book. Storage may be nil for a purely
// in-memory book.
func NewBook(storage Storage, log *zap.Logger) *Book {
	if log == nil {
		log = zap.NewNop()
	}
	return &Book{
		active:  make(map[string]*Trade),
		storage: storage,
		log:     log,
	}
}

// Open creates a trade from a signal and registers it as the symbol's
// active position.
func (b *Book) Open(ctx context.Context, sig signal.Signal, timeframe string, now time.Time) (*Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.active[sig.Symbol]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSymbolBusy, sig.Symbol)
	}

	t, err := FromSignal(sig, timeframe, now)
	if err != nil {
		return nil, fmt.Errorf("open trade: %w", err)
	}

	if b.storage != nil {
		if err := b.storage.SaveTrade(ctx, t); err != nil {
			return nil, fmt.Errorf("save trade: %w", err)
		}
		b.journal(ctx, journal.TypeTradeOpen, fmt.Sprintf("%s %s @ %v", t.Side, t.Symbol, t.EntryPrice), t, now)
	}

	b.active[sig.Symbol] = t
	b.log.Info("trade opened",
		zap.String("symbol", t.Symbol),
		zap.String("side", string(t.Side)),
		zap.String("strategy", t.Strategy),
		zap.Float64("entry", t.EntryPrice),
		zap.Float64("target", t.TargetPrice),
		zap.Float64("stop", t.StopLoss))
	return t, nil
}

// Restore loads previously persisted active trades into the book, keeping
// the one-per-symbol rule. Returns how many were loaded.
func (b *Book) Restore(trades []Trade) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	restored := 0
	for i := range trades {
		t := trades[i]
		if t.Status != StatusActive {
			continue
		}
		if _, busy := b.active[t.Symbol]; busy {
			continue
		}
		b.active[t.Symbol] = &t
		restored++
	}
	return restored
}

// ActiveFor returns the symbol's active trade, if any.
func (b *Book) ActiveFor(symbol string) (*Trade, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.active[symbol]
	return t, ok
}

// Active returns all active trades.
func (b *Book) Active() []*Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Trade, 0, len(b.active))
	for _, t := range b.active {
		out = append(out, t)
	}
	return out
}

// CheckExits closes the symbol's active trade when the current price has
// hit its target or stop. Returns the closed trade, or nil when nothing
// exited.
func (b *Book) CheckExits(ctx context.Context, symbol string, currentPrice float64, now time.Time) (*Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.active[symbol]
	if !ok {
		return nil, nil
	}

	var reason ExitReason
	switch {
	case t.CheckTargetHit(currentPrice):
		reason = ExitTargetHit
	case t.CheckStopHit(currentPrice):
		reason = ExitStopHit
	default:
		return nil, nil
	}

	if err := b.closeLocked(ctx, t, currentPrice, reason, now); err != nil {
		return nil, err
	}
	return t, nil
}

// Close closes the symbol's active trade with the given reason.
func (b *Book) Close(ctx context.Context, symbol string, exitPrice float64, reason ExitReason, now time.Time) (*Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.active[symbol]
	if !ok {
		return nil, fmt.Errorf("no active trade for %s", symbol)
	}
	if err := b.closeLocked(ctx, t, exitPrice, reason, now); err != nil {
		return nil, err
	}
	return t, nil
}

// CloseAll closes every active trade at the supplied per-symbol prices.
// Symbols without a price are skipped. Used for end-of-day exits.
func (b *Book) CloseAll(ctx context.Context, prices map[string]float64, reason ExitReason, now time.Time) []*Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	var closed []*Trade
	for symbol, t := range b.active {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		if err := b.closeLocked(ctx, t, price, reason, now); err != nil {
			b.log.Error("close trade", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		closed = append(closed, t)
	}
	return closed
}

func (b *Book) closeLocked(ctx context.Context, t *Trade, exitPrice float64, reason ExitReason, now time.Time) error {
	if err := t.Close(exitPrice, reason, now); err != nil {
		return err
	}
	delete(b.active, t.Symbol)

	if b.storage != nil {
		if err := b.storage.UpdateTrade(ctx, t); err != nil {
			b.log.Error("persist closed trade", zap.String("symbol", t.Symbol), zap.Error(err))
		}
		b.journal(ctx, journal.TypeTradeClose, fmt.Sprintf("%s %s: %s", t.Side, t.Symbol, reason), t, now)
	}

	pnl := 0.0
	if t.PnL != nil {
		pnl = *t.PnL
	}
	b.log.Info("trade closed",
		zap.String("symbol", t.Symbol),
		zap.String("reason", string(reason)),
		zap.Float64("exit", exitPrice),
		zap.Float64("pnl", pnl))
	return nil
}

func (b *Book) journal(ctx context.Context, eventType, description string, t *Trade, now time.Time) {
	event := journal.Event{
		Time:        now.UTC(),
		Type:        eventType,
		Description: description,
		Data: map[string]any{
			"symbol":   t.Symbol,
			"side":     string(t.Side),
			"strategy": t.Strategy,
			"status":   string(t.Status),
		},
	}
	if err := b.storage.LogEvent(ctx, event); err != nil {
		b.log.Error("journal event", zap.String("type", eventType), zap.Error(err))
	}
}
