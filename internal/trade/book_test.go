package trade

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protrade/terminal/internal/journal"
	"github.com/protrade/terminal/internal/signal"
)

type fakeStorage struct {
	mu      sync.Mutex
	saved   []Trade
	updated []Trade
	events  []journal.Event
}

func (f *fakeStorage) SaveTrade(ctx context.Context, t *Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *t)
	return nil
}

func (f *fakeStorage) UpdateTrade(ctx context.Context, t *Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, *t)
	return nil
}

func (f *fakeStorage) LogEvent(ctx context.Context, event journal.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func buySignal(symbol string) signal.Signal {
	return signal.Signal{
		Type:        signal.Buy,
		Symbol:      symbol,
		Price:       100,
		StopLoss:    95,
		TargetPrice: 110,
		RSI:         60,
		ATR:         5,
		Confidence:  70,
		Strategy:    "pro_mtf",
		Time:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix(),
	}
}

func TestBook_Open(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	storage := &fakeStorage{}
	book := NewBook(storage, nil)

	tr, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, tr.Status)

	got, ok := book.ActiveFor("BTC-USDT")
	require.True(t, ok)
	assert.Same(t, tr, got)

	require.Len(t, storage.saved, 1)
	require.Len(t, storage.events, 1)
	assert.Equal(t, journal.TypeTradeOpen, storage.events[0].Type)

	t.Run("one active trade per symbol", func(t *testing.T) {
		_, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
		assert.ErrorIs(t, err, ErrSymbolBusy)
	})

	t.Run("other symbols unaffected", func(t *testing.T) {
		_, err := book.Open(ctx, buySignal("ETH-USDT"), "15m", now)
		require.NoError(t, err)
		assert.Len(t, book.Active(), 2)
	})

	t.Run("invalid signal rejected", func(t *testing.T) {
		bad := buySignal("SOL-USDT")
		bad.StopLoss = 200
		_, err := book.Open(ctx, bad, "15m", now)
		assert.ErrorIs(t, err, ErrInvalidTrade)
		_, ok := book.ActiveFor("SOL-USDT")
		assert.False(t, ok)
	})
}

func TestBook_CheckExits(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("target hit", func(t *testing.T) {
		storage := &fakeStorage{}
		book := NewBook(storage, nil)
		_, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
		require.NoError(t, err)

		closed, err := book.CheckExits(ctx, "BTC-USDT", 111, now.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.Equal(t, ExitTargetHit, closed.ExitReason)
		assert.Equal(t, 11.0, *closed.PnL)

		_, ok := book.ActiveFor("BTC-USDT")
		assert.False(t, ok, "closed trade leaves the book")
		require.Len(t, storage.updated, 1)
	})

	t.Run("stop hit", func(t *testing.T) {
		book := NewBook(&fakeStorage{}, nil)
		_, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
		require.NoError(t, err)

		closed, err := book.CheckExits(ctx, "BTC-USDT", 94, now.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.Equal(t, ExitStopHit, closed.ExitReason)
	})

	t.Run("price between levels leaves trade open", func(t *testing.T) {
		book := NewBook(&fakeStorage{}, nil)
		_, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
		require.NoError(t, err)

		closed, err := book.CheckExits(ctx, "BTC-USDT", 102, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Nil(t, closed)
		_, ok := book.ActiveFor("BTC-USDT")
		assert.True(t, ok)
	})

	t.Run("no active trade", func(t *testing.T) {
		book := NewBook(&fakeStorage{}, nil)
		closed, err := book.CheckExits(ctx, "BTC-USDT", 100, now)
		require.NoError(t, err)
		assert.Nil(t, closed)
	})
}

func TestBook_Close(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	storage := &fakeStorage{}
	book := NewBook(storage, nil)

	_, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
	require.NoError(t, err)

	closed, err := book.Close(ctx, "BTC-USDT", 104, ExitManual, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ExitManual, closed.ExitReason)
	assert.Equal(t, 4.0, *closed.PnL)

	_, err = book.Close(ctx, "BTC-USDT", 104, ExitManual, now)
	assert.Error(t, err, "already closed and removed")

	// journal carries open and close events
	types := make([]string, 0, len(storage.events))
	for _, e := range storage.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{journal.TypeTradeOpen, journal.TypeTradeClose}, types)
}

func TestBook_CloseAll(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	book := NewBook(&fakeStorage{}, nil)

	_, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
	require.NoError(t, err)
	_, err = book.Open(ctx, buySignal("ETH-USDT"), "15m", now)
	require.NoError(t, err)

	closed := book.CloseAll(ctx, map[string]float64{"BTC-USDT": 101}, ExitEOD, now.Add(time.Hour))
	require.Len(t, closed, 1, "symbols without a price are skipped")
	assert.Equal(t, "BTC-USDT", closed[0].Symbol)
	assert.Len(t, book.Active(), 1)
}

func TestBook_Restore(t *testing.T) {
	book := NewBook(&fakeStorage{}, nil)

	active, err := New(validBuy())
	require.NoError(t, err)
	closedTrade, err := New(validBuy())
	require.NoError(t, err)
	closedTrade.Symbol = "ETH-USDT"
	require.NoError(t, closedTrade.Close(105, ExitManual, time.Now().UTC()))

	n := book.Restore([]Trade{*active, *closedTrade})
	assert.Equal(t, 1, n, "closed trades are not restored")

	_, ok := book.ActiveFor("BTC-USDT")
	assert.True(t, ok)
	_, ok = book.ActiveFor("ETH-USDT")
	assert.False(t, ok)

	t.Run("existing symbol not replaced", func(t *testing.T) {
		n := book.Restore([]Trade{*active})
		assert.Equal(t, 0, n)
	})
}

func TestBook_NilStorage(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	book := NewBook(nil, nil)

	_, err := book.Open(ctx, buySignal("BTC-USDT"), "15m", now)
	require.NoError(t, err)
	closed, err := book.CheckExits(ctx, "BTC-USDT", 120, now)
	require.NoError(t, err)
	assert.NotNil(t, closed)
}
