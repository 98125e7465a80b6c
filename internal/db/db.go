// Package db
package db

import (
	"context"
	"time"

	"github.com/protrade/terminal/internal/journal"
	"github.com/protrade/terminal/internal/signal"
	"github.com/protrade/terminal/internal/trade"
)

// Storage is the interface for all persistent storage.
type Storage interface {
	SaveTrade(ctx context.Context, t *trade.Trade) error
	UpdateTrade(ctx context.Context, t *trade.Trade) error
	GetActiveTrades(ctx context.Context) ([]trade.Trade, error)
	GetTrades(ctx context.Context, symbol string, start, end time.Time) ([]trade.Trade, error)
	SaveSignal(ctx context.Context, sig signal.Signal) error
	GetSignals(ctx context.Context, symbol string, start, end time.Time) ([]signal.Signal, error)
	journal.Journaler
	Close() error
}
