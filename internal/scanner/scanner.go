// Package scanner runs one pass of signal generation and trade management
// across the configured symbols.
package scanner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/db"
	"github.com/protrade/terminal/internal/exchange"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/signal"
	"github.com/protrade/terminal/internal/strategy"
	"github.com/protrade/terminal/internal/trade"
)

// Result summarizes a single scan pass.
type Result struct {
	Symbol    string          `json:"symbol"`
	Signals   []signal.Signal `json:"signals"`
	Opened    *trade.Trade    `json:"opened,omitempty"`
	Closed    *trade.Trade    `json:"closed,omitempty"`
	LastPrice float64         `json:"last_price"`
	Err       string          `json:"error,omitempty"`
}

// Scanner wires the exchange feed, indicator pipeline, strategies, the trade
// book and storage into a single on-demand pass.
type Scanner struct {
	exchange  exchange.Exchange
	registry  *strategy.Registry
	book      *trade.Book
	storage   db.Storage
	log       *zap.Logger
	timeframe string
	bars      int
}

func New(ex exchange.Exchange, reg *strategy.Registry, book *trade.Book, storage db.Storage, log *zap.Logger, timeframe string, bars int) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{
		exchange:  ex,
		registry:  reg,
		book:      book,
		storage:   storage,
		log:       log,
		timeframe: timeframe,
		bars:      bars,
	}
}

// Scan runs one pass over the given symbols with the given strategy. Each
// symbol is fetched, enriched with indicators and scanned for signals; a
// signal on the latest bar opens a trade, and open trades are checked for
// target or stop hits against the latest close.
func (sc *Scanner) Scan(ctx context.Context, symbols []string, strategyKey string, now time.Time) ([]Result, error) {
	st, ok := sc.registry.Get(strategyKey)
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s", strategyKey)
	}

	results := make([]Result, 0, len(symbols))
	for _, symbol := range symbols {
		results = append(results, sc.scanSymbol(ctx, st, symbol, now))
	}
	return results, nil
}

func (sc *Scanner) scanSymbol(ctx context.Context, st strategy.Strategy, symbol string, now time.Time) Result {
	res := Result{Symbol: symbol}

	candles, err := sc.exchange.FetchLatestCandles(ctx, symbol, sc.timeframe, sc.bars)
	if err != nil {
		sc.log.Error("fetch failed", zap.String("symbol", symbol), zap.Error(err))
		res.Err = err.Error()
		return res
	}
	if len(candles) == 0 {
		res.Err = "no candles returned"
		return res
	}
	res.LastPrice = candles[len(candles)-1].Close

	enriched, err := indicator.ApplyAll(candle.FromCandles(candles))
	if err != nil {
		sc.log.Error("indicator pipeline failed", zap.String("symbol", symbol), zap.Error(err))
		res.Err = err.Error()
		return res
	}

	signals := strategy.Run(st, enriched, func(t time.Time) int64 { return t.Unix() }, symbol)
	res.Signals = signals
	for _, sig := range signals {
		if err := sc.storage.SaveSignal(ctx, sig); err != nil {
			sc.log.Warn("save signal failed", zap.String("symbol", symbol), zap.Error(err))
		}
	}

	// Open on a signal from the latest surviving bar only; stale signals
	// are history, not entries.
	if n := enriched.Len(); n > 0 && len(signals) > 0 {
		last := signals[len(signals)-1]
		if last.Time == enriched.Times[n-1].Unix() {
			opened, err := sc.book.Open(ctx, last, sc.timeframe, now)
			if err != nil {
				sc.log.Info("trade not opened", zap.String("symbol", symbol), zap.Error(err))
			} else {
				res.Opened = opened
			}
		}
	}

	closed, err := sc.book.CheckExits(ctx, symbol, res.LastPrice, now)
	if err != nil {
		sc.log.Warn("exit check failed", zap.String("symbol", symbol), zap.Error(err))
	} else if closed != nil {
		res.Closed = closed
	}

	return res
}
