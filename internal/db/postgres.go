package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/protrade/terminal/internal/journal"
	"github.com/protrade/terminal/internal/signal"
	"github.com/protrade/terminal/internal/trade"
)

// Postgres implements Storage on a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool and ensures the schema exists.
func NewPostgres(connStr string, maxOpen, maxIdle int) (*Postgres, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxIdle)

	p := &Postgres{db: conn}
	if err := p.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id SERIAL PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			target_price DOUBLE PRECISION NOT NULL,
			stop_loss DOUBLE PRECISION NOT NULL,
			timeframe TEXT NOT NULL,
			strategy TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			expected_time_minutes DOUBLE PRECISION NOT NULL,
			expected_bars DOUBLE PRECISION NOT NULL,
			rsi DOUBLE PRECISION NOT NULL,
			atr DOUBLE PRECISION NOT NULL,
			entry_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			exit_price DOUBLE PRECISION,
			exit_reason TEXT,
			pnl DOUBLE PRECISION,
			pnl_pct DOUBLE PRECISION,
			exit_time TIMESTAMPTZ,
			UNIQUE (symbol, entry_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_symbol_status ON trades (symbol, status)`,
		`CREATE TABLE IF NOT EXISTS signals (
			id SERIAL PRIMARY KEY,
			type TEXT NOT NULL,
			symbol TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			stop_loss DOUBLE PRECISION NOT NULL,
			target_price DOUBLE PRECISION NOT NULL,
			rsi DOUBLE PRECISION NOT NULL,
			atr DOUBLE PRECISION NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			strategy TEXT NOT NULL,
			signal_time BIGINT NOT NULL,
			expected_bars DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol_time ON signals (symbol, signal_time)`,
		`CREATE TABLE IF NOT EXISTS events (
			id SERIAL PRIMARY KEY,
			event_time TIMESTAMPTZ NOT NULL,
			event_type TEXT NOT NULL,
			description TEXT NOT NULL,
			data JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_time ON events (event_type, event_time)`,
	}
	for _, stmt := range schema {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// SaveTrade inserts a newly opened trade.
func (p *Postgres) SaveTrade(ctx context.Context, t *trade.Trade) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO trades (symbol, side, entry_price, target_price, stop_loss,
			timeframe, strategy, confidence, expected_time_minutes, expected_bars,
			rsi, atr, entry_time, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (symbol, entry_time) DO NOTHING`,
		t.Symbol, string(t.Side), t.EntryPrice, t.TargetPrice, t.StopLoss,
		t.Timeframe, t.Strategy, t.Confidence, t.ExpectedTimeMinutes, t.ExpectedBars,
		t.RSI, t.ATR, t.EntryTime, string(t.Status))
	if err != nil {
		return fmt.Errorf("save trade %s: %w", t.Symbol, err)
	}
	return nil
}

// UpdateTrade persists a trade's exit fields.
func (p *Postgres) UpdateTrade(ctx context.Context, t *trade.Trade) error {
	var exitPrice, pnl, pnlPct sql.NullFloat64
	var exitTime sql.NullTime
	if t.ExitPrice != nil {
		exitPrice = sql.NullFloat64{Float64: *t.ExitPrice, Valid: true}
	}
	if t.PnL != nil {
		pnl = sql.NullFloat64{Float64: *t.PnL, Valid: true}
	}
	if t.PnLPct != nil {
		pnlPct = sql.NullFloat64{Float64: *t.PnLPct, Valid: true}
	}
	if t.ExitTime != nil {
		exitTime = sql.NullTime{Time: *t.ExitTime, Valid: true}
	}

	_, err := p.db.ExecContext(ctx, `
		UPDATE trades SET status=$1, exit_price=$2, exit_reason=NULLIF($3,''),
			pnl=$4, pnl_pct=$5, exit_time=$6
		WHERE symbol=$7 AND entry_time=$8`,
		string(t.Status), exitPrice, string(t.ExitReason), pnl, pnlPct, exitTime,
		t.Symbol, t.EntryTime)
	if err != nil {
		return fmt.Errorf("update trade %s: %w", t.Symbol, err)
	}
	return nil
}

// GetActiveTrades returns all trades still marked ACTIVE.
func (p *Postgres) GetActiveTrades(ctx context.Context) ([]trade.Trade, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT symbol, side, entry_price, target_price, stop_loss, timeframe,
			strategy, confidence, expected_time_minutes, expected_bars, rsi, atr,
			entry_time, status, exit_price, exit_reason, pnl, pnl_pct, exit_time
		FROM trades WHERE status=$1 ORDER BY entry_time`, string(trade.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("get active trades: %w", err)
	}
	defer rows.Close()
	return scanTrades(rows)
}

// GetTrades returns a symbol's trades over a time range.
func (p *Postgres) GetTrades(ctx context.Context, symbol string, start, end time.Time) ([]trade.Trade, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT symbol, side, entry_price, target_price, stop_loss, timeframe,
			strategy, confidence, expected_time_minutes, expected_bars, rsi, atr,
			entry_time, status, exit_price, exit_reason, pnl, pnl_pct, exit_time
		FROM trades WHERE symbol=$1 AND entry_time >= $2 AND entry_time <= $3
		ORDER BY entry_time`, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("get trades for %s: %w", symbol, err)
	}
	defer rows.Close()
	return scanTrades(rows)
}

func scanTrades(rows *sql.Rows) ([]trade.Trade, error) {
	var trades []trade.Trade
	for rows.Next() {
		var t trade.Trade
		var side, status string
		var exitReason sql.NullString
		var exitPrice, pnl, pnlPct sql.NullFloat64
		var exitTime sql.NullTime
		if err := rows.Scan(&t.Symbol, &side, &t.EntryPrice, &t.TargetPrice, &t.StopLoss,
			&t.Timeframe, &t.Strategy, &t.Confidence, &t.ExpectedTimeMinutes, &t.ExpectedBars,
			&t.RSI, &t.ATR, &t.EntryTime, &status, &exitPrice, &exitReason, &pnl, &pnlPct, &exitTime); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = signal.Type(side)
		t.Status = trade.Status(status)
		if exitPrice.Valid {
			t.ExitPrice = &exitPrice.Float64
		}
		if exitReason.Valid {
			t.ExitReason = trade.ExitReason(exitReason.String)
		}
		if pnl.Valid {
			t.PnL = &pnl.Float64
		}
		if pnlPct.Valid {
			t.PnLPct = &pnlPct.Float64
		}
		if exitTime.Valid {
			t.ExitTime = &exitTime.Time
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// SaveSignal inserts a generated signal.
func (p *Postgres) SaveSignal(ctx context.Context, sig signal.Signal) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO signals (type, symbol, price, stop_loss, target_price,
			rsi, atr, confidence, strategy, signal_time, expected_bars)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		string(sig.Type), sig.Symbol, sig.Price, sig.StopLoss, sig.TargetPrice,
		sig.RSI, sig.ATR, sig.Confidence, sig.Strategy, sig.Time, sig.ExpectedBars)
	if err != nil {
		return fmt.Errorf("save signal %s %s: %w", sig.Strategy, sig.Symbol, err)
	}
	return nil
}

// GetSignals returns a symbol's signals over a unix-time range.
func (p *Postgres) GetSignals(ctx context.Context, symbol string, start, end time.Time) ([]signal.Signal, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT type, symbol, price, stop_loss, target_price, rsi, atr,
			confidence, strategy, signal_time, expected_bars
		FROM signals WHERE symbol=$1 AND signal_time >= $2 AND signal_time <= $3
		ORDER BY signal_time`, symbol, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("get signals for %s: %w", symbol, err)
	}
	defer rows.Close()

	var signals []signal.Signal
	for rows.Next() {
		var sig signal.Signal
		var typ string
		if err := rows.Scan(&typ, &sig.Symbol, &sig.Price, &sig.StopLoss, &sig.TargetPrice,
			&sig.RSI, &sig.ATR, &sig.Confidence, &sig.Strategy, &sig.Time, &sig.ExpectedBars); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Type = signal.Type(typ)
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// LogEvent journals an event.
func (p *Postgres) LogEvent(ctx context.Context, event journal.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO events (event_time, event_type, description, data)
		VALUES ($1,$2,$3,$4)`,
		event.Time, event.Type, event.Description, data)
	if err != nil {
		return fmt.Errorf("log event %s: %w", event.Type, err)
	}
	return nil
}

// GetEvents returns journaled events of a type over a time range.
func (p *Postgres) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT event_time, event_type, description, data
		FROM events WHERE event_type=$1 AND event_time >= $2 AND event_time <= $3
		ORDER BY event_time`, eventType, start, end)
	if err != nil {
		return nil, fmt.Errorf("get events %s: %w", eventType, err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var event journal.Event
		var data []byte
		if err := rows.Scan(&event.Time, &event.Type, &event.Description, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &event.Data); err != nil {
				return nil, fmt.Errorf("unmarshal event data: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
