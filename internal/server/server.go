// Package server exposes the HTTP and WebSocket API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/protrade/terminal/internal/candle"
	"github.com/protrade/terminal/internal/config"
	"github.com/protrade/terminal/internal/exchange"
	"github.com/protrade/terminal/internal/indicator"
	"github.com/protrade/terminal/internal/scanner"
	"github.com/protrade/terminal/internal/strategy"
	"github.com/protrade/terminal/internal/trade"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server serves chart data, strategy metadata, scans and the trade book.
type Server struct {
	cfg      config.Config
	exchange exchange.Exchange
	registry *strategy.Registry
	book     *trade.Book
	scanner  *scanner.Scanner
	hub      *Hub
	log      *zap.Logger
	started  time.Time
}

func New(cfg config.Config, ex exchange.Exchange, reg *strategy.Registry, book *trade.Book, sc *scanner.Scanner, hub *Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		exchange: ex,
		registry: reg,
		book:     book,
		scanner:  sc,
		hub:      hub,
		log:      log,
		started:  time.Now().UTC(),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/strategies", s.handleStrategies)
	mux.HandleFunc("GET /api/chartdata", s.handleChartData)
	mux.HandleFunc("GET /api/trades/active", s.handleActiveTrades)
	mux.HandleFunc("DELETE /api/trade/{symbol}", s.handleCloseTrade)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// ListenAndServe blocks serving the API until the listener fails.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Addr))
	return http.ListenAndServe(s.cfg.Addr, s.Handler())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		s.log.Error("response marshal failed", zap.Error(err))
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"uptime_sec":    int64(time.Since(s.started).Seconds()),
		"symbols":       s.cfg.Symbols,
		"timeframe":     s.cfg.Timeframe,
		"strategy":      s.cfg.Strategy,
		"ws_clients":    s.hub.ClientCount(),
		"active_trades": len(s.book.Active()),
	})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.MetadataAll())
}

// handleChartData returns enriched candles plus the signals a strategy
// generated over them.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	strategyKey := r.URL.Query().Get("strategy")
	if strategyKey == "" {
		strategyKey = s.cfg.Strategy
	}
	st, ok := s.registry.Get(strategyKey)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown strategy: "+strategyKey)
		return
	}
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = s.cfg.Timeframe
	}

	candles, err := s.exchange.FetchLatestCandles(r.Context(), symbol, timeframe, s.cfg.HistoryBars)
	if err != nil {
		s.log.Error("chartdata fetch failed", zap.String("symbol", symbol), zap.Error(err))
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	enriched, err := indicator.ApplyAll(candle.FromCandles(candles))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	signals := strategy.Run(st, enriched, func(t time.Time) int64 { return t.Unix() }, symbol)

	times := make([]int64, enriched.Len())
	for i, t := range enriched.Times {
		times[i] = t.Unix()
	}
	columns := make(map[string][]float64, len(enriched.ColumnNames()))
	for _, name := range enriched.ColumnNames() {
		col, _ := enriched.Column(name)
		columns[name] = col
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"symbol":    symbol,
		"timeframe": timeframe,
		"strategy":  strategyKey,
		"times":     times,
		"columns":   columns,
		"signals":   signals,
	})
}

func (s *Server) handleActiveTrades(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.book.Active())
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	t, ok := s.book.ActiveFor(symbol)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no active trade for "+symbol)
		return
	}

	exitPrice := t.EntryPrice
	if candles, err := s.exchange.FetchLatestCandles(r.Context(), symbol, s.cfg.Timeframe, 2); err == nil && len(candles) > 0 {
		exitPrice = candles[len(candles)-1].Close
	}

	closed, err := s.book.Close(r.Context(), symbol, exitPrice, trade.ExitManual, time.Now().UTC())
	if err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.hub.Broadcast("trade_closed", closed.Symbol, closed)
	s.writeJSON(w, http.StatusOK, closed)
}

// handleScan triggers one scan pass across the configured symbols and
// broadcasts what it finds.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	strategyKey := r.URL.Query().Get("strategy")
	if strategyKey == "" {
		strategyKey = s.cfg.Strategy
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	results, err := s.scanner.Scan(ctx, s.cfg.Symbols, strategyKey, time.Now().UTC())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, res := range results {
		if res.Opened != nil {
			s.hub.Broadcast("trade_opened", res.Opened.Symbol, res.Opened)
		}
		if res.Closed != nil {
			s.hub.Broadcast("trade_closed", res.Closed.Symbol, res.Closed)
		}
		for _, sig := range res.Signals {
			s.hub.Broadcast("signal", sig.Symbol, sig)
		}
	}

	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	s.hub.register(conn)
}
