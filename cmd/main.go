package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/protrade/terminal/internal/config"
	"github.com/protrade/terminal/internal/db"
	"github.com/protrade/terminal/internal/exchange"
	"github.com/protrade/terminal/internal/logger"
	"github.com/protrade/terminal/internal/scanner"
	"github.com/protrade/terminal/internal/server"
	"github.com/protrade/terminal/internal/strategy"
	"github.com/protrade/terminal/internal/trade"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var storage db.Storage
	if cfg.DBConnStr != "" {
		pg, err := db.NewPostgres(cfg.DBConnStr, cfg.DBMaxOpen, cfg.DBMaxIdle)
		if err != nil {
			log.Fatal("database setup failed", zap.Error(err))
		}
		storage = pg
	} else {
		log.Warn("no DB_CONN_STR configured, using in-memory storage")
		storage = db.NewMemory()
	}
	defer storage.Close()

	registry := strategy.NewRegistry()
	book := trade.NewBook(storage, log.Logger)
	ex := exchange.NewWallex(cfg.WallexAPIKey, log.Logger)
	sc := scanner.New(ex, registry, book, storage, log.Logger, cfg.Timeframe, cfg.HistoryBars)
	hub := server.NewHub(log.Logger)
	srv := server.New(cfg, ex, registry, book, sc, hub, log.Logger)

	// Resume trades that were still open when the last process exited.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	active, err := storage.GetActiveTrades(ctx)
	cancel()
	if err != nil {
		log.Warn("could not restore active trades", zap.Error(err))
	} else if len(active) > 0 {
		restored := book.Restore(active)
		log.Info("restored active trades", zap.Int("count", restored))
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		storage.Close()
		log.Sync()
		os.Exit(0)
	}()

	log.Info("starting terminal",
		zap.Strings("symbols", cfg.Symbols),
		zap.String("timeframe", cfg.Timeframe),
		zap.String("strategy", cfg.Strategy))
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
