// Command backfill seeds or tops up SQLite price history from the provider.
// Symbols come from args, falling back to the configured watchlist.
//
//	backfill [-bars 500] [AAPL MSFT ...]
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpredictions/config"
	"stockpredictions/internal/logger"
	sqlitestore "stockpredictions/internal/store/sqlite"
	"stockpredictions/pkg/fmp"
)

func main() {
	bars := flag.Int("bars", 500, "daily bars to fetch per symbol")
	flag.Parse()

	cfg := config.Load()
	slogger := logger.Init("backfill", slog.LevelInfo)

	symbols := flag.Args()
	if len(symbols) == 0 {
		symbols = cfg.ParseWatchlist()
	}
	if len(symbols) == 0 {
		log.Fatal("[backfill] no symbols: pass as args or set WATCHLIST")
	}

	db, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[backfill] sqlite init failed: %v", err)
	}
	defer db.Close()

	provider := fmp.NewClient(fmp.Config{APIKey: cfg.FMPAPIKey})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	start := time.Now()
	failed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			slogger.Info("backfill interrupted")
			break
		}

		last, err := db.LastPriceDate(ctx, symbol)
		if err == nil && !last.IsZero() {
			slogger.Info("topping up", "symbol", symbol, "last_stored", last.Format("2006-01-02"))
		}

		prices, err := provider.HistoricalPrices(ctx, symbol, *bars)
		if err != nil {
			slogger.Warn("fetch failed", "symbol", symbol, "err", err)
			failed++
			continue
		}
		if err := db.SavePrices(ctx, symbol, prices); err != nil {
			slogger.Warn("persist failed", "symbol", symbol, "err", err)
			failed++
			continue
		}
		slogger.Info("backfilled", "symbol", symbol, "bars", len(prices))
	}

	slogger.Info("backfill done",
		"symbols", len(symbols), "failed", failed, "took", time.Since(start))
	if failed > 0 {
		os.Exit(1)
	}
}
