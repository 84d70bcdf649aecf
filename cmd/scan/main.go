// Command scan runs the analysis pipeline over the configured watchlist on
// an interval, with a bounded worker pool. Intended to run as a sidecar to
// the API server so cached analyses and published signals stay warm.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockpredictions/config"
	"stockpredictions/internal/analyzer"
	"stockpredictions/internal/engine"
	"stockpredictions/internal/indicator"
	"stockpredictions/internal/logger"
	"stockpredictions/internal/markethours"
	"stockpredictions/internal/metrics"
	"stockpredictions/internal/notification"
	redisstore "stockpredictions/internal/store/redis"
	sqlitestore "stockpredictions/internal/store/sqlite"
	"stockpredictions/pkg/fmp"
)

func main() {
	cfg := config.Load()
	slogger := logger.Init("scan", slog.LevelInfo)

	symbols := cfg.ParseWatchlist()
	if len(symbols) == 0 {
		log.Fatal("[scan] WATCHLIST is empty")
	}

	m := metrics.NewMetrics()

	db, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[scan] sqlite init failed: %v", err)
	}
	defer db.Close()

	cache, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Fatalf("[scan] redis init failed: %v", err)
	}
	defer cache.Close()

	provider := fmp.NewClient(fmp.Config{APIKey: cfg.FMPAPIKey})
	eng := engine.New(indicator.DefaultConfig(), slogger, engine.WithMetrics(m))

	var notifier notification.Notifier
	if cfg.WebhookURL != "" {
		notifier = notification.NewWebhookNotifier(cfg.WebhookURL)
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		tg := notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if notifier != nil {
			notifier = notification.NewMulti(notifier, tg)
		} else {
			notifier = tg
		}
	}

	svc := analyzer.New(eng, cache, db, provider, notifier, m, slogger)
	svc.MinAlertStrength = cfg.MinAlertStrength

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	slogger.Info("scan loop starting",
		"symbols", len(symbols), "interval", cfg.ScanInterval, "workers", cfg.ScanWorkers)

	// Run one sweep immediately, then on every tick.
	sweep(ctx, svc, symbols, cfg, slogger)

	ticker := time.NewTicker(cfg.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slogger.Info("scan loop stopped")
			return
		case <-ticker.C:
			if cfg.ScanMarketHoursOnly && !marketActive(time.Now()) {
				slogger.Info("skipping sweep", "status", markethours.StatusString(time.Now()))
				continue
			}
			sweep(ctx, svc, symbols, cfg, slogger)
		}
	}
}

// marketActive reports whether a sweep is worth running: during the session,
// or within two hours after the close so end-of-day bars get picked up.
func marketActive(t time.Time) bool {
	if markethours.IsMarketOpen(t) {
		return true
	}
	if !markethours.IsTradingDay(t) {
		return false
	}
	sinceClose := t.Sub(markethours.TodayClose(t))
	return sinceClose > 0 && sinceClose < 2*time.Hour
}

// sweep analyzes every watchlist symbol through a bounded worker pool.
func sweep(ctx context.Context, svc *analyzer.Service, symbols []string, cfg *config.Config, slogger *slog.Logger) {
	start := time.Now()
	workers := cfg.ScanWorkers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				result, err := svc.AnalyzeSymbol(ctx, symbol, analyzer.Options{
					ForceRefresh: true,
					Bars:         cfg.HistoryBars,
				})
				if err != nil {
					slogger.Warn("scan failed", "symbol", symbol, "err", err)
					continue
				}
				slogger.Info("scanned",
					"symbol", symbol,
					"overall", result.Summary.Overall,
					"strength", result.Summary.Strength,
					"signals", len(result.Signals))
			}
		}()
	}

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- symbol:
		}
	}
	close(jobs)
	wg.Wait()

	slogger.Info("sweep complete", "symbols", len(symbols), "took", time.Since(start))
}
