package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockpredictions/config"
	"stockpredictions/internal/analyzer"
	"stockpredictions/internal/api"
	"stockpredictions/internal/engine"
	"stockpredictions/internal/indicator"
	"stockpredictions/internal/logger"
	"stockpredictions/internal/metrics"
	"stockpredictions/internal/notification"
	redisstore "stockpredictions/internal/store/redis"
	sqlitestore "stockpredictions/internal/store/sqlite"
	"stockpredictions/pkg/fmp"
)

func main() {
	cfg := config.Load()
	slogger := logger.Init("server", slog.LevelInfo)

	m := metrics.NewMetrics()

	db, err := sqlitestore.New(sqlitestore.Config{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Fatalf("[server] sqlite init failed: %v", err)
	}
	defer db.Close()

	cache, err := redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Fatalf("[server] redis init failed: %v", err)
	}
	defer cache.Close()

	provider := fmp.NewClient(fmp.Config{APIKey: cfg.FMPAPIKey})
	eng := engine.New(indicator.DefaultConfig(), slogger, engine.WithMetrics(m))

	svc := analyzer.New(eng, cache, db, provider, buildNotifier(cfg), m, slogger)
	svc.MinAlertStrength = cfg.MinAlertStrength

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := metrics.NewHealthStatus()
	health.StartLivenessChecker(ctx, cache.Client(), db.DB(), 15*time.Second)
	svc.Health = health

	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()
	defer metricsSrv.Stop(context.Background())

	hub := api.NewHub(cache.Client(), slogger, m)
	go hub.Run(ctx)

	handlers := api.NewServer(svc, db, provider, hub, health, slogger)
	srv := &http.Server{Addr: cfg.APIAddr, Handler: api.NewRouter(handlers)}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slogger.Info("api listening", "addr", cfg.APIAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[server] http error: %v", err)
		}
	}()

	<-sigCh
	slogger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}

// buildNotifier assembles the alert fan-out from whatever backends are
// configured. No backends means no notifier.
func buildNotifier(cfg *config.Config) notification.Notifier {
	var backends []notification.Notifier
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if len(backends) == 0 {
		return nil
	}
	return notification.NewMulti(backends...)
}
