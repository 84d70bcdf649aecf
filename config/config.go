package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Financial Modeling Prep
	FMPAPIKey string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	APIAddr       string
	MetricsAddr   string

	// Analysis
	Watchlist           string // comma-separated symbols, e.g. "AAPL,MSFT,NVDA"
	CacheTTL            time.Duration
	HistoryBars         int
	ScanInterval        time.Duration
	ScanWorkers         int
	ScanMarketHoursOnly bool // skip sweeps while the US market is closed

	// Alerting
	WebhookURL       string
	TelegramBotToken string
	TelegramChatID   string
	MinAlertStrength float64
}

// Load reads configuration from a .env file (if present) and environment
// variables, with sensible defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env load: %v", err)
	}

	return &Config{
		FMPAPIKey: mustEnv("FMP_API_KEY"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/analysis.db"),
		APIAddr:       getEnv("API_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),

		Watchlist:           getEnv("WATCHLIST", "AAPL,MSFT,GOOGL,AMZN,NVDA"),
		CacheTTL:            getDuration("CACHE_TTL", 15*time.Minute),
		HistoryBars:         getInt("HISTORY_BARS", 250),
		ScanInterval:        getDuration("SCAN_INTERVAL", 15*time.Minute),
		ScanWorkers:         getInt("SCAN_WORKERS", 4),
		ScanMarketHoursOnly: getBool("SCAN_MARKET_HOURS_ONLY", false),

		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		MinAlertStrength: getFloat("MIN_ALERT_STRENGTH", 0.75),
	}
}

// ParseWatchlist splits the Watchlist string into cleaned, uppercased
// symbols.
func (c *Config) ParseWatchlist() []string {
	parts := strings.Split(c.Watchlist, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		symbols = append(symbols, p)
	}
	return symbols
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
