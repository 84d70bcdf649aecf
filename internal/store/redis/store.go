// Package redis caches analysis results and fans signal events out over
// Pub/Sub. Cache writes run through a circuit breaker so a Redis outage
// degrades to pass-through instead of failing analysis runs.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"stockpredictions/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const defaultTTL = 15 * time.Minute

// Config configures the Redis store.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // analysis cache TTL; 0 means defaultTTL
}

// Store caches TechnicalAnalysisResults and publishes signal events.
type Store struct {
	client  *goredis.Client
	ttl     time.Duration
	breaker *CircuitBreaker
}

// New creates a Store and pings the server.
func New(cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	breaker := NewCircuitBreaker(5, 10*time.Second)
	breaker.OnStateChange = func(from, to State) {
		log.Printf("[redis] circuit breaker %s -> %s", from, to)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Store{client: client, ttl: ttl, breaker: breaker}, nil
}

// Client returns the underlying Redis client for health checks and Pub/Sub
// subscriptions.
func (s *Store) Client() *goredis.Client { return s.client }

// Close releases the client connection.
func (s *Store) Close() error { return s.client.Close() }

// CacheAnalysis stores the result JSON under "analysis:{symbol}" with the
// configured TTL. Returns ErrCircuitOpen without touching Redis while the
// breaker is open.
func (s *Store) CacheAnalysis(ctx context.Context, result *model.TechnicalAnalysisResult) error {
	return s.breaker.Execute(func() error {
		key := model.AnalysisCacheKey(result.Symbol)
		if err := s.client.Set(ctx, key, result.JSON(), s.ttl).Err(); err != nil {
			return fmt.Errorf("redis set %s: %w", key, err)
		}
		return nil
	})
}

// GetAnalysis fetches a cached result. A cache miss returns (nil, nil).
func (s *Store) GetAnalysis(ctx context.Context, symbol string) (*model.TechnicalAnalysisResult, error) {
	data, err := s.client.Get(ctx, model.AnalysisCacheKey(symbol)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", symbol, err)
	}

	var result model.TechnicalAnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("redis unmarshal %s: %w", symbol, err)
	}
	return &result, nil
}

// PublishSignals publishes each signal to "pub:signals:{symbol}" for the
// WebSocket hub to fan out. Publishing is best-effort: individual publish
// errors are logged, not returned.
func (s *Store) PublishSignals(ctx context.Context, symbol string, signals []model.TechnicalSignal) {
	channel := model.SignalChannel(symbol)
	for i := range signals {
		if err := s.client.Publish(ctx, channel, signals[i].JSON()).Err(); err != nil {
			log.Printf("[redis] publish %s: %v", channel, err)
			return
		}
	}
}
