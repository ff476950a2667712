package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SignalSentinel/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisConfig configures the latest-signal cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisRecorder keeps the latest report per symbol in a hash at <prefix>:signals:<SYMBOL>.
type RedisRecorder struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRecorder connects and pings the server.
func NewRedisRecorder(ctx context.Context, cfg RedisConfig) (*RedisRecorder, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "sentinel"
	}
	log.Info().Str("addr", cfg.Addr).Str("prefix", prefix).Msg("redis recorder connected")
	return &RedisRecorder{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

// Key returns the hash key for symbol.
func (r *RedisRecorder) Key(symbol string) string {
	return signalKey(r.prefix, symbol)
}

func signalKey(prefix, symbol string) string {
	return prefix + ":signals:" + symbol
}

// reportFields flattens a report into hash fields. Each indicator is stored as its JSON triple.
func reportFields(rep *model.Report) (map[string]any, error) {
	fields := map[string]any{
		"run_id":       rep.RunID,
		"state":        string(rep.State),
		"bars":         rep.Bars,
		"prediction":   rep.Prediction.Text(),
		"generated_at": rep.GeneratedAt.UTC().Format(time.RFC3339),
	}
	if !rep.AsOf.IsZero() {
		fields["as_of"] = rep.AsOf.Format("2006-01-02")
	}
	if rep.Err != nil {
		fields["error"] = rep.Err.Error()
	}
	for _, t := range rep.Triples() {
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", t.Name, err)
		}
		fields["indicator:"+t.Name] = string(b)
	}
	return fields, nil
}

func (r *RedisRecorder) RecordReport(ctx context.Context, rep *model.Report) error {
	fields, err := reportFields(rep)
	if err != nil {
		return err
	}
	key := r.Key(rep.Symbol)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis record %s: %w", rep.Symbol, err)
	}
	return nil
}

// Latest reads back the cached fields for symbol. A missing key yields an empty map.
func (r *RedisRecorder) Latest(ctx context.Context, symbol string) (map[string]string, error) {
	return r.client.HGetAll(ctx, r.Key(symbol)).Result()
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
