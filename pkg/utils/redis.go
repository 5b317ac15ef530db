package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig controls redis client behavior.
// Keep it config-driven; defaults should be safe and conservative.
type RedisConfig struct {
	Addr string

	// Basic timeouts
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Pool tuning
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration

	PingTimeout time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	out := c
	if out.DialTimeout <= 0 {
		out.DialTimeout = 3 * time.Second
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = 2 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 2 * time.Second
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 20
	}
	if out.MinIdleConns < 0 {
		out.MinIdleConns = 0
	}
	if out.PoolTimeout <= 0 {
		out.PoolTimeout = 4 * time.Second
	}
	if out.ConnMaxIdleTime <= 0 {
		out.ConnMaxIdleTime = 5 * time.Minute
	}
	if out.ConnMaxLifetime <= 0 {
		out.ConnMaxLifetime = 30 * time.Minute
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	return out
}

// OpenRedis initializes a Redis client and validates connectivity via PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

const recordingClaimPrefix = "recording_claim:"

// RecordingClaimer deduplicates webhook deliveries that reference the same
// recording. The first claim for a recording wins; redeliveries see false.
//
// Safety properties:
// - Atomic claim via SET NX.
// - TTL bounds memory; a redelivery arriving after expiry is backstopped by
//   the idempotent turn store, not by this claimer.
type RecordingClaimer struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRecordingClaimer(rdb *redis.Client, ttl time.Duration) *RecordingClaimer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RecordingClaimer{rdb: rdb, ttl: ttl}
}

// ClaimOnce returns true exactly once per recordingSid within the TTL window.
func (c *RecordingClaimer) ClaimOnce(ctx context.Context, recordingSid string) (bool, error) {
	if c.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if recordingSid == "" {
		return false, fmt.Errorf("recording sid is required")
	}
	ok, err := c.rdb.SetNX(ctx, recordingClaimPrefix+recordingSid, 1, c.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
