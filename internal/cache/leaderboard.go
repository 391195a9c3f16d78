package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// LeaderboardKey is the sorted set holding points totals by wallet
	LeaderboardKey = "leaderboard:points"

	// LeaderboardTTL bounds staleness after the stream goes quiet; any
	// points sync refreshes it
	LeaderboardTTL = 24 * time.Hour
)

// Entry is one leaderboard row read from the cache.
type Entry struct {
	WalletAddress string
	Points        int64
}

// Leaderboard caches ledger points totals in a Redis sorted set so the
// leaderboard endpoint can serve reads without touching Postgres. The
// relational store remains the source of truth; on a cache miss callers fall
// back to it and warm the cache.
type Leaderboard interface {
	// SetScore records a wallet's points total.
	SetScore(ctx context.Context, walletAddress string, points int64) error

	// Top returns the highest-scoring wallets, best first.
	Top(ctx context.Context, limit int) ([]Entry, error)

	// Warm bulk-loads entries, for rebuilding the cache from Postgres.
	Warm(ctx context.Context, entries []Entry) error

	// Exists reports whether the leaderboard key is present.
	Exists(ctx context.Context) (bool, error)
}

// RedisLeaderboard implements Leaderboard using a Redis Sorted Set.
type RedisLeaderboard struct {
	client *redis.Client
}

// NewLeaderboard creates a Leaderboard backed by Redis.
func NewLeaderboard(client *redis.Client) Leaderboard {
	return &RedisLeaderboard{client: client}
}

// SetScore records a points total using a pipeline: ZADD + EXPIRE.
// Totals are overwritten, not incremented: the ledger reports absolute
// values, so replays converge instead of double-counting.
func (c *RedisLeaderboard) SetScore(ctx context.Context, walletAddress string, points int64) error {
	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, LeaderboardKey, redis.Z{
		Score:  float64(points),
		Member: walletAddress,
	})
	pipe.Expire(ctx, LeaderboardKey, LeaderboardTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Leaderboard] SetScore FAILED: wallet=%s err=%v", walletAddress, err)
		return fmt.Errorf("set leaderboard score: %w", err)
	}
	return nil
}

// Top returns the highest totals using ZREVRANGE.
func (c *RedisLeaderboard) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	results, err := c.client.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		log.Printf("[Leaderboard] Top FAILED: err=%v", err)
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		wallet, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			WalletAddress: wallet,
			Points:        int64(z.Score),
		})
	}
	return entries, nil
}

// Warm bulk-loads entries with pipelined ZADDs.
func (c *RedisLeaderboard) Warm(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, e := range entries {
		pipe.ZAdd(ctx, LeaderboardKey, redis.Z{
			Score:  float64(e.Points),
			Member: e.WalletAddress,
		})
	}
	pipe.Expire(ctx, LeaderboardKey, LeaderboardTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[Leaderboard] Warm FAILED: entries=%d err=%v", len(entries), err)
		return fmt.Errorf("warm leaderboard: %w", err)
	}

	log.Printf("[Leaderboard] Warm OK: entries=%d", len(entries))
	return nil
}

// Exists checks whether the leaderboard key is present.
func (c *RedisLeaderboard) Exists(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, LeaderboardKey).Result()
	if err != nil {
		return false, fmt.Errorf("check leaderboard key: %w", err)
	}
	return n > 0, nil
}
