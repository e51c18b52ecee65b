package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Great2008/reads/internal/domain"
)

// TopWalletsLoader loads the ranked wallets from the backing store.
type TopWalletsLoader interface {
	TopWallets(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardCache keeps the top balances in a sorted set plus a name
// hash, rebuilding both from the loader when empty. Writers call
// Invalidate after moving tokens; the TTL is a backstop for missed
// invalidations.
type LeaderboardCache struct {
	client *redis.Client
	loader TopWalletsLoader
	size   int
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, loader TopWalletsLoader, size int, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		loader: loader,
		size:   size,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const (
	balancesKey = "leaderboard:balances"
	namesKey    = "leaderboard:names"
)

func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > c.size {
		limit = c.size
	}

	if entries, ok, err := c.read(ctx); err == nil && ok {
		return clip(entries, limit), nil
	}

	result, err, _ := c.sf.Do(balancesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine rebuilt it.
		if entries, ok, err := c.read(ctx); err == nil && ok {
			return entries, nil
		}

		entries, err := c.loader.TopWallets(ctx, c.size)
		if err != nil {
			return nil, err
		}
		c.write(ctx, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return clip(result.([]domain.LeaderboardEntry), limit), nil
}

// Invalidate drops the cached board so the next Top rebuilds it.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, balancesKey, namesKey).Err()
}

func (c *LeaderboardCache) read(ctx context.Context) ([]domain.LeaderboardEntry, bool, error) {
	zs, err := c.client.ZRevRangeWithScores(ctx, balancesKey, 0, int64(c.size-1)).Result()
	if err != nil || len(zs) == 0 {
		return nil, false, err
	}
	names, err := c.client.HGetAll(ctx, namesKey).Result()
	if err != nil {
		return nil, false, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		userID, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:         i + 1,
			UserID:       userID,
			Name:         names[member],
			TokenBalance: int64(z.Score),
		})
	}
	return entries, true, nil
}

func (c *LeaderboardCache) write(ctx context.Context, entries []domain.LeaderboardEntry) {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, balancesKey, namesKey)
	if len(entries) > 0 {
		zs := make([]redis.Z, 0, len(entries))
		names := make(map[string]string, len(entries))
		for _, e := range entries {
			member := e.UserID.String()
			zs = append(zs, redis.Z{Score: float64(e.TokenBalance), Member: member})
			names[member] = e.Name
		}
		pipe.ZAdd(ctx, balancesKey, zs...)
		pipe.HSet(ctx, namesKey, names)
	}
	if ttl := c.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, balancesKey, ttl)
		pipe.Expire(ctx, namesKey, ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func clip(entries []domain.LeaderboardEntry, limit int) []domain.LeaderboardEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
