package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Great2008/reads/internal/domain"
)

// TopWalletsLoader loads the ranked wallets from the backing store.
type TopWalletsLoader interface {
	TopWallets(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardCache keeps the top balances in memory with a TTL
// backstop. It is the fallback when Redis is not configured.
type LeaderboardCache struct {
	loader TopWalletsLoader
	size   int
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	entries   []domain.LeaderboardEntry
	expiresAt time.Time
	valid     bool
}

func NewLeaderboardCache(loader TopWalletsLoader, size int, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		loader: loader,
		size:   size,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > c.size {
		limit = c.size
	}

	now := c.clock()
	c.mu.RLock()
	if c.valid && c.expiresAt.After(now) {
		entries := c.entries
		c.mu.RUnlock()
		return clip(entries, limit), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("leaderboard", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.valid && c.expiresAt.After(now) {
			entries := c.entries
			c.mu.RUnlock()
			return entries, nil
		}
		c.mu.RUnlock()

		entries, err := c.loader.TopWallets(ctx, c.size)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries = entries
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.valid = true
		c.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return clip(result.([]domain.LeaderboardEntry), limit), nil
}

// Invalidate drops the cached board so the next Top rebuilds it.
func (c *LeaderboardCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	c.valid = false
	c.entries = nil
	c.mu.Unlock()
	return nil
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
