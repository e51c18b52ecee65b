package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/domain"
)

// AnswerKeyCache caches answer keys in Redis (one hash per lesson) and
// falls back to a loader on cache miss.
// Keys are stored as: HSET lesson:{lessonID}:answers {questionID} {correctOption}
type AnswerKeyCache struct {
	client *redis.Client
	loader app.AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context, lessonID string) (domain.AnswerKey, error) {
	cacheKey := c.answersKey(lessonID)

	cached, err := c.client.HGetAll(ctx, cacheKey).Result()
	if err == nil && len(cached) > 0 {
		return domain.AnswerKey(cached), nil
	}

	result, err, _ := c.sf.Do(lessonID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := c.client.HGetAll(ctx, cacheKey).Result()
		if err == nil && len(cached) > 0 {
			return domain.AnswerKey(cached), nil
		}

		key, err := c.loader.AnswerKey(ctx, lessonID)
		if err != nil {
			return domain.AnswerKey(nil), err
		}

		pipe := c.client.Pipeline()
		pipe.HSet(ctx, cacheKey, map[string]string(key))
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, cacheKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key after the lesson's quiz changed.
func (c *AnswerKeyCache) Invalidate(ctx context.Context, lessonID string) error {
	return c.client.Del(ctx, c.answersKey(lessonID)).Err()
}

func (c *AnswerKeyCache) answersKey(lessonID string) string {
	return "lesson:" + lessonID + ":answers"
}

// ttlWithJitter spreads expirations by up to 10% so hot lessons do not
// all reload at once.
func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
