package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/domain"
)

// AnswerKeyCache caches answer keys with TTL to avoid repeated DB hits.
// It is the fallback when Redis is not configured.
type AnswerKeyCache struct {
	loader app.AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedKey
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

func NewAnswerKeyCache(loader app.AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedKey),
	}
}

func (c *AnswerKeyCache) AnswerKey(ctx context.Context, lessonID string) (domain.AnswerKey, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[lessonID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.key, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(lessonID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[lessonID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.key, nil
		}
		c.mu.RUnlock()

		key, err := c.loader.AnswerKey(ctx, lessonID)
		if err != nil {
			return domain.AnswerKey(nil), err
		}

		c.mu.Lock()
		c.cache[lessonID] = cachedKey{
			key:       key,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key after the lesson's quiz changed.
func (c *AnswerKeyCache) Invalidate(_ context.Context, lessonID string) error {
	c.mu.Lock()
	delete(c.cache, lessonID)
	c.mu.Unlock()
	return nil
}

// StaticAnswerKeyLoader is a loader backed by a plain map, for tests.
type StaticAnswerKeyLoader struct {
	keys map[string]domain.AnswerKey
}

func NewStaticAnswerKeyLoader(keys map[string]domain.AnswerKey) *StaticAnswerKeyLoader {
	return &StaticAnswerKeyLoader{keys: keys}
}

func (l *StaticAnswerKeyLoader) AnswerKey(_ context.Context, lessonID string) (domain.AnswerKey, error) {
	if key, ok := l.keys[lessonID]; ok && len(key) > 0 {
		return key, nil
	}
	return nil, domain.NotFound("no quiz for this lesson")
}

// StoreAnswerKeyLoader builds answer keys from the in-memory store's
// questions, mirroring the Postgres loader.
type StoreAnswerKeyLoader struct {
	store *Store
}

func NewStoreAnswerKeyLoader(store *Store) *StoreAnswerKeyLoader {
	return &StoreAnswerKeyLoader{store: store}
}

func (l *StoreAnswerKeyLoader) AnswerKey(ctx context.Context, lessonID string) (domain.AnswerKey, error) {
	id, err := uuid.Parse(lessonID)
	if err != nil {
		return nil, domain.NotFound("no quiz for this lesson")
	}
	questions, err := l.store.QuestionsByLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, domain.NotFound("no quiz for this lesson")
	}
	key := make(domain.AnswerKey, len(questions))
	for _, q := range questions {
		key[q.ID.String()] = q.CorrectOption
	}
	return key, nil
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
