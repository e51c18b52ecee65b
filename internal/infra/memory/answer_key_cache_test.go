package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Great2008/reads/internal/app"
	"github.com/Great2008/reads/internal/domain"
)

type countingLoader struct {
	app.AnswerKeyLoader
	calls int
}

func (l *countingLoader) AnswerKey(ctx context.Context, lessonID string) (domain.AnswerKey, error) {
	l.calls++
	return l.AnswerKeyLoader.AnswerKey(ctx, lessonID)
}

func TestAnswerKeyCacheServesFromCache(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{AnswerKeyLoader: NewStaticAnswerKeyLoader(map[string]domain.AnswerKey{
		"lesson-1": {"q1": "a"},
	})}
	cache := NewAnswerKeyCache(loader, time.Minute)

	key, err := cache.AnswerKey(ctx, "lesson-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if key["q1"] != "a" {
		t.Fatalf("unexpected key %v", key)
	}

	if _, err := cache.AnswerKey(ctx, "lesson-1"); err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}

	if err := cache.Invalidate(ctx, "lesson-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := cache.AnswerKey(ctx, "lesson-1"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, loader calls=%d", loader.calls)
	}
}

func TestAnswerKeyCacheExpires(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{AnswerKeyLoader: NewStaticAnswerKeyLoader(map[string]domain.AnswerKey{
		"lesson-1": {"q1": "a"},
	})}
	cache := NewAnswerKeyCache(loader, time.Minute)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	if _, err := cache.AnswerKey(ctx, "lesson-1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Jitter adds at most 10%, so two TTLs later the entry is stale.
	now = now.Add(2 * time.Minute)
	if _, err := cache.AnswerKey(ctx, "lesson-1"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestAnswerKeyCachePropagatesLoaderErrors(t *testing.T) {
	ctx := context.Background()
	loader := &countingLoader{AnswerKeyLoader: NewStaticAnswerKeyLoader(nil)}
	cache := NewAnswerKeyCache(loader, time.Minute)

	if _, err := cache.AnswerKey(ctx, "missing"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	// Errors are not cached.
	if _, err := cache.AnswerKey(ctx, "missing"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected no negative caching, loader calls=%d", loader.calls)
	}
}
