package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Great2008/reads/internal/domain"
)

// LeaderboardService serves the ranked top wallets and fans snapshots
// out to websocket subscribers whenever a balance moves.
type LeaderboardService struct {
	cache LeaderboardCache
	size  int
	log   *zap.Logger

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(cache LeaderboardCache, size int, log *zap.Logger) *LeaderboardService {
	return &LeaderboardService{
		cache:       cache,
		size:        size,
		log:         log,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Top returns the highest balances in rank order. limit is clamped to
// the configured board size.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > s.size {
		limit = s.size
	}
	return s.cache.Top(ctx, limit)
}

// Snapshot is the full board as pushed to feed subscribers.
func (s *LeaderboardService) Snapshot(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := s.cache.Top(ctx, s.size)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: time.Now().UTC()}, nil
}

// Subscribe returns a channel that receives the current snapshot
// immediately and a fresh one after every balance change. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

// TokenBalanceChanged is called after any committed write that moved
// tokens. It drops the cached board, rebuilds it and notifies
// subscribers. Failures here only delay the feed, so they are logged
// instead of failing the caller's already-committed request.
func (s *LeaderboardService) TokenBalanceChanged(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("leaderboard invalidation failed", zap.Error(err))
		return
	}
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		s.log.Warn("leaderboard rebuild failed", zap.Error(err))
		return
	}
	s.broadcast(snapshot)
}

func (s *LeaderboardService) broadcast(lb domain.Leaderboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale update so a slow client never blocks the rest.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
