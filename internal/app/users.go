package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Great2008/reads/internal/domain"
)

// UserService serves profiles and the admin user management surface.
type UserService struct {
	store Store
}

func NewUserService(store Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	return s.store.UserByID(ctx, userID)
}

// Stats summarizes the user's activity: distinct lessons completed and
// total graded submissions.
func (s *UserService) Stats(ctx context.Context, userID uuid.UUID) (domain.ProfileStats, error) {
	completed, err := s.store.CountCompletedLessons(ctx, userID)
	if err != nil {
		return domain.ProfileStats{}, fmt.Errorf("count completed lessons: %w", err)
	}
	taken, err := s.store.CountResultsByUser(ctx, userID)
	if err != nil {
		return domain.ProfileStats{}, fmt.Errorf("count quiz results: %w", err)
	}
	return domain.ProfileStats{LessonsCompleted: completed, QuizzesTaken: taken}, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.Users(ctx)
}

// SetAdmin promotes or demotes target. Admins cannot change their own
// flag, which keeps at least one admin reachable from every demotion.
func (s *UserService) SetAdmin(ctx context.Context, actorID, targetID uuid.UUID, isAdmin bool) error {
	if actorID == targetID {
		return domain.Forbidden("cannot change your own admin status")
	}
	return s.store.SetUserAdmin(ctx, targetID, isAdmin)
}
