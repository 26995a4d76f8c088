package user

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	domain "user-directory/internal/domain/user"
	apperrors "user-directory/pkg/errors"
	"user-directory/pkg/logger"
)

// Repository defines the interface for user data access operations.
// The upstream API client is the production implementation.
type Repository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)           // Fetch every user
	GetUser(ctx context.Context, id int64) (*domain.User, error) // Fetch one user by ID
}

// Service implements Usecase on top of a Repository.
// Concurrent identical requests share one upstream call.
type Service struct {
	repo  Repository
	log   *zap.Logger
	group singleflight.Group
}

// New creates a new instance of Service with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log}
}

// ListUsers fetches every user.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Debug("listing users")

	result, err, shared := s.do(ctx, "users", func(ctx context.Context) (any, error) {
		return s.repo.ListUsers(ctx)
	})
	if err != nil {
		log.Warn("failed to list users", zap.Error(err))
		return nil, err
	}

	users := result.([]domain.User)
	log.Debug("listed users", zap.Int("count", len(users)), zap.Bool("shared", shared))

	// callers must not share a backing array
	return append([]domain.User(nil), users...), nil
}

// GetUser fetches a user by ID after validating it.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)

	if id <= 0 {
		log.Warn("get user validation failed", zap.Int64("id", id), zap.String("reason", "invalid id"))
		return nil, apperrors.ErrInvalidUserID
	}

	result, err, shared := s.do(ctx, "user:"+strconv.FormatInt(id, 10), func(ctx context.Context) (any, error) {
		return s.repo.GetUser(ctx, id)
	})
	if err != nil {
		log.Warn("failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	u := *result.(*domain.User)
	log.Debug("got user", zap.Int64("id", id), zap.Bool("shared", shared))
	return &u, nil
}

// do runs fn once per key among concurrent callers. The shared call is
// detached from any single caller's cancellation; a caller whose context ends
// stops waiting and gets its context error.
func (s *Service) do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error, bool) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-ch:
		return res.Val, res.Err, res.Shared
	}
}
