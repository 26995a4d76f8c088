package user

import (
	"context"

	domain "user-directory/internal/domain/user"
)

// Usecase defines the read operations the views and handlers depend on.
type Usecase interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}
