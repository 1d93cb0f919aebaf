package mock

import (
	"context"

	"github.com/fwojciec/pilot"
)

var _ pilot.UserService = (*UserService)(nil)

// UserService is a mock implementation of pilot.UserService.
type UserService struct {
	CreateUserFn   func(ctx context.Context, user *pilot.User, password string) error
	AuthenticateFn func(ctx context.Context, email, password string) (*pilot.User, error)
}

func (s *UserService) CreateUser(ctx context.Context, user *pilot.User, password string) error {
	return s.CreateUserFn(ctx, user, password)
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*pilot.User, error) {
	return s.AuthenticateFn(ctx, email, password)
}
