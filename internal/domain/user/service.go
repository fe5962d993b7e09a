package user

import (
	"context"
	"errors"

	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
	"github.com/ywu256/MAPD713-Project/internal/platform/db"
)

const (
	ErrInvalidEmail    = "invalid email"
	ErrInvalidPassword = "invalid password"
	ErrEmailExists     = "email already exists"
)

type Service struct {
	users  Repository
	hasher *Hasher
}

func NewService(users Repository, hasher *Hasher) *Service {
	return &Service{users: users, hasher: hasher}
}

// Login checks the credentials and returns the user's public profile. An
// unknown email and a wrong password are reported separately.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNoDocument) {
			return nil, apperr.InvalidCredentials(ErrInvalidEmail)
		}
		return nil, apperr.Internal(err)
	}

	ok, err := s.hasher.Verify(u.PasswordHash, req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.InvalidCredentials(ErrInvalidPassword)
	}

	profile := u.Profile()
	return &profile, nil
}

// Provision creates a user with a hashed password.
func (s *Service) Provision(ctx context.Context, req *ProvisionRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &User{Email: req.Email, PasswordHash: hash, Role: req.Role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.Conflict(ErrEmailExists)
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}
