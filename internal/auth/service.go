package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mvalderrama/ecoquiz/internal/logging"
	"github.com/mvalderrama/ecoquiz/internal/user"
)

var (
	ErrFieldsRequired     = errors.New("all fields are required")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// UserRepository defines the user storage surface the service needs
type UserRepository interface {
	Create(ctx context.Context, nombre, apellido, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Service handles registration and login business logic
type Service struct {
	userRepo UserRepository
	logger   *logging.Logger
}

func NewService(userRepo UserRepository, logger *logging.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a new user account. All four fields are required; no
// format validation beyond non-empty. A duplicate email surfaces as
// user.ErrDuplicateEmail so the handler can re-show the form.
func (s *Service) Register(ctx context.Context, nombre, apellido, email, password string) (*user.User, error) {
	if nombre == "" || apellido == "" || email == "" || password == "" {
		return nil, ErrFieldsRequired
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, nombre, apellido, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login checks credentials and returns the matching user. Unknown email and
// wrong password collapse into the same ErrInvalidCredentials so the
// response does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return existingUser, nil
}
