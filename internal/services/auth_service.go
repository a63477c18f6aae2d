package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/twittor/backend/internal/metrics"
	"github.com/anonto42/twittor/backend/internal/models"
	"github.com/anonto42/twittor/backend/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSelfFollow         = errors.New("you cannot follow yourself")
)

const (
	msgUsernameTaken = "Username already taken"
	msgEmailTaken    = "Email already registered"
)

type AuthService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Register creates an inactive account. Taken usernames or emails come back as
// field validation errors, including when another request wins the insert race.
func (s *AuthService) Register(ctx context.Context, form models.RegisterForm) (*models.User, error) {
	username := strings.TrimSpace(form.Username)
	email := strings.TrimSpace(form.Email)

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Email: email, IsActivated: false}
	if err := user.SetPassword(form.Password); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUser) {
			if conflict := s.checkAvailable(ctx, username, email); conflict != nil {
				return nil, conflict
			}
			return nil, models.NewValidationError("Username or email already registered")
		}
		return nil, err
	}

	metrics.RegistrationsTotal.Inc()
	return user, nil
}

func (s *AuthService) checkAvailable(ctx context.Context, username, email string) error {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return models.NewFieldError("username", msgUsernameTaken)
	}
	taken, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return models.NewFieldError("email", msgEmailTaken)
	}
	return nil
}

// Authenticate returns the user owning username when password matches.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if user == nil || !user.CheckPassword(password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return user, nil
}
