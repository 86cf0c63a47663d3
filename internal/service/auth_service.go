package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/poll-service/internal/auth"
	"github.com/spec-kit/poll-service/internal/config"
	"github.com/spec-kit/poll-service/internal/domain"
	"github.com/spec-kit/poll-service/internal/events"
	"github.com/spec-kit/poll-service/internal/repository"
	"github.com/spec-kit/poll-service/internal/session"
	apperrors "github.com/spec-kit/poll-service/pkg/util"
)

// AuthService coordinates registration, login and session resolution.
type AuthService struct {
	users      repository.UserRepository
	sessions   session.Store
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   session.Store
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new account. The plaintext password is hashed
// immediately and never stored or logged.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password required", nil)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewDuplicateUser(username)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.NewUnavailable(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the unique index backstops the pre-check under concurrent registration
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewDuplicateUser(username)
		}
		return nil, apperrors.NewUnavailable(err)
	}

	publish(ctx, s.dispatcher, events.Event{
		Type:  events.EventUserRegistered,
		Actor: events.Actor{UserID: user.ID},
		Payload: events.UserRegisteredPayload{
			Username: user.Username,
		},
	})
	return user, nil
}

// Login verifies credentials and establishes a new session. The failure is
// opaque on purpose: callers cannot tell an unknown user from a bad password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	user, err := s.users.GetByUsername(ctx, username)
	if err == pgx.ErrNoRows {
		return nil, "", apperrors.NewAuthFailure()
	}
	if err != nil {
		return nil, "", apperrors.NewUnavailable(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewAuthFailure()
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", apperrors.NewUnavailable(err)
	}
	return user, token, nil
}

// ResolveSession turns a session token into a user. Anonymous (nil, nil) is
// a valid outcome for empty, unknown or expired tokens.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, apperrors.NewUnavailable(err)
	}
	if userID == "" {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewUnavailable(err)
	}
	return user, nil
}

// Logout destroys the session. Destroying an absent session is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return apperrors.NewUnavailable(err)
	}
	return nil
}
