package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/divvy/internal/errs"
	"github.com/fkhayef/divvy/internal/user"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrEmailTaken         = errors.New("email already in use")
)

// UserStore defines the user persistence operations the authenticator needs.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Service handles registration and login.
type Service struct {
	store UserStore
	jwt   *JWTManager
}

// NewService creates a new auth service.
func NewService(store UserStore, jwt *JWTManager) *Service {
	return &Service{store: store, jwt: jwt}
}

// Register creates a new user account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*user.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" {
		return nil, errs.Validation("username", "username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.Validation("email", "a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, errs.Validation("password", "password must be at least 8 characters")
	}

	if existing, err := s.store.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err := s.store.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, username, email, string(hash))
}

// Login verifies credentials (username or email plus password) and returns
// the user along with a signed session token.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*user.User, string, error) {
	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		return nil, "", ErrInvalidCredentials
	}

	u, err := s.store.GetByUsername(ctx, identifier)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		u, err = s.store.GetByEmail(ctx, identifier)
		if err != nil {
			return nil, "", err
		}
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(u.ID, u.Username)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}
