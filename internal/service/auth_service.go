package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pitchroast/api/internal/auth"
	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/store"
)

var (
	// ErrEmailTaken means an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore is the persistence surface for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService handles account registration and login.
type AuthService struct {
	store     UserStore
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(st UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:     st,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates an account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issue(user)
}

// Login checks credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := auth.IssueToken(user.ID, user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}
