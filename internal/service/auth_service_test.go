package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pitchroast/api/internal/auth"
	"github.com/pitchroast/api/internal/model"
	"github.com/pitchroast/api/internal/store"
)

type fakeUserStore struct {
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(ctx context.Context, u *model.User) error {
	if _, exists := f.users[u.Email]; exists {
		return store.ErrDuplicate
	}
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func TestRegisterAndLogin(t *testing.T) {
	st := newFakeUserStore()
	svc := NewAuthService(st, "test-secret", time.Hour)

	reg, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "Founder@Example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if reg.Token == "" {
		t.Error("expected a signed token")
	}
	if reg.User.Email != "founder@example.com" {
		t.Errorf("expected lowercased email, got %q", reg.User.Email)
	}

	claims, err := auth.ValidateToken(reg.Token, "test-secret")
	if err != nil {
		t.Fatalf("issued token should validate: %v", err)
	}
	if claims.UserID != reg.User.ID || claims.Email != reg.User.Email {
		t.Errorf("unexpected claims %+v", claims)
	}

	// Stored hash must not be the plain password.
	stored := st.users["founder@example.com"]
	if stored.PasswordHash == "hunter2hunter2" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	login, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "founder@example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Error("login should return the registered account")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	st := newFakeUserStore()
	svc := NewAuthService(st, "test-secret", time.Hour)

	req := &model.RegisterRequest{Email: "dup@example.com", Password: "password123"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	st := newFakeUserStore()
	svc := NewAuthService(st, "test-secret", time.Hour)

	if _, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "founder@example.com",
		Password: "correct-password",
	}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// Wrong password and unknown email report the same error.
	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "founder@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
