package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DhruvR-16/ArogyaAI/internal/models"
)

type userRepoFake struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newUserRepoFake() *userRepoFake {
	return &userRepoFake{
		byEmail: map[string]*models.User{},
		byID:    map[string]*models.User{},
	}
}

func (f *userRepoFake) Create(_ context.Context, user *models.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *userRepoFake) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func (f *userRepoFake) GetByID(_ context.Context, id string) (*models.User, error) {
	return f.byID[id], nil
}

func (f *userRepoFake) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *userRepoFake) Delete(_ context.Context, id string) error {
	user, ok := f.byID[id]
	if !ok {
		return nil
	}
	delete(f.byEmail, user.Email)
	delete(f.byID, id)
	return nil
}

func (f *userRepoFake) Ping(context.Context) error { return nil }

func newAuthServiceForTest() AuthService {
	return NewAuthService(newUserRepoFake(), zerolog.Nop(), AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: 4,
	})
}

func TestSignupLoginRoundTrip(t *testing.T) {
	svc := newAuthServiceForTest()
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "Asha", "asha@example.com", "secret123")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if signup.Token == "" {
		t.Fatalf("expected token on signup")
	}
	if signup.User.PasswordHash == "secret123" {
		t.Fatalf("password stored in the clear")
	}

	login, err := svc.Login(ctx, "asha@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	claims, err := svc.VerifyToken(login.Token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.UserID != signup.User.ID {
		t.Fatalf("claims user = %q, want %q", claims.UserID, signup.User.ID)
	}
	if claims.Email != "asha@example.com" {
		t.Fatalf("claims email = %q", claims.Email)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := newAuthServiceForTest()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Asha", "asha@example.com", "secret123"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	_, err := svc.Signup(ctx, "Asha", "asha@example.com", "secret123")
	if err == nil {
		t.Fatalf("expected error for duplicate signup")
	}
	if !errors.Is(err, models.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err.Error() != "User already exists" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthServiceForTest()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "Asha", "asha@example.com", "secret123"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	_, err := svc.Login(ctx, "asha@example.com", "wrong")
	if err == nil {
		t.Fatalf("expected error")
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	// unknown users get the same message as wrong passwords
	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newAuthServiceForTest()

	_, err := svc.VerifyToken("not-a-token")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthService(newUserRepoFake(), zerolog.Nop(), AuthConfig{
		JWTSecret:  "other-secret",
		BcryptCost: 4,
	})
	resp, err := issuer.Signup(context.Background(), "Asha", "asha@example.com", "secret123")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	svc := newAuthServiceForTest()
	if _, err := svc.VerifyToken(resp.Token); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
}
