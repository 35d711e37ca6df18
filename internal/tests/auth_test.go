package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"corpcab/internal/domain"
	"corpcab/internal/service"
)

func newAuthService(users *MockUserRepository, sessions *MockSessionStore) *service.AuthService {
	return service.NewAuthService(users, sessions, "test-secret", time.Hour)
}

func validSignUp() service.SignUpRequest {
	return service.SignUpRequest{
		Email:    "rider@corp.example",
		Password: "long-enough-password",
		FullName: "Test Rider",
		Phone:    "+1 555 0100",
	}
}

func TestSignUp_CreatesRiderAndSignsIn(t *testing.T) {
	t.Parallel()

	users := NewMockUserRepository()
	auth := newAuthService(users, NewMockSessionStore())

	session, err := auth.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if session.Token == "" {
		t.Error("expected session token issued")
	}
	if session.User.Role != domain.RoleRider {
		t.Errorf("expected rider role, got %s", session.User.Role)
	}
	if session.User.PasswordHash == validSignUp().Password {
		t.Error("expected password hashed, found plaintext")
	}

	// The issued token resolves back to the new account.
	identity, err := auth.Authenticate(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("expected token to authenticate, got: %v", err)
	}
	if identity.UserID != session.User.ID {
		t.Errorf("expected identity %s, got %s", session.User.ID, identity.UserID)
	}
}

func TestSignUp_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*service.SignUpRequest)
		wantErr error
	}{
		{"bad email", func(r *service.SignUpRequest) { r.Email = "not-an-email" }, service.ErrInvalidEmail},
		{"empty email", func(r *service.SignUpRequest) { r.Email = "" }, service.ErrInvalidEmail},
		{"short password", func(r *service.SignUpRequest) { r.Password = "short" }, service.ErrWeakPassword},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			auth := newAuthService(NewMockUserRepository(), NewMockSessionStore())
			req := validSignUp()
			tc.mutate(&req)

			if _, err := auth.SignUp(context.Background(), req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSignUp_DuplicateEmailRejected(t *testing.T) {
	t.Parallel()

	users := NewMockUserRepository()
	auth := newAuthService(users, NewMockSessionStore())

	if _, err := auth.SignUp(context.Background(), validSignUp()); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, err := auth.SignUp(context.Background(), validSignUp()); !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignIn_Credentials(t *testing.T) {
	t.Parallel()

	users := NewMockUserRepository()
	auth := newAuthService(users, NewMockSessionStore())

	if _, err := auth.SignUp(context.Background(), validSignUp()); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if _, err := auth.SignIn(context.Background(), "rider@corp.example", "long-enough-password"); err != nil {
		t.Errorf("expected sign-in success, got %v", err)
	}
	if _, err := auth.SignIn(context.Background(), "rider@corp.example", "wrong-password"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := auth.SignIn(context.Background(), "nobody@corp.example", "long-enough-password"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestSignOut_RevokesToken(t *testing.T) {
	t.Parallel()

	users := NewMockUserRepository()
	sessions := NewMockSessionStore()
	auth := newAuthService(users, sessions)

	session, err := auth.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if err := auth.SignOut(context.Background(), session.Token); err != nil {
		t.Fatalf("signout failed: %v", err)
	}
	if sessions.CountRevoked() != 1 {
		t.Errorf("expected one revoked token, got %d", sessions.CountRevoked())
	}

	if _, err := auth.Authenticate(context.Background(), session.Token); !errors.Is(err, service.ErrInvalidToken) {
		t.Errorf("expected revoked token rejected, got %v", err)
	}
}

func TestAuthenticate_RejectsGarbageAndForeignTokens(t *testing.T) {
	t.Parallel()

	auth := newAuthService(NewMockUserRepository(), NewMockSessionStore())

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := auth.Authenticate(context.Background(), token); !errors.Is(err, service.ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}

	// A token signed with a different secret is rejected.
	other := service.NewAuthService(NewMockUserRepository(), NewMockSessionStore(), "other-secret", time.Hour)
	session, err := other.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if _, err := auth.Authenticate(context.Background(), session.Token); !errors.Is(err, service.ErrInvalidToken) {
		t.Errorf("expected foreign-signed token rejected, got %v", err)
	}
}
