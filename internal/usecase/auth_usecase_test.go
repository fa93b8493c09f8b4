package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	store    *memStore
	sessions *fakeSessions
	jwt      *jwt.JWTService
	uc       AuthUsecase
}

func newAuthFixture() *authFixture {
	s := newMemStore()
	f := &authFixture{
		store:    s,
		sessions: newFakeSessions(),
		jwt:      jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: 15 * time.Minute, RefreshExpiry: time.Hour}),
	}
	f.uc = NewAuthUsecase(fakeTx{}, quietLogger(), mockUserRepo{s}, newProvisioning(s), newAudit(s), f.jwt, f.sessions)
	return f
}

// addAccount stores a user that can log in with password.
func (f *authFixture) addAccount(email, password string, role entity.Role) *entity.User {
	u := f.store.addUser(email, role)
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u.Password = string(hashed)
	return u
}

func TestAuthUsecase_SignupProvisionsPatient(t *testing.T) {
	f := newAuthFixture()

	resp, err := f.uc.Signup(context.Background(), &dto.SignupRequest{
		Email:           " Alice@Example.com ",
		FirstName:       "Alice",
		LastName:        "Martin",
		Password:        "secret-password",
		PasswordConfirm: "secret-password",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if resp.Email != "alice@example.com" || resp.Role != string(entity.RoleUser) || resp.DisplayName != "Alice Martin" {
		t.Errorf("response = %+v", resp)
	}

	if len(f.store.users) != 1 || len(f.store.profiles) != 1 || len(f.store.patients) != 1 || len(f.store.accounts) != 1 {
		t.Fatalf("records: %d users, %d profiles, %d patients, %d accounts",
			len(f.store.users), len(f.store.profiles), len(f.store.patients), len(f.store.accounts))
	}
	stored := f.store.users[resp.ID]
	if stored.Password == "secret-password" || !stored.IsActive || stored.IsStaff {
		t.Errorf("stored user = %+v", stored)
	}
	if got := f.store.auditActions(); len(got) != 1 || got[0] != entity.AuditActionUserRegister {
		t.Errorf("audit = %v", got)
	}
}

func TestAuthUsecase_SignupRejects(t *testing.T) {
	tests := []struct {
		name string
		req  dto.SignupRequest
		want error
	}{
		{
			name: "password mismatch",
			req:  dto.SignupRequest{Email: "bob@example.com", Password: "secret-password", PasswordConfirm: "other-password"},
			want: ErrPasswordMismatch,
		},
		{
			name: "existing email in other case",
			req:  dto.SignupRequest{Email: "ALICE@example.com", Password: "secret-password", PasswordConfirm: "secret-password"},
			want: ErrEmailAlreadyExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			f.store.addUser("alice@example.com", entity.RoleUser)

			req := tt.req
			if _, err := f.uc.Signup(context.Background(), &req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(f.store.users) != 1 {
				t.Errorf("users = %d, rejected signup persisted", len(f.store.users))
			}
		})
	}
}

func TestAuthUsecase_LoginLanding(t *testing.T) {
	tests := []struct {
		name    string
		role    entity.Role
		staff   bool
		want    entity.Role
		landing string
	}{
		{"patient", entity.RoleUser, false, entity.RoleUser, LandingExtranet},
		{"agent", entity.RoleAgent, false, entity.RoleAgent, LandingAgent},
		{"admin", entity.RoleAdmin, false, entity.RoleAdmin, LandingAdmin},
		{"staff flag wins", entity.RoleUser, true, entity.RoleAdmin, LandingAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture()
			u := f.addAccount("someone@example.com", "secret-password", tt.role)
			u.IsStaff = tt.staff

			tokens, err := f.uc.Login(context.Background(), &dto.LoginRequest{Email: "someone@example.com", Password: "secret-password"})
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if tokens.Role != string(tt.want) || tokens.Landing != tt.landing {
				t.Errorf("role %s landing %s, want %s %s", tokens.Role, tokens.Landing, tt.want, tt.landing)
			}

			claims, err := f.jwt.ValidateToken(tokens.AccessToken)
			if err != nil {
				t.Fatalf("ValidateToken: %v", err)
			}
			if claims.Role != string(tt.want) || claims.UserID != u.ID {
				t.Errorf("claims = %+v", claims)
			}
			if len(f.sessions.tokens) != 2 {
				t.Errorf("stored tokens = %d, want 2", len(f.sessions.tokens))
			}
		})
	}
}

func TestAuthUsecase_LoginRejects(t *testing.T) {
	f := newAuthFixture()
	f.addAccount("alice@example.com", "secret-password", entity.RoleUser)
	inactive := f.addAccount("gone@example.com", "secret-password", entity.RoleUser)
	inactive.IsActive = false

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "alice@example.com", "not-the-password"},
		{"unknown email", "nobody@example.com", "secret-password"},
		{"inactive", "gone@example.com", "secret-password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Login(context.Background(), &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthUsecase_LoginRepairsMissingProfile(t *testing.T) {
	f := newAuthFixture()
	u := f.addAccount("legacy@example.com", "secret-password", entity.RoleUser)
	delete(f.store.profiles, u.ID)
	delete(f.store.patients, u.ID)

	tokens, err := f.uc.Login(context.Background(), &dto.LoginRequest{Email: "legacy@example.com", Password: "secret-password"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tokens.Role != string(entity.RoleUser) {
		t.Errorf("role = %s", tokens.Role)
	}
	if f.store.profiles[u.ID] == nil || f.store.patients[u.ID] == nil {
		t.Error("profile or patient not provisioned")
	}
}

func TestAuthUsecase_RefreshRotatesAndLogoutRevokes(t *testing.T) {
	f := newAuthFixture()
	u := f.addAccount("alice@example.com", "secret-password", entity.RoleUser)
	ctx := context.Background()

	tokens, err := f.uc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "secret-password"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Promoted between login and refresh.
	f.store.profiles[u.ID].Role = entity.RoleAgent

	rotated, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if rotated.Role != string(entity.RoleAgent) || rotated.Landing != LandingAgent {
		t.Errorf("rotated role %s landing %s", rotated.Role, rotated.Landing)
	}
	if _, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("reused refresh token: expected ErrTokenRevoked, got %v", err)
	}
	if _, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token as refresh: expected ErrInvalidToken, got %v", err)
	}

	access, err := f.jwt.ValidateToken(rotated.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if err := f.uc.Logout(ctx, u.ID, access.TokenID, rotated.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	// The first access token was never revoked and remains until expiry.
	if len(f.sessions.tokens) != 1 {
		t.Errorf("remaining tokens = %d, want 1", len(f.sessions.tokens))
	}
	if _, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("after logout: expected ErrTokenRevoked, got %v", err)
	}
}

func TestAuthUsecase_Extranet(t *testing.T) {
	tests := []struct {
		role  entity.Role
		links int
	}{
		{entity.RoleUser, 2},
		{entity.RoleAgent, 3},
		{entity.RoleAdmin, 4},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			f := newAuthFixture()
			u := f.store.addUser("someone@example.com", tt.role)

			resp, err := f.uc.Extranet(context.Background(), actorOf(u, tt.role))
			if err != nil {
				t.Fatalf("Extranet: %v", err)
			}
			if resp.Role != string(tt.role) || resp.DisplayName != "someone" || resp.Landing != LandingRoute(tt.role) {
				t.Errorf("response = %+v", resp)
			}
			if len(resp.Links) != tt.links {
				t.Errorf("links = %v", resp.Links)
			}
		})
	}
}
