package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/policy"
	"clinic-booking/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type memSessions struct {
	valid map[string]bool
}

func (s *memSessions) Store(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType, ttl time.Duration) error {
	s.valid[tokenID] = true
	return nil
}

func (s *memSessions) IsValid(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error) {
	return s.valid[tokenID], nil
}

func (s *memSessions) Revoke(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) error {
	delete(s.valid, tokenID)
	return nil
}

func (s *memSessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	s.valid = map[string]bool{}
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestAuthenticate(t *testing.T) {
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	sessions := &memSessions{valid: map[string]bool{}}
	userID := uuid.New()

	access, accessID, _ := jwtService.GenerateAccessToken(userID, "agent@example.com", "agent")
	sessions.valid[accessID] = true
	revoked, _, _ := jwtService.GenerateAccessToken(userID, "agent@example.com", "agent")
	refresh, refreshID, _ := jwtService.GenerateRefreshToken(userID, "agent@example.com", "agent")
	sessions.valid[refreshID] = true

	var seen entity.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := NewAuthMiddleware(jwtService, sessions, quietLogger(), "/login").Authenticate(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + access, http.StatusNoContent},
		{"missing", "", http.StatusSeeOther},
		{"malformed", "Token " + access, http.StatusSeeOther},
		{"garbage", "Bearer abc", http.StatusSeeOther},
		{"revoked", "Bearer " + revoked, http.StatusSeeOther},
		{"refresh token", "Bearer " + refresh, http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusSeeOther && rec.Header().Get("Location") != "/login" {
				t.Errorf("location = %q", rec.Header().Get("Location"))
			}
		})
	}

	if seen.UserID != userID || seen.Role != entity.RoleAgent {
		t.Errorf("actor = %+v", seen)
	}
}

func TestCapabilityRequire(t *testing.T) {
	m := NewCapabilityMiddleware("/extranet", "/login")
	h := m.Require(policy.ManageQueue)(http.HandlerFunc(okHandler))

	tests := []struct {
		name     string
		actor    *entity.Actor
		want     int
		location string
	}{
		{"agent", &entity.Actor{Role: entity.RoleAgent}, http.StatusNoContent, ""},
		{"admin", &entity.Actor{Role: entity.RoleAdmin}, http.StatusNoContent, ""},
		{"patient", &entity.Actor{Role: entity.RoleUser}, http.StatusSeeOther, "/extranet"},
		{"anonymous", nil, http.StatusSeeOther, "/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/call-next", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if loc := rec.Header().Get("Location"); loc != tt.location {
				t.Errorf("location = %q, want %q", loc, tt.location)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h := NewCORSMiddleware([]string{"https://clinic.example"}).Handle(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/services", nil)
	req.Header.Set("Origin", "https://clinic.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "https://clinic.example" {
		t.Errorf("preflight: %d %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.Header.Set("Origin", "https://other.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin allowed")
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	h := rl.Limit(http.HandlerFunc(okHandler))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if got := call("10.0.0.1:5000"); got != http.StatusNoContent {
			t.Fatalf("request %d: status %d", i, got)
		}
	}
	if got := call("10.0.0.1:5001"); got != http.StatusTooManyRequests {
		t.Errorf("burst exceeded: status %d", got)
	}
	if got := call("10.0.0.2:5000"); got != http.StatusNoContent {
		t.Errorf("other client: status %d", got)
	}

	now = now.Add(10 * time.Minute)
	call("10.0.0.3:5000")
	if _, ok := rl.clients["10.0.0.1"]; ok {
		t.Error("idle client not swept")
	}
}

func TestAccessLogStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	AccessLog(quietLogger())(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}
