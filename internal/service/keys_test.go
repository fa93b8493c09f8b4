package service

import (
	"testing"
	"time"

	"clinic-booking/pkg/jwt"

	"github.com/google/uuid"
)

func TestTicketKey(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	day := time.Date(2026, time.October, 19, 0, 30, 0, 0, paris)
	if got := TicketKey(day); got != "queue:ticket:2026-10-19" {
		t.Fatalf("TicketKey = %q", got)
	}
}

func TestTokenKey(t *testing.T) {
	id := uuid.MustParse("4b1c7c0e-2f58-4a43-9d5b-8d0a9d2b6b11")
	tests := []struct {
		tokenType jwt.TokenType
		want      string
	}{
		{jwt.AccessToken, "access_token:4b1c7c0e-2f58-4a43-9d5b-8d0a9d2b6b11:abc"},
		{jwt.RefreshToken, "refresh_token:4b1c7c0e-2f58-4a43-9d5b-8d0a9d2b6b11:abc"},
	}
	for _, tt := range tests {
		if got := TokenKey(id, "abc", tt.tokenType); got != tt.want {
			t.Errorf("TokenKey(%s) = %q, want %q", tt.tokenType, got, tt.want)
		}
	}
}
