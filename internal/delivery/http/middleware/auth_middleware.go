package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	ActorKey   contextKey = "actor"
	TokenIDKey contextKey = "token_id"
)

// AuthMiddleware sends requests without a live access token to the login page.
type AuthMiddleware struct {
	jwtService    *jwt.JWTService
	sessions      service.SessionStore
	log           *logrus.Logger
	loginRedirect string
}

func NewAuthMiddleware(jwtService *jwt.JWTService, sessions service.SessionStore, log *logrus.Logger, loginRedirect string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtService,
		sessions:      sessions,
		log:           log,
		loginRedirect: loginRedirect,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract token from "Bearer <token>"
		parts := strings.Split(r.Header.Get("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Redirect(w, r, m.loginRedirect)
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil || claims.TokenType != jwt.AccessToken {
			response.Redirect(w, r, m.loginRedirect)
			return
		}

		// Revoked tokens are gone from the session store.
		valid, err := m.sessions.IsValid(r.Context(), claims.UserID, claims.TokenID, jwt.AccessToken)
		if err != nil {
			m.log.Warnf("Failed to validate token: %+v", err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if !valid {
			response.Redirect(w, r, m.loginRedirect)
			return
		}

		actor := entity.Actor{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   entity.Role(claims.Role),
		}
		ctx := context.WithValue(r.Context(), ActorKey, actor)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActorFromContext extracts the authenticated actor from context
func GetActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(entity.Actor)
	return actor, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor entity.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}
