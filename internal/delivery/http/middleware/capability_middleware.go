package middleware

import (
	"net/http"

	"clinic-booking/internal/domain/policy"
	"clinic-booking/pkg/response"
)

// CapabilityMiddleware guards route groups with the policy table. Refused
// requests are redirected to the forbidden landing page.
type CapabilityMiddleware struct {
	forbiddenRedirect string
	loginRedirect     string
}

func NewCapabilityMiddleware(forbiddenRedirect, loginRedirect string) *CapabilityMiddleware {
	return &CapabilityMiddleware{
		forbiddenRedirect: forbiddenRedirect,
		loginRedirect:     loginRedirect,
	}
}

// Require must run after AuthMiddleware.Authenticate.
func (m *CapabilityMiddleware) Require(c policy.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok {
				response.Redirect(w, r, m.loginRedirect)
				return
			}
			if !policy.Can(actor, c) {
				response.Redirect(w, r, m.forbiddenRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
