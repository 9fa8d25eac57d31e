package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// BypassHeader carries the shared admin credential accepted instead of a JWT.
const BypassHeader = "X-Admin-Bypass"

type contextKey struct{}

// Principal identifies who made an authenticated request.
type Principal struct {
	UserID string
	Email  string
	Bypass bool
}

// FromContext returns the principal stored by Middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// Actor names the principal for audit trails: the admin's email, or
// "bypass" for the shared credential.
func (p Principal) Actor() string {
	switch {
	case p.Bypass:
		return "bypass"
	case p.Email != "":
		return p.Email
	}
	return p.UserID
}

// Middleware admits requests with a valid bearer token, or with the bypass
// header when bypassToken is set. Everything else gets 401.
func Middleware(svc Service, bypassToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypassToken != "" {
				if got := r.Header.Get(BypassHeader); got != "" &&
					subtle.ConstantTimeCompare([]byte(got), []byte(bypassToken)) == 1 {
					next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), Principal{Bypass: true})))
					return
				}
			}

			header := r.Header.Get("Authorization")
			raw := strings.TrimPrefix(header, "Bearer ")
			if header == "" || raw == header {
				unauthorized(w)
				return
			}
			claims, err := svc.Verify(strings.TrimSpace(raw))
			if err != nil {
				unauthorized(w)
				return
			}
			p := Principal{UserID: claims.Subject, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": ErrUnauthorized.Error()})
}
