// Package auth implements the login gate: a single shared password compared
// in constant time, carried in a cookie.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// CookieName is the cookie the credential travels in.
const CookieName = "auth"

// Gate checks submitted passwords and requests against the configured
// shared secret. The secret is injected once at startup; nothing reads the
// environment at request time.
//
// The cookie value is the shared password itself. That mirrors the product
// this replaces and is a known weakness; see DESIGN.md before "fixing" it.
type Gate struct {
	password string
}

// NewGate constructs a Gate. An empty password disables all logins: the
// gate fails closed rather than open.
func NewGate(password string) *Gate {
	return &Gate{password: password}
}

// Enabled reports whether a password is configured at all.
func (g *Gate) Enabled() bool {
	return g.password != ""
}

// Authenticate compares a submitted password against the configured secret
// in constant time.
func (g *Gate) Authenticate(submitted string) bool {
	if !g.Enabled() {
		return false
	}
	return secureCompare(submitted, g.password)
}

// IsAuthenticated re-checks the cookie against the secret on every call.
func (g *Gate) IsAuthenticated(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return g.Authenticate(c.Value)
}

// IssueCookie sets the auth cookie on a successful login.
func (g *Gate) IssueCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    g.password,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie deletes the auth cookie.
func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAuth rejects unauthenticated requests with a 401 JSON envelope.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.IsAuthenticated(r) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
