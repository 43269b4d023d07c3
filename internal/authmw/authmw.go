// Package authmw provides HTTP middleware guarding write endpoints with a
// shared bearer token.
package authmw

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// RequireBearer returns middleware that validates the Authorization header
// contains a Bearer token matching the expected value. An empty expected
// token disables the check entirely and passes every request through.
// Comparison uses constant-time equality to prevent timing side channels.
func RequireBearer(token string) func(http.Handler) http.Handler {
	if token == "" {
		return func(next http.Handler) http.Handler { return next }
	}

	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, `{"error":"missing or malformed authorization header"}`, http.StatusUnauthorized)
				return
			}

			got := []byte(auth[len("Bearer "):])

			if subtle.ConstantTimeCompare(got, expected) != 1 {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
