package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type staffKey struct{}

// IdentifyStaff marks requests that carry the shared staff bearer token.
// An empty token treats every caller as staff, for local use.
func IdentifyStaff(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1 {
				r = r.WithContext(context.WithValue(r.Context(), staffKey{}, true))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func IsStaff(ctx context.Context) bool {
	ok, _ := ctx.Value(staffKey{}).(bool)
	return ok
}

// RequireStaff guards administrative routes; it relies on IdentifyStaff
// running earlier in the chain.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsStaff(r.Context()) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="staff"`)
			respond(w, http.StatusUnauthorized, errorBody{Error: "staff token required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
