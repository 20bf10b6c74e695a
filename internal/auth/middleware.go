package auth

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/ilmhub/quizhub/internal/rbac"
)

// JWTMiddleware verifies the bearer token and puts the subject in the request context.
func JWTMiddleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), claims.Sub)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AttachRoleFromDB replaces the claim role with the authoritative DB role.
// A token whose subject no longer resolves to a user is rejected.
func AttachRoleFromDB(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)

			var role string
			err := db.QueryRowContext(ctx, `SELECT role FROM users WHERE id=$1`, sub).Scan(&role)
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, role)))
		})
	}
}
