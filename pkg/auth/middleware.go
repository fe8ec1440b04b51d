package auth

import (
	"net/http"
	"strings"

	"github.com/dtrkit/dtr-backend/pkg/errors"
	"github.com/dtrkit/dtr-backend/pkg/httputil"
)

// Middleware validates bearer tokens and adds the subject to the request context
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.Error(w, errors.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.Error(w, errors.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := m.ValidateToken(parts[1])
		if err != nil {
			httputil.Error(w, err)
			return
		}

		ctx := httputil.WithSubject(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
