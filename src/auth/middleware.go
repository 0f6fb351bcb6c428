package auth

import (
	"context"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/model"
)

// UserFinder loads the authenticated user record once the token checks out.
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// Middleware returns a handler wrapper that requires a valid bearer token
// and stores the matching user under UserKey.
func Middleware(cfg Config, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			userID, err := ParseToken(cfg, tokenStr)
			if err != nil {
				logger.WithField("component", "auth.Middleware").
					WithError(err).Debug("Token rejected")
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
