package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type usernameUpdater interface {
	UpdateUsername(ctx context.Context, id uint, username string) error
}

// MeHandler answers with the authenticated user's profile.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		writeJSON(w, http.StatusOK, user.ToResponse())
	}
}

// UpdateUsernameHandler returns a handler that sets the user's unique
// handle. Letters, digits, underscore, hyphen; 3 to 30 characters.
func UpdateUsernameHandler(repo usernameUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.UpdateUsernamePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid username payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		username := strings.TrimSpace(payload.Username)
		if len(username) < 3 || len(username) > 30 || !usernamePattern.MatchString(username) {
			http.Error(w, "username must be 3-30 characters of letters, digits, underscore or hyphen", http.StatusBadRequest)
			return
		}

		if err := repo.UpdateUsername(r.Context(), user.ID, username); err != nil {
			writeError(w, err)
			return
		}

		user.Username = &username
		writeJSON(w, http.StatusOK, user.ToResponse())
	}
}

// DefaultUpdateUsernameHandler wires the handler to the production repository implementation.
func DefaultUpdateUsernameHandler() http.HandlerFunc {
	return UpdateUsernameHandler(repository.NewUserRepository())
}
