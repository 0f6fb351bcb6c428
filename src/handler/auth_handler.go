package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"tradejournal/src/auth"
	"tradejournal/src/connectors"
	"tradejournal/src/model"
	"tradejournal/src/repository"
)

const minPasswordLen = 8

type userStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByOAuth(ctx context.Context, provider string, oauthID string) (*model.User, error)
}

type codeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*connectors.GoogleUserInfo, error)
}

type tokenResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

// RegisterHandler returns a handler that creates a password-based account
// and answers with a fresh bearer token.
func RegisterHandler(cfg auth.Config, users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.RegisterPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid register payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
		if _, err := mail.ParseAddress(payload.Email); err != nil {
			http.Error(w, "invalid email", http.StatusBadRequest)
			return
		}
		if len(payload.Password) < minPasswordLen {
			http.Error(w, "password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).Error("failed to hash password")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		user := &model.User{
			Email:        &payload.Email,
			PasswordHash: string(hashed),
		}
		if err := users.Create(r.Context(), user); err != nil {
			writeError(w, err)
			return
		}

		token, err := auth.IssueToken(cfg, user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to issue token")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, tokenResponse{Token: token, User: user.ToResponse()})
	}
}

// LoginHandler returns a handler for email/password login. Unknown emails
// and bad passwords are indistinguishable to the caller.
func LoginHandler(cfg auth.Config, users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.LoginPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid login payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

		user, err := users.FindByEmail(r.Context(), payload.Email)
		if err != nil {
			writeError(w, err)
			return
		}
		if user == nil || user.PasswordHash == "" {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
			logger.WithField("user_id", user.ID).Warn("password mismatch on login")
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}

		token, err := auth.IssueToken(cfg, user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to issue token")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: user.ToResponse()})
	}
}

// GoogleCallbackHandler returns a handler for the OAuth redirect. It
// exchanges the code, finds or creates the linked account, and answers with
// a bearer token just like password login does.
func GoogleCallbackHandler(cfg auth.Config, users userStore, google codeExchanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		info, err := google.ExchangeCode(r.Context(), code)
		if err != nil {
			logger.WithError(err).Warn("google code exchange failed")
			http.Error(w, "authorization failed", http.StatusUnauthorized)
			return
		}

		user, err := users.FindByOAuth(r.Context(), "google", info.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		if user == nil {
			provider := "google"
			user = &model.User{
				OAuthProvider: &provider,
				OAuthID:       &info.ID,
				DisplayName:   info.Name,
			}
			if info.Email != "" {
				email := strings.ToLower(info.Email)
				user.OAuthEmail = &email
			}
			if err := users.Create(r.Context(), user); err != nil {
				writeError(w, err)
				return
			}
			logger.WithField("user_id", user.ID).Info("created account from google oauth")
		}

		token, err := auth.IssueToken(cfg, user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to issue token")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: user.ToResponse()})
	}
}

// DefaultRegisterHandler wires the handler to the production repository implementation.
func DefaultRegisterHandler() http.HandlerFunc {
	return RegisterHandler(auth.GetConfig(), repository.NewUserRepository())
}

func DefaultLoginHandler() http.HandlerFunc {
	return LoginHandler(auth.GetConfig(), repository.NewUserRepository())
}

func DefaultGoogleCallbackHandler() http.HandlerFunc {
	return GoogleCallbackHandler(
		auth.GetConfig(),
		repository.NewUserRepository(),
		connectors.NewGoogleClient(connectors.GetGoogleConfig()),
	)
}
