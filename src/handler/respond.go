package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/model"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps the repository error taxonomy onto HTTP statuses:
// validation 400, not-found 404, conflict 409, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	var notFoundErr *model.NotFoundError
	if errors.As(err, &notFoundErr) {
		http.Error(w, notFoundErr.Error(), http.StatusNotFound)
		return
	}

	var conflictErr *model.ConflictError
	if errors.As(err, &conflictErr) {
		http.Error(w, conflictErr.Error(), http.StatusConflict)
		return
	}

	logger.WithError(err).Error("unhandled store error")
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
