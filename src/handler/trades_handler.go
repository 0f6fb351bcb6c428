package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
)

type dayReader interface {
	GetDay(ctx context.Context, ownerID uint, date string) (*repository.DayRow, error)
}

type monthDaysReader interface {
	MonthDays(ctx context.Context, ownerID uint, year int, month int) ([]repository.DayRow, error)
}

type notesUpserter interface {
	UpsertNotes(ctx context.Context, ownerID uint, date string, notes string) error
}

// GetDayHandler returns a handler for one day's summary with its derived
// P/L. A day that was never traded or noted answers 200 with a null body,
// so the client can tell "no such day" apart from a zero-P/L day.
func GetDayHandler(repo dayReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		day, err := repo.GetDay(r.Context(), user.ID, chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, day)
	}
}

// ListMonthDaysHandler returns a handler for a month of summarized days
// with derived P/L, ordered by date.
func ListMonthDaysHandler(repo monthDaysReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		year, month, ok := parseYearMonth(w, r)
		if !ok {
			return
		}

		days, err := repo.MonthDays(r.Context(), user.ID, year, month)
		if err != nil {
			writeError(w, err)
			return
		}
		if days == nil {
			days = []repository.DayRow{}
		}

		writeJSON(w, http.StatusOK, days)
	}
}

// UpsertNotesHandler returns a handler that saves (or overwrites) the notes
// for a day, creating the summary row if needed.
func UpsertNotesHandler(repo notesUpserter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.UpsertNotesPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid notes payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		date := chi.URLParam(r, "date")
		if err := repo.UpsertNotes(r.Context(), user.ID, date, payload.Notes); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	}
}

// DefaultGetDayHandler wires the handler to the production repository implementation.
func DefaultGetDayHandler() http.HandlerFunc {
	return GetDayHandler(repository.NewSummaryRepository())
}

func DefaultListMonthDaysHandler() http.HandlerFunc {
	return ListMonthDaysHandler(repository.NewSummaryRepository())
}

func DefaultUpsertNotesHandler() http.HandlerFunc {
	return UpsertNotesHandler(repository.NewSummaryRepository())
}
