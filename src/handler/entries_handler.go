package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
)

type entryCreator interface {
	Create(ctx context.Context, ownerID uint, payload model.CreateEntryPayload) (*model.TradeEntry, error)
}

type entryUpdater interface {
	Update(ctx context.Context, ownerID uint, id uint, payload model.UpdateEntryPayload) (*model.TradeEntry, error)
}

type entryDeleter interface {
	Delete(ctx context.Context, ownerID uint, id uint) error
}

type entryLister interface {
	ListByDate(ctx context.Context, ownerID uint, date string) ([]model.TradeEntry, error)
	ListByMonth(ctx context.Context, ownerID uint, year int, month int) ([]model.TradeEntry, error)
}

// CreateEntryHandler returns a handler that records a new trade entry for
// the authenticated user. The repository guarantees the matching day
// summary row exists afterwards.
func CreateEntryHandler(repo entryCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.CreateEntryPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create entry payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		entry, err := repo.Create(r.Context(), user.ID, payload)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, entry)
	}
}

// UpdateEntryHandler returns a handler that edits the mutable fields of an
// existing entry. Entries belonging to other users read as not found.
func UpdateEntryHandler(repo entryUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}

		var payload model.UpdateEntryPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid update entry payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		entry, err := repo.Update(r.Context(), user.ID, uint(id), payload)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

// DeleteEntryHandler returns a handler that removes an entry. Deleting an
// id that no longer exists still answers 204.
func DeleteEntryHandler(repo entryDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid entry id", http.StatusBadRequest)
			return
		}

		if err := repo.Delete(r.Context(), user.ID, uint(id)); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListEntriesByDateHandler returns a handler for one day's entries, newest
// first.
func ListEntriesByDateHandler(repo entryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		entries, err := repo.ListByDate(r.Context(), user.ID, chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, err)
			return
		}
		if entries == nil {
			entries = []model.TradeEntry{}
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

// ListEntriesByMonthHandler returns a handler for a month of entries,
// grouped under their trade dates.
func ListEntriesByMonthHandler(repo entryLister) http.HandlerFunc {
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

		entries, err := repo.ListByMonth(r.Context(), user.ID, year, month)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, repository.GroupByDate(entries))
	}
}

func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1970 || year > 9999 {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return 0, 0, false
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return 0, 0, false
	}

	return year, month, true
}

// DefaultCreateEntryHandler wires the handler to the production repository implementation.
func DefaultCreateEntryHandler() http.HandlerFunc {
	return CreateEntryHandler(repository.NewEntryRepository())
}

func DefaultUpdateEntryHandler() http.HandlerFunc {
	return UpdateEntryHandler(repository.NewEntryRepository())
}

func DefaultDeleteEntryHandler() http.HandlerFunc {
	return DeleteEntryHandler(repository.NewEntryRepository())
}

func DefaultListEntriesByDateHandler() http.HandlerFunc {
	return ListEntriesByDateHandler(repository.NewEntryRepository())
}

func DefaultListEntriesByMonthHandler() http.HandlerFunc {
	return ListEntriesByMonthHandler(repository.NewEntryRepository())
}
