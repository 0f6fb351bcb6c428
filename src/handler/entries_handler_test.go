package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"tradejournal/src/auth"
	"tradejournal/src/model"
)

type mockEntryStore struct {
	entry       *model.TradeEntry
	entries     []model.TradeEntry
	err         error
	ownerID     uint
	entryID     uint
	date        string
	year        int
	month       int
	calledCount int
}

func (m *mockEntryStore) Create(ctx context.Context, ownerID uint, payload model.CreateEntryPayload) (*model.TradeEntry, error) {
	m.calledCount++
	m.ownerID = ownerID
	if m.err != nil {
		return nil, m.err
	}
	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return m.entry, nil
}

func (m *mockEntryStore) Update(ctx context.Context, ownerID uint, id uint, payload model.UpdateEntryPayload) (*model.TradeEntry, error) {
	m.calledCount++
	m.ownerID = ownerID
	m.entryID = id
	return m.entry, m.err
}

func (m *mockEntryStore) Delete(ctx context.Context, ownerID uint, id uint) error {
	m.calledCount++
	m.ownerID = ownerID
	m.entryID = id
	return m.err
}

func (m *mockEntryStore) ListByDate(ctx context.Context, ownerID uint, date string) ([]model.TradeEntry, error) {
	m.calledCount++
	m.ownerID = ownerID
	m.date = date
	return m.entries, m.err
}

func (m *mockEntryStore) ListByMonth(ctx context.Context, ownerID uint, year int, month int) ([]model.TradeEntry, error) {
	m.calledCount++
	m.ownerID = ownerID
	m.year = year
	m.month = month
	return m.entries, m.err
}

func authedRequest(method, target, body string, userID uint) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(context.WithValue(req.Context(), auth.UserKey, &model.User{ID: userID}))
}

func TestCreateEntryHandler_Unauthorized(t *testing.T) {
	handler := CreateEntryHandler(&mockEntryStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestCreateEntryHandler_Success(t *testing.T) {
	pnl := decimal.NewFromInt(100)
	mockRepo := &mockEntryStore{entry: &model.TradeEntry{ID: 1, Ticker: "AAPL", PNL: pnl}}
	handler := CreateEntryHandler(mockRepo)

	body := `{"trade_date":"2026-03-05","ticker":"AAPL","pnl":"100"}`
	req := authedRequest(http.MethodPost, "/api/entries", body, 7)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if mockRepo.calledCount != 1 {
		t.Fatalf("expected repository to be called once, got %d", mockRepo.calledCount)
	}
	if mockRepo.ownerID != 7 {
		t.Fatalf("expected owner 7, got %d", mockRepo.ownerID)
	}
}

func TestCreateEntryHandler_ValidationMapsTo400(t *testing.T) {
	mockRepo := &mockEntryStore{entry: &model.TradeEntry{ID: 1}}
	handler := CreateEntryHandler(mockRepo)

	body := `{"trade_date":"not-a-date","ticker":"AAPL","pnl":"100"}`
	req := authedRequest(http.MethodPost, "/api/entries", body, 7)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCreateEntryHandler_StoreErrorMapsTo500(t *testing.T) {
	mockRepo := &mockEntryStore{err: &model.StoreError{Op: "create entry", Err: assert.AnError}}
	handler := CreateEntryHandler(mockRepo)

	body := `{"trade_date":"2026-03-05","ticker":"AAPL","pnl":"100"}`
	req := authedRequest(http.MethodPost, "/api/entries", body, 7)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestUpdateEntryHandler_NotFoundMapsTo404(t *testing.T) {
	mockRepo := &mockEntryStore{err: &model.NotFoundError{Resource: "entry", ID: 9}}

	r := chi.NewRouter()
	r.Put("/api/entries/{id}", UpdateEntryHandler(mockRepo))

	req := authedRequest(http.MethodPut, "/api/entries/9", `{"ticker":"AAPL","pnl":"5"}`, 7)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if mockRepo.entryID != 9 {
		t.Fatalf("expected entry id 9, got %d", mockRepo.entryID)
	}
}

func TestUpdateEntryHandler_InvalidID(t *testing.T) {
	r := chi.NewRouter()
	r.Put("/api/entries/{id}", UpdateEntryHandler(&mockEntryStore{}))

	req := authedRequest(http.MethodPut, "/api/entries/abc", `{}`, 7)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestDeleteEntryHandler_AlwaysNoContent(t *testing.T) {
	mockRepo := &mockEntryStore{}

	r := chi.NewRouter()
	r.Delete("/api/entries/{id}", DeleteEntryHandler(mockRepo))

	req := authedRequest(http.MethodDelete, "/api/entries/42", "", 7)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if mockRepo.entryID != 42 {
		t.Fatalf("expected entry id 42, got %d", mockRepo.entryID)
	}
}

func TestListEntriesByDateHandler_EmptyDayIsEmptyArray(t *testing.T) {
	mockRepo := &mockEntryStore{}

	r := chi.NewRouter()
	r.Get("/api/entries/date/{date}", ListEntriesByDateHandler(mockRepo))

	req := authedRequest(http.MethodGet, "/api/entries/date/2026-03-05", "", 7)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty array body, got %q", rr.Body.String())
	}
	if mockRepo.date != "2026-03-05" {
		t.Fatalf("expected date param to reach the repo, got %q", mockRepo.date)
	}
}

func TestListEntriesByMonthHandler_GroupsByDate(t *testing.T) {
	mockRepo := &mockEntryStore{entries: []model.TradeEntry{
		{ID: 1, TradeDate: "2026-03-05", Ticker: "AAPL"},
		{ID: 2, TradeDate: "2026-03-05", Ticker: "MSFT"},
		{ID: 3, TradeDate: "2026-03-06", Ticker: "NVDA"},
	}}

	r := chi.NewRouter()
	r.Get("/api/entries/month/{year}/{month}", ListEntriesByMonthHandler(mockRepo))

	req := authedRequest(http.MethodGet, "/api/entries/month/2026/3", "", 7)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mockRepo.year != 2026 || mockRepo.month != 3 {
		t.Fatalf("expected year/month to reach the repo, got %d/%d", mockRepo.year, mockRepo.month)
	}

	var grouped map[string][]model.TradeEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &grouped); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(grouped["2026-03-05"]) != 2 || len(grouped["2026-03-06"]) != 1 {
		t.Fatalf("unexpected grouping: %+v", grouped)
	}
}

func TestListEntriesByMonthHandler_InvalidMonth(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/entries/month/{year}/{month}", ListEntriesByMonthHandler(&mockEntryStore{}))

	req := authedRequest(http.MethodGet, "/api/entries/month/2026/13", "", 7)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
