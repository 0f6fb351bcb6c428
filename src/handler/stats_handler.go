package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/stats"
)

type monthStatsSource interface {
	MonthDays(ctx context.Context, ownerID uint, year int, month int) ([]repository.DayRow, error)
}

type yearStatsSource interface {
	MonthlyTotals(ctx context.Context, ownerID uint, year int) (map[time.Month]decimal.Decimal, error)
}

type overviewSource interface {
	DailyTotals(ctx context.Context, ownerID uint) ([]repository.DayRow, error)
}

type allEntriesSource interface {
	ListAll(ctx context.Context, ownerID uint) ([]model.TradeEntry, error)
}

type dayEntriesSource interface {
	ListByDate(ctx context.Context, ownerID uint, date string) ([]model.TradeEntry, error)
}

type monthStatsResponse struct {
	stats.MonthStats
	Days []stats.DayPL `json:"days"`
}

type yearStatsResponse struct {
	stats.YearStats
	Monthly map[string]decimal.Decimal `json:"monthly"`
}

type overviewResponse struct {
	Streaks     stats.StreakStats    `json:"streaks"`
	ByDayOfWeek [7]decimal.Decimal   `json:"by_day_of_week"`
	BySetup     []stats.SetupStat    `json:"by_setup"`
	Histogram   []stats.HistogramBin `json:"histogram"`
	EquityCurve []stats.EquityPoint  `json:"equity_curve"`
}

func toDayPL(rows []repository.DayRow) []stats.DayPL {
	days := make([]stats.DayPL, 0, len(rows))
	for _, row := range rows {
		days = append(days, stats.DayPL{Date: row.TradeDate, PL: row.PL})
	}
	return days
}

// DayStatsHandler returns a handler that reduces one day's entries into the
// day rollup: net P/L, win rate, profit factor, max win and max loss.
func DayStatsHandler(repo dayEntriesSource) http.HandlerFunc {
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

		writeJSON(w, http.StatusOK, stats.Day(entries))
	}
}

// MonthStatsHandler returns a handler that reduces one calendar month into
// its rollup plus the per-day P/L list the calendar view renders.
func MonthStatsHandler(repo monthStatsSource) http.HandlerFunc {
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

		rows, err := repo.MonthDays(r.Context(), user.ID, year, month)
		if err != nil {
			writeError(w, err)
			return
		}

		days := toDayPL(rows)
		writeJSON(w, http.StatusOK, monthStatsResponse{
			MonthStats: stats.Month(days),
			Days:       days,
		})
	}
}

// YearStatsHandler returns a handler for the year-to-date rollup plus the
// per-month totals keyed "01".."12". Months without entries are absent.
func YearStatsHandler(repo yearStatsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil || year < 1970 || year > 9999 {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}

		totals, err := repo.MonthlyTotals(r.Context(), user.ID, year)
		if err != nil {
			writeError(w, err)
			return
		}

		monthly := make(map[string]decimal.Decimal, len(totals))
		for m, pl := range totals {
			monthly[fmtMonth(m)] = pl
		}

		writeJSON(w, http.StatusOK, yearStatsResponse{
			YearStats: stats.Year(totals),
			Monthly:   monthly,
		})
	}
}

func fmtMonth(m time.Month) string {
	if m < 10 {
		return "0" + strconv.Itoa(int(m))
	}
	return strconv.Itoa(int(m))
}

// OverviewStatsHandler returns a handler for the all-time dashboard block:
// streaks, weekday averages, setup breakdown, P/L histogram, and the
// cumulative equity curve. Both stores are read once; all reductions run on
// the fetched rows.
func OverviewStatsHandler(summaries overviewSource, entries allEntriesSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := summaries.DailyTotals(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		days := toDayPL(rows)

		all, err := entries.ListAll(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		pnls := make([]decimal.Decimal, 0, len(all))
		for i := range all {
			pnls = append(pnls, all[i].PNL)
		}

		writeJSON(w, http.StatusOK, overviewResponse{
			Streaks:     stats.Streaks(days),
			ByDayOfWeek: stats.ByDayOfWeek(days),
			BySetup:     stats.BySetup(all),
			Histogram:   stats.Histogram(pnls, stats.DefaultHistogramBins),
			EquityCurve: stats.EquityCurve(days),
		})
	}
}

// DefaultDayStatsHandler wires the handler to the production repository implementation.
func DefaultDayStatsHandler() http.HandlerFunc {
	return DayStatsHandler(repository.NewEntryRepository())
}

func DefaultMonthStatsHandler() http.HandlerFunc {
	return MonthStatsHandler(repository.NewSummaryRepository())
}

func DefaultYearStatsHandler() http.HandlerFunc {
	return YearStatsHandler(repository.NewSummaryRepository())
}

func DefaultOverviewStatsHandler() http.HandlerFunc {
	return OverviewStatsHandler(repository.NewSummaryRepository(), repository.NewEntryRepository())
}
