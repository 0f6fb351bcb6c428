package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/src/model"
)

// Reductions over journal rows already fetched from the stores. Everything
// in this package is deterministic and free of I/O: same input, same output,
// no matter how often or in which order it is called.

const (
	StreakWin  = "win"
	StreakLoss = "loss"

	DefaultHistogramBins = 10

	// ProfitFactorInfinite is returned when there are profits but no losses.
	ProfitFactorInfinite = "∞"
)

// DayPL is one day's derived P/L, the finest aggregation grain.
type DayPL struct {
	Date string          `json:"date"`
	PL   decimal.Decimal `json:"pl"`
}

type DayStats struct {
	NetPL        decimal.Decimal `json:"net_pl"`
	WinRate      int             `json:"win_rate"`
	ProfitFactor string          `json:"profit_factor"`
	MaxWin       decimal.Decimal `json:"max_win"`
	MaxLoss      decimal.Decimal `json:"max_loss"`
}

type MonthStats struct {
	NetPL       decimal.Decimal `json:"net_pl"`
	TradingDays int             `json:"trading_days"`
	GreenDays   int             `json:"green_days"`
	RedDays     int             `json:"red_days"`
	AvgGreenDay decimal.Decimal `json:"avg_green_day"`
	AvgRedDay   decimal.Decimal `json:"avg_red_day"`
}

type YearStats struct {
	YTDPL       decimal.Decimal `json:"ytd_pl"`
	GreenMonths int             `json:"green_months"`
	RedMonths   int             `json:"red_months"`
	BestMonth   decimal.Decimal `json:"best_month"`
	WorstMonth  decimal.Decimal `json:"worst_month"`
}

type StreakStats struct {
	BestWinStreak     int    `json:"best_win_streak"`
	WorstLossStreak   int    `json:"worst_loss_streak"`
	CurrentStreak     int    `json:"current_streak"`
	CurrentStreakType string `json:"current_streak_type,omitempty"`
}

type SetupStat struct {
	Tag    string          `json:"tag"`
	Trades int             `json:"trades"`
	Wins   int             `json:"wins"`
	PL     decimal.Decimal `json:"pl"`
}

type HistogramBin struct {
	Low   decimal.Decimal `json:"low"`
	High  decimal.Decimal `json:"high"`
	Count int             `json:"count"`
}

type EquityPoint struct {
	Date   string          `json:"date"`
	Equity decimal.Decimal `json:"equity"`
}

// SumPL returns the summed pnl of the given entries, zero for none.
func SumPL(entries []model.TradeEntry) decimal.Decimal {
	total := decimal.Zero
	for i := range entries {
		total = total.Add(entries[i].PNL)
	}
	return total
}

// Day reduces one day's entries. Entries with pnl == 0 count toward the net
// but toward neither wins nor losses, so they are excluded from the win-rate
// denominator.
func Day(entries []model.TradeEntry) DayStats {
	var (
		netPL       = decimal.Zero
		grossProfit = decimal.Zero
		grossLoss   = decimal.Zero
		maxWin      = decimal.Zero
		maxLoss     = decimal.Zero
		wins        int
		losses      int
	)

	for i := range entries {
		pnl := entries[i].PNL
		netPL = netPL.Add(pnl)

		switch pnl.Sign() {
		case 1:
			wins++
			grossProfit = grossProfit.Add(pnl)
			if pnl.GreaterThan(maxWin) {
				maxWin = pnl
			}
		case -1:
			losses++
			grossLoss = grossLoss.Add(pnl.Abs())
			if pnl.LessThan(maxLoss) {
				maxLoss = pnl
			}
		}
	}

	return DayStats{
		NetPL:        netPL,
		WinRate:      winRate(wins, losses),
		ProfitFactor: profitFactor(grossProfit, grossLoss),
		MaxWin:       maxWin,
		MaxLoss:      maxLoss,
	}
}

// Month reduces a month's per-day P/L list. Days with zero P/L are not
// trading days and fall into neither the green nor the red bucket.
func Month(days []DayPL) MonthStats {
	var (
		netPL      = decimal.Zero
		greenTotal = decimal.Zero
		redTotal   = decimal.Zero
		out        MonthStats
	)

	for _, day := range days {
		netPL = netPL.Add(day.PL)

		switch day.PL.Sign() {
		case 1:
			out.TradingDays++
			out.GreenDays++
			greenTotal = greenTotal.Add(day.PL)
		case -1:
			out.TradingDays++
			out.RedDays++
			redTotal = redTotal.Add(day.PL)
		}
	}

	out.NetPL = netPL
	out.AvgGreenDay = safeAvg(greenTotal, out.GreenDays)
	out.AvgRedDay = safeAvg(redTotal, out.RedDays)
	return out
}

// Year reduces a month→P/L map. Missing months count as zero toward the YTD
// sum; best/worst stay zero unless some month beats them, so an all-red year
// reports a best month of zero rather than the least-bad loss.
func Year(monthPL map[time.Month]decimal.Decimal) YearStats {
	out := YearStats{
		YTDPL:      decimal.Zero,
		BestMonth:  decimal.Zero,
		WorstMonth: decimal.Zero,
	}

	for _, pl := range monthPL {
		out.YTDPL = out.YTDPL.Add(pl)
		switch pl.Sign() {
		case 1:
			out.GreenMonths++
		case -1:
			out.RedMonths++
		}
		if pl.GreaterThan(out.BestMonth) {
			out.BestMonth = pl
		}
		if pl.LessThan(out.WorstMonth) {
			out.WorstMonth = pl
		}
	}

	return out
}

// Streaks scans the full day-P/L history in date order. Zero-P/L days reset
// neither the best-win nor the worst-loss counter. The current streak is
// read from the most recent day backward and ends at the first zero-P/L day
// or sign change.
func Streaks(days []DayPL) StreakStats {
	var out StreakStats

	winRun := 0
	lossRun := 0
	for _, day := range days {
		switch day.PL.Sign() {
		case 1:
			winRun++
			lossRun = 0
			if winRun > out.BestWinStreak {
				out.BestWinStreak = winRun
			}
		case -1:
			lossRun++
			winRun = 0
			if lossRun > out.WorstLossStreak {
				out.WorstLossStreak = lossRun
			}
		}
	}

	for i := len(days) - 1; i >= 0; i-- {
		sign := days[i].PL.Sign()
		if sign == 0 {
			break
		}
		if out.CurrentStreakType == "" {
			if sign > 0 {
				out.CurrentStreakType = StreakWin
			} else {
				out.CurrentStreakType = StreakLoss
			}
			out.CurrentStreak = 1
			continue
		}
		if (out.CurrentStreakType == StreakWin) != (sign > 0) {
			break
		}
		out.CurrentStreak++
	}

	return out
}

// ByDayOfWeek averages day P/L per weekday, indexed Sunday through Saturday.
// Weekdays with no traded days report zero.
func ByDayOfWeek(days []DayPL) [7]decimal.Decimal {
	var totals [7]decimal.Decimal
	var counts [7]int
	var out [7]decimal.Decimal

	for i := range totals {
		totals[i] = decimal.Zero
		out[i] = decimal.Zero
	}

	for _, day := range days {
		if day.PL.IsZero() {
			continue
		}
		t, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		idx := int(t.Weekday())
		totals[idx] = totals[idx].Add(day.PL)
		counts[idx]++
	}

	for i := range out {
		out[i] = safeAvg(totals[i], counts[i])
	}
	return out
}

// BySetup groups entries by tag for the breakdown display. Untagged entries
// share one bucket. Output is sorted by tag so repeated calls agree.
func BySetup(entries []model.TradeEntry) []SetupStat {
	byTag := make(map[string]*SetupStat)

	for i := range entries {
		tag := "Untagged"
		if entries[i].Tag != nil && *entries[i].Tag != "" {
			tag = *entries[i].Tag
		}

		stat, ok := byTag[tag]
		if !ok {
			stat = &SetupStat{Tag: tag, PL: decimal.Zero}
			byTag[tag] = stat
		}

		stat.Trades++
		if entries[i].PNL.Sign() > 0 {
			stat.Wins++
		}
		stat.PL = stat.PL.Add(entries[i].PNL)
	}

	out := make([]SetupStat, 0, len(byTag))
	for _, stat := range byTag {
		out = append(out, *stat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Histogram buckets pnl values into binCount equal-width bins spanning
// [min, max]. Values equal to max land in the last bin, so the bin counts
// always sum to len(values). When every value is identical the bin width
// falls back to 1.
func Histogram(values []decimal.Decimal, binCount int) []HistogramBin {
	if len(values) == 0 {
		return nil
	}
	if binCount <= 0 {
		binCount = DefaultHistogramBins
	}

	min := values[0]
	max := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}

	width := max.Sub(min).Div(decimal.NewFromInt(int64(binCount)))
	if width.IsZero() {
		width = decimal.NewFromInt(1)
	}

	bins := make([]HistogramBin, binCount)
	for i := range bins {
		low := min.Add(width.Mul(decimal.NewFromInt(int64(i))))
		bins[i] = HistogramBin{Low: low, High: low.Add(width)}
	}

	for _, v := range values {
		idx := int(v.Sub(min).Div(width).IntPart())
		if idx >= binCount {
			idx = binCount - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}

	return bins
}

// EquityCurve returns the running cumulative P/L across an ordered day
// sequence.
func EquityCurve(days []DayPL) []EquityPoint {
	out := make([]EquityPoint, 0, len(days))
	cumulative := decimal.Zero
	for _, day := range days {
		cumulative = cumulative.Add(day.PL)
		out = append(out, EquityPoint{Date: day.Date, Equity: cumulative})
	}
	return out
}

func winRate(wins, losses int) int {
	decided := wins + losses
	if decided == 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(wins * 100)).
		Div(decimal.NewFromInt(int64(decided))).
		Round(0)
	return int(rate.IntPart())
}

func profitFactor(grossProfit, grossLoss decimal.Decimal) string {
	switch {
	case grossLoss.Sign() > 0:
		return grossProfit.Div(grossLoss).StringFixed(2)
	case grossProfit.Sign() > 0:
		return ProfitFactorInfinite
	default:
		return "0.00"
	}
}

func safeAvg(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}
