package stats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

// Period selects a range query
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod validates a user-supplied period name
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("unknown period %q (want day, week, month or year)", s))
}

// Streaks holds the current and longest runs of active days
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Totals summarizes every stored viewpoint
type Totals struct {
	Viewpoints int `json:"viewpoints"`
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Categories int `json:"categories"`
}

// Summary describes a list of DailyStat rows, typically one range query
type Summary struct {
	Viewpoints    int     `json:"viewpoints"`
	Words         int     `json:"words"`
	Characters    int     `json:"characters"`
	AveragePerDay float64 `json:"average_per_day"`
	ActiveDays    int     `json:"active_days"`
}

// Bounds returns the half-open [from, to) day range of period around t
func (e *Engine) Bounds(period Period, t time.Time) (from, to domain.Day) {
	day := e.DayOf(t)
	switch period {
	case PeriodWeek:
		offset := (int(day.Weekday()) - int(WeekStart) + 7) % 7
		from = day.AddDays(-offset)
		return from, from.AddDays(7)
	case PeriodMonth:
		from = domain.NewDay(day.Year, day.Month, 1)
		return from, domain.NewDay(day.Year, day.Month+1, 1)
	case PeriodYear:
		from = domain.NewDay(day.Year, time.January, 1)
		return from, domain.NewDay(day.Year+1, time.January, 1)
	default:
		return day, day.AddDays(1)
	}
}

// Range returns the stored DailyStat rows of period around t, ascending.
// Days without a row had no activity.
func (e *Engine) Range(ctx context.Context, st *store.Store, period Period, t time.Time) ([]domain.DailyStat, error) {
	from, to := e.Bounds(period, t)
	rows, err := st.DailyStatsBetween(ctx, from, to)
	if err != nil {
		return nil, domain.NewStoreReadError(fmt.Sprintf("load %s stats", period), err)
	}
	return rows, nil
}

// Day returns the row for t's day, if any
func (e *Engine) Day(ctx context.Context, st *store.Store, t time.Time) ([]domain.DailyStat, error) {
	return e.Range(ctx, st, PeriodDay, t)
}

// Week returns the rows of the Sunday-started week containing t
func (e *Engine) Week(ctx context.Context, st *store.Store, t time.Time) ([]domain.DailyStat, error) {
	return e.Range(ctx, st, PeriodWeek, t)
}

// Month returns the rows of the month containing t
func (e *Engine) Month(ctx context.Context, st *store.Store, t time.Time) ([]domain.DailyStat, error) {
	return e.Range(ctx, st, PeriodMonth, t)
}

// Year returns the rows of a calendar year
func (e *Engine) Year(ctx context.Context, st *store.Store, year int) ([]domain.DailyStat, error) {
	return e.Range(ctx, st, PeriodYear, domain.NewDay(year, time.June, 1).Start(e.loc))
}

// Streaks scans all DailyStat rows. On a read failure it returns zero
// streaks together with the error.
func (e *Engine) Streaks(ctx context.Context, st *store.Store) (Streaks, error) {
	rows, err := st.AllDailyStats(ctx)
	if err != nil {
		return Streaks{}, domain.NewStoreReadError("load daily stats", err)
	}
	return computeStreaks(rows, e.Today()), nil
}

// computeStreaks finds the longest run of calendar-adjacent active days and
// the run ending today. If today has no activity the current streak is 0.
func computeStreaks(rows []domain.DailyStat, today domain.Day) Streaks {
	sorted := make([]domain.DailyStat, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day.Before(sorted[j].Day) })

	var (
		s      Streaks
		run    int
		prev   domain.Day
		active = make(map[domain.Day]bool, len(sorted))
	)
	for _, row := range sorted {
		if row.ViewpointCount <= 0 {
			run = 0
			continue
		}
		active[row.Day] = true
		if run > 0 && prev.AddDays(1) == row.Day {
			run++
		} else {
			run = 1
		}
		prev = row.Day
		if run > s.Longest {
			s.Longest = run
		}
	}

	for i := 0; i < streakLookback; i++ {
		if !active[today.AddDays(-i)] {
			break
		}
		s.Current++
	}
	return s
}

// Totals recomputes whole-journal totals from the viewpoint table
func (e *Engine) Totals(ctx context.Context, st *store.Store) (Totals, error) {
	agg, err := st.AggregateViewpoints(ctx)
	if err != nil {
		return Totals{}, domain.NewStoreReadError("aggregate viewpoints", err)
	}
	return Totals(agg), nil
}

// RangeSummary totals a set of rows. The average is over the rows given, so
// days without a stored row do not count.
func RangeSummary(rows []domain.DailyStat) Summary {
	var s Summary
	for _, r := range rows {
		s.Viewpoints += r.ViewpointCount
		s.Words += r.TotalWordCount
		s.Characters += r.TotalCharacterCount
		if r.ViewpointCount > 0 {
			s.ActiveDays++
		}
	}
	if len(rows) > 0 {
		s.AveragePerDay = float64(s.Viewpoints) / float64(len(rows))
	}
	return s
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
