package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

var testLoc = time.FixedZone("UTC-5", -5*60*60)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "writehub.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func newTestEngine(now time.Time) *Engine {
	return New(zap.NewNop(), testLoc, func() time.Time { return now })
}

func addViewpoint(t *testing.T, st *store.Store, content, category string, at time.Time) domain.Viewpoint {
	t.Helper()
	v := domain.Viewpoint{
		ID:         uuid.New().String(),
		Category:   category,
		CreatedAt:  at,
		ModifiedAt: at,
	}
	v.SetContent(content)
	require.NoError(t, st.InsertViewpoint(context.Background(), &v))
	return v
}

func putStat(t *testing.T, st *store.Store, day domain.Day, count int) {
	t.Helper()
	require.NoError(t, st.UpsertDailyStat(context.Background(), domain.DailyStat{
		ID:             uuid.New().String(),
		Day:            day,
		ViewpointCount: count,
		CreatedAt:      time.Now(),
	}))
}

func TestRecomputeDayMatchesViewpoints(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	e := newTestEngine(time.Now())

	// 2025-03-10 in UTC-5 spans 05:00 UTC on the 10th to 05:00 UTC on the 11th.
	addViewpoint(t, st, "morning pages done", "Work", time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC))
	addViewpoint(t, st, "late idea", "Ideas", time.Date(2025, 3, 11, 4, 59, 0, 0, time.UTC))
	addViewpoint(t, st, "more work", "Work", time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
	addViewpoint(t, st, "previous day", "Personal", time.Date(2025, 3, 10, 4, 59, 0, 0, time.UTC))

	ds, err := e.RecomputeDay(ctx, st, time.Date(2025, 3, 10, 12, 0, 0, 0, testLoc))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", ds.Day.String())
	assert.Equal(t, 3, ds.ViewpointCount)
	assert.Equal(t, 3+2+2, ds.TotalWordCount)
	assert.Equal(t, len("morning pages done")+len("late idea")+len("more work"), ds.TotalCharacterCount)
	assert.Equal(t, []string{"Ideas", "Work"}, ds.Categories)

	again, err := e.RecomputeDay(ctx, st, time.Date(2025, 3, 10, 23, 0, 0, 0, testLoc))
	require.NoError(t, err)
	assert.Equal(t, ds.ID, again.ID, "recompute reuses the day's row")
	assert.Equal(t, ds.ViewpointCount, again.ViewpointCount)

	all, err := st.AllDailyStats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecomputeDayAfterDeleteKeepsZeroRow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	e := newTestEngine(time.Now())

	at := time.Date(2025, 4, 2, 12, 0, 0, 0, testLoc)
	v := addViewpoint(t, st, "short lived", "Work", at)
	_, err := e.RecomputeDay(ctx, st, at)
	require.NoError(t, err)

	stored, err := st.GetViewpoint(ctx, v.ID)
	require.NoError(t, err)
	require.NoError(t, st.DeleteViewpoint(ctx, stored.Seq))
	ds, err := e.RecomputeDay(ctx, st, at)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.ViewpointCount)
	assert.Empty(t, ds.Categories)

	zero, err := st.GetDailyStat(ctx, e.DayOf(at))
	require.NoError(t, err)
	assert.Equal(t, 0, zero.ViewpointCount)
}

func TestRebuildAll(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	e := newTestEngine(time.Now())

	addViewpoint(t, st, "a", "Work", time.Date(2025, 1, 5, 12, 0, 0, 0, testLoc))
	addViewpoint(t, st, "b", "Work", time.Date(2025, 1, 5, 13, 0, 0, 0, testLoc))
	addViewpoint(t, st, "c", "Work", time.Date(2025, 1, 7, 12, 0, 0, 0, testLoc))
	putStat(t, st, domain.NewDay(2025, time.January, 9), 5) // stale, nothing backs it

	n, err := e.RebuildAll(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := st.AllDailyStats(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].ViewpointCount)
	assert.Equal(t, 1, rows[1].ViewpointCount)
	assert.Equal(t, 0, rows[2].ViewpointCount)
}

func TestStreakScenario(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	e := newTestEngine(time.Date(2025, 3, 5, 10, 0, 0, 0, testLoc))

	putStat(t, st, domain.NewDay(2025, time.March, 1), 2)
	putStat(t, st, domain.NewDay(2025, time.March, 2), 1)
	putStat(t, st, domain.NewDay(2025, time.March, 3), 4)
	putStat(t, st, domain.NewDay(2025, time.March, 4), 0)
	putStat(t, st, domain.NewDay(2025, time.March, 5), 1)

	s, err := e.Streaks(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, Streaks{Current: 1, Longest: 3}, s)
}

func TestComputeStreaks(t *testing.T) {
	day := func(d int) domain.Day { return domain.NewDay(2025, time.March, d) }
	row := func(d, n int) domain.DailyStat { return domain.DailyStat{Day: day(d), ViewpointCount: n} }

	tests := []struct {
		name  string
		rows  []domain.DailyStat
		today domain.Day
		want  Streaks
	}{
		{"empty", nil, day(5), Streaks{}},
		{"today inactive", []domain.DailyStat{row(3, 1), row(4, 1)}, day(5), Streaks{Current: 0, Longest: 2}},
		{"run ending today", []domain.DailyStat{row(3, 1), row(4, 1), row(5, 2)}, day(5), Streaks{Current: 3, Longest: 3}},
		{"calendar gap breaks run", []domain.DailyStat{row(1, 1), row(2, 1), row(4, 1), row(5, 1)}, day(5), Streaks{Current: 2, Longest: 2}},
		{"unsorted input", []domain.DailyStat{row(5, 1), row(3, 1), row(4, 1)}, day(5), Streaks{Current: 3, Longest: 3}},
		{"month boundary", []domain.DailyStat{
			{Day: domain.NewDay(2025, time.February, 28), ViewpointCount: 1},
			row(1, 1),
		}, day(1), Streaks{Current: 2, Longest: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, computeStreaks(tt.rows, tt.today))
		})
	}
}

func TestStreaksReadError(t *testing.T) {
	st := newTestStore(t)
	e := newTestEngine(time.Now())
	require.NoError(t, st.Close())

	s, err := e.Streaks(context.Background(), st)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeStoreRead))
	assert.Equal(t, Streaks{}, s)
}

func TestMonthRange(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	e := newTestEngine(time.Now())

	putStat(t, st, domain.NewDay(2025, time.February, 1), 1)
	putStat(t, st, domain.NewDay(2025, time.January, 20), 3)
	putStat(t, st, domain.NewDay(2025, time.January, 5), 2)

	jan, err := e.Month(ctx, st, time.Date(2025, 1, 15, 8, 0, 0, 0, testLoc))
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "2025-01-05", jan[0].Day.String())
	assert.Equal(t, "2025-01-20", jan[1].Day.String())

	sum := RangeSummary(jan)
	assert.Equal(t, 5, sum.Viewpoints)
	assert.Equal(t, 2, sum.ActiveDays)
	assert.InDelta(t, 2.5, sum.AveragePerDay, 1e-9)

	year, err := e.Year(ctx, st, 2025)
	require.NoError(t, err)
	assert.Len(t, year, 3)
}

func TestBounds(t *testing.T) {
	e := newTestEngine(time.Now())
	wed := time.Date(2025, 1, 8, 15, 0, 0, 0, testLoc)

	from, to := e.Bounds(PeriodWeek, wed)
	assert.Equal(t, "2025-01-05", from.String(), "weeks start on Sunday")
	assert.Equal(t, "2025-01-12", to.String())

	sun := time.Date(2025, 1, 5, 0, 30, 0, 0, testLoc)
	from, _ = e.Bounds(PeriodWeek, sun)
	assert.Equal(t, "2025-01-05", from.String())

	from, to = e.Bounds(PeriodMonth, time.Date(2024, 12, 31, 23, 0, 0, 0, testLoc))
	assert.Equal(t, "2024-12-01", from.String())
	assert.Equal(t, "2025-01-01", to.String())

	from, to = e.Bounds(PeriodDay, wed)
	assert.Equal(t, "2025-01-08", from.String())
	assert.Equal(t, "2025-01-09", to.String())
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("week")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("fortnight")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestContributionGrid(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	e := newTestEngine(time.Now())

	putStat(t, st, domain.NewDay(2025, time.January, 1), 1)
	putStat(t, st, domain.NewDay(2025, time.December, 31), 9)

	g, err := e.ContributionGrid(ctx, st, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2025, g.Year)
	require.Len(t, g.Weeks, 53)

	// 2025-01-01 is a Wednesday.
	first := g.Weeks[0]
	require.Len(t, first, 7)
	assert.Nil(t, first[0])
	assert.Nil(t, first[2])
	require.NotNil(t, first[3])
	assert.Equal(t, "2025-01-01", first[3].Day.String())
	assert.Equal(t, 1, first[3].Intensity)
	assert.Equal(t, 0, first[4].Count)

	last := g.Weeks[52]
	require.NotNil(t, last[3])
	assert.Equal(t, "2025-12-31", last[3].Day.String())
	assert.Equal(t, 9, last[3].Count)
	assert.Equal(t, 4, last[3].Intensity)
	assert.Nil(t, last[4])

	cells := 0
	for _, w := range g.Weeks {
		for _, c := range w {
			if c != nil {
				cells++
			}
		}
	}
	assert.Equal(t, 365, cells)
}

func TestTotalsAndCategoryBreakdown(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	e := newTestEngine(time.Now())

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, testLoc)
	addViewpoint(t, st, "one two", "Work", at)
	addViewpoint(t, st, "three", "Work", at)
	addViewpoint(t, st, "four five six", "Ghost", at)
	require.NoError(t, st.InsertCategory(ctx, domain.Category{ID: uuid.New().String(), Name: "Work", Color: "#34C759", CreatedAt: at}))
	require.NoError(t, st.InsertCategory(ctx, domain.Category{ID: uuid.New().String(), Name: "Ideas", Color: "#FF9500", CreatedAt: at}))

	totals, err := e.Totals(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, Totals{Viewpoints: 3, Words: 6, Characters: 7 + 5 + 13, Categories: 2}, totals)

	breakdown, err := e.CategoryBreakdown(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Name: "Work", Color: "#34C759", Count: 2, Known: true},
		{Name: "Ghost", Count: 1},
		{Name: "Ideas", Color: "#FF9500", Count: 0, Known: true},
	}, breakdown)
}

func TestDayLocksReleaseEntries(t *testing.T) {
	var l dayLocks
	d := domain.NewDay(2025, time.May, 1)

	unlock := l.lock(d)
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.lock(d)()
	}()
	unlock()
	<-done

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.locks)
}
