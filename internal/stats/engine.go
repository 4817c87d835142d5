// Package stats maintains per-day aggregates of viewpoints and derives
// streaks, range reports and the contribution calendar from them.
//
// Reports read only DailyStat rows. The one exception is Totals, which
// scans viewpoints directly on every call.
package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

// WeekStart is the first day of a reporting week and of a calendar column
const WeekStart = time.Sunday

// streakLookback bounds the backwards walk of the current streak
const streakLookback = 365

// Engine computes and stores daily aggregates. The store handle is passed
// to every call so the caller decides whether it is a plain connection or
// an open transaction.
type Engine struct {
	log   *zap.Logger
	loc   *time.Location
	now   func() time.Time
	locks dayLocks
}

// New creates an Engine bucketing days in loc. A nil clock means time.Now.
func New(log *zap.Logger, loc *time.Location, now func() time.Time) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{log: log, loc: loc, now: now}
}

// Location is the calendar the engine buckets days in
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now reads the engine's clock
func (e *Engine) Now() time.Time {
	return e.now()
}

// Today is the current local calendar day
func (e *Engine) Today() domain.Day {
	return domain.DayOf(e.now(), e.loc)
}

// DayOf normalizes t to its local calendar day
func (e *Engine) DayOf(t time.Time) domain.Day {
	return domain.DayOf(t, e.loc)
}

// RecomputeDay rebuilds the DailyStat for the local day containing t from
// the viewpoints created that day. It is idempotent and never retries.
func (e *Engine) RecomputeDay(ctx context.Context, st *store.Store, t time.Time) (domain.DailyStat, error) {
	day := e.DayOf(t)

	unlock := e.locks.lock(day)
	defer unlock()

	start := day.Start(e.loc)
	end := day.AddDays(1).Start(e.loc)

	viewpoints, err := st.ViewpointsCreatedBetween(ctx, start, end)
	if err != nil {
		return domain.DailyStat{}, domain.NewStoreReadError("load viewpoints for "+day.String(), err)
	}

	ds, err := e.findOrCreate(ctx, st, day)
	if err != nil {
		return domain.DailyStat{}, err
	}

	agg := aggregate(viewpoints)
	ds.ViewpointCount = agg.ViewpointCount
	ds.TotalWordCount = agg.TotalWordCount
	ds.TotalCharacterCount = agg.TotalCharacterCount
	ds.Categories = agg.Categories

	if err := st.UpsertDailyStat(ctx, ds); err != nil {
		return domain.DailyStat{}, domain.NewStoreWriteError("save daily stat "+day.String(), err)
	}

	e.log.Debug("recomputed day",
		zap.String("day", day.String()),
		zap.Int("viewpoints", ds.ViewpointCount),
		zap.Int("words", ds.TotalWordCount),
	)
	return ds, nil
}

// RecomputeDays recomputes each distinct local day among times once
func (e *Engine) RecomputeDays(ctx context.Context, st *store.Store, times []time.Time) error {
	seen := make(map[domain.Day]bool)
	for _, t := range times {
		day := e.DayOf(t)
		if seen[day] {
			continue
		}
		seen[day] = true
		if _, err := e.RecomputeDay(ctx, st, day.Start(e.loc)); err != nil {
			return err
		}
	}
	return nil
}

// RebuildAll recomputes every day that has viewpoints or an existing stat
// row, which also zeroes rows whose viewpoints are gone.
func (e *Engine) RebuildAll(ctx context.Context, st *store.Store) (int, error) {
	times, err := st.ViewpointTimestamps(ctx)
	if err != nil {
		return 0, domain.NewStoreReadError("load viewpoint timestamps", err)
	}
	existing, err := st.AllDailyStats(ctx)
	if err != nil {
		return 0, domain.NewStoreReadError("load daily stats", err)
	}
	for _, ds := range existing {
		times = append(times, ds.Day.Start(e.loc))
	}

	days := make(map[domain.Day]bool)
	for _, t := range times {
		days[e.DayOf(t)] = true
	}
	if err := e.RecomputeDays(ctx, st, times); err != nil {
		return 0, err
	}
	e.log.Info("rebuilt daily stats", zap.Int("days", len(days)))
	return len(days), nil
}

func (e *Engine) findOrCreate(ctx context.Context, st *store.Store, day domain.Day) (domain.DailyStat, error) {
	existing, err := st.GetDailyStat(ctx, day)
	if err == nil {
		return *existing, nil
	}
	if !isNotFound(err) {
		return domain.DailyStat{}, domain.NewStoreReadError("load daily stat "+day.String(), err)
	}
	return domain.DailyStat{
		ID:        uuid.New().String(),
		Day:       day,
		CreatedAt: e.now(),
	}, nil
}

// aggregate sums a day's viewpoints. Categories are distinct and sorted.
func aggregate(viewpoints []domain.Viewpoint) domain.DailyStat {
	var ds domain.DailyStat
	seen := make(map[string]bool)
	for _, v := range viewpoints {
		ds.ViewpointCount++
		ds.TotalWordCount += v.WordCount
		ds.TotalCharacterCount += v.CharacterCount
		if v.Category != "" && !seen[v.Category] {
			seen[v.Category] = true
			ds.Categories = append(ds.Categories, v.Category)
		}
	}
	sort.Strings(ds.Categories)
	return ds
}

// dayLocks serializes recomputes of the same calendar day so two
// concurrent writers cannot lose an update.
type dayLocks struct {
	mu    sync.Mutex
	locks map[domain.Day]*dayLock
}

type dayLock struct {
	mu   sync.Mutex
	refs int
}

func (l *dayLocks) lock(day domain.Day) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[domain.Day]*dayLock)
	}
	dl, ok := l.locks[day]
	if !ok {
		dl = &dayLock{}
		l.locks[day] = dl
	}
	dl.refs++
	l.mu.Unlock()

	dl.mu.Lock()
	return func() {
		dl.mu.Unlock()
		l.mu.Lock()
		dl.refs--
		if dl.refs == 0 {
			delete(l.locks, day)
		}
		l.mu.Unlock()
	}
}
