package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/writehub/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "writehub.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func ptr(v domain.Viewpoint) *domain.Viewpoint { return &v }

func newViewpoint(content, category string, at time.Time) domain.Viewpoint {
	v := domain.Viewpoint{
		ID:         uuid.New().String(),
		Category:   category,
		CreatedAt:  at,
		ModifiedAt: at,
	}
	v.SetContent(content)
	return v
}

func TestViewpointCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	at := time.Date(2025, time.May, 3, 9, 30, 0, 123456789, time.UTC)
	v := newViewpoint("first thoughts", "Ideas", at)
	v.Tags = []string{"morning", "coffee"}
	require.NoError(t, s.InsertViewpoint(ctx, &v))

	got, err := s.GetViewpoint(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "first thoughts", got.Content)
	assert.Equal(t, "Ideas", got.Category)
	assert.True(t, got.CreatedAt.Equal(at), "created_at must round-trip exactly")
	assert.Equal(t, 2, got.WordCount)
	assert.Equal(t, []string{"morning", "coffee"}, got.Tags)

	got.SetContent("revised thoughts here")
	got.ModifiedAt = at.Add(time.Hour)
	require.NoError(t, s.UpdateViewpoint(ctx, *got))

	again, err := s.GetViewpoint(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.WordCount)
	assert.True(t, again.CreatedAt.Equal(at))

	byPrefix, err := s.FindViewpointByPrefix(ctx, v.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, v.ID, byPrefix.ID)

	require.NoError(t, s.DeleteViewpoint(ctx, got.Seq))
	_, err = s.GetViewpoint(ctx, v.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.DeleteViewpoint(ctx, got.Seq)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListViewpointsFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertViewpoint(ctx, ptr(newViewpoint("work notes", "Work", base))))
	require.NoError(t, s.InsertViewpoint(ctx, ptr(newViewpoint("Weekend HIKE plan", "Personal", base.Add(time.Hour)))))
	require.NoError(t, s.InsertViewpoint(ctx, ptr(newViewpoint("100% effort", "Work", base.Add(2*time.Hour)))))

	all, err := s.ListViewpoints(ctx, ViewpointQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "100% effort", all[0].Content, "newest first")

	work, err := s.ListViewpoints(ctx, ViewpointQuery{Category: "Work"})
	require.NoError(t, err)
	assert.Len(t, work, 2)

	hike, err := s.ListViewpoints(ctx, ViewpointQuery{Search: "hike"})
	require.NoError(t, err)
	require.Len(t, hike, 1)
	assert.Equal(t, "Personal", hike[0].Category)

	pct, err := s.ListViewpoints(ctx, ViewpointQuery{Search: "%"})
	require.NoError(t, err)
	assert.Len(t, pct, 1, "LIKE wildcards are matched literally")

	page, err := s.ListViewpoints(ctx, ViewpointQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Weekend HIKE plan", page[0].Content)

	between, err := s.ViewpointsCreatedBetween(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, between, 2)
	assert.Equal(t, "work notes", between[0].Content, "oldest first")
}

func TestCategoryIndexAndCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	at := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	a := newViewpoint("a", "Work", at)
	b := newViewpoint("b", "Work", at.Add(time.Minute))
	c := newViewpoint("c", "Ghost", at)
	for _, v := range []domain.Viewpoint{a, b, c} {
		require.NoError(t, s.InsertViewpoint(ctx, &v))
	}

	ids, err := s.ViewpointIDsByCategory(ctx, "Work")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)

	counts, err := s.CountViewpointsByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Work": 2, "Ghost": 1}, counts)

	n, err := s.RenameViewpointCategory(ctx, "Work", "Job")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	inJob, err := s.CountViewpointsInCategory(ctx, "Job")
	require.NoError(t, err)
	assert.Equal(t, 2, inJob)

	agg, err := s.AggregateViewpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, Aggregate{Viewpoints: 3, Words: 3, Characters: 3, Categories: 2}, agg)
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := domain.Category{
		ID:        uuid.New().String(),
		Name:      "Ideas",
		Color:     "#FF9500",
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.InsertCategory(ctx, c))
	require.NoError(t, s.InsertCategory(ctx, domain.Category{
		ID: uuid.New().String(), Name: "Abc", Color: "#000000", CreatedAt: time.Now(),
	}))

	byName, err := s.GetCategoryByName(ctx, "Ideas")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byName.ID)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Abc", list[0].Name)

	c.Description = "loose ends"
	c.Color = "#34C759"
	require.NoError(t, s.UpdateCategory(ctx, c))
	got, err := s.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "loose ends", got.Description)
	assert.Equal(t, "#34C759", got.Color)

	require.NoError(t, s.DeleteCategory(ctx, c.ID))
	_, err = s.GetCategoryByName(ctx, "Ideas")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertDailyStatKeepsOneRowPerDay(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	day := domain.NewDay(2025, time.January, 5)
	first := domain.DailyStat{
		ID:             uuid.New().String(),
		Day:            day,
		ViewpointCount: 1,
		Categories:     []string{"Work"},
		CreatedAt:      time.Now(),
	}
	require.NoError(t, s.UpsertDailyStat(ctx, first))

	second := first
	second.ID = uuid.New().String()
	second.ViewpointCount = 4
	second.Categories = []string{"Ideas", "Work"}
	require.NoError(t, s.UpsertDailyStat(ctx, second))

	got, err := s.GetDailyStat(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID, "existing row keeps its id")
	assert.Equal(t, 4, got.ViewpointCount)
	assert.Equal(t, []string{"Ideas", "Work"}, got.Categories)

	all, err := s.AllDailyStats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.GetDailyStat(ctx, day.AddDays(1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDailyStatsBetweenIsHalfOpenAndSorted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, d := range []domain.Day{
		domain.NewDay(2025, time.February, 1),
		domain.NewDay(2025, time.January, 20),
		domain.NewDay(2025, time.January, 5),
	} {
		require.NoError(t, s.UpsertDailyStat(ctx, domain.DailyStat{
			ID: uuid.New().String(), Day: d, ViewpointCount: 1, CreatedAt: time.Now(),
		}))
	}

	jan, err := s.DailyStatsBetween(ctx, domain.NewDay(2025, time.January, 1), domain.NewDay(2025, time.February, 1))
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "2025-01-05", jan[0].Day.String())
	assert.Equal(t, "2025-01-20", jan[1].Day.String())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *Store) error {
		require.NoError(t, tx.InsertViewpoint(ctx, ptr(newViewpoint("lost", "Work", time.Now()))))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := s.ListViewpoints(ctx, ViewpointQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)

	err = s.WithTx(ctx, func(tx *Store) error {
		return tx.InsertViewpoint(ctx, ptr(newViewpoint("kept", "Work", time.Now())))
	})
	require.NoError(t, err)

	all, err = s.ListViewpoints(ctx, ViewpointQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDuplicateIDsAreAllowed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v := newViewpoint("twice", "Work", time.Now())
	require.NoError(t, s.InsertViewpoint(ctx, &v))
	require.NoError(t, s.InsertViewpoint(ctx, &v))

	all, err := s.ListViewpoints(ctx, ViewpointQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].Seq, all[1].Seq)
}

func TestMutationsTouchOneRowOfDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	v := newViewpoint("twice", "Work", time.Now())
	require.NoError(t, s.InsertViewpoint(ctx, &v))
	require.NoError(t, s.InsertViewpoint(ctx, &v))

	first, err := s.GetViewpoint(ctx, v.ID)
	require.NoError(t, err)

	first.SetContent("edited once")
	require.NoError(t, s.UpdateViewpoint(ctx, *first))
	require.NoError(t, s.SetViewpointFilePath(ctx, first.Seq, "/tmp/once.txt"))

	all, err := s.ListViewpoints(ctx, ViewpointQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	contents := map[string]string{}
	for _, got := range all {
		contents[got.Content] = got.FilePath
	}
	assert.Equal(t, map[string]string{"edited once": "/tmp/once.txt", "twice": ""}, contents)

	require.NoError(t, s.DeleteViewpoint(ctx, first.Seq))
	all, err = s.ListViewpoints(ctx, ViewpointQuery{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "twice", all[0].Content)
}
