package stats

import (
	"context"
	"sort"
	"time"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

// Cell is one day of the contribution calendar
type Cell struct {
	Day       domain.Day `json:"day"`
	Count     int        `json:"count"`
	Intensity int        `json:"intensity"`
}

// Grid is a year laid out in week columns. Each week holds 7 entries
// starting on WeekStart; entries outside the year are nil.
type Grid struct {
	Year  int       `json:"year"`
	Weeks [][]*Cell `json:"weeks"`
}

// ContributionGrid builds the calendar heatmap for year
func (e *Engine) ContributionGrid(ctx context.Context, st *store.Store, year int) (Grid, error) {
	rows, err := e.Year(ctx, st, year)
	if err != nil {
		return Grid{}, err
	}
	return buildGrid(year, rows), nil
}

func buildGrid(year int, rows []domain.DailyStat) Grid {
	counts := make(map[domain.Day]int, len(rows))
	for _, r := range rows {
		counts[r.Day] = r.ViewpointCount
	}

	first := domain.NewDay(year, time.January, 1)
	end := domain.NewDay(year+1, time.January, 1)
	d := first.AddDays(-((int(first.Weekday()) - int(WeekStart) + 7) % 7))

	g := Grid{Year: year}
	for d.Before(end) {
		week := make([]*Cell, 7)
		for i := range week {
			if d.Year == year {
				n := counts[d]
				week[i] = &Cell{Day: d, Count: n, Intensity: domain.Intensity(n)}
			}
			d = d.AddDays(1)
		}
		g.Weeks = append(g.Weeks, week)
	}
	return g
}

// CategoryCount is one line of the category breakdown
type CategoryCount struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Count int    `json:"count"`
	// Known is false for names used by viewpoints without a Category record
	Known bool `json:"known"`
}

// CategoryBreakdown counts viewpoints per category, busiest first. Defined
// categories appear even when empty.
func (e *Engine) CategoryBreakdown(ctx context.Context, st *store.Store) ([]CategoryCount, error) {
	categories, err := st.ListCategories(ctx)
	if err != nil {
		return nil, domain.NewStoreReadError("list categories", err)
	}
	counts, err := st.CountViewpointsByCategory(ctx)
	if err != nil {
		return nil, domain.NewStoreReadError("count viewpoints by category", err)
	}

	seen := make(map[string]bool, len(categories))
	out := make([]CategoryCount, 0, len(categories)+len(counts))
	for _, c := range categories {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, CategoryCount{Name: c.Name, Color: c.Color, Count: counts[c.Name], Known: true})
	}
	for name, n := range counts {
		if !seen[name] {
			out = append(out, CategoryCount{Name: name, Count: n})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
