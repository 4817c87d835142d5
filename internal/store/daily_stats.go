package store

import (
	"context"
	"fmt"

	"github.com/pbaille/writehub/internal/domain"
)

const dailyStatColumns = "id, day, viewpoint_count, total_word_count, total_character_count, categories, created_at"

func scanDailyStat(r rowScanner) (domain.DailyStat, error) {
	var (
		ds        domain.DailyStat
		day, cats string
		created   int64
	)
	err := r.Scan(&ds.ID, &day, &ds.ViewpointCount, &ds.TotalWordCount,
		&ds.TotalCharacterCount, &cats, &created)
	if err != nil {
		return ds, err
	}
	if ds.Day, err = domain.ParseDay(day); err != nil {
		return ds, err
	}
	ds.Categories = domain.SplitList(cats)
	ds.CreatedAt = fromNanos(created)
	return ds, nil
}

// GetDailyStat returns the stat row for day, or ErrNotFound
func (s *Store) GetDailyStat(ctx context.Context, day domain.Day) (*domain.DailyStat, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+dailyStatColumns+" FROM daily_stats WHERE day = ?", day.String())
	ds, err := scanDailyStat(row)
	if err != nil {
		return nil, fmt.Errorf("get daily stat: %w", noRows(err))
	}
	return &ds, nil
}

// UpsertDailyStat writes ds, keyed by its day. An existing row keeps its id
// and creation time; the aggregate fields are overwritten.
func (s *Store) UpsertDailyStat(ctx context.Context, ds domain.DailyStat) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO daily_stats (`+dailyStatColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET
		   viewpoint_count = excluded.viewpoint_count,
		   total_word_count = excluded.total_word_count,
		   total_character_count = excluded.total_character_count,
		   categories = excluded.categories`,
		ds.ID, ds.Day.String(), ds.ViewpointCount, ds.TotalWordCount,
		ds.TotalCharacterCount, domain.JoinList(ds.Categories), toNanos(ds.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert daily stat %s: %w", ds.Day, err)
	}
	return nil
}

// DailyStatsBetween returns rows with from <= day < to, ascending
func (s *Store) DailyStatsBetween(ctx context.Context, from, to domain.Day) ([]domain.DailyStat, error) {
	return s.queryDailyStats(ctx,
		"SELECT "+dailyStatColumns+" FROM daily_stats WHERE day >= ? AND day < ? ORDER BY day",
		from.String(), to.String())
}

// AllDailyStats returns every row, ascending by day
func (s *Store) AllDailyStats(ctx context.Context) ([]domain.DailyStat, error) {
	return s.queryDailyStats(ctx, "SELECT "+dailyStatColumns+" FROM daily_stats ORDER BY day")
}

func (s *Store) queryDailyStats(ctx context.Context, query string, args ...any) ([]domain.DailyStat, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyStat
	for rows.Next() {
		ds, err := scanDailyStat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	return out, nil
}
