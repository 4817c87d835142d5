package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/writehub/internal/domain"
)

const viewpointColumns = "id, content, category, created_at, modified_at, word_count, character_count, tags, file_path"

// selectViewpoint reads the row key along with the stored columns
const selectViewpoint = "SELECT seq, " + viewpointColumns + " FROM viewpoints"

// ViewpointQuery filters ListViewpoints. Zero values disable a filter.
type ViewpointQuery struct {
	Category string
	Search   string
	From     time.Time // inclusive
	To       time.Time // exclusive
	Limit    int
	Offset   int
}

// Aggregate is a whole-table summary of viewpoints
type Aggregate struct {
	Viewpoints int
	Words      int
	Characters int
	Categories int
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanViewpoint(r rowScanner) (domain.Viewpoint, error) {
	var (
		v                 domain.Viewpoint
		created, modified int64
		tags              string
	)
	err := r.Scan(&v.Seq, &v.ID, &v.Content, &v.Category, &created, &modified,
		&v.WordCount, &v.CharacterCount, &tags, &v.FilePath)
	if err != nil {
		return v, err
	}
	v.CreatedAt = fromNanos(created)
	v.ModifiedAt = fromNanos(modified)
	v.Tags = domain.SplitList(tags)
	return v, nil
}

// InsertViewpoint stores v as given, including its id and timestamps, and
// sets v.Seq to the new row key
func (s *Store) InsertViewpoint(ctx context.Context, v *domain.Viewpoint) error {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO viewpoints (`+viewpointColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Content, v.Category, toNanos(v.CreatedAt), toNanos(v.ModifiedAt),
		v.WordCount, v.CharacterCount, domain.JoinList(v.Tags), v.FilePath,
	)
	if err != nil {
		return fmt.Errorf("insert viewpoint: %w", err)
	}
	if v.Seq, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("insert viewpoint: %w", err)
	}
	return nil
}

// UpdateViewpoint overwrites the mutable fields of the row v.Seq
func (s *Store) UpdateViewpoint(ctx context.Context, v domain.Viewpoint) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE viewpoints
		 SET content = ?, category = ?, modified_at = ?, word_count = ?, character_count = ?, tags = ?, file_path = ?
		 WHERE seq = ?`,
		v.Content, v.Category, toNanos(v.ModifiedAt), v.WordCount, v.CharacterCount,
		domain.JoinList(v.Tags), v.FilePath, v.Seq,
	)
	if err != nil {
		return fmt.Errorf("update viewpoint: %w", err)
	}
	return expectRows(res, "update viewpoint")
}

// SetViewpointFilePath records where a viewpoint was exported
func (s *Store) SetViewpointFilePath(ctx context.Context, seq int64, path string) error {
	res, err := s.q.ExecContext(ctx, "UPDATE viewpoints SET file_path = ? WHERE seq = ?", path, seq)
	if err != nil {
		return fmt.Errorf("set viewpoint file path: %w", err)
	}
	return expectRows(res, "set viewpoint file path")
}

// DeleteViewpoint removes one row; other rows sharing its id stay
func (s *Store) DeleteViewpoint(ctx context.Context, seq int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM viewpoints WHERE seq = ?", seq)
	if err != nil {
		return fmt.Errorf("delete viewpoint: %w", err)
	}
	return expectRows(res, "delete viewpoint")
}

// GetViewpoint retrieves a viewpoint by id
func (s *Store) GetViewpoint(ctx context.Context, id string) (*domain.Viewpoint, error) {
	row := s.q.QueryRowContext(ctx,
		selectViewpoint+" WHERE id = ? ORDER BY seq LIMIT 1", id)
	v, err := scanViewpoint(row)
	if err != nil {
		return nil, fmt.Errorf("get viewpoint: %w", noRows(err))
	}
	return &v, nil
}

// FindViewpointByPrefix resolves a short id prefix, like the ones the CLI prints
func (s *Store) FindViewpointByPrefix(ctx context.Context, prefix string) (*domain.Viewpoint, error) {
	row := s.q.QueryRowContext(ctx,
		selectViewpoint+" WHERE id LIKE ? ESCAPE '\\' ORDER BY seq LIMIT 1",
		escapeLike(prefix)+"%")
	v, err := scanViewpoint(row)
	if err != nil {
		return nil, fmt.Errorf("find viewpoint: %w", noRows(err))
	}
	return &v, nil
}

// ListViewpoints returns viewpoints newest first
func (s *Store) ListViewpoints(ctx context.Context, q ViewpointQuery) ([]domain.Viewpoint, error) {
	var (
		where []string
		args  []any
	)
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.Search != "" {
		where = append(where, "content LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}
	if !q.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, toNanos(q.From))
	}
	if !q.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, toNanos(q.To))
	}

	query := selectViewpoint
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, seq DESC"
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	return s.queryViewpoints(ctx, "list viewpoints", query, args...)
}

// ViewpointsCreatedBetween returns viewpoints with from <= created_at < to, oldest first
func (s *Store) ViewpointsCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Viewpoint, error) {
	return s.queryViewpoints(ctx, "viewpoints between",
		selectViewpoint+" WHERE created_at >= ? AND created_at < ? ORDER BY created_at, seq",
		toNanos(from), toNanos(to))
}

// ViewpointTimestamps returns the creation time of every viewpoint
func (s *Store) ViewpointTimestamps(ctx context.Context) ([]time.Time, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT created_at FROM viewpoints ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("viewpoint timestamps: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan timestamp: %w", err)
		}
		out = append(out, fromNanos(n))
	}
	return out, rows.Err()
}

// ViewpointIDsByCategory is the category membership index: ids of every
// viewpoint whose category field equals name.
func (s *Store) ViewpointIDsByCategory(ctx context.Context, name string) ([]string, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT id FROM viewpoints WHERE category = ? ORDER BY created_at DESC", name)
	if err != nil {
		return nil, fmt.Errorf("viewpoint ids by category: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountViewpointsByCategory maps every category name in use to its viewpoint count
func (s *Store) CountViewpointsByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT category, COUNT(*) FROM viewpoints GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("count viewpoints by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// CountViewpointsInCategory counts viewpoints whose category field equals name
func (s *Store) CountViewpointsInCategory(ctx context.Context, name string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM viewpoints WHERE category = ?", name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count viewpoints in category: %w", err)
	}
	return n, nil
}

// RenameViewpointCategory moves every viewpoint from one category name to another
func (s *Store) RenameViewpointCategory(ctx context.Context, from, to string) (int, error) {
	res, err := s.q.ExecContext(ctx, "UPDATE viewpoints SET category = ? WHERE category = ?", to, from)
	if err != nil {
		return 0, fmt.Errorf("rename viewpoint category: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// AggregateViewpoints scans the whole viewpoint table
func (s *Store) AggregateViewpoints(ctx context.Context) (Aggregate, error) {
	var a Aggregate
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(word_count), 0), COALESCE(SUM(character_count), 0), COUNT(DISTINCT category)
		 FROM viewpoints`,
	).Scan(&a.Viewpoints, &a.Words, &a.Characters, &a.Categories)
	if err != nil {
		return Aggregate{}, fmt.Errorf("aggregate viewpoints: %w", err)
	}
	return a, nil
}

func (s *Store) queryViewpoints(ctx context.Context, op, query string, args ...any) ([]domain.Viewpoint, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Viewpoint
	for rows.Next() {
		v, err := scanViewpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan viewpoint: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
