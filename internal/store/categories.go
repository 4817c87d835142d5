package store

import (
	"context"
	"fmt"

	"github.com/pbaille/writehub/internal/domain"
)

const categoryColumns = "id, name, color, directory_path, description, created_at"

func scanCategory(r rowScanner) (domain.Category, error) {
	var (
		c       domain.Category
		created int64
	)
	if err := r.Scan(&c.ID, &c.Name, &c.Color, &c.DirectoryPath, &c.Description, &created); err != nil {
		return c, err
	}
	c.CreatedAt = fromNanos(created)
	return c, nil
}

// InsertCategory stores c as given. Name uniqueness is the caller's job.
func (s *Store) InsertCategory(ctx context.Context, c domain.Category) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.DirectoryPath, c.Description, toNanos(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// UpdateCategory overwrites name, color, directory and description
func (s *Store) UpdateCategory(ctx context.Context, c domain.Category) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE categories SET name = ?, color = ?, directory_path = ?, description = ? WHERE id = ?",
		c.Name, c.Color, c.DirectoryPath, c.Description, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return expectRows(res, "update category")
}

// DeleteCategory removes the category with the given id
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectRows(res, "delete category")
}

// GetCategory retrieves a category by id
func (s *Store) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ? ORDER BY seq LIMIT 1", id)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", noRows(err))
	}
	return &c, nil
}

// GetCategoryByName finds a category by its display name
func (s *Store) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE name = ? ORDER BY seq LIMIT 1", name)
	c, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", noRows(err))
	}
	return &c, nil
}

// ListCategories returns all categories sorted by name
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY name, seq")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
