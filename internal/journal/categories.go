package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

// DefaultCategory is one of the categories seeded into an empty journal
type DefaultCategory struct {
	Name  string
	Color string
}

// DefaultCategories are seeded by EnsureDefaultCategories
var DefaultCategories = []DefaultCategory{
	{"General", "#007AFF"},
	{"Work", "#34C759"},
	{"Personal", "#FF9500"},
	{"Ideas", "#FF3B30"},
	{"Reflections", "#AF52DE"},
	{"Goals", "#5856D6"},
	{"Learning", "#00C7BE"},
	{"Creative", "#FF2D92"},
}

// NewCategory is the input to CreateCategory
type NewCategory struct {
	Name          string `json:"name"`
	Color         string `json:"color,omitempty"`
	DirectoryPath string `json:"directory_path,omitempty"`
	Description   string `json:"description,omitempty"`
}

// CategoryUpdate changes the non-nil fields of a category
type CategoryUpdate struct {
	Name          *string `json:"name,omitempty"`
	Color         *string `json:"color,omitempty"`
	DirectoryPath *string `json:"directory_path,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// CreateCategory validates and saves a category. Names are unique by a
// lookup before insert.
func (j *Journal) CreateCategory(ctx context.Context, in NewCategory) (*domain.Category, error) {
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	color, err := validColor(in.Color)
	if err != nil {
		return nil, err
	}

	c := domain.Category{
		ID:            uuid.New().String(),
		Name:          name,
		Color:         color,
		DirectoryPath: strings.TrimSpace(in.DirectoryPath),
		Description:   strings.TrimSpace(in.Description),
		CreatedAt:     j.now(),
	}

	err = j.store.WithTx(ctx, func(tx *store.Store) error {
		if err := ensureNameFree(ctx, tx, name, ""); err != nil {
			return err
		}
		if err := tx.InsertCategory(ctx, c); err != nil {
			return domain.NewStoreWriteError("save category", err)
		}
		return nil
	})
	if err != nil {
		return nil, txError("create category", err)
	}

	j.log.Info("category created", zap.String("name", c.Name), zap.String("color", c.Color))
	return &c, nil
}

// GetOrCreateCategory returns the category called name, creating it with
// the default color if needed
func (j *Journal) GetOrCreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	c, err := j.store.GetCategoryByName(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, domain.NewStoreReadError("find category "+name, err)
	}
	return j.CreateCategory(ctx, NewCategory{Name: name})
}

// EnsureDefaultCategories creates any missing default category and returns
// how many were added
func (j *Journal) EnsureDefaultCategories(ctx context.Context) (int, error) {
	added := 0
	err := j.store.WithTx(ctx, func(tx *store.Store) error {
		for _, d := range DefaultCategories {
			_, err := tx.GetCategoryByName(ctx, d.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return domain.NewStoreReadError("find category "+d.Name, err)
			}
			err = tx.InsertCategory(ctx, domain.Category{
				ID:        uuid.New().String(),
				Name:      d.Name,
				Color:     d.Color,
				CreatedAt: j.now(),
			})
			if err != nil {
				return domain.NewStoreWriteError("seed category "+d.Name, err)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, txError("seed categories", err)
	}
	if added > 0 {
		j.log.Info("seeded default categories", zap.Int("added", added))
	}
	return added, nil
}

// UpdateCategory applies upd to the category with id or name. A rename
// moves every viewpoint of the old name and recomputes their days.
func (j *Journal) UpdateCategory(ctx context.Context, idOrName string, upd CategoryUpdate) (*domain.Category, error) {
	var newName, newColor string
	var err error
	if upd.Name != nil {
		if newName, err = validName(*upd.Name); err != nil {
			return nil, err
		}
	}
	if upd.Color != nil {
		if newColor, err = validColor(*upd.Color); err != nil {
			return nil, err
		}
	}

	var (
		updated domain.Category
		moved   int
	)
	err = j.store.WithTx(ctx, func(tx *store.Store) error {
		c, err := resolveCategory(ctx, tx, idOrName)
		if err != nil {
			return err
		}
		oldName := c.Name

		if upd.Color != nil {
			c.Color = newColor
		}
		if upd.DirectoryPath != nil {
			c.DirectoryPath = strings.TrimSpace(*upd.DirectoryPath)
		}
		if upd.Description != nil {
			c.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.Name != nil && newName != oldName {
			if err := ensureNameFree(ctx, tx, newName, c.ID); err != nil {
				return err
			}
			c.Name = newName
		}

		if err := tx.UpdateCategory(ctx, *c); err != nil {
			return domain.NewStoreWriteError("update category", err)
		}

		if c.Name != oldName {
			affected, err := tx.ListViewpoints(ctx, store.ViewpointQuery{Category: oldName})
			if err != nil {
				return domain.NewStoreReadError("list viewpoints in "+oldName, err)
			}
			if moved, err = tx.RenameViewpointCategory(ctx, oldName, c.Name); err != nil {
				return domain.NewStoreWriteError("move viewpoints to "+c.Name, err)
			}
			times := make([]time.Time, len(affected))
			for i, v := range affected {
				times[i] = v.CreatedAt
			}
			if err := j.stats.RecomputeDays(ctx, tx, times); err != nil {
				return err
			}
		}

		count, err := tx.CountViewpointsInCategory(ctx, c.Name)
		if err != nil {
			return domain.NewStoreReadError("count viewpoints in "+c.Name, err)
		}
		c.ViewpointCount = count
		updated = *c
		return nil
	})
	if err != nil {
		return nil, txError("update category", err)
	}

	j.log.Info("category updated", zap.String("name", updated.Name), zap.Int("moved", moved))
	return &updated, nil
}

// DeleteCategory removes a category that no viewpoint uses
func (j *Journal) DeleteCategory(ctx context.Context, idOrName string) (*domain.Category, error) {
	var deleted domain.Category
	err := j.store.WithTx(ctx, func(tx *store.Store) error {
		c, err := resolveCategory(ctx, tx, idOrName)
		if err != nil {
			return err
		}
		n, err := tx.CountViewpointsInCategory(ctx, c.Name)
		if err != nil {
			return domain.NewStoreReadError("count viewpoints in "+c.Name, err)
		}
		if n > 0 {
			return domain.NewError(domain.CodeInUse,
				fmt.Sprintf("category %q still has %d viewpoint(s)", c.Name, n), nil)
		}
		if err := tx.DeleteCategory(ctx, c.ID); err != nil {
			return domain.NewStoreWriteError("delete category", err)
		}
		deleted = *c
		return nil
	})
	if err != nil {
		return nil, txError("delete category", err)
	}

	j.log.Info("category deleted", zap.String("name", deleted.Name))
	return &deleted, nil
}

// GetCategory returns a category by id or name with its viewpoint count
func (j *Journal) GetCategory(ctx context.Context, idOrName string) (*domain.Category, error) {
	c, err := resolveCategory(ctx, j.store, idOrName)
	if err != nil {
		return nil, err
	}
	if c.ViewpointCount, err = j.store.CountViewpointsInCategory(ctx, c.Name); err != nil {
		return nil, domain.NewStoreReadError("count viewpoints in "+c.Name, err)
	}
	return c, nil
}

// CategoryViewpointIDs returns the ids of the viewpoints in a category,
// newest first
func (j *Journal) CategoryViewpointIDs(ctx context.Context, name string) ([]string, error) {
	ids, err := j.store.ViewpointIDsByCategory(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, domain.NewStoreReadError("viewpoints in "+name, err)
	}
	return ids, nil
}

// ListCategories returns all categories by name, with viewpoint counts
func (j *Journal) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := j.store.ListCategories(ctx)
	if err != nil {
		return nil, domain.NewStoreReadError("list categories", err)
	}
	counts, err := j.store.CountViewpointsByCategory(ctx)
	if err != nil {
		return nil, domain.NewStoreReadError("count viewpoints by category", err)
	}
	for i := range categories {
		categories[i].ViewpointCount = counts[categories[i].Name]
	}
	return categories, nil
}

func resolveCategory(ctx context.Context, st *store.Store, idOrName string) (*domain.Category, error) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return nil, domain.NewValidationError("category id or name is required")
	}
	c, err := st.GetCategory(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		c, err = st.GetCategoryByName(ctx, key)
	}
	if err != nil {
		return nil, readError("category "+key, err)
	}
	return c, nil
}

// ensureNameFree fails with CONFLICT when another category already uses name
func ensureNameFree(ctx context.Context, st *store.Store, name, selfID string) error {
	existing, err := st.GetCategoryByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return domain.NewStoreReadError("find category "+name, err)
	}
	if existing.ID == selfID {
		return nil
	}
	return domain.NewError(domain.CodeConflict, fmt.Sprintf("category %q already exists", name), nil)
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.NewValidationError("category name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", domain.NewValidationError("category name must not contain path separators")
	}
	if err := domain.CheckCategoryName(name); err != nil {
		return "", err
	}
	return name, nil
}

func validColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return domain.DefaultColor, nil
	}
	if !domain.ValidColor(color) {
		return "", domain.NewValidationError(fmt.Sprintf("color %q is not #RRGGBB", color))
	}
	return strings.ToUpper(color), nil
}
