// Package journal manages viewpoints and categories. Every mutation is
// validated first and then saved together with the recompute of the
// affected day, in one transaction.
package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/stats"
	"github.com/pbaille/writehub/internal/store"
)

// Journal is the record manager for viewpoints and categories
type Journal struct {
	store *store.Store
	stats *stats.Engine
	log   *zap.Logger
	now   func() time.Time
}

// New creates a Journal. A nil clock means time.Now.
func New(st *store.Store, engine *stats.Engine, log *zap.Logger, now func() time.Time) *Journal {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Journal{store: st, stats: engine, log: log, now: now}
}

// Store exposes the underlying entity store
func (j *Journal) Store() *store.Store {
	return j.store
}

// Stats exposes the aggregation engine
func (j *Journal) Stats() *stats.Engine {
	return j.stats
}

// NewViewpoint is the input to Create
type NewViewpoint struct {
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	// CreatedAt backdates the entry; zero means now
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ViewpointUpdate changes the non-nil fields of a viewpoint
type ViewpointUpdate struct {
	Content  *string   `json:"content,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// Create validates and saves a viewpoint, then recomputes its day
func (j *Journal) Create(ctx context.Context, in NewViewpoint) (*domain.Viewpoint, error) {
	content, err := validContent(in.Content)
	if err != nil {
		return nil, err
	}
	category, err := categoryOrDefault(in.Category)
	if err != nil {
		return nil, err
	}

	now := j.now()
	created := in.CreatedAt
	if created.IsZero() {
		created = now
	}
	if err := domain.CheckStorable("created_at", created); err != nil {
		return nil, err
	}

	v := domain.Viewpoint{
		ID:         uuid.New().String(),
		Category:   category,
		CreatedAt:  created,
		ModifiedAt: now,
		Tags:       domain.NormalizeTags(in.Tags),
	}
	v.SetContent(content)

	err = j.store.WithTx(ctx, func(tx *store.Store) error {
		if err := tx.InsertViewpoint(ctx, &v); err != nil {
			return domain.NewStoreWriteError("save viewpoint", err)
		}
		_, err := j.stats.RecomputeDay(ctx, tx, v.CreatedAt)
		return err
	})
	if err != nil {
		return nil, txError("create viewpoint", err)
	}

	j.log.Info("viewpoint created",
		zap.String("id", v.ID),
		zap.String("category", v.Category),
		zap.Int("words", v.WordCount),
	)
	return &v, nil
}

// Update applies upd to the viewpoint with id (or id prefix). The day
// recomputed is the one of the original creation time.
func (j *Journal) Update(ctx context.Context, id string, upd ViewpointUpdate) (*domain.Viewpoint, error) {
	var content, category string
	if upd.Content != nil {
		c, err := validContent(*upd.Content)
		if err != nil {
			return nil, err
		}
		content = c
	}
	if upd.Category != nil {
		c, err := categoryOrDefault(*upd.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}

	var updated domain.Viewpoint
	err := j.store.WithTx(ctx, func(tx *store.Store) error {
		v, err := resolveViewpoint(ctx, tx, id)
		if err != nil {
			return err
		}
		if upd.Content != nil {
			v.SetContent(content)
		}
		if upd.Category != nil {
			v.Category = category
		}
		if upd.Tags != nil {
			v.Tags = domain.NormalizeTags(*upd.Tags)
		}
		v.ModifiedAt = j.now()

		if err := tx.UpdateViewpoint(ctx, *v); err != nil {
			return domain.NewStoreWriteError("update viewpoint", err)
		}
		if _, err := j.stats.RecomputeDay(ctx, tx, v.CreatedAt); err != nil {
			return err
		}
		updated = *v
		return nil
	})
	if err != nil {
		return nil, txError("update viewpoint", err)
	}

	j.log.Info("viewpoint updated", zap.String("id", updated.ID))
	return &updated, nil
}

// Delete removes the viewpoint with id (or id prefix) and recomputes its day
func (j *Journal) Delete(ctx context.Context, id string) (*domain.Viewpoint, error) {
	var deleted domain.Viewpoint
	err := j.store.WithTx(ctx, func(tx *store.Store) error {
		v, err := resolveViewpoint(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteViewpoint(ctx, v.Seq); err != nil {
			return domain.NewStoreWriteError("delete viewpoint", err)
		}
		if _, err := j.stats.RecomputeDay(ctx, tx, v.CreatedAt); err != nil {
			return err
		}
		deleted = *v
		return nil
	})
	if err != nil {
		return nil, txError("delete viewpoint", err)
	}

	j.log.Info("viewpoint deleted", zap.String("id", deleted.ID))
	return &deleted, nil
}

// Get returns a viewpoint by full id or id prefix
func (j *Journal) Get(ctx context.Context, id string) (*domain.Viewpoint, error) {
	return resolveViewpoint(ctx, j.store, id)
}

// List returns viewpoints newest first
func (j *Journal) List(ctx context.Context, q store.ViewpointQuery) ([]domain.Viewpoint, error) {
	if q.Category != "" {
		q.Category = strings.TrimSpace(q.Category)
	}
	viewpoints, err := j.store.ListViewpoints(ctx, q)
	if err != nil {
		return nil, domain.NewStoreReadError("list viewpoints", err)
	}
	return viewpoints, nil
}

// Search finds viewpoints whose content contains query, case-insensitively
func (j *Journal) Search(ctx context.Context, query string, limit int) ([]domain.Viewpoint, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("search query is required")
	}
	return j.List(ctx, store.ViewpointQuery{Search: query, Limit: limit})
}

// ForDay returns the viewpoints created on t's local day, oldest first
func (j *Journal) ForDay(ctx context.Context, t time.Time) ([]domain.Viewpoint, error) {
	day := j.stats.DayOf(t)
	loc := j.stats.Location()
	viewpoints, err := j.store.ViewpointsCreatedBetween(ctx, day.Start(loc), day.AddDays(1).Start(loc))
	if err != nil {
		return nil, domain.NewStoreReadError("viewpoints for "+day.String(), err)
	}
	return viewpoints, nil
}

func resolveViewpoint(ctx context.Context, st *store.Store, id string) (*domain.Viewpoint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("viewpoint id is required")
	}
	v, err := st.GetViewpoint(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		v, err = st.FindViewpointByPrefix(ctx, id)
	}
	if err != nil {
		return nil, readError("viewpoint "+id, err)
	}
	return v, nil
}

func validContent(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", domain.NewValidationError("content must not be empty")
	}
	return content, nil
}

func categoryOrDefault(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Uncategorized, nil
	}
	if err := domain.CheckCategoryName(name); err != nil {
		return "", err
	}
	return name, nil
}

// readError maps a store lookup failure to NOT_FOUND or STORE_READ
func readError(what string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewNotFoundError(what+" not found", err)
	}
	return domain.NewStoreReadError("load "+what, err)
}

// txError keeps typed errors from inside a transaction and classifies the
// rest (begin/commit failures) as write errors.
func txError(op string, err error) error {
	if domain.CodeOf(err) != "" {
		return err
	}
	return domain.NewStoreWriteError(op, err)
}
