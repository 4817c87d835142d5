package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

// Backup is the JSON document written by CreateBackup
type Backup struct {
	Viewpoints []BackupViewpoint `json:"viewpoints"`
	Categories []BackupCategory  `json:"categories"`
	ExportDate time.Time         `json:"exportDate"`
}

// BackupViewpoint is a viewpoint as stored in a backup. Tags are comma-joined.
type BackupViewpoint struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"createdAt"`
	ModifiedAt     time.Time `json:"modifiedAt"`
	Tags           string    `json:"tags"`
	WordCount      int       `json:"wordCount"`
	CharacterCount int       `json:"characterCount"`
}

// BackupCategory is a category as stored in a backup
type BackupCategory struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	DirectoryPath string `json:"directoryPath"`
}

// RestoreResult counts what Restore inserted
type RestoreResult struct {
	Viewpoints int `json:"viewpoints"`
	Categories int `json:"categories"`
	Days       int `json:"days"`
}

// Snapshot reads every viewpoint and category into a Backup
func (a *Archive) Snapshot(ctx context.Context) (*Backup, error) {
	viewpoints, err := a.store.ListViewpoints(ctx, store.ViewpointQuery{})
	if err != nil {
		return nil, domain.NewStoreReadError("list viewpoints", err)
	}
	categories, err := a.store.ListCategories(ctx)
	if err != nil {
		return nil, domain.NewStoreReadError("list categories", err)
	}

	b := &Backup{
		Viewpoints: make([]BackupViewpoint, 0, len(viewpoints)),
		Categories: make([]BackupCategory, 0, len(categories)),
		ExportDate: a.now(),
	}
	for _, v := range viewpoints {
		b.Viewpoints = append(b.Viewpoints, BackupViewpoint{
			ID:             v.ID,
			Content:        v.Content,
			Category:       categoryOrUncategorized(v.Category),
			CreatedAt:      v.CreatedAt,
			ModifiedAt:     v.ModifiedAt,
			Tags:           domain.JoinList(v.Tags),
			WordCount:      v.WordCount,
			CharacterCount: v.CharacterCount,
		})
	}
	for _, c := range categories {
		color := c.Color
		if color == "" {
			color = domain.DefaultColor
		}
		b.Categories = append(b.Categories, BackupCategory{
			ID:            c.ID,
			Name:          c.Name,
			Color:         color,
			DirectoryPath: c.DirectoryPath,
		})
	}
	return b, nil
}

// WriteBackup encodes a fresh snapshot to w
func (a *Archive) WriteBackup(ctx context.Context, w io.Writer) (*Backup, error) {
	b, err := a.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return nil, domain.NewFileIOError("encode backup", err)
	}
	return b, nil
}

// CreateBackup writes <root>/Backups/WriteHub_Backup_<time>.json and
// returns its path
func (a *Archive) CreateBackup(ctx context.Context) (string, error) {
	dir := a.BackupDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.NewFileIOError("create "+dir, err)
	}

	var buf bytes.Buffer
	b, err := a.WriteBackup(ctx, &buf)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, "WriteHub_Backup_"+a.now().In(a.stats.Location()).Format(fileStamp)+".json")
	if err := atomic.WriteFile(path, &buf); err != nil {
		return "", domain.NewFileIOError("write "+path, err)
	}

	a.log.Info("backup created",
		zap.String("path", path),
		zap.Int("viewpoints", len(b.Viewpoints)),
		zap.Int("categories", len(b.Categories)),
	)
	return path, nil
}

// RestoreFile restores the backup at path
func (a *Archive) RestoreFile(ctx context.Context, path string) (RestoreResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return RestoreResult{}, domain.NewFileIOError("open "+path, err)
	}
	defer f.Close()
	return a.Restore(ctx, f)
}

// Restore decodes a backup and inserts its categories and then its
// viewpoints with their original ids, timestamps and counts, in one
// transaction. Nothing is de-duplicated: restoring twice yields two copies.
// Daily stats of every restored day are recomputed.
func (a *Archive) Restore(ctx context.Context, r io.Reader) (RestoreResult, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return RestoreResult{}, domain.NewError(domain.CodeDecode, "malformed backup", err)
	}
	if err := checkBackup(&b); err != nil {
		return RestoreResult{}, err
	}

	now := a.now()
	var res RestoreResult
	err := a.store.WithTx(ctx, func(tx *store.Store) error {
		for i, bc := range b.Categories {
			c := domain.Category{
				ID:            idOrNew(bc.ID),
				Name:          bc.Name,
				Color:         bc.Color,
				DirectoryPath: bc.DirectoryPath,
				CreatedAt:     now,
			}
			if c.Color == "" {
				c.Color = domain.DefaultColor
			}
			if err := tx.InsertCategory(ctx, c); err != nil {
				return domain.NewStoreWriteError(fmt.Sprintf("restore category %d", i), err)
			}
		}

		times := make([]time.Time, 0, len(b.Viewpoints))
		for i, bv := range b.Viewpoints {
			v := domain.Viewpoint{
				ID:             idOrNew(bv.ID),
				Content:        bv.Content,
				Category:       categoryOrUncategorized(bv.Category),
				CreatedAt:      bv.CreatedAt,
				ModifiedAt:     bv.ModifiedAt,
				Tags:           domain.SplitList(bv.Tags),
				WordCount:      bv.WordCount,
				CharacterCount: bv.CharacterCount,
			}
			if v.CreatedAt.IsZero() {
				v.CreatedAt = now
			}
			if v.ModifiedAt.IsZero() {
				v.ModifiedAt = v.CreatedAt
			}
			if err := tx.InsertViewpoint(ctx, &v); err != nil {
				return domain.NewStoreWriteError(fmt.Sprintf("restore viewpoint %d", i), err)
			}
			times = append(times, v.CreatedAt)
		}

		days := make(map[domain.Day]bool)
		for _, t := range times {
			days[a.stats.DayOf(t)] = true
		}
		res.Days = len(days)
		return a.stats.RecomputeDays(ctx, tx, times)
	})
	if err != nil {
		if domain.CodeOf(err) == "" {
			err = domain.NewStoreWriteError("restore backup", err)
		}
		return RestoreResult{}, err
	}

	res.Viewpoints = len(b.Viewpoints)
	res.Categories = len(b.Categories)
	a.log.Info("backup restored",
		zap.Int("viewpoints", res.Viewpoints),
		zap.Int("categories", res.Categories),
		zap.Int("days", res.Days),
	)
	return res, nil
}

// checkBackup rejects records the store cannot hold faithfully, before
// anything is written
func checkBackup(b *Backup) error {
	for i, bc := range b.Categories {
		if err := domain.CheckCategoryName(bc.Name); err != nil {
			return fmt.Errorf("category %d: %w", i, err)
		}
	}
	for i, bv := range b.Viewpoints {
		if err := domain.CheckCategoryName(bv.Category); err != nil {
			return fmt.Errorf("viewpoint %d: %w", i, err)
		}
		// Zero times are filled in later
		for name, at := range map[string]time.Time{"createdAt": bv.CreatedAt, "modifiedAt": bv.ModifiedAt} {
			if at.IsZero() {
				continue
			}
			if err := domain.CheckStorable(name, at); err != nil {
				return fmt.Errorf("viewpoint %d: %w", i, err)
			}
		}
	}
	return nil
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}
