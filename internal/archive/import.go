package archive

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

// ParsedFile is what ParseViewpointFile recovers from an exported file
type ParsedFile struct {
	Content   string
	Category  string
	Tags      []string
	CreatedAt time.Time // zero when the header is missing or unreadable
}

// ImportResult lists imported viewpoints and the files that were skipped
type ImportResult struct {
	Imported []domain.Viewpoint `json:"imported"`
	Failed   []Failure          `json:"failed,omitempty"`
}

// spaceReplacer folds the non-breaking spaces some formatters put before AM/PM
var spaceReplacer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

// ParseViewpointFile splits an exported file into header fields and
// content. A file without a recognizable header is all content.
func ParseViewpointFile(data string, loc *time.Location) ParsedFile {
	header, content, ok := strings.Cut(data, headerSeparator)
	if !ok || !strings.HasPrefix(header, "Created:") {
		return ParsedFile{Content: data}
	}

	p := ParsedFile{Content: content}
	for _, line := range strings.Split(header, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "Created":
			if t, err := time.ParseInLocation(createdLayout, spaceReplacer.Replace(value), loc); err == nil {
				p.CreatedAt = t
			}
		case "Category":
			p.Category = value
		case "Tags":
			p.Tags = domain.NormalizeTags(strings.Split(value, ","))
		}
	}
	return p
}

// ImportDirectory creates a viewpoint from every .txt file directly in dir.
// The category is the directory's name. Unreadable or empty files are
// reported and skipped; the rest are saved in one transaction.
func (a *Archive) ImportDirectory(ctx context.Context, dir string) (ImportResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ImportResult{}, domain.NewFileIOError("read "+dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	category := categoryOrUncategorized(filepath.Base(abs))
	if err := domain.CheckCategoryName(category); err != nil {
		return ImportResult{}, err
	}
	loc := a.stats.Location()
	now := a.now()

	var res ImportResult
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			res.Failed = append(res.Failed, Failure{Path: path, Error: domain.NewFileIOError("read "+path, err).Error()})
			continue
		}

		parsed := ParseViewpointFile(string(data), loc)
		if strings.TrimSpace(parsed.Content) == "" {
			res.Failed = append(res.Failed, Failure{Path: path, Error: domain.NewValidationError("empty content").Error()})
			continue
		}

		created := parsed.CreatedAt
		if created.IsZero() {
			created = now
		}
		v := domain.Viewpoint{
			ID:         uuid.New().String(),
			Category:   category,
			CreatedAt:  created,
			ModifiedAt: now,
			Tags:       parsed.Tags,
			FilePath:   path,
		}
		v.SetContent(parsed.Content)
		res.Imported = append(res.Imported, v)
	}

	if len(res.Imported) == 0 {
		return res, nil
	}

	err = a.store.WithTx(ctx, func(tx *store.Store) error {
		times := make([]time.Time, len(res.Imported))
		for i := range res.Imported {
			v := &res.Imported[i]
			if err := tx.InsertViewpoint(ctx, v); err != nil {
				return domain.NewStoreWriteError("save imported viewpoint", err)
			}
			times[i] = v.CreatedAt
		}
		return a.stats.RecomputeDays(ctx, tx, times)
	})
	if err != nil {
		if domain.CodeOf(err) == "" {
			err = domain.NewStoreWriteError("import "+dir, err)
		}
		return ImportResult{Failed: res.Failed}, err
	}

	a.log.Info("import finished",
		zap.String("dir", dir),
		zap.String("category", category),
		zap.Int("imported", len(res.Imported)),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}
