package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/store"
)

// headerSeparator ends the metadata block of an exported file
const headerSeparator = "\n---\n\n"

// createdLayout is the human-readable creation time in the header
const createdLayout = "1/2/2006, 3:04 PM"

// ExportResult lists written files and the viewpoints that failed
type ExportResult struct {
	Files  []string  `json:"files"`
	Failed []Failure `json:"failed,omitempty"`
}

// FormatViewpoint renders the text file body for v
func FormatViewpoint(v domain.Viewpoint, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Created: %s\n", v.CreatedAt.In(loc).Format(createdLayout))
	fmt.Fprintf(&b, "Category: %s\n", categoryOrUncategorized(v.Category))
	if len(v.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(v.Tags, ", "))
	}
	fmt.Fprintf(&b, "Word Count: %d\n", v.WordCount)
	fmt.Fprintf(&b, "Character Count: %d\n", v.CharacterCount)
	b.WriteString(headerSeparator)
	b.WriteString(v.Content)
	return b.String()
}

// ExportViewpoint writes v under <root>/<category>/ and records the path on
// the stored viewpoint
func (a *Archive) ExportViewpoint(ctx context.Context, v domain.Viewpoint) (string, error) {
	loc := a.stats.Location()
	dir := filepath.Join(a.root, categoryDir(v.Category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.NewFileIOError("create "+dir, err)
	}

	path := filepath.Join(dir, "viewpoint_"+v.CreatedAt.In(loc).Format(fileStamp)+".txt")
	if path != v.FilePath && fileExists(path) {
		// Another entry from the same second already owns the name
		path = strings.TrimSuffix(path, ".txt") + "_" + shortID(v.ID) + ".txt"
	}

	if err := atomic.WriteFile(path, strings.NewReader(FormatViewpoint(v, loc))); err != nil {
		return "", domain.NewFileIOError("write "+path, err)
	}
	if err := a.store.SetViewpointFilePath(ctx, v.Seq, path); err != nil {
		return "", domain.NewStoreWriteError("record export path", err)
	}

	a.log.Debug("exported viewpoint", zap.String("id", v.ID), zap.String("path", path))
	return path, nil
}

// ExportAll writes every viewpoint, continuing past individual failures
func (a *Archive) ExportAll(ctx context.Context) (ExportResult, error) {
	return a.exportMatching(ctx, store.ViewpointQuery{})
}

// ExportCategory writes the viewpoints of one category
func (a *Archive) ExportCategory(ctx context.Context, name string) (ExportResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ExportResult{}, domain.NewValidationError("category name is required")
	}
	return a.exportMatching(ctx, store.ViewpointQuery{Category: name})
}

func (a *Archive) exportMatching(ctx context.Context, q store.ViewpointQuery) (ExportResult, error) {
	viewpoints, err := a.store.ListViewpoints(ctx, q)
	if err != nil {
		return ExportResult{}, domain.NewStoreReadError("list viewpoints", err)
	}

	var res ExportResult
	for _, v := range viewpoints {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path, err := a.ExportViewpoint(ctx, v)
		if err != nil {
			a.log.Warn("export failed", zap.String("id", v.ID), zap.Error(err))
			res.Failed = append(res.Failed, Failure{ID: v.ID, Error: err.Error()})
			continue
		}
		res.Files = append(res.Files, path)
	}

	a.log.Info("export finished",
		zap.String("root", a.root),
		zap.Int("files", len(res.Files)),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func categoryOrUncategorized(name string) string {
	if strings.TrimSpace(name) == "" {
		return domain.Uncategorized
	}
	return name
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
