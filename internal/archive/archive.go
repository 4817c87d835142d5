// Package archive moves viewpoints in and out of the store as plain text
// files and JSON backups.
package archive

import (
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/stats"
	"github.com/pbaille/writehub/internal/store"
)

// BackupDirName is the subdirectory of the export root holding backups
const BackupDirName = "Backups"

// fileStamp names export and backup files
const fileStamp = "2006-01-02_15-04-05"

// Archive reads and writes the export tree rooted at Root
type Archive struct {
	store *store.Store
	stats *stats.Engine
	root  string
	log   *zap.Logger
	now   func() time.Time
}

// New creates an Archive writing under root. A nil clock means time.Now.
func New(st *store.Store, engine *stats.Engine, root string, log *zap.Logger, now func() time.Time) *Archive {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Archive{store: st, stats: engine, root: root, log: log, now: now}
}

// Root is the export directory
func (a *Archive) Root() string {
	return a.root
}

// BackupDir is where CreateBackup writes
func (a *Archive) BackupDir() string {
	return filepath.Join(a.root, BackupDirName)
}

// Failure records one item that could not be exported or imported
type Failure struct {
	Path  string `json:"path,omitempty"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

var dirReplacer = strings.NewReplacer("/", "-", `\`, "-", "\x00", "")

// categoryDir turns a category name into a single path element
func categoryDir(name string) string {
	name = strings.TrimSpace(dirReplacer.Replace(name))
	switch name {
	case "":
		return domain.Uncategorized
	case ".", "..":
		return "_"
	}
	return name
}
