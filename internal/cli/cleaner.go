package cli

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
)

// Cleaner removes generated files from output roots
type Cleaner struct {
	renderer *templates.Renderer
	logger   *zap.Logger
	dryRun   bool
}

// NewCleaner creates a cleaner recognising files by renderer's header
func NewCleaner(renderer *templates.Renderer, logger *zap.Logger, dryRun bool) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{renderer: renderer, logger: logger, dryRun: dryRun}
}

// Clean removes every generated .kt file below roots and then the
// directories left empty, roots excepted. Hand-written files are never
// touched. It returns the removed files.
func (c *Cleaner) Clean(roots []string) ([]string, error) {
	var removed []string
	for _, root := range uniqueRoots(roots...) {
		files, err := generatedFiles(root, c.renderer)
		if err != nil {
			return removed, err
		}
		for _, path := range files {
			if !c.dryRun {
				if err := os.Remove(path); err != nil {
					return removed, errors.WrapFileSystemError("remove", path, err)
				}
			}
			c.logger.Debug("removed generated file", zap.String("path", path), zap.Bool("dry_run", c.dryRun))
			removed = append(removed, path)
		}
		if !c.dryRun {
			pruneEmptyDirs(root, files)
		}
	}
	sort.Strings(removed)
	return removed, nil
}

// pruneEmptyDirs removes the now empty parents of removed files, deepest
// first, stopping at root
func pruneEmptyDirs(root string, removed []string) {
	dirs := make(map[string]bool)
	for _, path := range removed {
		for dir := filepath.Dir(path); dir != root && len(dir) > len(root); dir = filepath.Dir(dir) {
			dirs[dir] = true
		}
	}
	ordered := make([]string, 0, len(dirs))
	for dir := range dirs {
		ordered = append(ordered, dir)
	}
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })
	for _, dir := range ordered {
		// fails harmlessly on directories that still hold files
		os.Remove(dir)
	}
}
