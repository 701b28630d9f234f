package cli

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/emitter"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
)

// DriftKind says how a file on disk differs from a fresh generation
type DriftKind int

const (
	Missing  DriftKind = iota // would be generated, not on disk
	Stale                     // on disk with other content
	Orphaned                  // generated file no input produces anymore
)

func (k DriftKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Stale:
		return "stale"
	default:
		return "orphaned"
	}
}

// Drift is one out-of-date output file
type Drift struct {
	Path      string
	Kind      DriftKind
	Companion string // empty for orphaned files
}

// Checker renders a pass in memory and compares it with the output roots
type Checker struct {
	processor *Processor
}

// NewChecker creates a checker running passes through processor
func NewChecker(processor *Processor) *Checker {
	return &Checker{processor: processor}
}

// Check generates inputs in memory and reports every file that a real pass
// would create, change or leave behind. The report carries per-type
// failures; drifts are only computed for the types that succeeded.
func (c *Checker) Check(ctx context.Context, inputs []string) ([]Drift, *Report, error) {
	p := c.processor
	ws, err := p.Load(ctx, inputs)
	if err != nil {
		return nil, nil, err
	}
	renderer, err := p.Renderer()
	if err != nil {
		return nil, nil, err
	}
	memory := emitter.NewMemoryEmitter(renderer)
	report, err := p.Run(ctx, ws, memory)
	if err != nil {
		return nil, nil, err
	}

	roots := p.settings.Roots()
	expected := make(map[string]bool)
	var drifts []Drift
	for _, file := range memory.Files() {
		target := filepath.Join(roots[file.Platform], filepath.FromSlash(file.Path))
		expected[target] = true

		existing, err := os.ReadFile(target)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			drifts = append(drifts, Drift{Path: target, Kind: Missing, Companion: file.Companion})
		case err != nil:
			return nil, nil, errors.WrapFileSystemError("read", target, err)
		case !bytes.Equal(existing, file.Content):
			drifts = append(drifts, Drift{Path: target, Kind: Stale, Companion: file.Companion})
		}
	}

	// orphans are only meaningful when every type produced its files
	if len(report.Failures) == 0 {
		for _, root := range uniqueRoots(p.settings.Output.JVM, p.settings.Output.JS) {
			generated, err := generatedFiles(root, renderer)
			if err != nil {
				return nil, nil, err
			}
			for _, path := range generated {
				if !expected[path] {
					drifts = append(drifts, Drift{Path: path, Kind: Orphaned})
				}
			}
		}
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Path < drifts[j].Path })
	p.logger.Debug("check finished", zap.Int("drifts", len(drifts)))
	return drifts, report, nil
}

// uniqueRoots cleans and de-duplicates output roots
func uniqueRoots(roots ...string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, root := range roots {
		clean := filepath.Clean(root)
		if !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}
	sort.Strings(out)
	return out
}

// generatedFiles lists the .kt files below root that carry the renderer's
// header. A missing root has none.
func generatedFiles(root string, renderer *templates.Renderer) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".kt" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if renderer.IsGenerated(content) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapFileSystemError("walk", root, err)
	}
	return found, nil
}
