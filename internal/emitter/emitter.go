// Package emitter writes rendered companion types to their destination.
package emitter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
)

// Roots maps each platform to the directory its companion files go to
type Roots map[models.Platform]string

// Status says what happened to one output file
type Status int

const (
	Written Status = iota
	Unchanged
	Planned // dry run, nothing touched
)

func (s Status) String() string {
	switch s {
	case Written:
		return "written"
	case Unchanged:
		return "unchanged"
	default:
		return "planned"
	}
}

// Output records one emitted file
type Output struct {
	Path      string
	Companion string
	Origin    string
	Status    Status
}

// Option configures a FileEmitter
type Option func(*FileEmitter)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *FileEmitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDryRun renders and checks files without writing them
func WithDryRun(dryRun bool) Option {
	return func(e *FileEmitter) {
		e.dryRun = dryRun
	}
}

// FileEmitter renders companions and writes them below the output root of
// their platform. One emitter serves one generation pass: a second
// companion for an already claimed path is a collision.
type FileEmitter struct {
	renderer *templates.Renderer
	roots    Roots
	dryRun   bool
	logger   *zap.Logger

	mu      sync.Mutex
	claimed map[string]string // target path -> companion
	outputs []Output
}

// NewFileEmitter creates a file emitter
func NewFileEmitter(renderer *templates.Renderer, roots Roots, opts ...Option) *FileEmitter {
	e := &FileEmitter{
		renderer: renderer,
		roots:    roots,
		logger:   zap.NewNop(),
		claimed:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Target returns the file path of a rendered file
func (e *FileEmitter) Target(file *templates.RenderedFile) (string, error) {
	root, ok := e.roots[file.Platform]
	if !ok || root == "" {
		key := "output." + file.Platform.String()
		return "", errors.NewValidationError(key,
			"no output directory configured for "+file.Platform.String()+" companions ("+key+")")
	}
	return filepath.Join(root, filepath.FromSlash(file.Path)), nil
}

// Emit renders c and writes it atomically
func (e *FileEmitter) Emit(ctx context.Context, c *models.CompanionType) error {
	file, err := e.renderer.Render(c)
	if err != nil {
		return err
	}
	target, err := e.Target(file)
	if err != nil {
		return err
	}
	if err := e.claim(target, file.Companion); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	out := Output{Path: target, Companion: file.Companion, Origin: file.Origin, Status: Planned}
	if !e.dryRun {
		changed, err := WriteIfChanged(target, file.Content)
		if err != nil {
			return err
		}
		out.Status = Unchanged
		if changed {
			out.Status = Written
		}
	}
	e.logger.Debug("companion file",
		zap.String("path", target),
		zap.String("companion", file.Companion),
		zap.Stringer("status", out.Status))

	e.mu.Lock()
	e.outputs = append(e.outputs, out)
	e.mu.Unlock()
	return nil
}

func (e *FileEmitter) claim(target, companion string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if owner, ok := e.claimed[target]; ok {
		return errors.Newf(errors.FileSystemErrorCode, "'%s' would overwrite '%s' emitted earlier in this pass", companion, owner).
			WithContext("path", target).
			WithSuggestion("Use a different class name prefix or suffix for one of the types")
	}
	e.claimed[target] = companion
	return nil
}

// Outputs returns the files of this pass sorted by path
func (e *FileEmitter) Outputs() []Output {
	e.mu.Lock()
	out := append([]Output(nil), e.outputs...)
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// WriteIfChanged writes content to path unless the file already holds it.
// Writes go through a temporary file in the target directory that is then
// renamed over the target, so readers never see a partial file.
func WriteIfChanged(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.WrapFileSystemError("mkdir", dir, err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return false, errors.WrapFileSystemError("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return false, errors.WrapFileSystemError("rename", path, err)
	}
	return true, nil
}
