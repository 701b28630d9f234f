package emitter

import (
	"context"
	"sort"
	"sync"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
)

type fileKey struct {
	platform models.Platform
	path     string
}

// MemoryEmitter keeps rendered files in memory
type MemoryEmitter struct {
	renderer *templates.Renderer

	mu    sync.Mutex
	files map[fileKey]*templates.RenderedFile
}

// NewMemoryEmitter creates an in-memory emitter
func NewMemoryEmitter(renderer *templates.Renderer) *MemoryEmitter {
	return &MemoryEmitter{
		renderer: renderer,
		files:    make(map[fileKey]*templates.RenderedFile),
	}
}

// Emit renders c and stores the result
func (m *MemoryEmitter) Emit(_ context.Context, c *models.CompanionType) error {
	file, err := m.renderer.Render(c)
	if err != nil {
		return err
	}
	key := fileKey{file.Platform, file.Path}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.files[key]; ok {
		return errors.Newf(errors.FileSystemErrorCode, "'%s' would overwrite '%s' emitted earlier in this pass", file.Companion, prev.Companion).
			WithContext("path", file.Path)
	}
	m.files[key] = file
	return nil
}

// Get returns the file stored for a platform and relative path
func (m *MemoryEmitter) Get(platform models.Platform, path string) (*templates.RenderedFile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[fileKey{platform, path}]
	return f, ok
}

// Files returns every stored file ordered by platform and path
func (m *MemoryEmitter) Files() []*templates.RenderedFile {
	m.mu.Lock()
	files := make([]*templates.RenderedFile, 0, len(m.files))
	for _, f := range m.files {
		files = append(files, f)
	}
	m.mu.Unlock()

	sort.Slice(files, func(i, j int) bool {
		if files[i].Platform != files[j].Platform {
			return files[i].Platform < files[j].Platform
		}
		return files[i].Path < files[j].Path
	})
	return files
}
