package emitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
)

func companion(name string, platform models.Platform) *models.CompanionType {
	return &models.CompanionType{
		Name:     name,
		Package:  "demo.api",
		Platform: platform,
		Kind:     models.KindInterface,
		Super:    models.SuperTypeRef{Type: models.NamedType("Foo")},
	}
}

func renderer(t *testing.T) *templates.Renderer {
	t.Helper()
	r, err := templates.NewRenderer("")
	require.NoError(t, err)
	return r
}

func roots(t *testing.T) Roots {
	dir := t.TempDir()
	return Roots{
		models.PlatformJVM: filepath.Join(dir, "jvm"),
		models.PlatformJS:  filepath.Join(dir, "js"),
	}
}

func TestFileEmitter_WritesPerPlatform(t *testing.T) {
	ctx := context.Background()
	r := renderer(t)
	dirs := roots(t)

	e := NewFileEmitter(r, dirs, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, e.Emit(ctx, companion("JBlockingFoo", models.PlatformJVM)))
	require.NoError(t, e.Emit(ctx, companion("JsAsyncFoo", models.PlatformJS)))

	jvmFile := filepath.Join(dirs[models.PlatformJVM], "demo", "api", "JBlockingFoo.kt")
	jsFile := filepath.Join(dirs[models.PlatformJS], "demo", "api", "JsAsyncFoo.kt")
	content, err := os.ReadFile(jvmFile)
	require.NoError(t, err)
	assert.True(t, r.IsGenerated(content))
	assert.FileExists(t, jsFile)
	assert.NoFileExists(t, filepath.Join(dirs[models.PlatformJVM], "demo", "api", "JsAsyncFoo.kt"))

	outputs := e.Outputs()
	require.Len(t, outputs, 2)
	for _, out := range outputs {
		assert.Equal(t, Written, out.Status)
	}

	temps, err := filepath.Glob(filepath.Join(dirs[models.PlatformJVM], "demo", "api", ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, temps)

	again := NewFileEmitter(r, dirs)
	require.NoError(t, again.Emit(ctx, companion("JBlockingFoo", models.PlatformJVM)))
	assert.Equal(t, Unchanged, again.Outputs()[0].Status)
}

func TestFileEmitter_CollisionWithinPass(t *testing.T) {
	e := NewFileEmitter(renderer(t), roots(t))
	require.NoError(t, e.Emit(context.Background(), companion("JBlockingFoo", models.PlatformJVM)))

	err := e.Emit(context.Background(), companion("JBlockingFoo", models.PlatformJVM))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo.api.JBlockingFoo")
	assert.Len(t, e.Outputs(), 1)
}

func TestFileEmitter_DryRun(t *testing.T) {
	dirs := roots(t)
	e := NewFileEmitter(renderer(t), dirs, WithDryRun(true))
	require.NoError(t, e.Emit(context.Background(), companion("JAsyncFoo", models.PlatformJVM)))

	outputs := e.Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, Planned, outputs[0].Status)
	assert.NoDirExists(t, dirs[models.PlatformJVM])
}

func TestFileEmitter_MissingRoot(t *testing.T) {
	e := NewFileEmitter(renderer(t), Roots{models.PlatformJVM: t.TempDir()})
	err := e.Emit(context.Background(), companion("JsAsyncFoo", models.PlatformJS))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no output directory configured for js companions (output.js)")

	var typed errors.ReversalError
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, errors.ValidationErrorCode, typed.ErrorCode())
	assert.Equal(t, "output.js", typed.Context()["field"])
}

func TestFileEmitter_CancelledContext(t *testing.T) {
	dirs := roots(t)
	e := NewFileEmitter(renderer(t), dirs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, e.Emit(ctx, companion("JAsyncFoo", models.PlatformJVM)), context.Canceled)
	assert.NoDirExists(t, dirs[models.PlatformJVM])
}

func TestMemoryEmitter(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryEmitter(renderer(t))
	require.NoError(t, m.Emit(ctx, companion("JsAsyncFoo", models.PlatformJS)))
	require.NoError(t, m.Emit(ctx, companion("JBlockingFoo", models.PlatformJVM)))
	require.NoError(t, m.Emit(ctx, companion("JAsyncFoo", models.PlatformJVM)))
	require.Error(t, m.Emit(ctx, companion("JAsyncFoo", models.PlatformJVM)))

	var paths []string
	for _, f := range m.Files() {
		paths = append(paths, f.Platform.String()+":"+f.Path)
	}
	assert.Equal(t, []string{
		"jvm:demo/api/JAsyncFoo.kt",
		"jvm:demo/api/JBlockingFoo.kt",
		"js:demo/api/JsAsyncFoo.kt",
	}, paths)

	f, ok := m.Get(models.PlatformJS, "demo/api/JsAsyncFoo.kt")
	require.True(t, ok)
	assert.Equal(t, "demo.api.JsAsyncFoo", f.Companion)
}
