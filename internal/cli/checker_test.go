package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/templates"
)

func generated(t *testing.T, p *project) {
	t.Helper()
	report, _, err := p.processor(t).Generate(context.Background(), []string{p.src}, false)
	require.NoError(t, err)
	require.NoError(t, report.Err())
}

func TestChecker_UpToDate(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Foo.kt": fooSource}, "")
	generated(t, p)

	drifts, report, err := NewChecker(p.processor(t)).Check(context.Background(), []string{p.src})
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Empty(t, drifts)
}

func TestChecker_Drifts(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Foo.kt": fooSource}, "")
	generated(t, p)

	stale := filepath.Join(p.jvm, "demo", "JAsyncFoo.kt")
	writeFile(t, stale, templates.DefaultHeader+"\n\npackage demo\n")
	missing := filepath.Join(p.js, "demo", "JsAsyncFoo.kt")
	require.NoError(t, os.Remove(missing))
	orphan := filepath.Join(p.jvm, "demo", "JBlockingOld.kt")
	writeFile(t, orphan, templates.DefaultHeader+"\n\npackage demo\n")
	writeFile(t, filepath.Join(p.jvm, "demo", "Handwritten.kt"), "package demo\n")

	drifts, _, err := NewChecker(p.processor(t)).Check(context.Background(), []string{p.src})
	require.NoError(t, err)

	require.Equal(t, []Drift{
		{Path: missing, Kind: Missing, Companion: "demo.JsAsyncFoo"},
		{Path: stale, Kind: Stale, Companion: "demo.JAsyncFoo"},
		{Path: orphan, Kind: Orphaned},
	}, drifts)
	assert.Equal(t, "orphaned", drifts[2].Kind.String())

	// checking never writes
	assert.NoFileExists(t, missing)
}

func TestChecker_NoOrphansWhenTypesFail(t *testing.T) {
	p := newProject(t, map[string]string{
		"demo/Foo.kt":     fooSource,
		"demo/Closing.kt": closingSource,
	}, "")
	writeFile(t, filepath.Join(p.jvm, "demo", "JBlockingClosing.kt"), templates.DefaultHeader+"\n")

	drifts, report, err := NewChecker(p.processor(t)).Check(context.Background(), []string{p.src})
	require.NoError(t, err)
	assert.Error(t, report.Err())
	require.Len(t, drifts, 3)
	for _, d := range drifts {
		assert.Equal(t, Missing, d.Kind, d.Path)
	}
}

func TestCleaner_Clean(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Foo.kt": fooSource}, "")
	generated(t, p)
	handwritten := filepath.Join(p.jvm, "demo", "Handwritten.kt")
	writeFile(t, handwritten, "package demo\n")

	renderer, err := templates.NewRenderer(p.settings.Header)
	require.NoError(t, err)

	dry := NewCleaner(renderer, zaptest.NewLogger(t), true)
	removed, err := dry.Clean([]string{p.jvm, p.js})
	require.NoError(t, err)
	assert.Len(t, removed, 3)
	assert.FileExists(t, filepath.Join(p.js, "demo", "JsAsyncFoo.kt"))

	removed, err = NewCleaner(renderer, zaptest.NewLogger(t), false).Clean([]string{p.jvm, p.js, p.jvm})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(p.js, "demo", "JsAsyncFoo.kt"),
		filepath.Join(p.jvm, "demo", "JAsyncFoo.kt"),
		filepath.Join(p.jvm, "demo", "JBlockingFoo.kt"),
	}, removed)

	assert.FileExists(t, handwritten)
	assert.NoDirExists(t, filepath.Join(p.js, "demo"))
	assert.DirExists(t, p.js)

	// nothing left to clean, missing roots included
	removed, err = NewCleaner(renderer, nil, false).Clean([]string{p.jvm, filepath.Join(p.dir, "absent")})
	require.NoError(t, err)
	assert.Empty(t, removed)
}
