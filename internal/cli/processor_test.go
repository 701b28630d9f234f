package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/emitter"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
)

const fooSource = `package demo

import love.forte.suspendreversal.annotations.SuspendReversal

@SuspendReversal
interface Foo {
    suspend fun get(): Int
}

@SuspendReversal
class NotAbstract {
    suspend fun run() {}
}
`

const closingSource = `package demo

import love.forte.suspendreversal.annotations.SuspendReversal

@SuspendReversal
abstract class Closing {
    abstract suspend fun stop()

    fun stopBlocking() {}
}
`

// project lays out sources below dir/src and a configuration file pointing
// the output roots at dir/gen
type project struct {
	dir      string
	src      string
	jvm, js  string
	settings *Settings
}

func newProject(t *testing.T, sources map[string]string, extraConfig string) *project {
	t.Helper()
	dir := t.TempDir()
	p := &project{
		dir: dir,
		src: filepath.Join(dir, "src"),
		jvm: filepath.Join(dir, "gen", "jvm"),
		js:  filepath.Join(dir, "gen", "js"),
	}
	for name, content := range sources {
		writeFile(t, filepath.Join(p.src, name), content)
	}

	configFile := filepath.Join(dir, "reversal.yaml")
	writeFile(t, configFile, fmt.Sprintf("output:\n  jvm: %s\n  js: %s\nworkers: 2\n%s", p.jvm, p.js, extraConfig))

	settings, err := LoadSettings(NewViper(), configFile)
	require.NoError(t, err)
	p.settings = settings
	return p
}

func (p *project) processor(t *testing.T) *Processor {
	return NewProcessor(p.settings, WithProcessorLogger(zaptest.NewLogger(t)))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestProcessor_Generate(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Foo.kt": fooSource}, "")

	report, outputs, err := p.processor(t).Generate(context.Background(), []string{p.src}, false)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, 1, report.Summary.FilesParsed)
	assert.Equal(t, 1, report.Summary.TypesProcessed)
	assert.Equal(t, 3, report.Summary.CompanionsEmitted)
	assert.Equal(t, []string{"demo.NotAbstract is annotated but is neither an interface nor an abstract class"},
		report.Summary.Warnings)

	want := []string{
		filepath.Join(p.js, "demo", "JsAsyncFoo.kt"),
		filepath.Join(p.jvm, "demo", "JAsyncFoo.kt"),
		filepath.Join(p.jvm, "demo", "JBlockingFoo.kt"),
	}
	require.Len(t, outputs, len(want))
	for i, out := range outputs {
		assert.Equal(t, want[i], out.Path)
		assert.Equal(t, emitter.Written, out.Status)
		assert.FileExists(t, out.Path)
	}

	content, err := os.ReadFile(filepath.Join(p.jvm, "demo", "JBlockingFoo.kt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "interface JBlockingFoo : Foo {")
	assert.Contains(t, string(content), "fun getBlocking(): Int")

	// a second pass leaves everything in place
	_, outputs, err = p.processor(t).Generate(context.Background(), []string{p.src}, false)
	require.NoError(t, err)
	for _, out := range outputs {
		assert.Equal(t, emitter.Unchanged, out.Status, out.Path)
	}
}

func TestProcessor_GenerateDryRun(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Foo.kt": fooSource}, "")

	_, outputs, err := p.processor(t).Generate(context.Background(), []string{p.src + "/..."}, true)
	require.NoError(t, err)
	require.Len(t, outputs, 3)
	for _, out := range outputs {
		assert.Equal(t, emitter.Planned, out.Status)
		assert.NoFileExists(t, out.Path)
	}
}

func TestProcessor_FailureIsolation(t *testing.T) {
	p := newProject(t, map[string]string{
		"demo/Foo.kt":     fooSource,
		"demo/Closing.kt": closingSource,
	}, "")

	report, outputs, err := p.processor(t).Generate(context.Background(), []string{p.src}, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TypesProcessed)
	assert.Equal(t, 1, report.Summary.TypesFailed)
	assert.Equal(t, 3, report.Summary.CompanionsEmitted)
	assert.Len(t, outputs, 3)

	require.Error(t, report.Err())
	assert.True(t, errors.Is(report.Err(), errors.ErrUnsupportedSignature))
	assert.Contains(t, report.Err().Error(), "demo.Closing.stop")
	assert.NoFileExists(t, filepath.Join(p.jvm, "demo", "JAsyncClosing.kt"))
}

func TestProcessor_LenientSkipsUnsupported(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Closing.kt": closingSource}, "strict: false\n")
	require.False(t, p.settings.Defaults.Strict)

	report, _, err := p.processor(t).Generate(context.Background(), []string{p.src}, false)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	assert.Equal(t, 1, report.Summary.Skipped)
	require.Len(t, report.Results, 1)
	require.Len(t, report.Results[0].Skipped, 1)
	assert.Equal(t, "stop", report.Results[0].Skipped[0].Method)
	assert.FileExists(t, filepath.Join(p.jvm, "demo", "JAsyncClosing.kt"))
	assert.FileExists(t, filepath.Join(p.js, "demo", "JsAsyncClosing.kt"))
}

func TestProcessor_ExternalMarker(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Api.kt": `package demo

import org.lib.Reversible

@Reversible
interface Api {
    suspend fun call(): String
}
`}, "marker:\n  - org.lib.Reversible\n")

	report, outputs, err := p.processor(t).Generate(context.Background(), []string{p.src}, false)
	require.NoError(t, err)
	require.NoError(t, report.Err())
	assert.Len(t, outputs, 3)
	assert.FileExists(t, filepath.Join(p.jvm, "demo", "JBlockingApi.kt"))
}

func TestProcessor_SyntaxErrorsAreCollected(t *testing.T) {
	p := newProject(t, map[string]string{
		"demo/Foo.kt":  fooSource,
		"demo/Bad1.kt": "package demo\n\ninterface {\n",
		"demo/Bad2.kt": "package demo\n\nclass Broken(\n",
	}, "")

	_, err := p.processor(t).Load(context.Background(), []string{p.src})
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.True(t, errors.As(err, &multi))
	assert.Equal(t, 2, multi.Count())
	assert.Equal(t, errors.SyntaxErrorCode, errors.CodeOf(err))
}

func TestProcessor_OutputRootsAreNotInputs(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Foo.kt": fooSource}, "")
	_, _, err := p.processor(t).Generate(context.Background(), []string{p.src}, false)
	require.NoError(t, err)

	// scanning the whole project must not pick the generated companions up
	ws, err := p.processor(t).Load(context.Background(), []string{p.dir})
	require.NoError(t, err)
	assert.Len(t, ws.Files, 1)
	require.Len(t, ws.Targets, 1)
	assert.Equal(t, "demo.Foo", ws.Targets[0].QualifiedName())
}

func TestProcessor_MissingInput(t *testing.T) {
	p := newProject(t, nil, "")
	_, err := p.processor(t).Load(context.Background(), []string{filepath.Join(p.dir, "nope")})
	require.Error(t, err)
	assert.Equal(t, errors.FileSystemErrorCode, errors.CodeOf(err))
}

func TestProcessor_CancelledContext(t *testing.T) {
	p := newProject(t, map[string]string{"demo/Foo.kt": fooSource}, "")
	proc := p.processor(t)
	ws, err := proc.Load(context.Background(), []string{p.src})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	renderer, err := proc.Renderer()
	require.NoError(t, err)
	_, err = proc.Run(ctx, ws, emitter.NewMemoryEmitter(renderer))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
