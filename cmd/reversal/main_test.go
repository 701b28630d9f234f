package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiSource = `package demo

import love.forte.suspendreversal.annotations.SuspendReversal

@SuspendReversal(jsAsync = false)
interface Api {
    suspend fun call(id: Long): String
}
`

type workspace struct {
	dir, src, jvm, js, config string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		dir:    dir,
		src:    filepath.Join(dir, "src"),
		jvm:    filepath.Join(dir, "gen", "jvm"),
		js:     filepath.Join(dir, "gen", "js"),
		config: filepath.Join(dir, "reversal.yaml"),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(w.src, "demo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(w.src, "demo", "Api.kt"), []byte(apiSource), 0o644))
	config := fmt.Sprintf("output:\n  jvm: %s\n  js: %s\n", w.jvm, w.js)
	require.NoError(t, os.WriteFile(w.config, []byte(config), 0o644))
	return w
}

func (w workspace) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append(args, "--config", w.config), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_GenerateCheckClean(t *testing.T) {
	w := newWorkspace(t)
	blocking := filepath.Join(w.jvm, "demo", "JBlockingApi.kt")
	async := filepath.Join(w.jvm, "demo", "JAsyncApi.kt")

	code, _, _ := w.run(t, "check", w.src)
	assert.Equal(t, 1, code)

	code, out, errOut := w.run(t, "generate", w.src)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Companions emitted:  2")
	assert.FileExists(t, blocking)
	assert.FileExists(t, async)
	assert.NoDirExists(t, w.js)

	code, _, errOut = w.run(t, "check", w.src)
	assert.Equal(t, 0, code, errOut)

	require.NoError(t, os.WriteFile(async, []byte("// Code generated by suspend-reversal. DO NOT EDIT.\n"), 0o644))
	code, out, _ = w.run(t, "check", w.src)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "stale")
	assert.Contains(t, out, async)

	code, _, _ = w.run(t, "clean", "--dry-run")
	assert.Equal(t, 0, code)
	assert.FileExists(t, blocking)

	code, _, _ = w.run(t, "clean")
	assert.Equal(t, 0, code)
	assert.NoFileExists(t, blocking)
	assert.NoFileExists(t, async)
}

func TestRun_FlagsOverrideConfiguration(t *testing.T) {
	w := newWorkspace(t)
	out := filepath.Join(w.dir, "elsewhere")

	code, _, errOut := w.run(t, "generate", "--quiet", "--out", out, w.src)
	require.Equal(t, 0, code, errOut)
	assert.FileExists(t, filepath.Join(out, "demo", "JBlockingApi.kt"))
	assert.NoDirExists(t, w.jvm)
}

func TestRun_StrictFailure(t *testing.T) {
	w := newWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(w.src, "demo", "Closing.kt"), []byte(`package demo

import love.forte.suspendreversal.annotations.SuspendReversal

@SuspendReversal(jsAsync = false)
abstract class Closing {
    abstract suspend fun stop()

    fun stopBlocking() {}
}
`), 0o644))

	code, _, errOut := w.run(t, "generate", w.src)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Unsupported Signature")
	assert.FileExists(t, filepath.Join(w.jvm, "demo", "JBlockingApi.kt"))

	code, _, errOut = w.run(t, "generate", "--no-strict", w.src)
	assert.Equal(t, 0, code, errOut)
	assert.FileExists(t, filepath.Join(w.jvm, "demo", "JAsyncClosing.kt"))
}

func TestRun_InvalidSettings(t *testing.T) {
	w := newWorkspace(t)

	code, _, errOut := w.run(t, "generate", "--workers", "0", w.src)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Validation Error")
	assert.Contains(t, errOut, "workers")

	code, _, errOut = w.run(t, "clean", "extra")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut)
}
