package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/annotations"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/parser"
)

const scopedSource = `@file:SuspendReversal(jsAsync = false)
package demo

import love.forte.suspendreversal.annotations.SuspendReversal

@SuspendReversal(markJvmSynthetic = false, jAsyncClassNamePrefix = "Future")
annotation class MyReversal

interface FileScoped {
    suspend fun run()
}

@SuspendReversal(jBlocking = false)
interface Outer {
    suspend fun run()

    interface Inner {
        suspend fun get(): String
    }
}

@MyReversal
interface Aliased {
    suspend fun run()
}

@SuspendReversal(jBlocking = "yes")
interface Broken {
    suspend fun run()
}
`

func setup(t *testing.T, source string) (*Resolver, map[string]*models.TypeDecl) {
	t.Helper()
	file, err := parser.NewParser().ParseSource("Scoped.kt", source)
	require.NoError(t, err)

	decoder := annotations.NewDecoder(annotations.DefaultRegistry())
	types := make(map[string]*models.TypeDecl)
	for _, decl := range file.AllTypes() {
		decoder.RegisterAlias(decl)
		types[decl.NestedName()] = decl
	}
	return NewResolver(decoder, SchemaDefaults()), types
}

func TestSchemaDefaults(t *testing.T) {
	d := SchemaDefaults()

	assert.Equal(t, ProfileDefaults{Enabled: true, Prefix: "JBlocking"}, d.JBlocking)
	assert.Equal(t, ProfileDefaults{Enabled: true, Prefix: "JAsync"}, d.JAsync)
	assert.Equal(t, ProfileDefaults{Enabled: true, Prefix: "JsAsync"}, d.JsAsync)
	assert.True(t, d.MarkJvmSynthetic)
	assert.True(t, d.Strict)
	assert.NoError(t, d.Validate())
}

func TestDefaults_Validate(t *testing.T) {
	d := SchemaDefaults()
	d.JAsync.Prefix = ""
	assert.ErrorContains(t, d.Validate(), "defaults.jAsync")

	d = SchemaDefaults()
	d.JsAsync.Suffix = "Not-An-Identifier"
	assert.ErrorContains(t, d.Validate(), "defaults.jsAsync.suffix")

	d = SchemaDefaults()
	d.JBlocking = ProfileDefaults{Enabled: false}
	assert.NoError(t, d.Validate())
}

func TestResolve_NearestScopeWins(t *testing.T) {
	resolver, types := setup(t, scopedSource)

	inner, err := resolver.Resolve(types["Outer.Inner"])
	require.NoError(t, err)
	assert.False(t, inner.Profile(models.Blocking).Enabled)
	// the file disables jsAsync, but Outer's configuration replaces it entirely
	assert.True(t, inner.Profile(models.EventLoopPromise).Enabled)
	assert.Equal(t, "demo.Outer", inner.Origin)

	fileScoped, err := resolver.Resolve(types["FileScoped"])
	require.NoError(t, err)
	assert.True(t, fileScoped.Profile(models.Blocking).Enabled)
	assert.False(t, fileScoped.Profile(models.EventLoopPromise).Enabled)
	assert.Equal(t, "Scoped.kt", fileScoped.Origin)
}

func TestResolve_Alias(t *testing.T) {
	resolver, types := setup(t, scopedSource)

	cfg, err := resolver.Resolve(types["Aliased"])
	require.NoError(t, err)
	assert.False(t, cfg.MarkBridgeSynthetic)
	assert.Equal(t, "Future", cfg.Profile(models.ThreadFuture).TypePrefix)
	assert.Equal(t, "JBlocking", cfg.Profile(models.Blocking).TypePrefix)
	assert.True(t, cfg.Strict)
	assert.True(t, resolver.HasOwnMarker(types["Aliased"]))
	assert.False(t, resolver.HasOwnMarker(types["Outer.Inner"]))
}

func TestResolve_Missing(t *testing.T) {
	resolver, types := setup(t, "package demo\n\ninterface Plain {\n    suspend fun run()\n}\n")

	_, err := resolver.Resolve(types["Plain"])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigurationMissing))
	assert.Contains(t, err.Error(), "demo.Plain")
	assert.False(t, resolver.IsConfigured(types["Plain"]))
}

func TestResolve_InvalidArgument(t *testing.T) {
	resolver, types := setup(t, scopedSource)

	_, err := resolver.Resolve(types["Broken"])
	require.Error(t, err)
	assert.Equal(t, errors.ValidationErrorCode, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "demo.Broken")
	assert.True(t, resolver.IsConfigured(types["Broken"]))
}

func TestResolve_UsesProjectDefaults(t *testing.T) {
	_, types := setup(t, scopedSource)
	decoder := annotations.NewDecoder(annotations.DefaultRegistry())
	defaults := SchemaDefaults()
	defaults.JBlocking.Prefix = "Sync"
	defaults.Strict = false

	cfg, err := NewResolver(decoder, defaults).Resolve(types["FileScoped"])
	require.NoError(t, err)
	assert.Equal(t, "Sync", cfg.Profile(models.Blocking).TypePrefix)
	assert.False(t, cfg.Strict)
}
