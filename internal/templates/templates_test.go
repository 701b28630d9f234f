package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/annotations"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/config"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/generator"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/parser"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/profiles"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/registry"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/transform"
)

// companions runs the generation pipeline over source and returns every
// companion by simple name.
func companions(t *testing.T, source string) map[string]*models.CompanionType {
	t.Helper()
	file, err := parser.NewParser().ParseSource("Input.kt", source)
	require.NoError(t, err)
	h, err := registry.Build([]*models.SourceFile{file})
	require.NoError(t, err)
	decoder := annotations.NewDecoder(annotations.DefaultRegistry())

	out := make(map[string]*models.CompanionType)
	driver := generator.NewDriver(
		generator.ResolverSource{Resolver: config.NewResolver(decoder, config.SchemaDefaults())},
		profiles.NewRegistry(decoder),
		transform.NewSynthesizer(transform.NewHierarchyResolver(h), transform.DefaultAnnotationPolicy()),
		generator.EmitterFunc(func(_ context.Context, c *models.CompanionType) error {
			out[c.Name] = c
			return nil
		}),
	)
	for _, decl := range file.Types {
		_, err := driver.Generate(context.Background(), decl)
		require.NoError(t, err)
	}
	return out
}

func render(t *testing.T, c *models.CompanionType) string {
	t.Helper()
	require.NotNil(t, c)
	r, err := NewRenderer("")
	require.NoError(t, err)
	file, err := r.Render(c)
	require.NoError(t, err)
	return string(file.Content)
}

const barSource = `package pk1.pk2

import love.forte.suspendreversal.annotations.SuspendReversal
import kotlin.jvm.JvmSynthetic

@SuspendReversal
interface Bar<T, out R, in I, V : Number> {
    @JvmSynthetic
    suspend fun run(): V
    @JvmSynthetic
    suspend fun <Q : T> get(value: I): Q
}
`

func TestRender_FutureInterface(t *testing.T) {
	got := render(t, companions(t, barSource)["JAsyncBar"])

	want := `// Code generated by suspend-reversal. DO NOT EDIT.

package pk1.pk2

import java.util.concurrent.CompletableFuture
import kotlinx.coroutines.future.await

interface JAsyncBar<T, out R, in I, V : Number> : Bar<T, R, I, V> {
    /**
     * Async reversal function for [run]
     *
     * @see run
     */
    fun runAsync(): CompletableFuture<out V>

    @JvmSynthetic
    override suspend fun run(): V {
        return runAsync().await()
    }

    /**
     * Async reversal function for [get]
     *
     * @see get
     */
    fun <Q : T> getAsync(value: I): CompletableFuture<out Q>

    @JvmSynthetic
    override suspend fun <Q : T> get(value: I): Q {
        return getAsync<Q>(value).await()
    }
}
`
	assert.Equal(t, want, got)
}

func TestRender_PromiseInterface(t *testing.T) {
	got := render(t, companions(t, barSource)["JsAsyncBar"])

	want := `// Code generated by suspend-reversal. DO NOT EDIT.

package pk1.pk2

import kotlinx.coroutines.await

interface JsAsyncBar<T, out R, in I, V : Number> : Bar<T, R, I, V> {
    /**
     * Async reversal function for [run]
     */
    fun runAsync(): Promise<V>

    override suspend fun run(): V {
        return runAsync().await()
    }

    /**
     * Async reversal function for [get]
     */
    fun <Q : T> getAsync(value: I): Promise<Q>

    override suspend fun <Q : T> get(value: I): Q {
        return getAsync<Q>(value).await()
    }
}
`
	assert.Equal(t, want, got)
}

func TestRender_AbstractClass(t *testing.T) {
	got := render(t, companions(t, `package pk1.pk2

import java.io.IOException
import love.forte.suspendreversal.annotations.SuspendReversal

@SuspendReversal
abstract class S2(val name: String = "s2") {
    @Throws(IOException::class)
    abstract suspend fun run()

    open fun runBlocking() {}
}
`)["JBlockingS2"])

	want := `// Code generated by suspend-reversal. DO NOT EDIT.

package pk1.pk2

import java.io.IOException

abstract class JBlockingS2(name: String = "s2") : S2(name) {
    /**
     * Blocking reversal function for [run]
     *
     * @see run
     */
    @Throws(IOException::class)
    abstract override fun runBlocking()

    @JvmSynthetic
    override suspend fun run() {
        runBlocking()
    }
}
`
	assert.Equal(t, want, got)
}

func TestRender_PathAndHeader(t *testing.T) {
	c := companions(t, barSource)["JBlockingBar"]
	r, err := NewRenderer("// custom header")
	require.NoError(t, err)

	file, err := r.Render(c)
	require.NoError(t, err)
	assert.Equal(t, "pk1/pk2/JBlockingBar.kt", file.Path)
	assert.Equal(t, "pk1.pk2.JBlockingBar", file.Companion)
	assert.Equal(t, "pk1.pk2.Bar", file.Origin)
	assert.Equal(t, models.PlatformJVM, file.Platform)
	assert.True(t, r.IsGenerated(file.Content))
	assert.False(t, r.IsGenerated([]byte("package pk1.pk2\n")))
}

func TestFunctionDeclaration(t *testing.T) {
	f := &models.GeneratedFunction{
		Name:      "in",
		Modifiers: models.Modifiers{models.ModAbstract},
		TypeParams: []models.TypeParameter{{
			Name:   "T",
			Bounds: []*models.TypeRef{models.NamedType("Comparable", models.NamedType("T")), models.NamedType("CharSequence")},
		}},
		Receiver: &models.TypeRef{Function: &models.FunctionType{Return: models.NamedType("Unit")}},
		Params: []models.Parameter{
			{Name: "items", Type: models.NamedType("T"), Vararg: true},
		},
		ReturnType: &models.TypeRef{Name: "T", Nullable: true},
	}

	assert.Equal(t,
		"abstract fun <T> (() -> Unit).`in`(vararg items: T): T? where T : Comparable<T>, T : CharSequence",
		FunctionDeclaration(f, false))
	assert.Equal(t,
		"fun <T> (() -> Unit).`in`(vararg items: T): T? where T : Comparable<T>, T : CharSequence",
		FunctionDeclaration(f, true))
}

func TestRender_EscapedNames(t *testing.T) {
	got := render(t, companions(t, `package demo

import love.forte.suspendreversal.annotations.SuspendReversal

@SuspendReversal(jAsync = false, jsAsync = false)
interface Cmd {
    suspend fun `+"`do it`(`in`"+`: Int, vararg tags: String): Int
}
`)["JBlockingCmd"])

	assert.Contains(t, got, "[`do it`]")
	assert.Contains(t, got, "@see `do it`")
	assert.Contains(t, got, "    fun `do itBlocking`(`in`: Int, vararg tags: String): Int\n")
	assert.Contains(t, got, "override suspend fun `do it`(`in`: Int, vararg tags: String): Int {\n")
	assert.Contains(t, got, "        return `do itBlocking`(`in`, *tags)\n")
	assert.NotContains(t, got, "do itBlocking(in")
}
