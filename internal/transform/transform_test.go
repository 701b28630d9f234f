package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/parser"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/profiles"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/registry"
)

const source = `package pk1.pk2

import love.forte.suspendreversal.annotations.SuspendReversal
import kotlin.jvm.JvmSynthetic

@SuspendReversal
interface Bar<T, out R, in I, V : Number> {
    @JvmSynthetic
    suspend fun run(): V
    @JvmSynthetic
    suspend fun <Q : T> get(value: I): Q
    suspend fun String.tag(vararg labels: String, limit: Int = 10): Unit
}

@SuspendReversal
abstract class S2(val name: String) {
    @JvmSynthetic
    @Throws(Exception::class)
    @Deprecated("use get")
    abstract suspend fun run()

    open fun runBlocking() {}

    fun stopBlocking() {}

    abstract suspend fun stop()
}
`

type fixture struct {
	hierarchy *registry.Hierarchy
	bar, s2   *models.TypeDecl
	policies  [models.ProfileCount]profiles.Policy
}

func setup(t *testing.T) fixture {
	t.Helper()
	file, err := parser.NewParser().ParseSource("Bar.kt", source)
	require.NoError(t, err)
	h, err := registry.Build([]*models.SourceFile{file})
	require.NoError(t, err)

	bar, _ := h.Lookup("pk1.pk2.Bar")
	s2, _ := h.Lookup("pk1.pk2.S2")
	return fixture{hierarchy: h, bar: bar, s2: s2, policies: profiles.DefaultPolicies()}
}

func method(t *testing.T, decl *models.TypeDecl, name string) *models.FunctionDecl {
	t.Helper()
	for _, f := range decl.Functions {
		if f.Name == name {
			return f
		}
	}
	require.Failf(t, "method not found", "no %s in %s", name, decl.Name)
	return nil
}

func suffix(p profiles.Policy) models.NamingRule {
	return models.NamingRule{Suffix: p.MethodSuffix}
}

func TestSignature_GenericMethod(t *testing.T) {
	f := setup(t)
	get := method(t, f.bar, "get")

	tests := []struct {
		profile models.Profile
		name    string
		ret     string
	}{
		{models.Blocking, "getBlocking", "Q"},
		{models.ThreadFuture, "getAsync", "CompletableFuture<out Q>"},
		{models.EventLoopPromise, "getAsync", "Promise<Q>"},
	}
	for _, tt := range tests {
		t.Run(tt.profile.String(), func(t *testing.T) {
			fn, err := Signature(f.bar, get, f.policies[tt.profile], suffix(f.policies[tt.profile]), DefaultAnnotationPolicy())
			require.NoError(t, err)

			assert.Equal(t, tt.name, fn.Name)
			assert.Equal(t, tt.ret, fn.ReturnType.String())
			assert.Equal(t, []string{"abstract"}, fn.Modifiers.Strings())
			require.Len(t, fn.TypeParams, 1)
			assert.Equal(t, "Q", fn.TypeParams[0].Name)
			assert.Equal(t, "T", fn.TypeParams[0].Bounds[0].String())
			require.Len(t, fn.Params, 1)
			assert.Equal(t, "value", fn.Params[0].Name)
			assert.Equal(t, "I", fn.Params[0].Type.String())
			assert.Empty(t, fn.Annotations, "JvmSynthetic is never copied")
		})
	}
}

func TestSignature_ExtensionAndVararg(t *testing.T) {
	f := setup(t)
	tag := method(t, f.bar, "tag")

	fn, err := Signature(f.bar, tag, f.policies[models.ThreadFuture], suffix(f.policies[models.ThreadFuture]), DefaultAnnotationPolicy())
	require.NoError(t, err)

	assert.Equal(t, "String", fn.Receiver.String())
	assert.Equal(t, "CompletableFuture<Void?>", fn.ReturnType.String())
	require.Len(t, fn.Params, 2)
	assert.True(t, fn.Params[0].Vararg)
	assert.Empty(t, fn.Params[1].Default)
	assert.Equal(t, "String.tagAsync(vararg String,Int)", fn.Signature())
	// the original's own parameter declaration is untouched
	assert.Equal(t, "10", tag.Params[1].Default)
}

func TestSignature_AnnotationPropagation(t *testing.T) {
	f := setup(t)
	run := method(t, f.s2, "run")

	blocking, err := Signature(f.s2, run, f.policies[models.Blocking], suffix(f.policies[models.Blocking]), DefaultAnnotationPolicy())
	require.NoError(t, err)
	var names []string
	for _, a := range blocking.Annotations {
		names = append(names, a.String())
	}
	assert.Equal(t, []string{"@Throws(Exception::class)", `@Deprecated("use get")`}, names)
	assert.Equal(t, "Blocking reversal function for [run]\n\n@see run", blocking.Doc)

	promise, err := Signature(f.s2, run, f.policies[models.EventLoopPromise], suffix(f.policies[models.EventLoopPromise]), DefaultAnnotationPolicy())
	require.NoError(t, err)
	assert.Empty(t, promise.Annotations)
	assert.Equal(t, "Async reversal function for [run]", promise.Doc)

	none, err := Signature(f.s2, run, f.policies[models.Blocking], suffix(f.policies[models.Blocking]), NewAnnotationPolicy())
	require.NoError(t, err)
	assert.Empty(t, none.Annotations)
}

func TestSynthesizer_Bridges(t *testing.T) {
	f := setup(t)
	s := NewSynthesizer(NewHierarchyResolver(f.hierarchy), DefaultAnnotationPolicy())
	cfg := models.GenerationConfig{MarkBridgeSynthetic: true}

	tests := []struct {
		method    string
		profile   models.Profile
		statement string
		synthetic bool
	}{
		{"get", models.Blocking, "return getBlocking<Q>(value)", true},
		{"get", models.ThreadFuture, "return getAsync<Q>(value).await()", true},
		{"get", models.EventLoopPromise, "return getAsync<Q>(value).await()", false},
		{"run", models.Blocking, "return runBlocking()", true},
		{"tag", models.Blocking, "tagBlocking(*labels, limit)", true},
		{"tag", models.ThreadFuture, "tagAsync(*labels, limit).await()", true},
	}
	for _, tt := range tests {
		t.Run(tt.method+"/"+tt.profile.String(), func(t *testing.T) {
			original := method(t, f.bar, tt.method)
			policy := f.policies[tt.profile]

			pair, err := s.Pair(f.bar, original, policy, suffix(policy), cfg)
			require.NoError(t, err)

			bridge := pair.Bridge
			assert.Equal(t, tt.statement, bridge.Body.Statement())
			assert.Equal(t, original.Name, bridge.Name)
			assert.Equal(t, []string{"override", "suspend"}, bridge.Modifiers.Strings())
			assert.Equal(t, original.ReturnType.String(), bridge.ReturnType.String())
			if tt.synthetic {
				require.Len(t, bridge.Annotations, 1)
				assert.Equal(t, "@JvmSynthetic", bridge.Annotations[0].String())
			} else {
				assert.Empty(t, bridge.Annotations)
			}
		})
	}

	unmarked, err := s.Pair(f.bar, method(t, f.bar, "get"), f.policies[models.Blocking], suffix(f.policies[models.Blocking]), models.GenerationConfig{})
	require.NoError(t, err)
	assert.Empty(t, unmarked.Bridge.Annotations)
}

func TestSynthesizer_OverrideSafety(t *testing.T) {
	f := setup(t)
	s := NewSynthesizer(NewHierarchyResolver(f.hierarchy), DefaultAnnotationPolicy())
	blocking := f.policies[models.Blocking]

	pair, err := s.Pair(f.s2, method(t, f.s2, "run"), blocking, suffix(blocking), models.GenerationConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"abstract", "override"}, pair.Method.Modifiers.Strings())
	assert.Equal(t, "runBlocking()", pair.Bridge.Body.Statement())

	pair, err = s.Pair(f.bar, method(t, f.bar, "run"), blocking, suffix(blocking), models.GenerationConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"abstract"}, pair.Method.Modifiers.Strings())

	_, err = s.Pair(f.s2, method(t, f.s2, "stop"), blocking, suffix(blocking), models.GenerationConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedSignature))
	assert.Contains(t, err.Error(), "pk1.pk2.S2.stop")
	assert.Contains(t, err.Error(), "final member")
}
