package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

func marker(args ...models.AnnotationArg) models.Annotation {
	return models.Annotation{
		Name:          "SuspendReversal",
		QualifiedName: MarkerAnnotation.QualifiedName(),
		Args:          args,
	}
}

func named(name, value string) models.AnnotationArg {
	return models.AnnotationArg{Name: name, Value: value}
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()
	assert.Same(t, registry, DefaultRegistry())
	assert.Equal(t, allTypes, registry.ListTypes())

	schema, err := registry.GetSchema(JAsyncAnnotation)
	require.NoError(t, err)
	assert.Equal(t, "Async", schema.DefaultString("suffix"))

	schema, err = registry.GetSchema(MarkerAnnotation)
	require.NoError(t, err)
	assert.Len(t, schema.Validators, 1, "companion name check is attached to the registered marker schema")
}

func TestRegister_RejectsInvalidSchemas(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(JBlockingAnnotation, SuspendReversalSchema)
	assert.ErrorContains(t, err, "does not match")

	bad := AnnotationSchema{
		Type:       MarkerAnnotation,
		Parameters: map[string]ParameterSpec{"x": {Type: BoolType, DefaultValue: "yes"}},
	}
	assert.ErrorContains(t, registry.Register(MarkerAnnotation, bad), "must be Boolean")

	require.NoError(t, registry.Register(MarkerAnnotation, SuspendReversalSchema))
	assert.ErrorContains(t, registry.Register(MarkerAnnotation, SuspendReversalSchema), "already registered")
}

func TestValueParser(t *testing.T) {
	p := NewValueParser()
	tests := []struct {
		text string
		want interface{}
	}{
		{"true", true},
		{"false", false},
		{`"JBlocking"`, "JBlocking"},
		{`"tab\tandA"`, "tab\tandA"},
		{`"""raw\n"""`, `raw\n`},
		{"1_000", 1000},
		{"42L", 42},
		{"Constants.PREFIX", Reference("Constants.PREFIX")},
		{"IOException::class", Reference("IOException::class")},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := p.Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := p.Parse(`"${prefix}"`)
	assert.ErrorContains(t, err, "string templates")
}

func TestDecoder_Decode(t *testing.T) {
	d := NewDecoder(DefaultRegistry())

	t.Run("named and positional arguments", func(t *testing.T) {
		parsed, err := d.Decode(marker(
			models.AnnotationArg{Value: "false"},
			named("jsAsyncClassNamePrefix", `"Js"`),
		), MarkerAnnotation)
		require.NoError(t, err)
		assert.False(t, parsed.GetBool("jBlocking", true))
		assert.Equal(t, "Js", parsed.GetString("jsAsyncClassNamePrefix"))
		assert.True(t, parsed.GetBool("markJvmSynthetic", true), "absent parameters fall back to the given default")
	})

	t.Run("unknown parameter", func(t *testing.T) {
		_, err := d.Decode(marker(named("jvmBlocking", "true")), MarkerAnnotation)
		require.Error(t, err)
		assert.Equal(t, errors.ValidationErrorCode, errors.CodeOf(err))
		assert.Contains(t, err.Error(), "unknown parameter 'jvmBlocking'")
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := d.Decode(marker(named("jAsync", `"yes"`)), MarkerAnnotation)
		assert.ErrorContains(t, err, "must be Boolean")
	})

	t.Run("references are rejected", func(t *testing.T) {
		_, err := d.Decode(marker(named("jAsyncClassNamePrefix", "Names.ASYNC")), MarkerAnnotation)
		assert.ErrorContains(t, err, "must be a String literal")
	})

	t.Run("empty companion name", func(t *testing.T) {
		_, err := d.Decode(marker(named("jAsyncClassNamePrefix", `""`)), MarkerAnnotation)
		assert.ErrorContains(t, err, "reuse the original type name")

		_, err = d.Decode(marker(named("jAsyncClassNamePrefix", `""`), named("jAsyncClassNameSuffix", `"Async"`)), MarkerAnnotation)
		assert.NoError(t, err)
	})

	t.Run("invalid identifier characters", func(t *testing.T) {
		_, err := d.Decode(marker(named("jBlockingClassNamePrefix", `"J-"`)), MarkerAnnotation)
		assert.ErrorContains(t, err, "cannot appear in an identifier")
	})
}

func TestDecoder_Classify(t *testing.T) {
	d := NewDecoder(DefaultRegistry())

	typ, ok := d.Classify(models.Annotation{Name: "SuspendReversal.JBlocking"})
	require.True(t, ok)
	assert.Equal(t, JBlockingAnnotation, typ)

	typ, ok = d.Classify(models.Annotation{Name: "JAsync", QualifiedName: JAsyncAnnotation.QualifiedName()})
	require.True(t, ok)
	assert.Equal(t, JAsyncAnnotation, typ)

	_, ok = d.Classify(models.Annotation{Name: "SuspendReversal", QualifiedName: "other.pkg.SuspendReversal"})
	assert.False(t, ok, "a resolved name from another package is not the marker")

	_, ok = d.Classify(models.Annotation{Name: "JvmSynthetic"})
	assert.False(t, ok)
}

func TestDecoder_Aliases(t *testing.T) {
	d := NewDecoder(DefaultRegistry())

	alias := &models.TypeDecl{
		Name:        "MyReversal",
		Kind:        models.KindAnnotation,
		Annotations: []models.Annotation{marker(named("markJvmSynthetic", "false"))},
	}
	file := &models.SourceFile{Package: "pk1.pk2", Types: []*models.TypeDecl{alias}}
	file.Link()

	assert.False(t, d.RegisterAlias(&models.TypeDecl{Name: "Foo", Kind: models.KindInterface}))
	require.True(t, d.RegisterAlias(alias))
	assert.Equal(t, []string{"pk1.pk2.MyReversal"}, d.Aliases())

	parsed, found, err := d.FindMarker([]models.Annotation{
		{Name: "Deprecated"},
		{Name: "MyReversal", QualifiedName: "pk1.pk2.MyReversal"},
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, parsed.GetBool("markJvmSynthetic", true))
	assert.Equal(t, "MyReversal", parsed.Name)

	_, found, err = d.FindMarker([]models.Annotation{{Name: "Deprecated"}})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDecoder_ExternalAlias(t *testing.T) {
	d := NewDecoder(DefaultRegistry())
	d.RegisterExternalAlias("org.lib.Reversible")
	d.RegisterExternalAlias("org.lib.Reversible")
	assert.Equal(t, []string{"org.lib.Reversible"}, d.Aliases())

	for _, a := range []models.Annotation{
		{Name: "Reversible", QualifiedName: "org.lib.Reversible"},
		{Name: "Reversible"},
	} {
		parsed, found, err := d.FindMarker([]models.Annotation{a})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, MarkerAnnotation, parsed.Type)
		assert.Equal(t, "Reversible", parsed.Name)
	}

	_, found, err := d.FindMarker([]models.Annotation{{Name: "Reversible", QualifiedName: "other.Reversible"}})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDecoder_MethodNaming(t *testing.T) {
	d := NewDecoder(DefaultRegistry())
	f := &models.FunctionDecl{
		Name: "get",
		Annotations: []models.Annotation{
			{Name: "SuspendReversal.JAsync", Args: []models.AnnotationArg{named("baseName", `"fetch"`)}},
		},
	}

	parsed, found, err := d.MethodNaming(f, models.ThreadFuture)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "fetch", parsed.GetString("baseName"))

	_, found, err = d.MethodNaming(f, models.Blocking)
	require.NoError(t, err)
	assert.False(t, found)
}
