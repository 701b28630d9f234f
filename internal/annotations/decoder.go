package annotations

import (
	"fmt"
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

var allTypes = []AnnotationType{MarkerAnnotation, JBlockingAnnotation, JAsyncAnnotation, JsAsyncAnnotation}

// Decoder recognises SuspendReversal annotations on declarations and decodes
// their arguments against the registered schemas.
//
// Aliases are registered while inputs are loaded; afterwards a Decoder is
// only read and may be shared between goroutines.
type Decoder struct {
	registry AnnotationRegistry
	values   *ValueParser
	aliases  map[string]models.Annotation // alias class qualified name -> marker applied to it
	simple   map[string][]string          // alias simple name -> qualified names
}

// NewDecoder creates a decoder backed by registry
func NewDecoder(registry AnnotationRegistry) *Decoder {
	return &Decoder{
		registry: registry,
		values:   NewValueParser(),
		aliases:  make(map[string]models.Annotation),
		simple:   make(map[string][]string),
	}
}

// Classify reports which built-in annotation a is, matching the resolved
// qualified name first and the name as written otherwise.
func (d *Decoder) Classify(a models.Annotation) (AnnotationType, bool) {
	for _, t := range allTypes {
		if a.QualifiedName != "" {
			if a.QualifiedName == t.QualifiedName() {
				return t, true
			}
			continue
		}
		if a.Name == t.String() {
			return t, true
		}
	}
	return 0, false
}

// RegisterAlias records decl as a configuration alias when it is an
// annotation class carrying the marker. It reports whether decl was recorded.
func (d *Decoder) RegisterAlias(decl *models.TypeDecl) bool {
	if decl.Kind != models.KindAnnotation {
		return false
	}
	for _, a := range decl.Annotations {
		if t, ok := d.Classify(a); ok && t == MarkerAnnotation {
			qn := decl.QualifiedName()
			if _, exists := d.aliases[qn]; !exists {
				d.simple[decl.Name] = append(d.simple[decl.Name], qn)
			}
			d.aliases[qn] = a
			return true
		}
	}
	return false
}

// RegisterExternalAlias records an alias class declared outside the inputs.
// It stands for a marker without arguments.
func (d *Decoder) RegisterExternalAlias(qualifiedName string) {
	if _, exists := d.aliases[qualifiedName]; exists {
		return
	}
	simple := qualifiedName
	if i := strings.LastIndexByte(simple, '.'); i >= 0 {
		simple = simple[i+1:]
	}
	d.simple[simple] = append(d.simple[simple], qualifiedName)
	d.aliases[qualifiedName] = models.Annotation{
		Name:          MarkerAnnotation.String(),
		QualifiedName: MarkerAnnotation.QualifiedName(),
	}
}

// Aliases returns the qualified names of every registered alias
func (d *Decoder) Aliases() []string {
	names := make([]string, 0, len(d.aliases))
	for qn := range d.aliases {
		names = append(names, qn)
	}
	return names
}

// alias returns the marker carried by the alias class a refers to
func (d *Decoder) alias(a models.Annotation) (models.Annotation, bool) {
	if a.QualifiedName != "" {
		m, ok := d.aliases[a.QualifiedName]
		return m, ok
	}
	// unresolved names match an alias only when the simple name is unambiguous
	candidates := d.simple[a.SimpleName()]
	if len(candidates) == 1 {
		return d.aliases[candidates[0]], true
	}
	return models.Annotation{}, false
}

// MarkerOf returns the marker annotation a stands for: a itself when it is
// @SuspendReversal, or the marker on the alias class it names.
func (d *Decoder) MarkerOf(a models.Annotation) (models.Annotation, bool) {
	if t, ok := d.Classify(a); ok {
		return a, t == MarkerAnnotation
	}
	return d.alias(a)
}

// FindMarker decodes the first marker or alias among annotations
func (d *Decoder) FindMarker(annotations []models.Annotation) (*ParsedAnnotation, bool, error) {
	for _, a := range annotations {
		marker, ok := d.MarkerOf(a)
		if !ok {
			continue
		}
		parsed, err := d.Decode(marker, MarkerAnnotation)
		if err != nil {
			return nil, true, err
		}
		parsed.Name = a.Name
		return parsed, true, nil
	}
	return nil, false, nil
}

// MethodNaming decodes the per-method naming annotation of profile p on f
func (d *Decoder) MethodNaming(f *models.FunctionDecl, p models.Profile) (*ParsedAnnotation, bool, error) {
	want := ForProfile(p)
	for _, a := range f.Annotations {
		if t, ok := d.Classify(a); ok && t == want {
			parsed, err := d.Decode(a, want)
			return parsed, true, err
		}
	}
	return nil, false, nil
}

// Decode maps the arguments of a onto the schema of annotationType and
// validates them. Positional arguments follow the schema's parameter order.
func (d *Decoder) Decode(a models.Annotation, annotationType AnnotationType) (*ParsedAnnotation, error) {
	schema, err := d.registry.GetSchema(annotationType)
	if err != nil {
		return nil, errors.Wrap(errors.SchemaErrorCode, "no schema", err).WithLocation(a.Loc)
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Name:       a.Name,
		Parameters: make(map[string]interface{}),
		Location:   a.Loc,
		Raw:        a.String(),
	}

	collected := errors.NewMultipleErrors()
	fail := func(field, format string, args ...interface{}) {
		collected.Add(errors.NewValidationError(field, fmt.Sprintf("@%s: ", a.Name)+fmt.Sprintf(format, args...)).
			WithLocation(a.Loc))
	}

	for i, arg := range a.Args {
		name := arg.Name
		if name == "" {
			if i >= len(schema.Order) {
				fail("", "too many arguments, %s takes %d", annotationType, len(schema.Order))
				continue
			}
			name = schema.Order[i]
		}

		spec, known := schema.Parameters[name]
		if !known {
			fail(name, "unknown parameter '%s'", name)
			continue
		}
		if _, dup := parsed.Parameters[name]; dup {
			fail(name, "parameter '%s' is given more than once", name)
			continue
		}

		value, err := d.values.Parse(arg.Value)
		if err != nil {
			fail(name, "%v", err)
			continue
		}
		if ref, isRef := value.(Reference); isRef {
			fail(name, "parameter '%s' must be a %s literal, got %s", name, spec.Type, string(ref))
			continue
		}
		if err := checkValueType(name, spec.Type, value); err != nil {
			fail(name, "%v", err)
			continue
		}
		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				fail(name, "invalid value for '%s': %v", name, err)
				continue
			}
		}
		parsed.Parameters[name] = value
	}

	for name, spec := range schema.Parameters {
		if spec.Required && !parsed.HasParameter(name) {
			fail(name, "missing required parameter '%s'", name)
		}
	}

	if collected.IsEmpty() {
		for _, validate := range schema.Validators {
			if err := validate(parsed); err != nil {
				fail("", "%v", err)
			}
		}
	}

	if err := collected.ErrorOrNil(); err != nil {
		return nil, err
	}
	return parsed, nil
}
