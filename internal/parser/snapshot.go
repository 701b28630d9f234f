package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// A declaration snapshot describes the declarations of one Kotlin file as
// exported by a host toolchain. Types, parameters and annotations are
// written as Kotlin source fragments and parsed with the same grammar as
// source files:
//
//	package: pk1.pk2
//	imports: [java.io.IOException]
//	types:
//	  - name: Foo
//	    kind: interface
//	    annotations: ["@SuspendReversal"]
//	    functions:
//	      - name: get
//	        modifiers: [suspend]
//	        parameters: ["value: Int"]
//	        returns: String
type snapshotFile struct {
	Package     string          `yaml:"package"`
	Imports     []string        `yaml:"imports"`
	Annotations []string        `yaml:"annotations"`
	Types       []*snapshotType `yaml:"types"`
}

type snapshotType struct {
	Name           string              `yaml:"name"`
	Kind           string              `yaml:"kind"`
	Modifiers      []string            `yaml:"modifiers"`
	Annotations    []string            `yaml:"annotations"`
	TypeParameters []string            `yaml:"typeParameters"`
	Supertypes     []snapshotSupertype `yaml:"supertypes"`
	Constructor    *snapshotCtor       `yaml:"constructor"`
	Functions      []*snapshotFunction `yaml:"functions"`
	Properties     []*snapshotProperty `yaml:"properties"`
	Nested         []*snapshotType     `yaml:"nested"`

	line, column int
}

type snapshotSupertype struct {
	Type string   `yaml:"type"`
	Args []string `yaml:"args"`
	// Invoked marks a constructor call without arguments, `Base()`
	Invoked bool `yaml:"invoked"`
}

type snapshotCtor struct {
	Modifiers  []string `yaml:"modifiers"`
	Parameters []string `yaml:"parameters"`
}

type snapshotFunction struct {
	Name           string   `yaml:"name"`
	Modifiers      []string `yaml:"modifiers"`
	Annotations    []string `yaml:"annotations"`
	TypeParameters []string `yaml:"typeParameters"`
	Receiver       string   `yaml:"receiver"`
	Parameters     []string `yaml:"parameters"`
	Returns        string   `yaml:"returns"`
	// HasBody marks a member with a default implementation
	HasBody bool `yaml:"hasBody"`

	line, column int
}

type snapshotProperty struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Receiver string `yaml:"receiver"`
	Mutable  bool   `yaml:"mutable"`

	line, column int
}

func (t *snapshotType) UnmarshalYAML(node *yaml.Node) error {
	type plain snapshotType
	if err := node.Decode((*plain)(t)); err != nil {
		return err
	}
	t.line, t.column = node.Line, node.Column
	return nil
}

func (f *snapshotFunction) UnmarshalYAML(node *yaml.Node) error {
	type plain snapshotFunction
	if err := node.Decode((*plain)(f)); err != nil {
		return err
	}
	f.line, f.column = node.Line, node.Column
	return nil
}

func (p *snapshotProperty) UnmarshalYAML(node *yaml.Node) error {
	type plain snapshotProperty
	if err := node.Decode((*plain)(p)); err != nil {
		return err
	}
	p.line, p.column = node.Line, node.Column
	return nil
}

var snapshotKinds = map[string]models.TypeKind{
	"":           models.KindInterface,
	"interface":  models.KindInterface,
	"class":      models.KindClass,
	"object":     models.KindObject,
	"annotation": models.KindAnnotation,
	"enum":       models.KindEnum,
}

// ParseSnapshot decodes a YAML declaration snapshot
func (p *Parser) ParseSnapshot(path string, data []byte) (*models.SourceFile, error) {
	var snap snapshotFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil {
		return nil, errors.WrapParseError("declaration snapshot "+path, err).
			WithLocation(errors.SourceLocation{File: path})
	}

	s := &snapshotLoader{parser: p, lowerer: newLowerer(path, "", p.elided)}
	s.lowerer.pkg = snap.Package
	for _, imp := range snap.Imports {
		s.lowerer.imports = append(s.lowerer.imports, parseImport(imp))
	}
	for _, t := range snap.Types {
		s.lowerer.local[t.Name] = true
	}

	file := &models.SourceFile{
		Path:    path,
		Package: snap.Package,
		Imports: s.lowerer.imports,
	}
	for i, text := range snap.Annotations {
		trimmed := strings.TrimPrefix(strings.TrimSpace(text), "@")
		trimmed = strings.TrimPrefix(trimmed, "file:")
		a, err := s.annotation(fmt.Sprintf("file annotation #%d", i+1), trimmed, errors.SourceLocation{File: path})
		if err != nil {
			return nil, err
		}
		a.Target = "file"
		file.Annotations = append(file.Annotations, a)
	}
	for _, t := range snap.Types {
		decl, err := s.typeDecl(t)
		if err != nil {
			return nil, err
		}
		file.Types = append(file.Types, decl)
	}
	file.Link()
	return file, nil
}

func parseImport(text string) models.Import {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "import "))
	if path, alias, ok := strings.Cut(text, " as "); ok {
		return models.Import{Path: strings.TrimSpace(path), Alias: strings.TrimSpace(alias)}
	}
	if path, ok := strings.CutSuffix(text, ".*"); ok {
		return models.Import{Path: path, Wildcard: true}
	}
	return models.Import{Path: text}
}

// snapshotLoader parses the source fragments of one snapshot
type snapshotLoader struct {
	parser  *Parser
	lowerer *lowerer
}

func (s *snapshotLoader) where(line, column int) errors.SourceLocation {
	return errors.SourceLocation{File: s.lowerer.path, Line: line, Column: column}
}

func (s *snapshotLoader) fail(what string, loc errors.SourceLocation, err error) error {
	wrapped := errors.WrapParseError(what, err).WithLocation(loc)
	return wrapped.WithSuggestion("snapshot fragments are written as Kotlin source, e.g. \"value: Int\" or \"out T : Any\"")
}

func (s *snapshotLoader) typeDecl(t *snapshotType) (*models.TypeDecl, error) {
	loc := s.where(t.line, t.column)
	kind, ok := snapshotKinds[strings.ToLower(t.Kind)]
	if !ok {
		return nil, errors.NewValidationError("kind", fmt.Sprintf("type '%s' has unknown kind '%s'", t.Name, t.Kind)).
			WithLocation(loc).
			WithSuggestion("use interface, class, object, annotation or enum")
	}
	if t.Name == "" {
		return nil, errors.NewValidationError("name", "snapshot type without a name").WithLocation(loc)
	}

	decl := &models.TypeDecl{
		Name:      t.Name,
		Kind:      kind,
		Modifiers: modifierSet(t.Modifiers),
		Loc:       loc,
	}
	switch kind {
	case models.KindAnnotation:
		decl.Modifiers = decl.Modifiers.With(models.ModAnnotation)
	case models.KindEnum:
		decl.Modifiers = decl.Modifiers.With(models.ModEnum)
	}

	var err error
	if decl.Annotations, err = s.annotations(t.Name, t.Annotations, loc); err != nil {
		return nil, err
	}
	if decl.TypeParams, err = s.typeParams(t.Name, t.TypeParameters, loc); err != nil {
		return nil, err
	}

	if t.Constructor != nil {
		ctor := &models.Constructor{Modifiers: modifierSet(t.Constructor.Modifiers)}
		if ctor.Params, err = s.parameters(t.Name+" constructor", t.Constructor.Parameters, loc); err != nil {
			return nil, err
		}
		for _, param := range ctor.Params {
			if param.Binding != "" {
				decl.Properties = append(decl.Properties, &models.PropertyDecl{
					Name:    param.Name,
					Mutable: param.Binding == "var",
					Type:    param.Type,
					Loc:     loc,
				})
			}
		}
		decl.PrimaryConstructor = ctor
	}

	for _, st := range t.Supertypes {
		ref, err := s.typeRef(t.Name+" supertype", st.Type, loc)
		if err != nil {
			return nil, err
		}
		decl.Supertypes = append(decl.Supertypes, models.SuperTypeRef{
			Type:    ref,
			Invoked: st.Invoked || len(st.Args) > 0,
			Args:    st.Args,
		})
	}

	for _, f := range t.Functions {
		fn, err := s.function(t.Name, f)
		if err != nil {
			return nil, err
		}
		decl.Functions = append(decl.Functions, fn)
	}

	for _, p := range t.Properties {
		ploc := s.where(p.line, p.column)
		prop := &models.PropertyDecl{Name: p.Name, Mutable: p.Mutable, Loc: ploc}
		if prop.Type, err = s.optionalTypeRef(t.Name+"."+p.Name+" type", p.Type, ploc); err != nil {
			return nil, err
		}
		if prop.Receiver, err = s.optionalTypeRef(t.Name+"."+p.Name+" receiver", p.Receiver, ploc); err != nil {
			return nil, err
		}
		decl.Properties = append(decl.Properties, prop)
	}

	for _, n := range t.Nested {
		nested, err := s.typeDecl(n)
		if err != nil {
			return nil, err
		}
		decl.Nested = append(decl.Nested, nested)
	}
	return decl, nil
}

func (s *snapshotLoader) function(owner string, f *snapshotFunction) (*models.FunctionDecl, error) {
	loc := s.where(f.line, f.column)
	if f.Name == "" {
		return nil, errors.NewValidationError("name", fmt.Sprintf("function without a name in '%s'", owner)).WithLocation(loc)
	}
	what := owner + "." + f.Name
	fn := &models.FunctionDecl{
		Name:      f.Name,
		Modifiers: modifierSet(f.Modifiers),
		HasBody:   f.HasBody,
		Loc:       loc,
	}

	var err error
	if fn.Annotations, err = s.annotations(what, f.Annotations, loc); err != nil {
		return nil, err
	}
	if fn.TypeParams, err = s.typeParams(what, f.TypeParameters, loc); err != nil {
		return nil, err
	}
	if fn.Receiver, err = s.optionalTypeRef(what+" receiver", f.Receiver, loc); err != nil {
		return nil, err
	}
	if fn.Params, err = s.parameters(what, f.Parameters, loc); err != nil {
		return nil, err
	}
	if fn.ReturnType, err = s.optionalTypeRef(what+" return type", f.Returns, loc); err != nil {
		return nil, err
	}
	return fn, nil
}

func modifierSet(words []string) models.Modifiers {
	var out models.Modifiers
	for _, w := range words {
		out = out.With(models.Modifier(strings.TrimSpace(w)))
	}
	return out
}

func (s *snapshotLoader) annotations(owner string, texts []string, loc errors.SourceLocation) ([]models.Annotation, error) {
	var out []models.Annotation
	for _, text := range texts {
		a, err := s.annotation(owner+" annotation", strings.TrimPrefix(strings.TrimSpace(text), "@"), loc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *snapshotLoader) annotation(what, text string, loc errors.SourceLocation) (models.Annotation, error) {
	entry, err := s.parser.annotation.ParseString(loc.File, text)
	if err != nil {
		return models.Annotation{}, s.fail(what, loc, err)
	}
	s.lowerer.source = text
	a, _ := s.lowerer.annotationEntry(entry, "")
	a.Loc = loc
	return a, nil
}

func (s *snapshotLoader) typeParams(owner string, texts []string, loc errors.SourceLocation) ([]models.TypeParameter, error) {
	var parsed []*typeParam
	for _, text := range texts {
		tp, err := s.parser.typeParam.ParseString(loc.File, text)
		if err != nil {
			return nil, s.fail(owner+" type parameter", loc, err)
		}
		parsed = append(parsed, tp)
	}
	return s.lowerer.typeParams(parsed, nil), nil
}

func (s *snapshotLoader) parameters(owner string, texts []string, loc errors.SourceLocation) ([]models.Parameter, error) {
	var out []models.Parameter
	for _, text := range texts {
		p, err := s.parser.parameter.ParseString(loc.File, text)
		if err != nil {
			return nil, s.fail(owner+" parameter", loc, err)
		}
		s.lowerer.source = text
		param, ok := s.lowerer.parameter(p)
		if !ok {
			return nil, s.fail(owner+" parameter", loc, errors.Errorf("incomplete parameter %q", text))
		}
		out = append(out, param)
	}
	return out, nil
}

func (s *snapshotLoader) optionalTypeRef(what, text string, loc errors.SourceLocation) (*models.TypeRef, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return s.typeRef(what, text, loc)
}

func (s *snapshotLoader) typeRef(what, text string, loc errors.SourceLocation) (*models.TypeRef, error) {
	t, err := s.parser.typeRef.ParseString(loc.File, text)
	if err != nil {
		return nil, s.fail(what, loc, err)
	}
	ref := s.lowerer.typeRef(t)
	if ref == nil {
		return nil, s.fail(what, loc, errors.Errorf("incomplete type %q", text))
	}
	return ref, nil
}
