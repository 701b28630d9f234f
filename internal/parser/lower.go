package parser

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// lowerer converts the parse tree of one file into the declaration model
type lowerer struct {
	path    string
	source  string
	elided  map[lexer.TokenType]bool
	imports []models.Import
	pkg     string
	local   map[string]bool // top-level type names of the file
}

func newLowerer(path, source string, elided map[lexer.TokenType]bool) *lowerer {
	return &lowerer{path: path, source: source, elided: elided, local: make(map[string]bool)}
}

func (l *lowerer) file(f *kotlinFile) *models.SourceFile {
	l.pkg = strings.Join(f.Package, ".")
	for _, imp := range f.Imports {
		if imp == nil || len(imp.Path) == 0 {
			continue
		}
		l.imports = append(l.imports, models.Import{
			Path:     strings.Join(imp.Path, "."),
			Alias:    imp.Alias,
			Wildcard: imp.Wildcard,
		})
	}
	for _, m := range f.Members {
		if m != nil && m.Decl != nil && m.Decl.Class != nil && m.Decl.Class.Name != "" {
			l.local[m.Decl.Class.Name] = true
		}
	}

	out := &models.SourceFile{
		Path:    l.path,
		Package: l.pkg,
		Imports: l.imports,
	}
	for _, fa := range f.Annotations {
		if fa == nil {
			continue
		}
		for _, entry := range fa.Entries {
			if a, ok := l.annotationEntry(entry, "file"); ok {
				out.Annotations = append(out.Annotations, a)
			}
		}
	}
	for _, m := range f.Members {
		if t := l.memberType(m); t != nil {
			out.Types = append(out.Types, t)
		}
	}
	out.Link()
	return out
}

func (l *lowerer) memberType(m *member) *models.TypeDecl {
	if m == nil || m.Decl == nil || m.Decl.Class == nil {
		return nil
	}
	return l.class(m.Decl)
}

func (l *lowerer) class(d *declaration) *models.TypeDecl {
	c := d.Class
	annotations, modifiers := l.prefix(d.Prefix)
	name := c.Name
	if name == "" {
		if c.Kind != "object" || !modifiers.Has(models.ModCompanion) {
			return nil
		}
		name = "Companion"
	}

	t := &models.TypeDecl{
		Name:        name,
		Kind:        kindOf(c.Kind, modifiers),
		Modifiers:   modifiers,
		Annotations: annotations,
		TypeParams:  l.typeParams(c.TypeParams, c.Where),
		Loc:         l.loc(d.Pos),
	}
	if c.Fun {
		t.Modifiers = t.Modifiers.With(models.ModFun)
	}

	if c.Ctor != nil {
		_, ctorMods := l.prefix(c.Ctor.Prefix)
		ctor := &models.Constructor{Modifiers: ctorMods}
		for _, p := range c.Ctor.Params {
			param, ok := l.parameter(p)
			if !ok {
				continue
			}
			ctor.Params = append(ctor.Params, param)
			if param.Binding != "" {
				t.Properties = append(t.Properties, &models.PropertyDecl{
					Name:    param.Name,
					Mutable: param.Binding == "var",
					Type:    param.Type,
					Loc:     l.loc(p.Pos),
				})
			}
		}
		t.PrimaryConstructor = ctor
	}

	for _, s := range c.Supers {
		if s == nil || s.Type == nil {
			continue
		}
		ref := models.SuperTypeRef{Type: l.typeRef(s.Type)}
		if ref.Type == nil {
			continue
		}
		if s.Call != nil {
			ref.Invoked = true
			for _, arg := range s.Call.Args {
				ref.Args = append(ref.Args, l.text(arg.Tokens))
			}
		}
		t.Supertypes = append(t.Supertypes, ref)
	}

	if c.Body != nil {
		for _, m := range c.Body.Members {
			if m == nil || m.Decl == nil {
				continue
			}
			switch {
			case m.Decl.Class != nil:
				if nested := l.class(m.Decl); nested != nil {
					t.Nested = append(t.Nested, nested)
				}
			case m.Decl.Function != nil:
				if f := l.function(m.Decl); f != nil {
					t.Functions = append(t.Functions, f)
				}
			case m.Decl.Property != nil:
				if p := l.property(m.Decl); p != nil {
					t.Properties = append(t.Properties, p)
				}
			}
		}
	}
	return t
}

func kindOf(keyword string, modifiers models.Modifiers) models.TypeKind {
	switch keyword {
	case "interface":
		return models.KindInterface
	case "object":
		return models.KindObject
	}
	switch {
	case modifiers.Has(models.ModAnnotation):
		return models.KindAnnotation
	case modifiers.Has(models.ModEnum):
		return models.KindEnum
	default:
		return models.KindClass
	}
}

func (l *lowerer) function(d *declaration) *models.FunctionDecl {
	fn := d.Function
	if len(fn.Path) == 0 {
		return nil
	}
	annotations, modifiers := l.prefix(d.Prefix)
	last := fn.Path[len(fn.Path)-1]

	f := &models.FunctionDecl{
		Name:        unquote(last.Name),
		Modifiers:   modifiers,
		Annotations: annotations,
		TypeParams:  l.typeParams(fn.TypeParams, fn.Where),
		Receiver:    l.pathType(fn.Path[:len(fn.Path)-1], false),
		ReturnType:  l.typeRef(fn.Return),
		HasBody:     fn.Body != nil,
		Loc:         l.loc(d.Pos),
	}
	for _, p := range fn.Params {
		if param, ok := l.parameter(p); ok {
			f.Params = append(f.Params, param)
		}
	}
	return f
}

func (l *lowerer) property(d *declaration) *models.PropertyDecl {
	p := d.Property
	if len(p.Path) == 0 {
		return nil
	}
	last := p.Path[len(p.Path)-1]
	return &models.PropertyDecl{
		Name:     unquote(last.Name),
		Receiver: l.pathType(p.Path[:len(p.Path)-1], false),
		Mutable:  p.Mutable == "var",
		Type:     l.typeRef(p.Type),
		Loc:      l.loc(d.Pos),
	}
}

func (l *lowerer) prefix(prefix []*declPrefix) ([]models.Annotation, models.Modifiers) {
	var (
		annotations []models.Annotation
		modifiers   models.Modifiers
	)
	for _, p := range prefix {
		switch {
		case p == nil:
		case p.Annotation != nil:
			if a, ok := l.annotationEntry(p.Annotation.Entry, ""); ok {
				annotations = append(annotations, a)
			}
		case p.Modifier != "":
			modifiers = append(modifiers, models.Modifier(p.Modifier))
		}
	}
	return annotations, modifiers
}

func (l *lowerer) parameter(p *parameter) (models.Parameter, bool) {
	if p == nil || p.Name == "" || p.Type == nil {
		return models.Parameter{}, false
	}
	param := models.Parameter{
		Name:    unquote(p.Name),
		Type:    l.typeRef(p.Type),
		Binding: p.Binding,
	}
	if param.Type == nil {
		return models.Parameter{}, false
	}
	for _, pre := range p.Prefix {
		switch {
		case pre == nil:
		case pre.Annotation != nil:
			if a, ok := l.annotationEntry(pre.Annotation.Entry, ""); ok {
				param.Annotations = append(param.Annotations, a)
			}
		case pre.Modifier == "vararg":
			param.Vararg = true
		}
	}
	if p.Default != nil {
		param.Default = l.text(p.Default.Tokens)
	}
	return param, true
}

func (l *lowerer) typeParams(params []*typeParam, where []*constraint) []models.TypeParameter {
	var out []models.TypeParameter
	for _, tp := range params {
		if tp == nil || tp.Name == "" {
			continue
		}
		param := models.TypeParameter{Name: tp.Name}
		for _, m := range tp.Modifiers {
			if m == "reified" {
				param.Reified = true
			} else {
				param.Variance = models.ParseVariance(m)
			}
		}
		if bound := l.typeRef(tp.Bound); bound != nil {
			param.Bounds = append(param.Bounds, bound)
		}
		for _, c := range where {
			if c != nil && c.Name == tp.Name {
				if bound := l.typeRef(c.Bound); bound != nil {
					param.Bounds = append(param.Bounds, bound)
				}
			}
		}
		out = append(out, param)
	}
	return out
}

func (l *lowerer) typeRef(t *typeRef) *models.TypeRef {
	if t == nil {
		return nil
	}
	var ref *models.TypeRef
	switch {
	case t.Function != nil:
		ref = &models.TypeRef{Function: l.functionType(t.Function, t.Suspend)}
	case t.Paren != nil:
		inner := l.typeRef(t.Paren)
		if inner == nil {
			return nil
		}
		copied := *inner
		ref = &copied
		if t.Suspend && ref.Function != nil {
			fn := *ref.Function
			fn.Suspend = true
			ref.Function = &fn
		}
	case len(t.Named) > 0:
		ref = l.pathType(t.Named, false)
	default:
		return nil
	}
	if t.Nullable {
		ref.Nullable = true
	}
	return ref
}

// pathType joins dotted segments into one named type. Type arguments and
// nullability are taken from the last segment.
func (l *lowerer) pathType(segments []*pathSegment, nullable bool) *models.TypeRef {
	if len(segments) == 0 {
		return nil
	}
	names := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == nil {
			return nil
		}
		names = append(names, s.Name)
	}
	last := segments[len(segments)-1]
	ref := &models.TypeRef{
		Name:     strings.Join(names, "."),
		Nullable: nullable || last.Nullable,
	}
	for _, a := range last.Args {
		if arg, ok := l.typeArg(a); ok {
			ref.Args = append(ref.Args, arg)
		}
	}
	return ref
}

func (l *lowerer) typeArg(a *typeArg) (models.TypeArg, bool) {
	switch {
	case a == nil:
		return models.TypeArg{}, false
	case a.Star:
		return models.TypeArg{Star: true}, true
	}
	t := l.typeRef(a.Type)
	if t == nil {
		return models.TypeArg{}, false
	}
	return models.TypeArg{Variance: models.ParseVariance(a.Variance), Type: t}, true
}

func (l *lowerer) functionType(f *functionType, suspend bool) *models.FunctionType {
	fn := &models.FunctionType{
		Suspend:  suspend,
		Receiver: l.pathType(f.Receiver, f.ReceiverNullable),
		Return:   l.typeRef(f.Return),
	}
	for _, p := range f.Params {
		if p == nil {
			continue
		}
		if t := l.typeRef(p.Type); t != nil {
			fn.Params = append(fn.Params, models.FunctionTypeParam{Name: p.Name, Type: t})
		}
	}
	if fn.Return == nil {
		fn.Return = models.NamedType("Unit")
	}
	return fn
}

func (l *lowerer) annotationEntry(e *annotationEntry, target string) (models.Annotation, bool) {
	if e == nil || len(e.Name) == 0 {
		return models.Annotation{}, false
	}
	if e.Target != "" {
		target = e.Target
	}
	a := models.Annotation{
		Name:          strings.Join(e.Name, "."),
		QualifiedName: l.qualify(e.Name),
		Target:        target,
		Loc:           l.loc(e.Pos),
	}
	if e.Args != nil {
		for _, arg := range e.Args.Args {
			if arg == nil || arg.Value == nil {
				continue
			}
			a.Args = append(a.Args, models.AnnotationArg{Name: arg.Name, Value: l.text(arg.Value.Tokens)})
		}
	}
	return a, true
}

// qualify resolves an annotation name through the explicit imports and the
// file's own top-level types. It returns "" when the name cannot be resolved.
func (l *lowerer) qualify(segments []string) string {
	head, rest := segments[0], segments[1:]
	for _, imp := range l.imports {
		if imp.Name() == head {
			return strings.Join(append([]string{imp.Path}, rest...), ".")
		}
	}
	if l.local[head] {
		if l.pkg == "" {
			return strings.Join(segments, ".")
		}
		return l.pkg + "." + strings.Join(segments, ".")
	}
	// a lowercase head is taken to be a package, e.g. @kotlin.jvm.JvmSynthetic
	if len(rest) > 0 && head != "" && head[0] >= 'a' && head[0] <= 'z' {
		return strings.Join(segments, ".")
	}
	return ""
}

// text returns the source text spanned by tokens, comments and surrounding
// whitespace excluded.
func (l *lowerer) text(tokens []lexer.Token) string {
	first, last := -1, -1
	for i, tok := range tokens {
		if l.elided[tok.Type] || tok.EOF() {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return ""
	}
	start := tokens[first].Pos.Offset
	end := tokens[last].Pos.Offset + len(tokens[last].Value)
	if start < 0 || end > len(l.source) || start > end {
		return ""
	}
	return strings.TrimSpace(l.source[start:end])
}

func (l *lowerer) loc(pos lexer.Position) errors.SourceLocation {
	return errors.SourceLocation{File: l.path, Line: pos.Line, Column: pos.Column}
}

// unquote strips the backticks of an escaped identifier
func unquote(name string) string {
	if len(name) >= 2 && name[0] == '`' && name[len(name)-1] == '`' {
		return name[1 : len(name)-1]
	}
	return name
}
