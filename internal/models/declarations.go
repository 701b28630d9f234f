package models

import (
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
)

// Import is one import directive of a source file
type Import struct {
	Path     string // "java.io.IOException", or "kotlinx.coroutines" for a wildcard
	Alias    string // `import a.B as C`
	Wildcard bool   // `import a.*`
}

// Name returns the simple name the import introduces, empty for wildcards
func (i Import) Name() string {
	if i.Wildcard {
		return ""
	}
	if i.Alias != "" {
		return i.Alias
	}
	return lastSegment(i.Path)
}

// String renders the import directive without the keyword
func (i Import) String() string {
	switch {
	case i.Wildcard:
		return i.Path + ".*"
	case i.Alias != "":
		return i.Path + " as " + i.Alias
	default:
		return i.Path
	}
}

// Annotation is an annotation application on a declaration
type Annotation struct {
	Name          string          // as written, e.g. "SuspendReversal.JBlocking"
	QualifiedName string          // resolved through imports, empty when unknown
	Target        string          // use-site target such as "file"
	Args          []AnnotationArg // arguments in source order
	Loc           errors.SourceLocation
}

// AnnotationArg is a named or positional annotation argument
type AnnotationArg struct {
	Name  string // empty for positional arguments
	Value string // source text of the value expression
}

// SimpleName returns the last segment of the annotation name
func (a Annotation) SimpleName() string {
	return lastSegment(a.Name)
}

// String renders the annotation as Kotlin source
func (a Annotation) String() string {
	var b strings.Builder
	b.WriteByte('@')
	if a.Target != "" {
		b.WriteString(a.Target)
		b.WriteByte(':')
	}
	b.WriteString(a.Name)
	if len(a.Args) > 0 {
		b.WriteByte('(')
		for i, arg := range a.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if arg.Name != "" {
				b.WriteString(arg.Name)
				b.WriteString(" = ")
			}
			b.WriteString(arg.Value)
		}
		b.WriteByte(')')
	}
	return b.String()
}

// TypeParameter is a declared type parameter
type TypeParameter struct {
	Name     string
	Variance Variance
	Reified  bool
	Bounds   []*TypeRef // upper bounds, including those from a where clause
}

// Parameter is a function or constructor value parameter
type Parameter struct {
	Name        string
	Type        *TypeRef
	Vararg      bool
	Binding     string // "val" or "var" for constructor properties
	Default     string // source text of the default value
	Annotations []Annotation
}

// FunctionDecl is a function member of a type. When the owning type reports
// it as an abstract suspend member it is an asynchronous capability.
type FunctionDecl struct {
	Name        string
	Modifiers   Modifiers
	Annotations []Annotation
	TypeParams  []TypeParameter
	Receiver    *TypeRef    // extension receiver
	Params      []Parameter // in declaration order
	ReturnType  *TypeRef    // nil when no return type is declared
	HasBody     bool
	Loc         errors.SourceLocation
}

// IsSuspend reports whether the function carries the suspend modifier
func (f *FunctionDecl) IsSuspend() bool {
	return f.Modifiers.Has(ModSuspend)
}

// Annotation returns the first annotation with the given simple name
func (f *FunctionDecl) Annotation(simpleName string) (Annotation, bool) {
	return findAnnotation(f.Annotations, simpleName)
}

// Signature returns the JVM-independent identity of the function:
// name, receiver and parameter types.
func (f *FunctionDecl) Signature() string {
	return SignatureKey(f.Name, f.Receiver, f.Params)
}

// SignatureKey builds a comparable key from a name, receiver and parameters
func SignatureKey(name string, receiver *TypeRef, params []Parameter) string {
	var b strings.Builder
	if receiver != nil {
		b.WriteString(receiver.String())
		b.WriteByte('.')
	}
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		if p.Vararg {
			b.WriteString("vararg ")
		}
		b.WriteString(p.Type.String())
	}
	b.WriteByte(')')
	return b.String()
}

// PropertyDecl is a property member; only its identity is modelled
type PropertyDecl struct {
	Name     string
	Receiver *TypeRef
	Mutable  bool
	Type     *TypeRef
	Loc      errors.SourceLocation
}

// JvmGetterName returns the name of the property getter on the JVM
func (p *PropertyDecl) JvmGetterName() string {
	if strings.HasPrefix(p.Name, "is") && len(p.Name) > 2 && isUpper(p.Name[2]) {
		return p.Name
	}
	return "get" + capitalize(p.Name)
}

// Constructor is a primary constructor
type Constructor struct {
	Modifiers Modifiers
	Params    []Parameter
}

// SuperTypeRef is an entry of a supertype list
type SuperTypeRef struct {
	Type    *TypeRef
	Invoked bool     // `Base(...)` rather than `Base`
	Args    []string // constructor call arguments as source text
}

// TypeKind distinguishes class-like declarations
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindObject
	KindAnnotation
	KindEnum
)

// String returns the declaration keyword
func (k TypeKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindObject:
		return "object"
	case KindAnnotation:
		return "annotation class"
	case KindEnum:
		return "enum class"
	default:
		return "class"
	}
}

// Scope is a lexical scope that may carry generation configuration
type Scope interface {
	ScopeName() string
	ScopeAnnotations() []Annotation
	Parent() Scope
}

// TypeDecl is a class-like declaration. It is built once by an adapter and
// treated as immutable afterwards.
type TypeDecl struct {
	Name               string
	Package            string
	Kind               TypeKind
	Modifiers          Modifiers
	Annotations        []Annotation
	TypeParams         []TypeParameter
	PrimaryConstructor *Constructor
	Supertypes         []SuperTypeRef
	Functions          []*FunctionDecl
	Properties         []*PropertyDecl
	Nested             []*TypeDecl
	Loc                errors.SourceLocation

	file   *SourceFile
	parent Scope
}

// ScopeName returns the qualified name
func (t *TypeDecl) ScopeName() string { return t.QualifiedName() }

// ScopeAnnotations returns the annotations applied to the type
func (t *TypeDecl) ScopeAnnotations() []Annotation { return t.Annotations }

// Parent returns the enclosing type or file
func (t *TypeDecl) Parent() Scope { return t.parent }

// File returns the declaring source file, nil when not linked
func (t *TypeDecl) File() *SourceFile { return t.file }

// Outer returns the enclosing type, nil for top-level types
func (t *TypeDecl) Outer() *TypeDecl {
	outer, _ := t.parent.(*TypeDecl)
	return outer
}

// NestedName returns the name qualified by enclosing types, e.g. "Outer.Inner"
func (t *TypeDecl) NestedName() string {
	if outer := t.Outer(); outer != nil {
		return outer.NestedName() + "." + t.Name
	}
	return t.Name
}

// QualifiedName returns the package-qualified nested name
func (t *TypeDecl) QualifiedName() string {
	if t.Package == "" {
		return t.NestedName()
	}
	return t.Package + "." + t.NestedName()
}

// IsAbstract reports whether the type can declare abstract members
func (t *TypeDecl) IsAbstract() bool {
	return t.Kind == KindInterface ||
		(t.Kind == KindClass && (t.Modifiers.Has(ModAbstract) || t.Modifiers.Has(ModSealed)))
}

// IsAbstractMember reports whether f is abstract in this type
func (t *TypeDecl) IsAbstractMember(f *FunctionDecl) bool {
	if f.Modifiers.Has(ModAbstract) {
		return true
	}
	return t.Kind == KindInterface && !f.HasBody
}

// IsOverridable reports whether subtypes may override f
func (t *TypeDecl) IsOverridable(f *FunctionDecl) bool {
	if f.Modifiers.Has(ModPrivate) || f.Modifiers.Has(ModFinal) {
		return false
	}
	if t.Kind == KindInterface {
		return true
	}
	return f.Modifiers.Has(ModOpen) || f.Modifiers.Has(ModAbstract) || f.Modifiers.Has(ModOverride)
}

// AsyncMethods returns the abstract suspend functions in declaration order
func (t *TypeDecl) AsyncMethods() []*FunctionDecl {
	var methods []*FunctionDecl
	for _, f := range t.Functions {
		if f.IsSuspend() && t.IsAbstractMember(f) {
			methods = append(methods, f)
		}
	}
	return methods
}

// Annotation returns the first annotation with the given simple name
func (t *TypeDecl) Annotation(simpleName string) (Annotation, bool) {
	return findAnnotation(t.Annotations, simpleName)
}

// SelfType returns the type applied to its own type parameters, e.g. Bar<T, R>
func (t *TypeDecl) SelfType() *TypeRef {
	ref := &TypeRef{Name: t.NestedName()}
	for _, tp := range t.TypeParams {
		ref.Args = append(ref.Args, TypeArg{Type: &TypeRef{Name: tp.Name}})
	}
	return ref
}

// Walk visits the type and its nested types depth first
func (t *TypeDecl) Walk(fn func(*TypeDecl)) {
	fn(t)
	for _, n := range t.Nested {
		n.Walk(fn)
	}
}

// SourceFile is one parsed input file and the outermost scope
type SourceFile struct {
	Path        string
	Package     string
	Imports     []Import
	Annotations []Annotation // file-level annotations (@file:...)
	Types       []*TypeDecl
}

// ScopeName returns the file path
func (f *SourceFile) ScopeName() string { return f.Path }

// ScopeAnnotations returns the file-level annotations
func (f *SourceFile) ScopeAnnotations() []Annotation { return f.Annotations }

// Parent returns nil; the file is the outermost scope
func (f *SourceFile) Parent() Scope { return nil }

// Link sets the package, file and parent scope of every declared type.
// Adapters call it once after building the file.
func (f *SourceFile) Link() {
	for _, t := range f.Types {
		link(t, f, f)
	}
}

func link(t *TypeDecl, file *SourceFile, parent Scope) {
	t.file = file
	t.parent = parent
	t.Package = file.Package
	for _, n := range t.Nested {
		link(n, file, t)
	}
}

// AllTypes returns every declared type, nested ones included, in source order
func (f *SourceFile) AllTypes() []*TypeDecl {
	var all []*TypeDecl
	for _, t := range f.Types {
		t.Walk(func(d *TypeDecl) { all = append(all, d) })
	}
	return all
}

// ResolveName resolves a simple name through the file's explicit imports
func (f *SourceFile) ResolveName(simple string) (string, bool) {
	for _, imp := range f.Imports {
		if imp.Name() == simple {
			return imp.Path, true
		}
	}
	return "", false
}

func findAnnotation(annotations []Annotation, simpleName string) (Annotation, bool) {
	for _, a := range annotations {
		if a.SimpleName() == simpleName || a.Name == simpleName {
			return a, true
		}
	}
	return Annotation{}, false
}

func lastSegment(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

func capitalize(s string) string {
	if s == "" || !('a' <= s[0] && s[0] <= 'z') {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
