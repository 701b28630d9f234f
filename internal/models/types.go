package models

import "strings"

// Variance represents a declaration-site or use-site variance annotation
type Variance int

const (
	Invariant Variance = iota
	Covariant          // out
	Contravariant      // in
)

// Keyword returns the Kotlin keyword for the variance, empty for invariant
func (v Variance) Keyword() string {
	switch v {
	case Covariant:
		return "out"
	case Contravariant:
		return "in"
	default:
		return ""
	}
}

// ParseVariance maps "in"/"out" to a Variance
func ParseVariance(keyword string) Variance {
	switch keyword {
	case "out":
		return Covariant
	case "in":
		return Contravariant
	default:
		return Invariant
	}
}

// TypeRef is a reference to a type as written in a declaration.
// Exactly one of Name and Function is set.
type TypeRef struct {
	Name     string        // simple or qualified name, e.g. "Int", "kotlin.collections.List"
	Args     []TypeArg     // type arguments of a named type
	Nullable bool          // trailing '?'
	Function *FunctionType // set for function types
}

// TypeArg is one type argument; Star marks the '*' projection
type TypeArg struct {
	Star     bool
	Variance Variance
	Type     *TypeRef
}

// FunctionType describes `suspend R.(A, B) -> C`
type FunctionType struct {
	Suspend  bool
	Receiver *TypeRef
	Params   []FunctionTypeParam
	Return   *TypeRef
}

// FunctionTypeParam is a (possibly named) parameter of a function type
type FunctionTypeParam struct {
	Name string
	Type *TypeRef
}

// NamedType builds a non-null named type reference
func NamedType(name string, args ...*TypeRef) *TypeRef {
	t := &TypeRef{Name: name}
	for _, a := range args {
		t.Args = append(t.Args, TypeArg{Type: a})
	}
	return t
}

// String renders the reference as Kotlin source
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeRef) write(b *strings.Builder) {
	if t.Function != nil {
		if t.Nullable {
			b.WriteByte('(')
		}
		t.Function.write(b)
		if t.Nullable {
			b.WriteString(")?")
		}
		return
	}

	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.write(b)
		}
		b.WriteByte('>')
	}
	if t.Nullable {
		b.WriteByte('?')
	}
}

func (a TypeArg) write(b *strings.Builder) {
	if a.Star || a.Type == nil {
		b.WriteByte('*')
		return
	}
	if kw := a.Variance.Keyword(); kw != "" {
		b.WriteString(kw)
		b.WriteByte(' ')
	}
	a.Type.write(b)
}

func (f *FunctionType) write(b *strings.Builder) {
	if f.Suspend {
		b.WriteString("suspend ")
	}
	if f.Receiver != nil {
		if f.Receiver.Function != nil && !f.Receiver.Nullable {
			b.WriteByte('(')
			f.Receiver.write(b)
			b.WriteByte(')')
		} else {
			f.Receiver.write(b)
		}
		b.WriteByte('.')
	}
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteString(": ")
		}
		p.Type.write(b)
	}
	b.WriteString(") -> ")
	f.Return.write(b)
}

// Equal compares two references by their rendered source form.
// Aliases and imports are not resolved.
func (t *TypeRef) Equal(other *TypeRef) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.String() == other.String()
}

// SimpleName returns the last segment of a named type
func (t *TypeRef) SimpleName() string {
	if t == nil || t.Function != nil {
		return ""
	}
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

// IsUnitLike reports whether the reference is the non-null Unit type
func (t *TypeRef) IsUnitLike() bool {
	if t == nil || t.Function != nil || t.Nullable || len(t.Args) > 0 {
		return false
	}
	return t.Name == "Unit" || t.Name == "kotlin.Unit"
}

// WithNullable returns a copy with the nullability flag replaced
func (t *TypeRef) WithNullable(nullable bool) *TypeRef {
	c := *t
	c.Nullable = nullable
	return &c
}

// Substitute replaces type parameter names bound in bindings, e.g. T with
// String for a supertype written as Base<String>. A nullable use of T keeps
// its '?'. t itself is never modified.
func (t *TypeRef) Substitute(bindings map[string]*TypeRef) *TypeRef {
	if t == nil || len(bindings) == 0 {
		return t
	}
	if t.Function != nil {
		fn := &FunctionType{
			Suspend:  t.Function.Suspend,
			Receiver: t.Function.Receiver.Substitute(bindings),
			Return:   t.Function.Return.Substitute(bindings),
		}
		for _, p := range t.Function.Params {
			fn.Params = append(fn.Params, FunctionTypeParam{Name: p.Name, Type: p.Type.Substitute(bindings)})
		}
		c := *t
		c.Function = fn
		return &c
	}
	if bound, ok := bindings[t.Name]; ok && len(t.Args) == 0 {
		if t.Nullable {
			return bound.WithNullable(true)
		}
		return bound
	}
	if len(t.Args) == 0 {
		return t
	}
	c := *t
	c.Args = make([]TypeArg, len(t.Args))
	for i, a := range t.Args {
		c.Args[i] = TypeArg{Star: a.Star, Variance: a.Variance, Type: a.Type.Substitute(bindings)}
	}
	return &c
}

// ReferencedNames collects the leading identifier of every named type in
// the reference, e.g. "Map" and "IOException" for Map<String, IOException>.
func (t *TypeRef) ReferencedNames(into map[string]struct{}) {
	if t == nil {
		return
	}
	if t.Function != nil {
		t.Function.Receiver.ReferencedNames(into)
		for _, p := range t.Function.Params {
			p.Type.ReferencedNames(into)
		}
		t.Function.Return.ReferencedNames(into)
		return
	}
	head := t.Name
	if i := strings.IndexByte(head, '.'); i >= 0 {
		head = head[:i]
	}
	into[head] = struct{}{}
	for _, a := range t.Args {
		a.Type.ReferencedNames(into)
	}
}
