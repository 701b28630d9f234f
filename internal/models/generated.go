package models

import "strings"

// BridgeCall is the body of a bridging override: a call to the generated
// method, optionally awaited.
type BridgeCall struct {
	Target   string   // generated method name
	TypeArgs []string // forwarded type parameter names
	Args     []string // forwarded arguments; varargs are spread with '*'
	Await    string   // qualified await extension, empty for identity bridges
	Return   bool     // the result is returned rather than discarded
}

// AwaitName returns the simple name of the await extension
func (c *BridgeCall) AwaitName() string {
	return lastSegment(c.Await)
}

// Expression renders the call, e.g. getAsync<Q>(value).await(). Names are
// escaped as in declarations.
func (c *BridgeCall) Expression() string {
	var b strings.Builder
	b.WriteString(EscapeName(c.Target))
	if len(c.TypeArgs) > 0 {
		b.WriteByte('<')
		for i, ta := range c.TypeArgs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(EscapeName(ta))
		}
		b.WriteByte('>')
	}
	b.WriteByte('(')
	for i, arg := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		if spread, ok := strings.CutPrefix(arg, "*"); ok {
			b.WriteByte('*')
			arg = spread
		}
		b.WriteString(EscapeName(arg))
	}
	b.WriteByte(')')
	if c.Await != "" {
		b.WriteByte('.')
		b.WriteString(c.AwaitName())
		b.WriteString("()")
	}
	return b.String()
}

// Statement renders the body statement
func (c *BridgeCall) Statement() string {
	if c.Return {
		return "return " + c.Expression()
	}
	return c.Expression()
}

// GeneratedFunction is a function of a companion type: either the abstract
// profile method or the bridging override (Body set).
type GeneratedFunction struct {
	Name        string
	Doc         string
	Annotations []Annotation
	Modifiers   Modifiers
	TypeParams  []TypeParameter
	Receiver    *TypeRef
	Params      []Parameter
	ReturnType  *TypeRef // nil when no return type is written
	Body        *BridgeCall
}

// Signature returns the key used for clash detection
func (g *GeneratedFunction) Signature() string {
	return SignatureKey(g.Name, g.Receiver, g.Params)
}

// IsBridge reports whether the function has a body
func (g *GeneratedFunction) IsBridge() bool {
	return g.Body != nil
}

// GeneratedPair is the output for one (async method, profile) pair
type GeneratedPair struct {
	Profile  Profile
	Original *FunctionDecl
	Method   *GeneratedFunction
	Bridge   *GeneratedFunction
}

// CompanionType is the synthesized type for one profile of one input type.
// It is constructed in one step from the collected pairs.
type CompanionType struct {
	Name        string
	Package     string
	Profile     Profile
	Platform    Platform
	Kind        TypeKind // KindInterface or KindClass
	Modifiers   Modifiers
	TypeParams  []TypeParameter
	Super       SuperTypeRef
	Constructor *Constructor
	Pairs       []GeneratedPair
	Imports     []Import // candidate imports; unused ones are dropped on render
	Origin      *TypeDecl
}

// QualifiedName returns the package-qualified name
func (c *CompanionType) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// Functions returns each generated method followed by its bridge
func (c *CompanionType) Functions() []*GeneratedFunction {
	funcs := make([]*GeneratedFunction, 0, 2*len(c.Pairs))
	for _, p := range c.Pairs {
		funcs = append(funcs, p.Method, p.Bridge)
	}
	return funcs
}

// ReferencedNames returns the leading identifiers of every type, annotation
// and extension the companion mentions.
func (c *CompanionType) ReferencedNames() map[string]struct{} {
	names := make(map[string]struct{})
	addTypeParams(names, c.TypeParams)
	c.Super.Type.ReferencedNames(names)
	if c.Constructor != nil {
		addParams(names, c.Constructor.Params)
	}
	for _, f := range c.Functions() {
		addAnnotations(names, f.Annotations)
		addTypeParams(names, f.TypeParams)
		f.Receiver.ReferencedNames(names)
		addParams(names, f.Params)
		f.ReturnType.ReferencedNames(names)
		if f.Body != nil && f.Body.Await != "" {
			names[f.Body.AwaitName()] = struct{}{}
		}
	}
	return names
}

func addTypeParams(names map[string]struct{}, params []TypeParameter) {
	for _, tp := range params {
		for _, b := range tp.Bounds {
			b.ReferencedNames(names)
		}
	}
}

func addParams(names map[string]struct{}, params []Parameter) {
	for _, p := range params {
		addAnnotations(names, p.Annotations)
		p.Type.ReferencedNames(names)
		for _, word := range identifiers(p.Default) {
			names[word] = struct{}{}
		}
	}
}

func addAnnotations(names map[string]struct{}, annotations []Annotation) {
	for _, a := range annotations {
		head := a.Name
		if i := strings.IndexByte(head, '.'); i >= 0 {
			head = head[:i]
		}
		names[head] = struct{}{}
		// class literals such as IOException::class name types too
		for _, arg := range a.Args {
			for _, word := range identifiers(arg.Value) {
				names[word] = struct{}{}
			}
		}
	}
}

// identifiers splits source text into identifier-like words
func identifiers(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
}

// hard keywords that must be escaped when used as names
var hardKeywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true, "do": true,
	"else": true, "false": true, "for": true, "fun": true, "if": true,
	"in": true, "interface": true, "is": true, "null": true, "object": true,
	"package": true, "return": true, "super": true, "this": true, "throw": true,
	"true": true, "try": true, "typealias": true, "typeof": true, "val": true,
	"var": true, "when": true, "while": true,
}

// EscapeName wraps an identifier in backticks when Kotlin requires it
func EscapeName(name string) string {
	if hardKeywords[name] || !isPlainIdentifier(name) {
		return "`" + name + "`"
	}
	return name
}

func isPlainIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r > 127:
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
