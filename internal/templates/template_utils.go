package templates

import (
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// Name escapes an identifier with backticks when Kotlin requires it
func Name(name string) string {
	return models.EscapeName(name)
}

// TypeParams renders a type parameter list. Single bounds are written
// inline; when any parameter has several bounds all of them move to the
// where clause returned second.
func TypeParams(params []models.TypeParameter, withVariance bool) (string, string) {
	if len(params) == 0 {
		return "", ""
	}
	useWhere := false
	for _, tp := range params {
		if len(tp.Bounds) > 1 {
			useWhere = true
		}
	}

	var list, where []string
	for _, tp := range params {
		var b strings.Builder
		if withVariance {
			if kw := tp.Variance.Keyword(); kw != "" {
				b.WriteString(kw)
				b.WriteByte(' ')
			}
		}
		b.WriteString(tp.Name)
		if !useWhere && len(tp.Bounds) == 1 {
			b.WriteString(" : ")
			b.WriteString(tp.Bounds[0].String())
		}
		list = append(list, b.String())
		if useWhere {
			for _, bound := range tp.Bounds {
				where = append(where, tp.Name+" : "+bound.String())
			}
		}
	}

	clause := ""
	if len(where) > 0 {
		clause = " where " + strings.Join(where, ", ")
	}
	return "<" + strings.Join(list, ", ") + ">", clause
}

// Param renders one value parameter
func Param(p models.Parameter) string {
	var b strings.Builder
	for _, a := range p.Annotations {
		b.WriteString(a.String())
		b.WriteByte(' ')
	}
	if p.Vararg {
		b.WriteString("vararg ")
	}
	b.WriteString(Name(p.Name))
	b.WriteString(": ")
	b.WriteString(p.Type.String())
	if p.Default != "" {
		b.WriteString(" = ")
		b.WriteString(p.Default)
	}
	return b.String()
}

// Params renders a parenthesised parameter list
func Params(params []models.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = Param(p)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Receiver renders an extension receiver followed by the dot
func Receiver(t *models.TypeRef) string {
	if t == nil {
		return ""
	}
	if t.Function != nil && !t.Nullable {
		return "(" + t.String() + ")."
	}
	return t.String() + "."
}

// Modifiers renders modifiers in conventional order with a trailing space
func Modifiers(ms models.Modifiers) string {
	if len(ms) == 0 {
		return ""
	}
	return strings.Join(ms.Strings(), " ") + " "
}

// FunctionDeclaration renders the header of a generated function, without
// the body. Interface members do not repeat the abstract modifier.
func FunctionDeclaration(f *models.GeneratedFunction, inInterface bool) string {
	ms := f.Modifiers
	if inInterface {
		ms = ms.Without(models.ModAbstract)
	}
	typeParams, where := TypeParams(f.TypeParams, false)

	var b strings.Builder
	b.WriteString(Modifiers(ms))
	b.WriteString("fun ")
	if typeParams != "" {
		b.WriteString(typeParams)
		b.WriteByte(' ')
	}
	b.WriteString(Receiver(f.Receiver))
	b.WriteString(Name(f.Name))
	b.WriteString(Params(f.Params))
	if f.ReturnType != nil {
		b.WriteString(": ")
		b.WriteString(f.ReturnType.String())
	}
	b.WriteString(where)
	return b.String()
}

// TypeDeclaration renders the header of a companion type, up to the
// opening brace.
func TypeDeclaration(c *models.CompanionType) string {
	typeParams, where := TypeParams(c.TypeParams, true)

	var b strings.Builder
	if c.Kind == models.KindInterface {
		b.WriteString(Modifiers(c.Modifiers.Without(models.ModAbstract)))
		b.WriteString("interface ")
	} else {
		b.WriteString(Modifiers(c.Modifiers))
		b.WriteString("class ")
	}
	b.WriteString(Name(c.Name))
	b.WriteString(typeParams)
	if c.Constructor != nil {
		b.WriteString(Params(c.Constructor.Params))
	}
	b.WriteString(" : ")
	b.WriteString(c.Super.Type.String())
	if c.Super.Invoked {
		b.WriteString("(" + strings.Join(c.Super.Args, ", ") + ")")
	}
	b.WriteString(where)
	return b.String()
}

// DocLines splits a doc comment into lines
func DocLines(doc string) []string {
	if doc == "" {
		return nil
	}
	return strings.Split(doc, "\n")
}
