package registry

import (
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/utils"
)

// MemberMatch is the answer to a supertype member query
type MemberMatch struct {
	Found bool                 // an inherited or own function with the same signature exists
	Final bool                 // the matching function cannot be overridden
	Owner string               // qualified name of the declaring type, "kotlin.Any" for Any members
	Decl  *models.FunctionDecl // nil for Any members
}

// Hierarchy indexes every declared type of one generation pass by qualified
// name. It is filled by Add before generation starts and only read afterwards;
// reads are safe from many goroutines.
type Hierarchy struct {
	types  *utils.BaseRegistry[string, *models.TypeDecl]
	simple *utils.BaseRegistry[string, []string]
}

// NewHierarchy creates an empty hierarchy
func NewHierarchy() *Hierarchy {
	types := utils.NewBaseRegistry[string, *models.TypeDecl]("type")
	types.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[*models.TypeDecl]("type name"),
		utils.NoDuplicateValidator[string, *models.TypeDecl]("type"),
	))
	return &Hierarchy{
		types:  types,
		simple: utils.NewBaseRegistry[string, []string]("simple name"),
	}
}

// Build creates a hierarchy from files. Duplicate declarations are reported
// together; the first declaration of a name is kept.
func Build(files []*models.SourceFile) (*Hierarchy, error) {
	h := NewHierarchy()
	collected := errors.NewMultipleErrors()
	for _, f := range files {
		for _, err := range h.Add(f) {
			collected.Add(err)
		}
	}
	return h, collected.ErrorOrNil()
}

// Add indexes every type declared in file
func (h *Hierarchy) Add(file *models.SourceFile) []errors.ReversalError {
	var errs []errors.ReversalError
	for _, t := range file.AllTypes() {
		qn := t.QualifiedName()
		if err := h.types.Register(qn, t); err != nil {
			errs = append(errs, errors.NewValidationError("type", err.Error()).
				WithLocation(t.Loc).
				WithContext("type", qn))
			continue
		}
		names, _ := h.simple.Get(t.Name)
		_ = h.simple.Register(t.Name, append(names, qn))
	}
	return errs
}

// Lookup returns the type with the given qualified name
func (h *Hierarchy) Lookup(qualifiedName string) (*models.TypeDecl, bool) {
	return h.types.Get(qualifiedName)
}

// Size returns the number of indexed types
func (h *Hierarchy) Size() int {
	return h.types.Size()
}

// Types returns every indexed type ordered by qualified name
func (h *Hierarchy) Types() []*models.TypeDecl {
	all := make([]*models.TypeDecl, 0, h.types.Size())
	h.types.ForEach(func(_ string, t *models.TypeDecl) {
		all = append(all, t)
	})
	return all
}

// Resolve finds the declaration a type reference written inside from points
// to. Candidates are tried in Kotlin's lookup order: nested types of the
// enclosing types, explicit imports, the same package, star imports, and
// finally a simple name that is unique in the whole pass.
func (h *Hierarchy) Resolve(from *models.TypeDecl, ref *models.TypeRef) (*models.TypeDecl, bool) {
	if from == nil || ref == nil || ref.Function != nil || ref.Name == "" {
		return nil, false
	}
	name := ref.Name
	head, rest, _ := strings.Cut(name, ".")

	for scope := from; scope != nil; scope = scope.Outer() {
		if t, ok := h.types.Get(scope.QualifiedName() + "." + name); ok {
			return t, true
		}
	}

	file := from.File()
	if file != nil {
		if path, ok := file.ResolveName(head); ok {
			if rest != "" {
				path += "." + rest
			}
			if t, ok := h.types.Get(path); ok {
				return t, true
			}
		}
	}

	if from.Package != "" {
		if t, ok := h.types.Get(from.Package + "." + name); ok {
			return t, true
		}
	}
	if t, ok := h.types.Get(name); ok {
		return t, true
	}

	if file != nil {
		for _, imp := range file.Imports {
			if !imp.Wildcard {
				continue
			}
			if t, ok := h.types.Get(imp.Path + "." + name); ok {
				return t, true
			}
		}
	}

	if rest == "" {
		if candidates, ok := h.simple.Get(name); ok && len(candidates) == 1 {
			return h.types.Get(candidates[0])
		}
	}
	return nil, false
}

// SupertypeHasMember reports whether t, or any of its supertypes, declares a
// function named name with the given receiver and parameter types, which a
// companion extending t would then have to override. Types are compared by
// their written form after the type arguments of each supertype reference
// are substituted for the supertype's parameters, so put(v: T) in Base<T>
// matches put(v: String) below Base<String>. Private functions are
// invisible to subtypes and never match.
func (h *Hierarchy) SupertypeHasMember(t *models.TypeDecl, name string, receiver *models.TypeRef, params []models.Parameter) MemberMatch {
	want := models.SignatureKey(name, receiver, params)
	visited := make(map[*models.TypeDecl]bool)

	var walk func(*models.TypeDecl, map[string]*models.TypeRef) (MemberMatch, bool)
	walk = func(decl *models.TypeDecl, bindings map[string]*models.TypeRef) (MemberMatch, bool) {
		if visited[decl] {
			return MemberMatch{}, false
		}
		visited[decl] = true

		for _, f := range decl.Functions {
			if f.Name != name || f.Modifiers.Has(models.ModPrivate) {
				continue
			}
			if signatureIn(f, bindings) != want {
				continue
			}
			return MemberMatch{
				Found: true,
				Final: !decl.IsOverridable(f),
				Owner: decl.QualifiedName(),
				Decl:  f,
			}, true
		}
		for _, s := range decl.Supertypes {
			parent, ok := h.Resolve(decl, s.Type)
			if !ok || parent == decl {
				continue
			}
			if m, ok := walk(parent, supertypeBindings(parent, s.Type, bindings)); ok {
				return m, true
			}
		}
		return MemberMatch{}, false
	}

	if m, ok := walk(t, nil); ok {
		return m
	}
	if anyMembers[want] {
		return MemberMatch{Found: true, Owner: "kotlin.Any"}
	}
	return MemberMatch{}
}

// supertypeBindings maps the type parameters of parent to the arguments of
// ref, itself written in a scope described by outer. Star projections and
// missing arguments leave the parameter unbound.
func supertypeBindings(parent *models.TypeDecl, ref *models.TypeRef, outer map[string]*models.TypeRef) map[string]*models.TypeRef {
	bindings := make(map[string]*models.TypeRef, len(parent.TypeParams))
	for i, tp := range parent.TypeParams {
		if i >= len(ref.Args) || ref.Args[i].Star || ref.Args[i].Type == nil {
			continue
		}
		bindings[tp.Name] = ref.Args[i].Type.Substitute(outer)
	}
	return bindings
}

// signatureIn is the signature of f as seen from a subtype; the function's
// own type parameters shadow the bindings
func signatureIn(f *models.FunctionDecl, bindings map[string]*models.TypeRef) string {
	if len(bindings) == 0 {
		return f.Signature()
	}
	if len(f.TypeParams) > 0 {
		shadowed := make(map[string]*models.TypeRef, len(bindings))
		for k, v := range bindings {
			shadowed[k] = v
		}
		for _, tp := range f.TypeParams {
			delete(shadowed, tp.Name)
		}
		bindings = shadowed
	}
	params := make([]models.Parameter, len(f.Params))
	for i, p := range f.Params {
		params[i] = p
		params[i].Type = p.Type.Substitute(bindings)
	}
	return models.SignatureKey(f.Name, f.Receiver.Substitute(bindings), params)
}

// open members every Kotlin class inherits from Any
var anyMembers = map[string]bool{
	"equals(Any?)": true,
	"hashCode()":   true,
	"toString()":   true,
}
