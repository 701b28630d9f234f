package transform

import "github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"

// AnnotationPolicy decides which annotations of an original function are
// copied onto its generated counterpart. Names are qualified; annotations
// whose qualified name could not be resolved match on their simple name.
type AnnotationPolicy struct {
	include map[string]bool
	simple  map[string]bool
}

// NewAnnotationPolicy creates a policy that copies only the named annotations
func NewAnnotationPolicy(qualifiedNames ...string) AnnotationPolicy {
	p := AnnotationPolicy{include: make(map[string]bool), simple: make(map[string]bool)}
	for _, qn := range qualifiedNames {
		p.include[qn] = true
		p.simple[models.Annotation{Name: qn}.SimpleName()] = true
	}
	return p
}

// DefaultAnnotationPolicy copies annotations that document the function or
// affect its visibility to callers.
func DefaultAnnotationPolicy() AnnotationPolicy {
	return NewAnnotationPolicy(
		"kotlin.jvm.Throws",
		"kotlin.Throws",
		"kotlin.Deprecated",
		"kotlin.DeprecatedSinceKotlin",
		"kotlin.OptIn",
		"kotlin.Suppress",
		"kotlin.PublishedApi",
	)
}

// Includes reports whether a is copied
func (p AnnotationPolicy) Includes(a models.Annotation) bool {
	if a.QualifiedName != "" {
		return p.include[a.QualifiedName]
	}
	return p.simple[a.SimpleName()]
}

// Filter returns the copied annotations in source order
func (p AnnotationPolicy) Filter(annotations []models.Annotation) []models.Annotation {
	var kept []models.Annotation
	for _, a := range annotations {
		if p.Includes(a) {
			kept = append(kept, a)
		}
	}
	return kept
}
