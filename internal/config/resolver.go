// Package config resolves the generation configuration that applies to a
// declaration by walking its enclosing scopes.
package config

import (
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/annotations"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// Resolver finds the nearest SuspendReversal configuration of a type. It
// only reads the declaration tree and the decoder, so one Resolver serves
// every type of a pass, concurrently if needed.
type Resolver struct {
	decoder  *annotations.Decoder
	defaults Defaults
}

// NewResolver creates a resolver; defaults fill in omitted arguments
func NewResolver(decoder *annotations.Decoder, defaults Defaults) *Resolver {
	return &Resolver{decoder: decoder, defaults: defaults}
}

// Defaults returns the fallback values used by the resolver
func (r *Resolver) Defaults() Defaults {
	return r.defaults
}

// Resolve walks from t outward (t, enclosing types, file) and decodes the
// first marker or alias annotation it meets. The nearest configuration wins
// as a whole; arguments are never merged across scopes.
func (r *Resolver) Resolve(t *models.TypeDecl) (models.GenerationConfig, error) {
	parsed, origin, err := r.find(t)
	if err != nil {
		return models.GenerationConfig{}, err
	}
	if parsed == nil {
		return models.GenerationConfig{}, errors.NewConfigurationMissing(t.QualifiedName()).WithLocation(t.Loc)
	}
	return r.build(parsed, origin), nil
}

// LookupEnclosingConfig is Resolve under the name the driver's declaration
// source uses.
func (r *Resolver) LookupEnclosingConfig(t *models.TypeDecl) (models.GenerationConfig, error) {
	return r.Resolve(t)
}

// IsConfigured reports whether t or one of its enclosing scopes carries a
// configuration, ignoring decoding errors.
func (r *Resolver) IsConfigured(t *models.TypeDecl) bool {
	parsed, _, err := r.find(t)
	return parsed != nil || err != nil
}

// HasOwnMarker reports whether t itself is annotated with the marker or an alias
func (r *Resolver) HasOwnMarker(t *models.TypeDecl) bool {
	for _, a := range t.Annotations {
		if _, ok := r.decoder.MarkerOf(a); ok {
			return true
		}
	}
	return false
}

func (r *Resolver) find(t *models.TypeDecl) (*annotations.ParsedAnnotation, string, error) {
	var scope models.Scope = t
	for scope != nil {
		parsed, found, err := r.decoder.FindMarker(scope.ScopeAnnotations())
		if err != nil {
			return nil, "", errors.Wrapf(errors.ValidationErrorCode, err,
				"invalid configuration for type '%s' on %s", t.QualifiedName(), scope.ScopeName()).
				WithLocation(t.Loc).
				WithContext("type", t.QualifiedName())
		}
		if found {
			return parsed, scope.ScopeName(), nil
		}
		scope = scope.Parent()
	}
	return nil, "", nil
}

func (r *Resolver) build(parsed *annotations.ParsedAnnotation, origin string) models.GenerationConfig {
	cfg := models.GenerationConfig{
		MarkBridgeSynthetic: parsed.GetBool("markJvmSynthetic", r.defaults.MarkJvmSynthetic),
		Strict:              r.defaults.Strict,
		Origin:              origin,
	}
	for _, p := range models.AllProfiles {
		stem := profileArgs[p]
		fallback := r.defaults.Profile(p)
		cfg.Profiles[p] = models.ProfileConfig{
			Enabled:    parsed.GetBool(stem, fallback.Enabled),
			TypePrefix: parsed.GetString(stem+"ClassNamePrefix", fallback.Prefix),
			TypeSuffix: parsed.GetString(stem+"ClassNameSuffix", fallback.Suffix),
		}
	}
	return cfg
}
