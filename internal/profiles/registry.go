// Package profiles holds the closed set of execution profiles and the policy
// table that drives how each one transforms and bridges a method.
package profiles

import (
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/annotations"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// Entry is one profile as configured for a type
type Entry struct {
	Profile      models.Profile
	Enabled      bool
	MethodNaming models.NamingRule // default naming of generated functions
	TypeNaming   models.NamingRule // naming of the companion type
	Policy       Policy
}

// Registry enumerates profiles and resolves per-method naming
type Registry struct {
	policies [models.ProfileCount]Policy
	decoder  *annotations.Decoder
}

// NewRegistry creates a registry with the built-in policy table
func NewRegistry(decoder *annotations.Decoder) *Registry {
	return NewRegistryWithPolicies(decoder, DefaultPolicies())
}

// NewRegistryWithPolicies creates a registry with a custom policy table
func NewRegistryWithPolicies(decoder *annotations.Decoder, policies [models.ProfileCount]Policy) *Registry {
	return &Registry{policies: policies, decoder: decoder}
}

// Policy returns the policy of p
func (r *Registry) Policy(p models.Profile) Policy {
	return r.policies[p]
}

// Profiles returns every profile in emission order with its toggle and
// naming taken from cfg.
func (r *Registry) Profiles(cfg models.GenerationConfig) []Entry {
	entries := make([]Entry, 0, models.ProfileCount)
	for _, p := range models.AllProfiles {
		policy := r.policies[p]
		pc := cfg.Profile(p)
		typeNaming := pc.TypeNaming()
		if typeNaming.Prefix == "" && typeNaming.Suffix == "" {
			typeNaming.Prefix = policy.DefaultTypePrefix
		}
		entries = append(entries, Entry{
			Profile:      p,
			Enabled:      pc.Enabled,
			MethodNaming: models.NamingRule{Suffix: policy.MethodSuffix},
			TypeNaming:   typeNaming,
			Policy:       policy,
		})
	}
	return entries
}

// Enabled returns only the enabled entries of Profiles
func (r *Registry) Enabled(cfg models.GenerationConfig) []Entry {
	var enabled []Entry
	for _, e := range r.Profiles(cfg) {
		if e.Enabled {
			enabled = append(enabled, e)
		}
	}
	return enabled
}

// MethodNaming merges the per-method naming annotation of the entry's
// profile on f into the entry's default naming.
func (r *Registry) MethodNaming(owner *models.TypeDecl, f *models.FunctionDecl, entry Entry) (models.NamingRule, error) {
	naming := entry.MethodNaming
	parsed, found, err := r.decoder.MethodNaming(f, entry.Profile)
	if err != nil {
		return naming, errors.Wrapf(errors.ValidationErrorCode, err,
			"invalid naming of '%s.%s'", owner.QualifiedName(), f.Name).
			WithLocation(f.Loc).
			WithContext("type", owner.QualifiedName()).
			WithContext("method", f.Name)
	}
	if !found {
		return naming, nil
	}
	if parsed.GetBool("asProperty") {
		return naming, errors.NewUnsupportedSignature(owner.QualifiedName(), f.Name, entry.Profile.String(),
			"generating a property (asProperty = true) is not supported").
			WithLocation(parsed.Location).
			WithSuggestion("Remove asProperty or set it to false")
	}
	naming.BaseName = parsed.GetString("baseName", naming.BaseName)
	naming.Suffix = parsed.GetString("suffix", naming.Suffix)
	return naming, nil
}
