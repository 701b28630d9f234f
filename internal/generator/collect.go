package generator

import (
	"fmt"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/profiles"
)

// checkClashes drops or rejects pairs whose generated method would clash
// inside the companion: with another generated method, with an original
// async method, or on the JVM with a property getter.
func (r *run) checkClashes(entry profiles.Entry, pairs []models.GeneratedPair) ([]models.GeneratedPair, error) {
	originals := make(map[string]bool)
	for _, m := range r.source.AsyncMethods(r.t) {
		originals[m.Signature()] = true
	}
	getters := make(map[string]string)
	if entry.Policy.Platform == models.PlatformJVM {
		for _, p := range r.t.Properties {
			if p.Receiver == nil {
				getters[p.JvmGetterName()] = p.Name
			}
		}
	}

	seen := make(map[string]string)
	kept := make([]models.GeneratedPair, 0, len(pairs))
	for _, pair := range pairs {
		sig := pair.Method.Signature()
		var reason string
		switch {
		case seen[sig] != "":
			reason = fmt.Sprintf("generated '%s' clashes with the one generated for '%s'", sig, seen[sig])
		case originals[sig]:
			reason = fmt.Sprintf("generated '%s' has the signature of an asynchronous function of the type", sig)
		case pair.Method.Receiver == nil && len(pair.Method.Params) == 0 && getters[pair.Method.Name] != "":
			reason = fmt.Sprintf("generated '%s' clashes with the JVM getter of property '%s'", sig, getters[pair.Method.Name])
		}
		if reason == "" {
			seen[sig] = pair.Original.Name
			kept = append(kept, pair)
			continue
		}

		err := errors.NewUnsupportedSignature(r.t.QualifiedName(), pair.Original.Name, entry.Profile.String(), reason).
			WithLocation(pair.Original.Loc).
			WithSuggestion("Give one of the functions another name with baseName or suffix")
		if !r.skip(pair.Original.Name, entry.Profile, err) {
			return nil, err
		}
	}
	return kept, nil
}

// companion builds the companion type of one profile in a single step
func (r *run) companion(entry profiles.Entry, pairs []models.GeneratedPair) *models.CompanionType {
	t := r.t
	c := &models.CompanionType{
		Name:       entry.TypeNaming.Apply(t.Name),
		Package:    t.Package,
		Profile:    entry.Profile,
		Platform:   entry.Policy.Platform,
		TypeParams: t.TypeParams,
		Super:      models.SuperTypeRef{Type: t.SelfType()},
		Pairs:      pairs,
		Origin:     t,
	}
	if vis, ok := t.Modifiers.Visibility(); ok && vis == models.ModInternal {
		c.Modifiers = models.Modifiers{vis}
	}

	if t.Kind == models.KindInterface {
		c.Kind = models.KindInterface
	} else {
		c.Kind = models.KindClass
		c.Modifiers = c.Modifiers.With(models.ModAbstract)
		c.Super.Invoked = true
		if ctor := t.PrimaryConstructor; ctor != nil {
			c.Constructor = &models.Constructor{}
			for _, p := range ctor.Params {
				c.Constructor.Params = append(c.Constructor.Params, models.Parameter{
					Name:    p.Name,
					Type:    p.Type,
					Vararg:  p.Vararg,
					Default: p.Default,
				})
				arg := p.Name
				if p.Vararg {
					arg = "*" + arg
				}
				c.Super.Args = append(c.Super.Args, arg)
			}
		}
	}

	// profile imports come first so they win over same-named source imports
	for _, path := range entry.Policy.Imports() {
		c.Imports = append(c.Imports, models.Import{Path: path})
	}
	if file := t.File(); file != nil {
		c.Imports = append(c.Imports, file.Imports...)
	}
	return c
}
