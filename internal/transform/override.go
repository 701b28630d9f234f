package transform

import (
	"fmt"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/annotations"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/profiles"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/registry"
)

// JvmSynthetic is the annotation placed on hidden bridges
var JvmSynthetic = models.Annotation{Name: "JvmSynthetic", QualifiedName: "kotlin.jvm.JvmSynthetic"}

// OverrideResolver decides whether a generated function overrides a member
// the companion inherits from the original type.
type OverrideResolver interface {
	ShouldOverride(owner *models.TypeDecl, fn *models.GeneratedFunction) (bool, error)
}

// HierarchyResolver answers override queries from a type hierarchy
type HierarchyResolver struct {
	hierarchy *registry.Hierarchy
}

// NewHierarchyResolver creates a resolver backed by h
func NewHierarchyResolver(h *registry.Hierarchy) *HierarchyResolver {
	return &HierarchyResolver{hierarchy: h}
}

// ShouldOverride reports an inherited overridable member with the same
// signature. A final one cannot be overridden and is an error.
func (r *HierarchyResolver) ShouldOverride(owner *models.TypeDecl, fn *models.GeneratedFunction) (bool, error) {
	match := r.hierarchy.SupertypeHasMember(owner, fn.Name, fn.Receiver, fn.Params)
	if match.Found && match.Final {
		return false, errors.Errorf("'%s' would override the final member declared in %s", fn.Signature(), match.Owner)
	}
	return match.Found, nil
}

// Synthesizer builds generated pairs: the profile method and the bridging
// override of the original method.
type Synthesizer struct {
	overrides   OverrideResolver
	annotations AnnotationPolicy
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(overrides OverrideResolver, include AnnotationPolicy) *Synthesizer {
	return &Synthesizer{overrides: overrides, annotations: include}
}

// Pair generates the method and bridge of method for one profile
func (s *Synthesizer) Pair(owner *models.TypeDecl, method *models.FunctionDecl, policy profiles.Policy, naming models.NamingRule, cfg models.GenerationConfig) (models.GeneratedPair, error) {
	generated, err := Signature(owner, method, policy, naming, s.annotations)
	if err != nil {
		return models.GeneratedPair{}, err
	}

	override, err := s.overrides.ShouldOverride(owner, generated)
	if err != nil {
		return models.GeneratedPair{}, errors.NewUnsupportedSignature(owner.QualifiedName(), method.Name, policy.Profile.String(), err.Error()).
			WithLocation(method.Loc).
			WithSuggestion(fmt.Sprintf("Rename the generated function with @%s(baseName = ...)", annotations.ForProfile(policy.Profile)))
	}
	if override {
		generated.Modifiers = generated.Modifiers.With(models.ModOverride)
	}

	return models.GeneratedPair{
		Profile:  policy.Profile,
		Original: method,
		Method:   generated,
		Bridge:   s.Bridge(method, generated, policy, cfg),
	}, nil
}

// Bridge builds the override of the original method that calls generated.
// Blocking bridges return the result directly; wrapping profiles await it.
// Unit-like results are discarded rather than returned.
func (s *Synthesizer) Bridge(method *models.FunctionDecl, generated *models.GeneratedFunction, policy profiles.Policy, cfg models.GenerationConfig) *models.GeneratedFunction {
	call := &models.BridgeCall{
		Target: generated.Name,
		Await:  policy.Await,
		Return: method.ReturnType != nil && !method.ReturnType.IsUnitLike(),
	}
	for _, tp := range method.TypeParams {
		call.TypeArgs = append(call.TypeArgs, tp.Name)
	}
	for _, p := range method.Params {
		if p.Vararg {
			call.Args = append(call.Args, "*"+p.Name)
		} else {
			call.Args = append(call.Args, p.Name)
		}
	}

	bridge := &models.GeneratedFunction{
		Name:       method.Name,
		Modifiers:  method.Modifiers.Without(models.ModAbstract, models.ModOpen, models.ModFinal).With(models.ModOverride),
		TypeParams: method.TypeParams,
		Receiver:   method.Receiver,
		Params:     copyParams(method.Params, false),
		ReturnType: method.ReturnType,
		Body:       call,
	}
	if cfg.MarkBridgeSynthetic && policy.HideBridge {
		bridge.Annotations = []models.Annotation{JvmSynthetic}
	}
	return bridge
}
