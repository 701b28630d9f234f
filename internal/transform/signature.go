// Package transform turns one asynchronous method into the generated
// profile method and the bridging override that forwards to it.
package transform

import (
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/profiles"
)

// modifiers that never carry over to a generated abstract method
var droppedModifiers = []models.Modifier{
	models.ModSuspend,
	models.ModOverride,
	models.ModOpen,
	models.ModFinal,
	models.ModOperator,
	models.ModTailrec,
	models.ModInline,
	models.ModExternal,
}

// Signature computes the generated abstract method of method for one
// profile. Type parameters, receiver and parameter types are copied as
// written; only the name, modifiers, return type and annotations change.
func Signature(owner *models.TypeDecl, method *models.FunctionDecl, policy profiles.Policy, naming models.NamingRule, include AnnotationPolicy) (*models.GeneratedFunction, error) {
	ret, err := policy.WrapReturn(method.ReturnType)
	if err != nil {
		return nil, errors.NewUnsupportedSignature(owner.QualifiedName(), method.Name, policy.Profile.String(), err.Error()).
			WithLocation(method.Loc)
	}

	fn := &models.GeneratedFunction{
		Name:       naming.Apply(method.Name),
		Doc:        policy.Doc(method.Name),
		Modifiers:  method.Modifiers.Without(droppedModifiers...).With(models.ModAbstract),
		TypeParams: method.TypeParams,
		Receiver:   method.Receiver,
		Params:     copyParams(method.Params, policy.PropagateAnnotations),
		ReturnType: ret,
	}
	if policy.PropagateAnnotations {
		fn.Annotations = include.Filter(method.Annotations)
	}
	return fn, nil
}

// copyParams copies parameters without their default values
func copyParams(params []models.Parameter, keepAnnotations bool) []models.Parameter {
	if len(params) == 0 {
		return nil
	}
	out := make([]models.Parameter, len(params))
	for i, p := range params {
		out[i] = models.Parameter{
			Name:   p.Name,
			Type:   p.Type,
			Vararg: p.Vararg,
		}
		if keepAnnotations {
			out[i].Annotations = p.Annotations
		}
	}
	return out
}
