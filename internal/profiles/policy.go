package profiles

import (
	"fmt"
	"strings"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// Policy is the fixed behaviour of one execution profile
type Policy struct {
	Profile           models.Profile
	DisplayName       string
	Platform          models.Platform
	DefaultTypePrefix string
	MethodSuffix      string

	// Wrapper is the qualified deferred-value class results are wrapped in;
	// empty when results are returned unchanged.
	Wrapper          string
	CovariantPayload bool            // write `out T` as the wrapper argument
	NoPayload        *models.TypeRef // wrapper argument for absent or Unit results

	Await                string // qualified extension used by bridges to unwrap results
	PropagateAnnotations bool
	HideBridge           bool   // bridges may be marked @JvmSynthetic
	DocFormat            string // %[1]s is the original function name
}

// DefaultPolicies returns the built-in policy table in profile order
func DefaultPolicies() [models.ProfileCount]Policy {
	return [models.ProfileCount]Policy{
		models.Blocking: {
			Profile:              models.Blocking,
			DisplayName:          "JBlocking",
			Platform:             models.PlatformJVM,
			DefaultTypePrefix:    "JBlocking",
			MethodSuffix:         "Blocking",
			PropagateAnnotations: true,
			HideBridge:           true,
			DocFormat:            "Blocking reversal function for [%[1]s]\n\n@see %[1]s",
		},
		models.ThreadFuture: {
			Profile:              models.ThreadFuture,
			DisplayName:          "JAsync",
			Platform:             models.PlatformJVM,
			DefaultTypePrefix:    "JAsync",
			MethodSuffix:         "Async",
			Wrapper:              "java.util.concurrent.CompletableFuture",
			CovariantPayload:     true,
			NoPayload:            &models.TypeRef{Name: "Void", Nullable: true},
			Await:                "kotlinx.coroutines.future.await",
			PropagateAnnotations: true,
			HideBridge:           true,
			DocFormat:            "Async reversal function for [%[1]s]\n\n@see %[1]s",
		},
		models.EventLoopPromise: {
			Profile:           models.EventLoopPromise,
			DisplayName:       "JsAsync",
			Platform:          models.PlatformJS,
			DefaultTypePrefix: "JsAsync",
			MethodSuffix:      "Async",
			Wrapper:           "kotlin.js.Promise",
			NoPayload:         &models.TypeRef{Name: "Unit", Nullable: true},
			Await:             "kotlinx.coroutines.await",
			DocFormat:         "Async reversal function for [%[1]s]",
		},
	}
}

// Wraps reports whether results are wrapped in a deferred-value handle
func (p Policy) Wraps() bool {
	return p.Wrapper != ""
}

// WrapperName returns the simple name of the wrapper class
func (p Policy) WrapperName() string {
	return p.Wrapper[strings.LastIndexByte(p.Wrapper, '.')+1:]
}

// WrapReturn applies the wrapper-type constructor to a return type. A nil
// result means no return type is written.
func (p Policy) WrapReturn(ret *models.TypeRef) (*models.TypeRef, error) {
	if ret != nil && ret.Function == nil && ret.Name == "" {
		return nil, errors.Errorf("return type has no name")
	}
	if !p.Wraps() {
		return ret, nil
	}

	wrapped := &models.TypeRef{Name: p.WrapperName()}
	if ret == nil || ret.IsUnitLike() {
		wrapped.Args = []models.TypeArg{{Type: p.NoPayload}}
		return wrapped, nil
	}
	arg := models.TypeArg{Type: ret}
	if p.CovariantPayload {
		arg.Variance = models.Covariant
	}
	wrapped.Args = []models.TypeArg{arg}
	return wrapped, nil
}

// Doc returns the doc comment of the generated function for original. The
// name is escaped so that [links] and @see resolve.
func (p Policy) Doc(original string) string {
	return fmt.Sprintf(p.DocFormat, models.EscapeName(original))
}

// Imports returns the qualified names generated code of this profile needs
func (p Policy) Imports() []string {
	var imports []string
	if p.Wraps() {
		imports = append(imports, p.Wrapper)
	}
	if p.Await != "" {
		imports = append(imports, p.Await)
	}
	return imports
}
