package annotations

import (
	"fmt"

	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/errors"
	"github.com/ForteScarlet/kotlin-suspend-interface-reversal/internal/models"
)

// MarkerPackage is the package declaring the SuspendReversal annotation
const MarkerPackage = "love.forte.suspendreversal.annotations"

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	MarkerAnnotation    AnnotationType = iota // @SuspendReversal
	JBlockingAnnotation                       // @SuspendReversal.JBlocking
	JAsyncAnnotation                          // @SuspendReversal.JAsync
	JsAsyncAnnotation                         // @SuspendReversal.JsAsync
)

// String returns the annotation name relative to its package
func (a AnnotationType) String() string {
	switch a {
	case MarkerAnnotation:
		return "SuspendReversal"
	case JBlockingAnnotation:
		return "SuspendReversal.JBlocking"
	case JAsyncAnnotation:
		return "SuspendReversal.JAsync"
	case JsAsyncAnnotation:
		return "SuspendReversal.JsAsync"
	default:
		return "unknown"
	}
}

// QualifiedName returns the fully qualified annotation class name
func (a AnnotationType) QualifiedName() string {
	return MarkerPackage + "." + a.String()
}

// ForProfile returns the per-method naming annotation of a profile
func ForProfile(p models.Profile) AnnotationType {
	switch p {
	case models.Blocking:
		return JBlockingAnnotation
	case models.ThreadFuture:
		return JAsyncAnnotation
	case models.EventLoopPromise:
		return JsAsyncAnnotation
	default:
		panic(fmt.Sprintf("unknown profile %d", p))
	}
}

// ParsedAnnotation represents a decoded annotation with type-safe parameters.
// Parameters holds only the arguments written in source.
type ParsedAnnotation struct {
	Type       AnnotationType         // Annotation type enum
	Name       string                 // name as written
	Parameters map[string]interface{} // Typed parameters
	Location   errors.SourceLocation  // Source location
	Raw        string                 // Original annotation text
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
)

// String returns the Kotlin name of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "String"
	case BoolType:
		return "Boolean"
	case IntType:
		return "Int"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Default value if not provided
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType           // Annotation type enum
	Description string                   // Human-readable description
	Order       []string                 // constructor parameter order, for positional arguments
	Parameters  map[string]ParameterSpec // Parameter specifications
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}

// DefaultString returns the schema default of a string parameter
func (s AnnotationSchema) DefaultString(name string) string {
	v, _ := s.Parameters[name].DefaultValue.(string)
	return v
}

// DefaultBool returns the schema default of a boolean parameter
func (s AnnotationSchema) DefaultBool(name string) bool {
	v, _ := s.Parameters[name].DefaultValue.(bool)
	return v
}
