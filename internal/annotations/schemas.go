package annotations

import "fmt"

// Built-in annotation schemas

// SuspendReversalSchema defines the schema for @SuspendReversal
var SuspendReversalSchema = AnnotationSchema{
	Type:        MarkerAnnotation,
	Description: "Generates blocking, future and promise companions for abstract suspend functions",
	Order: []string{
		"jBlocking", "jBlockingClassNamePrefix", "jBlockingClassNameSuffix",
		"jAsync", "jAsyncClassNamePrefix", "jAsyncClassNameSuffix",
		"jsAsync", "jsAsyncClassNamePrefix", "jsAsyncClassNameSuffix",
		"markJvmSynthetic",
	},
	Parameters: map[string]ParameterSpec{
		"jBlocking": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Generate the JVM blocking companion",
		},
		"jBlockingClassNamePrefix": {
			Type:         StringType,
			DefaultValue: "JBlocking",
			Description:  "Prefix of the blocking companion type name",
			Validator:    ValidateNameAffix,
		},
		"jBlockingClassNameSuffix": {
			Type:         StringType,
			DefaultValue: "",
			Description:  "Suffix of the blocking companion type name",
			Validator:    ValidateNameAffix,
		},
		"jAsync": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Generate the JVM CompletableFuture companion",
		},
		"jAsyncClassNamePrefix": {
			Type:         StringType,
			DefaultValue: "JAsync",
			Description:  "Prefix of the future companion type name",
			Validator:    ValidateNameAffix,
		},
		"jAsyncClassNameSuffix": {
			Type:         StringType,
			DefaultValue: "",
			Description:  "Suffix of the future companion type name",
			Validator:    ValidateNameAffix,
		},
		"jsAsync": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Generate the JS Promise companion",
		},
		"jsAsyncClassNamePrefix": {
			Type:         StringType,
			DefaultValue: "JsAsync",
			Description:  "Prefix of the promise companion type name",
			Validator:    ValidateNameAffix,
		},
		"jsAsyncClassNameSuffix": {
			Type:         StringType,
			DefaultValue: "",
			Description:  "Suffix of the promise companion type name",
			Validator:    ValidateNameAffix,
		},
		"markJvmSynthetic": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Mark bridging overrides with @JvmSynthetic on the JVM",
		},
	},
	Examples: []string{
		"@SuspendReversal",
		"@SuspendReversal(jsAsync = false)",
		"@SuspendReversal(markJvmSynthetic = false) annotation class MyReversal",
		"@file:SuspendReversal(jBlockingClassNamePrefix = \"Blocking\")",
	},
}

// methodSchema builds the schema shared by the per-method naming annotations
func methodSchema(annotationType AnnotationType, suffix string) AnnotationSchema {
	return AnnotationSchema{
		Type:        annotationType,
		Description: fmt.Sprintf("Overrides the generated function name for one profile (default suffix %q)", suffix),
		Order:       []string{"baseName", "suffix", "asProperty"},
		Parameters: map[string]ParameterSpec{
			"baseName": {
				Type:         StringType,
				DefaultValue: "",
				Description:  "Base name of the generated function; empty means the original name",
				Validator:    ValidateNameAffix,
			},
			"suffix": {
				Type:         StringType,
				DefaultValue: suffix,
				Description:  "Suffix appended to the base name",
				Validator:    ValidateNameAffix,
			},
			"asProperty": {
				Type:         BoolType,
				DefaultValue: false,
				Description:  "Generate a property instead of a function",
			},
		},
		Validators: []CustomValidator{validateMethodName},
		Examples: []string{
			fmt.Sprintf("@%s(baseName = \"fetch\")", annotationType),
			fmt.Sprintf("@%s(suffix = \"Now\")", annotationType),
		},
	}
}

// JBlockingSchema defines the schema for @SuspendReversal.JBlocking
var JBlockingSchema = methodSchema(JBlockingAnnotation, "Blocking")

// JAsyncSchema defines the schema for @SuspendReversal.JAsync
var JAsyncSchema = methodSchema(JAsyncAnnotation, "Async")

// JsAsyncSchema defines the schema for @SuspendReversal.JsAsync
var JsAsyncSchema = methodSchema(JsAsyncAnnotation, "Async")

// BuiltinSchemas returns every built-in schema
func BuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{SuspendReversalSchema, JBlockingSchema, JAsyncSchema, JsAsyncSchema}
}

// RegisterBuiltinSchemas registers every built-in schema
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range BuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNameAffix checks that a value can be part of a Kotlin identifier
func ValidateNameAffix(v interface{}) error {
	s := v.(string)
	for i, r := range s {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r > 127 {
			continue
		}
		return fmt.Errorf("character %q at offset %d cannot appear in an identifier", r, i)
	}
	return nil
}

// validateCompanionNames reads the schema defaults, so it is attached once
// the schema is initialised
func init() {
	SuspendReversalSchema.Validators = []CustomValidator{validateCompanionNames}
}

func validateCompanionNames(a *ParsedAnnotation) error {
	pairs := [][2]string{
		{"jBlockingClassNamePrefix", "jBlockingClassNameSuffix"},
		{"jAsyncClassNamePrefix", "jAsyncClassNameSuffix"},
		{"jsAsyncClassNamePrefix", "jsAsyncClassNameSuffix"},
	}
	for _, pair := range pairs {
		prefix := a.GetString(pair[0], SuspendReversalSchema.DefaultString(pair[0]))
		suffix := a.GetString(pair[1], SuspendReversalSchema.DefaultString(pair[1]))
		if prefix == "" && suffix == "" {
			return fmt.Errorf("%s and %s are both empty; the companion would reuse the original type name", pair[0], pair[1])
		}
	}
	return nil
}

func validateMethodName(a *ParsedAnnotation) error {
	if a.GetString("baseName") == "" && a.HasParameter("suffix") && a.GetString("suffix") == "" {
		return fmt.Errorf("baseName and suffix are both empty; the generated function would reuse the original name")
	}
	return nil
}
