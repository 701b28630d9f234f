package errors

import "fmt"

// NewConfigurationMissing reports a type whose enclosing scopes carry no
// generation configuration.
func NewConfigurationMissing(typeName string) *BaseError {
	return Newf(ConfigurationMissingCode, "no generation configuration found for type '%s'", typeName).
		WithContext("type", typeName).
		WithSuggestion("Annotate the type, an enclosing type or the file with @SuspendReversal")
}

// NewUnsupportedSignature reports a method/profile pair that cannot be generated.
func NewUnsupportedSignature(typeName, method, profile, reason string) *BaseError {
	return Newf(UnsupportedSignatureCode, "cannot generate %s reversal of '%s.%s': %s", profile, typeName, method, reason).
		WithContext("type", typeName).
		WithContext("method", method).
		WithContext("profile", profile)
}

// NewEmissionFailed reports a companion type the output backend rejected.
func NewEmissionFailed(typeName, companion string, cause error) *BaseError {
	return Wrapf(EmissionFailedCode, cause, "failed to emit '%s' for type '%s'", companion, typeName).
		WithContext("type", typeName).
		WithContext("companion", companion)
}

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", item), cause)
}

// NewValidationError reports an invalid annotation argument or declaration.
func NewValidationError(field, message string) *BaseError {
	return New(ValidationErrorCode, message).WithContext("field", field)
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s file '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapTemplateError wraps template processing errors
func WrapTemplateError(templateName, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s template '%s'", operation, templateName)
	return Wrap(TemplateErrorCode, message, cause).
		WithContext("template", templateName).
		WithContext("operation", operation)
}
