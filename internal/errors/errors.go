// Package errors carries the generator's error taxonomy on top of
// github.com/cockroachdb/errors.
//
// Typed errors (BaseError) describe what failed and where. Plain errors
// created with Errorf or annotated with Annotate keep stack traces and hints
// from cockroachdb/errors, and hints survive when a plain error is wrapped
// into a typed one.
package errors

import (
	stderrors "errors"

	crdb "github.com/cockroachdb/errors"
)

// Plain error creation and wrapping
var (
	Errorf    = crdb.Errorf
	Annotate  = crdb.Wrap
	Annotatef = crdb.Wrapf
)

// User-facing hints
var (
	WithHint = crdb.WithHint
)

// Error inspection
var (
	Is          = crdb.Is
	As          = crdb.As
	GetAllHints = crdb.GetAllHints
)

// Sentinels matched by every typed error of the corresponding code.
var (
	// ErrConfigurationMissing: no generation configuration in the enclosing scope chain
	ErrConfigurationMissing = crdb.New("configuration missing")

	// ErrUnsupportedSignature: a method/profile pair cannot be generated
	ErrUnsupportedSignature = crdb.New("unsupported signature")

	// ErrEmissionFailed: the output backend rejected a companion type
	ErrEmissionFailed = crdb.New("emission failed")
)

func sentinelFor(code ErrorCode) error {
	switch code {
	case ConfigurationMissingCode:
		return ErrConfigurationMissing
	case UnsupportedSignatureCode:
		return ErrUnsupportedSignature
	case EmissionFailedCode:
		return ErrEmissionFailed
	default:
		return nil
	}
}

// CodeOf returns the code of the first typed error in the chain,
// descending into MultipleErrors.
func CodeOf(err error) ErrorCode {
	var re ReversalError
	if stderrors.As(err, &re) {
		return re.ErrorCode()
	}
	return UnknownErrorCode
}
