// Package errors provides error handling for codeswitch.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, wrapping, hints and marks from one import, and declares the
// sentinel kinds the translation pipeline classifies failures into.
//
// Usage:
//
//	// Wrap with context
//	if err := run(); err != nil {
//	    return errors.Wrap(err, "running compiler")
//	}
//
//	// Tag an error with a kind without changing its message
//	return errors.Mark(err, errors.ErrBackendAuth)
//
//	// Check kinds
//	if errors.Is(err, errors.ErrBackendRateLimited) { ... }
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	FlattenHints = crdb.FlattenHints
	GetAllHints  = crdb.GetAllHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Request-level kinds.
var (
	// ErrInvalidRequest indicates the request was malformed or incomplete.
	ErrInvalidRequest = New("invalid request")

	// ErrUnsupportedLanguage indicates a language other than java or c.
	ErrUnsupportedLanguage = New("unsupported language")

	// ErrSameLanguage indicates source and target languages are equal.
	ErrSameLanguage = New("source and target languages are the same")

	// ErrSourceSyntaxInvalid indicates the input failed syntax validation.
	ErrSourceSyntaxInvalid = New("source syntax invalid")

	// ErrTargetSyntaxInvalid indicates the translated output failed syntax validation.
	ErrTargetSyntaxInvalid = New("target syntax invalid")
)

// Backend kinds, one per classified upstream failure.
var (
	ErrBackendAuth        = New("backend authentication failed")
	ErrBackendRateLimited = New("backend rate limited")
	ErrBackendUnavailable = New("backend unavailable")
	ErrBackendGeneric     = New("backend error")
)

// Toolchain and OCR kinds.
var (
	// ErrValidationInfrastructure indicates the validator could not run
	// (temp files, process start, timeout). It is never a syntax verdict.
	ErrValidationInfrastructure = New("validation infrastructure failure")

	// ErrCompilerUnavailable indicates the language toolchain is not installed.
	ErrCompilerUnavailable = New("compiler unavailable")

	// ErrOCRFailure indicates text extraction from an image failed.
	ErrOCRFailure = New("ocr failure")

	// ErrEmptyExtractedText indicates OCR succeeded but produced no text.
	ErrEmptyExtractedText = New("no text extracted")
)

// IsBackendError reports whether err carries any of the backend kinds.
func IsBackendError(err error) bool {
	return err != nil && IsAny(err, ErrBackendAuth, ErrBackendRateLimited, ErrBackendUnavailable, ErrBackendGeneric)
}

// IsRetryable reports whether a backend failure may succeed on retry.
// Only rate limiting qualifies; timeouts and server errors are final.
func IsRetryable(err error) bool {
	return err != nil && Is(err, ErrBackendRateLimited)
}
