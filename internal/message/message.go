// Package message defines the core data types flowing through the codeswitch pipeline.
package message

import (
	"encoding/json"
)

// TranslationRequest is an incoming request to translate source code.
type TranslationRequest struct {
	// SourceCode is the program text to translate.
	SourceCode string `json:"sourceCode" example:"public class Hello { public static void main(String[] a) { System.out.println(\"Hi\"); } }"`

	// SourceLanguage is "java" or "c" (case-insensitive).
	SourceLanguage string `json:"sourceLanguage" example:"java"`

	// TargetLanguage is "java" or "c" (case-insensitive).
	TargetLanguage string `json:"targetLanguage" example:"c"`

	// ValidateSyntax runs the language toolchain over input and output.
	// Defaults to true when omitted from JSON.
	ValidateSyntax bool `json:"validateSyntax"`
}

// UnmarshalJSON decodes a request, defaulting ValidateSyntax to true.
func (r *TranslationRequest) UnmarshalJSON(data []byte) error {
	type plain TranslationRequest
	p := plain{ValidateSyntax: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = TranslationRequest(p)
	return nil
}

// ImageTranslationRequest carries an image whose text is the source code.
type ImageTranslationRequest struct {
	Image          []byte
	ContentType    string
	SourceLanguage string
	TargetLanguage string
	ValidateSyntax bool
}

// ValidationOutcome is the verdict of a syntax check.
type ValidationOutcome struct {
	// Valid is true when the code passed the check.
	Valid bool `json:"valid"`

	// ErrorMessage describes the first error, or carries an informational
	// message on success (e.g. "C syntax is valid").
	ErrorMessage string `json:"errorMessage,omitempty"`

	// ErrorLine is the 1-based line of the first error, when known.
	ErrorLine *int `json:"errorLine,omitempty"`

	// ErrorColumn is the 1-based column of the first error, when known.
	ErrorColumn *int `json:"errorColumn,omitempty"`
}

// Valid returns a passing outcome with an informational message.
func Valid(msg string) ValidationOutcome {
	return ValidationOutcome{Valid: true, ErrorMessage: msg}
}

// Invalid returns a failing outcome without position information.
func Invalid(msg string) ValidationOutcome {
	return ValidationOutcome{Valid: false, ErrorMessage: msg}
}

// InvalidAt returns a failing outcome at a position. A column of zero means unknown.
func InvalidAt(msg string, line, column int) ValidationOutcome {
	out := ValidationOutcome{Valid: false, ErrorMessage: msg, ErrorLine: &line}
	if column > 0 {
		out.ErrorColumn = &column
	}
	return out
}

// TranslationResult is the outcome of processing a request through the pipeline.
// It is built once per request and not mutated after being returned.
type TranslationResult struct {
	// RequestID correlates the result with log lines.
	RequestID string `json:"requestId,omitempty"`

	OriginalCode   string `json:"originalCode"`
	TranslatedCode string `json:"translatedCode"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`

	// Success is false only when no usable translation was produced.
	Success bool `json:"success"`

	// Message is a human-readable summary of what happened.
	Message string `json:"message"`

	// SyntaxValidation is the outcome of the last validation performed, if any.
	SyntaxValidation *ValidationOutcome `json:"syntaxValidation,omitempty"`

	// Cause classifies a failure, or a target-side syntax warning, with one
	// of the internal/errors sentinels. It is nil on a clean success and is
	// never serialised.
	Cause error `json:"-"`
}

// ServiceStatus summarises collaborator health for status endpoints.
type ServiceStatus struct {
	Backend          string `json:"backend"`
	BackendAvailable bool   `json:"backendAvailable"`
	OCR              string `json:"ocr"`
	OCRAvailable     bool   `json:"ocrAvailable"`
}
