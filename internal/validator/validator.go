// Package validator checks the syntax of Java and C source code.
//
// Each language has a Validator backed by its native toolchain (see the javac
// and gcc subpackages). When a toolchain is missing, the heuristic package's
// Fallback decorator substitutes a structural brace/parenthesis check.
//
// A Validator distinguishes two failure modes:
//   - a syntax verdict, returned as a ValidationOutcome with Valid=false
//   - an infrastructure failure, returned as an error
//
// Set folds both into an outcome for callers that only want a verdict.
package validator

import (
	"context"

	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
)

// ErrCompilerUnavailable is returned when the toolchain is not installed.
var ErrCompilerUnavailable = errors.ErrCompilerUnavailable

// Validator checks a single language.
type Validator interface {
	// Validate returns a verdict for code. A non-nil error means no verdict
	// could be reached; it carries errors.ErrCompilerUnavailable or
	// errors.ErrValidationInfrastructure.
	Validate(ctx context.Context, code string) (message.ValidationOutcome, error)
}

// Func adapts a plain function to the Validator interface.
type Func func(ctx context.Context, code string) (message.ValidationOutcome, error)

// Validate calls f.
func (f Func) Validate(ctx context.Context, code string) (message.ValidationOutcome, error) {
	return f(ctx, code)
}

// Infrastructure marks err as a validation infrastructure failure.
func Infrastructure(err error) error {
	if err == nil || errors.IsAny(err, errors.ErrValidationInfrastructure, errors.ErrCompilerUnavailable) {
		return err
	}
	return errors.Mark(err, errors.ErrValidationInfrastructure)
}

// Set selects a Validator per language. It is immutable after construction
// and safe for concurrent use.
type Set struct {
	validators map[language.Language]Validator
	log        *zap.SugaredLogger
}

// NewSet builds a Set from the given per-language validators.
func NewSet(log *zap.SugaredLogger, validators map[language.Language]Validator) *Set {
	vs := make(map[language.Language]Validator, len(validators))
	for lang, v := range validators {
		vs[lang] = v
	}
	return &Set{validators: vs, log: log}
}

// Validate always returns a verdict. Infrastructure errors become an invalid
// outcome whose message names the language and the cause.
func (s *Set) Validate(ctx context.Context, code string, lang language.Language) message.ValidationOutcome {
	v, ok := s.validators[lang]
	if !ok {
		return message.Invalid("Unsupported language for validation: " + string(lang))
	}

	out, err := v.Validate(ctx, code)
	if err != nil {
		s.log.Warnw("syntax validation could not run",
			logger.FieldLanguage, lang,
			logger.FieldError, err)
		return message.Invalid(lang.Title() + " syntax validation error: " + err.Error())
	}
	return out
}
