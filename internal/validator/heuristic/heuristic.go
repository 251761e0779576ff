// Package heuristic provides a structural syntax check used when a language
// toolchain is not installed.
package heuristic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/validator"
)

// Check balances braces and parentheses in one pass.
//
// A closing token with nothing open fails immediately at its line. Leftover
// imbalance is reported for braces first, then parentheses.
func Check(code string, lang language.Language) message.ValidationOutcome {
	braces, parens := 0, 0
	line := 1

	for _, r := range code {
		switch r {
		case '\n':
			line++
		case '{':
			braces++
		case '}':
			if braces == 0 {
				return message.InvalidAt("Unmatched closing brace", line, 0)
			}
			braces--
		case '(':
			parens++
		case ')':
			if parens == 0 {
				return message.InvalidAt("Unmatched closing parenthesis", line, 0)
			}
			parens--
		}
	}

	if braces != 0 {
		return message.Invalid(fmt.Sprintf("Unmatched braces: %d %s brace(s)", abs(braces), direction(braces)))
	}
	if parens != 0 {
		return message.Invalid(fmt.Sprintf("Unmatched parentheses: %d %s parenthesis(es)", abs(parens), direction(parens)))
	}
	return message.Valid(fmt.Sprintf("Basic %s syntax checks passed (full validation requires %s)", lang.Title(), toolName(lang)))
}

func direction(n int) string {
	if n > 0 {
		return "opening"
	}
	return "closing"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func toolName(lang language.Language) string {
	switch lang {
	case language.C:
		return "GCC"
	case language.Java:
		return "a JDK"
	}
	return "a compiler"
}

// Fallback wraps inner so that a missing toolchain yields a heuristic
// verdict instead of an error. Other errors pass through.
type Fallback struct {
	inner validator.Validator
	lang  language.Language
	log   *zap.SugaredLogger
}

// NewFallback returns inner decorated with the structural check for lang.
func NewFallback(inner validator.Validator, lang language.Language, log *zap.SugaredLogger) *Fallback {
	return &Fallback{inner: inner, lang: lang, log: log}
}

// Validate implements validator.Validator.
func (f *Fallback) Validate(ctx context.Context, code string) (message.ValidationOutcome, error) {
	out, err := f.inner.Validate(ctx, code)
	if err != nil && errors.Is(err, errors.ErrCompilerUnavailable) {
		f.log.Debugw("toolchain missing, using structural check",
			logger.FieldLanguage, f.lang,
			logger.FieldError, err)
		return Check(code, f.lang), nil
	}
	return out, err
}
