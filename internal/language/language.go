// Package language enumerates the programming languages codeswitch translates between.
package language

import (
	"strings"

	"github.com/nadzzz/codeswitch/internal/errors"
)

// Language is a supported source or target language, always lower case.
type Language string

const (
	Java Language = "java"
	C    Language = "c"
)

// Supported returns the languages in display order.
func Supported() []Language {
	return []Language{Java, C}
}

// Parse matches s case-insensitively against the supported languages.
func Parse(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Java:
		return Java, nil
	case C:
		return C, nil
	}
	return "", errors.Mark(errors.Newf("unsupported language %q", s), errors.ErrUnsupportedLanguage)
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == Java || l == C
}

// Extension returns the source file extension, including the dot.
func (l Language) Extension() string {
	switch l {
	case Java:
		return ".java"
	case C:
		return ".c"
	}
	return ""
}

// Title returns the display name used in user-facing messages.
func (l Language) Title() string {
	switch l {
	case Java:
		return "Java"
	case C:
		return "C"
	}
	return string(l)
}

// Upper returns the name in upper case, as used in backend prompts.
func (l Language) Upper() string {
	return strings.ToUpper(string(l))
}

// Pairs lists the supported translation directions, e.g. "java-to-c".
func Pairs() []string {
	var out []string
	for _, from := range Supported() {
		for _, to := range Supported() {
			if from != to {
				out = append(out, string(from)+"-to-"+string(to))
			}
		}
	}
	return out
}
