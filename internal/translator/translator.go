// Package translator defines the interface for LLM-backed code translation.
//
// A translator takes source code in one language and produces equivalent
// code in another. codeswitch ships with two backends: Anthropic (cloud,
// with a deterministic mock fallback when no key is configured) and Ollama
// (self-hosted).
package translator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/nadzzz/codeswitch/internal/language"
)

// Translator is the interface every translation backend implements.
type Translator interface {
	// Name returns the backend identifier (e.g., "anthropic", "ollama").
	Name() string

	// Translate converts code from one language to another. The result is
	// bare code with no markdown fences.
	Translate(ctx context.Context, code string, from, to language.Language) (string, error)

	// Available reports whether real (non-mock) translation is configured.
	Available() bool

	// Status is a one-line human-readable description of the backend state.
	Status() string
}

// BuildPrompt renders the instruction sent to the model.
func BuildPrompt(code string, from, to language.Language) string {
	return fmt.Sprintf(
		"You are an expert programmer specializing in code translation between Java and C. "+
			"Translate the following %s code to %s while maintaining the same functionality and logic. "+
			"Focus on:\n"+
			"1. Maintaining equivalent functionality\n"+
			"2. Using appropriate language-specific syntax and conventions\n"+
			"3. Handling data types and memory management correctly\n"+
			"4. Preserving the original algorithm and logic flow\n"+
			"5. Adding necessary includes/imports for the target language\n\n"+
			"Return only the translated code without any explanations or markdown formatting.\n\n"+
			"Source %s code:\n%s",
		from.Upper(), to.Upper(), from.Upper(), code,
	)
}

var (
	openFenceRE = regexp.MustCompile("```[a-zA-Z]*\n?")
)

// CleanCode strips markdown code fences and surrounding whitespace from model output.
func CleanCode(text string) string {
	text = openFenceRE.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
