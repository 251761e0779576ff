// Package mock produces deterministic placeholder translations.
//
// It is used when no translation backend is configured, so the rest of the
// pipeline (validation, transports) can be exercised offline. Print
// statements are carried across; everything else is echoed in a comment.
package mock

import (
	"fmt"
	"strings"

	"github.com/nadzzz/codeswitch/internal/language"
)

const (
	defaultLiteral = "Hello World"
	placeholder    = "Mock translation - configure Anthropic API for real translation"
)

// Generate returns a mock translation of source. It is pure: the same input
// always yields the same output.
func Generate(source string, from, to language.Language) string {
	switch {
	case from == language.Java && to == language.C:
		return javaToC(source)
	case from == language.C && to == language.Java:
		return cToJava(source)
	default:
		return fmt.Sprintf("// Mock translation: %s to %s\n"+
			"// Original code:\n/*\n%s\n*/\n"+
			"// This is a mock translation for testing purposes.\n"+
			"// Please configure your Anthropic API key for real translations.",
			from, to, source)
	}
}

func javaToC(src string) string {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n")
	b.WriteString("#include <stdlib.h>\n")
	b.WriteString("#include <string.h>\n\n")

	if !strings.Contains(src, "System.out.println") {
		b.WriteString("// Mock C translation\n")
		b.WriteString("int main() {\n")
		b.WriteString("    // Translated from Java:\n")
		b.WriteString("    /*\n" + src + "\n    */\n")
		b.WriteString("    printf(\"" + placeholder + "\\n\");\n")
		b.WriteString("    return 0;\n")
		b.WriteString("}\n")
		return b.String()
	}

	b.WriteString("int main() {\n")
	for _, line := range strings.Split(src, "\n") {
		if strings.Contains(line, "System.out.println") {
			b.WriteString("    printf(\"" + outerLiteral(line) + "\\n\");\n")
		}
	}
	b.WriteString("    return 0;\n")
	b.WriteString("}\n")
	return b.String()
}

func cToJava(src string) string {
	var b strings.Builder
	b.WriteString("public class TranslatedCode {\n")
	b.WriteString("    public static void main(String[] args) {\n")

	if strings.Contains(src, "printf") {
		for _, line := range strings.Split(src, "\n") {
			if strings.Contains(line, "printf") {
				b.WriteString("        System.out.println(\"" + firstLiteral(line) + "\");\n")
			}
		}
	} else {
		b.WriteString("        // Mock Java translation\n")
		b.WriteString("        /*\n")
		b.WriteString("         * Translated from C:\n")
		b.WriteString("         * " + strings.ReplaceAll(src, "\n", "\n         * ") + "\n")
		b.WriteString("         */\n")
		b.WriteString("        System.out.println(\"" + placeholder + "\");\n")
	}

	b.WriteString("    }\n")
	b.WriteString("}\n")
	return b.String()
}

// outerLiteral returns the text between the first and last double quote.
func outerLiteral(line string) string {
	start := strings.Index(line, `"`)
	end := strings.LastIndex(line, `"`)
	if start == -1 || start >= end {
		return defaultLiteral
	}
	return line[start+1 : end]
}

// firstLiteral returns the first quoted string with \n escapes removed.
func firstLiteral(line string) string {
	start := strings.Index(line, `"`)
	if start == -1 {
		return defaultLiteral
	}
	end := strings.Index(line[start+1:], `"`)
	if end == -1 {
		return defaultLiteral
	}
	return strings.ReplaceAll(line[start+1:start+1+end], `\n`, "")
}
