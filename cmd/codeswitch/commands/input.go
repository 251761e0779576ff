package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
)

// readInput reads path, or stdin when path is empty or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "reading stdin")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return data, nil
}

// languageFromPath infers the language from a file extension.
func languageFromPath(path string) (language.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range language.Supported() {
		if l.Extension() == ext {
			return l, true
		}
	}
	return "", false
}

// resolveLanguage returns flag if set, else infers from path.
func resolveLanguage(flag, path, name string) (language.Language, error) {
	if flag != "" {
		return language.Parse(flag)
	}
	if l, ok := languageFromPath(path); ok {
		return l, nil
	}
	return "", errors.WithHintf(errors.Newf("cannot determine %s language", name),
		"pass --%s java|c", name)
}

// stderr routes a pterm printer to stderr so stdout carries only code.
func stderr(p pterm.PrefixPrinter) *pterm.PrefixPrinter {
	return p.WithWriter(os.Stderr)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "formatting JSON")
	}
	fmt.Println(string(out))
	return nil
}
