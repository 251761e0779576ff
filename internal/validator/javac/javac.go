// Package javac validates Java syntax with the JDK compiler.
//
// The source is compiled as a single unit named after its public top-level
// type. Code without one is compiled as TempClass with the public modifier
// removed from its type declarations, since javac requires a public type to
// live in a file of the same name.
package javac

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/toolchain"
	"github.com/nadzzz/codeswitch/internal/validator"
)

// DefaultUnitName names code that declares no public type.
const DefaultUnitName = "TempClass"

var (
	publicTypeREs = []*regexp.Regexp{
		regexp.MustCompile(`public\s+class\s+(\w+)`),
		regexp.MustCompile(`public\s+interface\s+(\w+)`),
		regexp.MustCompile(`public\s+enum\s+(\w+)`),
	}
	publicModifierRE = regexp.MustCompile(`public\s+(class|interface|enum)\b`)
	diagnosticRE     = regexp.MustCompile(`^(?:.*[/\\])?\w+\.java:(\d+):\s*error:\s*(.+)$`)
)

// Unit is a compilation unit ready to be written to disk.
type Unit struct {
	Name   string // type name; the file is Name + ".java"
	Source string
}

// PrepareUnit picks the unit name for code, rewriting it when it declares no
// public class, interface or enum.
func PrepareUnit(code string) Unit {
	for _, re := range publicTypeREs {
		if m := re.FindStringSubmatch(code); m != nil {
			return Unit{Name: m[1], Source: code}
		}
	}
	return Unit{
		Name:   DefaultUnitName,
		Source: publicModifierRE.ReplaceAllString(code, "$1"),
	}
}

// Validator runs javac over a scratch copy of the code.
type Validator struct {
	argv    []string
	probe   *toolchain.Probe
	timeout time.Duration
	log     *zap.SugaredLogger
}

// New returns a validator that runs argv (e.g. ["javac", "-proc:none"]).
func New(argv []string, probe *toolchain.Probe, timeout time.Duration, log *zap.SugaredLogger) *Validator {
	return &Validator{argv: argv, probe: probe, timeout: timeout, log: log}
}

// Validate implements validator.Validator.
func (v *Validator) Validate(ctx context.Context, code string) (message.ValidationOutcome, error) {
	if _, err := v.probe.Resolve(v.argv[0]); err != nil {
		return message.ValidationOutcome{}, validator.Infrastructure(err)
	}

	unit := PrepareUnit(code)

	dir, err := os.MkdirTemp("", "java_syntax_check")
	if err != nil {
		return message.ValidationOutcome{}, validator.Infrastructure(errors.Wrap(err, "creating temp dir"))
	}
	defer v.cleanup(dir)

	file := unit.Name + ".java"
	if err := os.WriteFile(filepath.Join(dir, file), []byte(unit.Source), 0o600); err != nil {
		return message.ValidationOutcome{}, validator.Infrastructure(errors.Wrap(err, "writing source file"))
	}

	args := append(append([]string{}, v.argv...), "-d", dir, file)
	res, err := toolchain.Run(ctx, toolchain.Command{
		Argv:        args,
		Dir:         dir,
		Timeout:     v.timeout,
		MergeStderr: true,
	})
	if err != nil {
		return message.ValidationOutcome{}, validator.Infrastructure(err)
	}

	if res.ExitCode == 0 {
		return message.Valid("Java syntax is valid"), nil
	}
	return ParseDiagnostics(string(res.Output)), nil
}

// ParseDiagnostics turns javac output into an outcome for the first error.
// The column comes from the caret line javac prints under the source echo.
func ParseDiagnostics(output string) message.ValidationOutcome {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	for i, l := range lines {
		m := diagnosticRE.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[1])
		col := 0
		for _, next := range lines[i+1 : min(i+3, len(lines))] {
			if strings.TrimSpace(next) == "^" {
				col = strings.Index(next, "^") + 1
				break
			}
		}
		return message.InvalidAt(strings.TrimSpace(m[2]), line, col)
	}
	return message.Invalid("Java syntax errors found:\n" + output)
}

func (v *Validator) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		v.log.Warnw("failed to remove scratch directory",
			logger.FieldPath, dir,
			logger.FieldError, err)
	}
}
