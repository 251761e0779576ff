// Package gcc validates C syntax by running the C compiler with -fsyntax-only.
package gcc

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/toolchain"
	"github.com/nadzzz/codeswitch/internal/validator"
)

const fileName = "temp.c"

var diagnosticRE = regexp.MustCompile(`temp\.c:(\d+):(\d+):\s*error:\s*(.+)`)

// Validator runs a GCC-compatible compiler over a scratch copy of the code.
type Validator struct {
	argv    []string
	probe   *toolchain.Probe
	timeout time.Duration
	log     *zap.SugaredLogger
}

// New returns a validator that runs argv (e.g. ["gcc"] or ["clang", "-std=c11"]).
func New(argv []string, probe *toolchain.Probe, timeout time.Duration, log *zap.SugaredLogger) *Validator {
	return &Validator{argv: argv, probe: probe, timeout: timeout, log: log}
}

// Validate implements validator.Validator.
func (v *Validator) Validate(ctx context.Context, code string) (message.ValidationOutcome, error) {
	if _, err := v.probe.Resolve(v.argv[0]); err != nil {
		return message.ValidationOutcome{}, validator.Infrastructure(err)
	}

	dir, err := os.MkdirTemp("", "c_syntax_check")
	if err != nil {
		return message.ValidationOutcome{}, validator.Infrastructure(errors.Wrap(err, "creating temp dir"))
	}
	defer v.cleanup(dir)

	if err := os.WriteFile(filepath.Join(dir, fileName), []byte(code), 0o600); err != nil {
		return message.ValidationOutcome{}, validator.Infrastructure(errors.Wrap(err, "writing source file"))
	}

	args := append(append([]string{}, v.argv...), "-fsyntax-only", fileName)
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
		return message.Valid("C syntax is valid"), nil
	}
	return ParseDiagnostics(string(res.Output)), nil
}

// ParseDiagnostics turns compiler output into an outcome for the first error.
func ParseDiagnostics(output string) message.ValidationOutcome {
	m := diagnosticRE.FindStringSubmatch(output)
	if m == nil {
		return message.Invalid("C syntax errors found:\n" + output)
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return message.InvalidAt(m[3], line, col)
}

func (v *Validator) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		v.log.Warnw("failed to remove scratch directory",
			logger.FieldPath, dir,
			logger.FieldError, err)
	}
}
