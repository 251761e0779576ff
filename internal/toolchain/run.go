package toolchain

import (
	"bytes"
	"context"
	"io/fs"
	"os/exec"
	"time"

	"github.com/nadzzz/codeswitch/internal/errors"
)

// Command describes one bounded subprocess invocation.
type Command struct {
	Argv    []string
	Dir     string
	Env     []string // appended to the parent environment
	Stdin   []byte
	Timeout time.Duration

	// MergeStderr interleaves stderr into Output, as compilers report there.
	MergeStderr bool
}

// waitDelay bounds how long Wait keeps draining output after the process
// group has been killed, in case a descendant escaped the group.
const waitDelay = time.Second

// Result is what a finished process produced. A non-zero ExitCode is not an error.
type Result struct {
	Output   []byte
	Stderr   []byte
	ExitCode int
}

// Run executes cmd in its own process group, so a timeout or cancellation
// also kills compiler subprocesses (gcc's cc1, for instance). The returned
// error is always infrastructure: a missing executable (marked
// errors.ErrCompilerUnavailable), a failure to start, a timeout or a
// cancelled ctx (marked errors.ErrValidationInfrastructure).
func Run(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Argv) == 0 {
		return Result{}, errors.Mark(errors.New("empty command"), errors.ErrValidationInfrastructure)
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(runCtx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay
	killProcessGroup(c)
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	var out, stderr bytes.Buffer
	c.Stdout = &out
	if cmd.MergeStderr {
		c.Stderr = &out
	} else {
		c.Stderr = &stderr
	}

	err := c.Run()
	res := Result{Output: out.Bytes(), Stderr: stderr.Bytes()}

	if err == nil {
		return res, nil
	}

	// A killed process reports an ExitError, so the contexts are checked first.
	if ctx.Err() != nil {
		return res, errors.Mark(errors.Wrapf(ctx.Err(), "running %s", cmd.Argv[0]), errors.ErrValidationInfrastructure)
	}
	if runCtx.Err() != nil {
		return res, errors.Mark(
			errors.Newf("%s timed out after %s", cmd.Argv[0], cmd.Timeout),
			errors.ErrValidationInfrastructure,
		)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return res, errors.Mark(errors.Wrapf(err, "%s not found", cmd.Argv[0]), errors.ErrCompilerUnavailable)
	}
	return res, errors.Mark(errors.Wrapf(err, "running %s", cmd.Argv[0]), errors.ErrValidationInfrastructure)
}
