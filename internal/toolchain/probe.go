// Package toolchain detects which external executables (compilers, OCR
// engines) are installed.
//
// A Probe answers lazily and remembers definite answers: an executable that
// was found, or one that the OS reports as missing. Transient lookup errors
// are not remembered, so the next call asks again. Concurrent first use
// resolves each executable once.
package toolchain

import (
	"io/fs"
	"os/exec"
	"sync"

	"github.com/nadzzz/codeswitch/internal/errors"
)

// LookPathFunc resolves an executable name to a path. exec.LookPath in production.
type LookPathFunc func(file string) (string, error)

type lookup struct {
	path string
	err  error
}

// Probe is a memoised executable lookup. The zero value is not usable; use NewProbe.
type Probe struct {
	lookPath LookPathFunc

	mu    sync.Mutex
	known map[string]lookup
}

// NewProbe returns a Probe backed by exec.LookPath.
func NewProbe() *Probe {
	return NewProbeWith(exec.LookPath)
}

// NewProbeWith returns a Probe backed by fn. Tests use it to simulate
// installed or missing toolchains.
func NewProbeWith(fn LookPathFunc) *Probe {
	return &Probe{lookPath: fn, known: make(map[string]lookup)}
}

// Resolve returns the path of binary, or an error marked
// errors.ErrCompilerUnavailable when it is not installed.
func (p *Probe) Resolve(binary string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.known[binary]; ok {
		return l.path, l.err
	}

	path, err := p.lookPath(binary)
	switch {
	case err == nil:
		p.known[binary] = lookup{path: path}
		return path, nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		missing := errors.Mark(errors.Wrapf(err, "%s not found", binary), errors.ErrCompilerUnavailable)
		p.known[binary] = lookup{err: missing}
		return "", missing
	default:
		return "", errors.Wrapf(err, "looking up %s", binary)
	}
}

// Available reports whether binary is installed.
func (p *Probe) Available(binary string) bool {
	_, err := p.Resolve(binary)
	return err == nil
}

// Forget drops the remembered answer for binary, e.g. after an install.
func (p *Probe) Forget(binary string) {
	p.mu.Lock()
	delete(p.known, binary)
	p.mu.Unlock()
}
