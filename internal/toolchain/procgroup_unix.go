//go:build unix

package toolchain

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/nadzzz/codeswitch/internal/errors"
)

// killProcessGroup starts c as a group leader and makes context
// cancellation kill the whole group.
func killProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		err := syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
