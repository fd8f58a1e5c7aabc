//go:build unix

package shell

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup runs the tool in its own process group so that a
// kill also reaches the helpers it spawns (osmupdate runs osmconvert).
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
