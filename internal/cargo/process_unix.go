//go:build unix

package cargo

import (
	"os/exec"
	"syscall"
)

// setProcGroup configures the command to run in its own process group
// so signals reach spawned grandchildren (rustc, build scripts).
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateProcGroup sends SIGTERM to the whole process group.
func terminateProcGroup(cmd *exec.Cmd) error {
	if cmd.Process != nil {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	return nil
}

// killProcGroup sends SIGKILL to the whole process group.
func killProcGroup(cmd *exec.Cmd) error {
	if cmd.Process != nil {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	return nil
}
