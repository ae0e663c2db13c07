//go:build !windows

package exec

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// lowerPriority configures cmd to start as a new process group and, once
// running, nices it below-normal so a build's spawned compilers never
// starve the coordinator or the rest of the desktop.
func lowerPriority(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func applyPriorityAfterStart(pid int) {
	_ = unix.Setpriority(unix.PRIO_PROCESS, pid, 10)
}
