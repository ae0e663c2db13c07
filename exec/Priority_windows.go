//go:build windows

package exec

import "os/exec"

// Windows below-normal priority classes aren't reachable through os/exec's
// SysProcAttr without cgo-free syscall plumbing this package doesn't carry;
// the Unix build gets the real nice(2)-based lowering (DESIGN.md).
func lowerPriority(cmd *exec.Cmd)     {}
func applyPriorityAfterStart(pid int) {}
