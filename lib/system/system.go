// Package system implements the Linux process primitives the init process is
// built on: identity, sysinfo, signal handling, fork/exec/wait and the final
// image replacement.
//
// Go cannot fork without exec, so the reaper fork is a re-exec of the running
// binary with a stage marker appended to its argv. The marker only selects the
// resume path; the caller still has to check that the process really is a
// direct child of PID 1.
package system

import (
	"slices"
	"time"
)

// stageArg is appended to the argv of the reaper child. The kernel hands
// key=value boot parameters to init through the environment, so the marker
// lives in argv where they cannot reach it.
const stageArg = "--templeinit-stage=boot"

// Info is the subset of sysinfo(2) the boot output uses.
type Info struct {
	Uptime   time.Duration
	TotalRAM uint64
	FreeRAM  uint64
	Procs    int
}

// IsForkedChild reports whether args end with the stage marker of the reaper
// fork.
func IsForkedChild(args []string) bool {
	return len(args) > 1 && args[len(args)-1] == stageArg
}

// stageArgs returns args with every stage marker removed and exactly one
// appended.
func stageArgs(args []string) []string {
	out := slices.DeleteFunc(slices.Clone(args), func(a string) bool { return a == stageArg })
	return append(out, stageArg)
}

// ExitCode converts a wait status into a shell-style exit code: the exit
// status for a normal exit, 128+signal for a killed child.
func ExitCode(exited bool, status int, signaled bool, signal int) int {
	switch {
	case exited:
		return status
	case signaled:
		return 128 + signal
	default:
		return -1
	}
}
