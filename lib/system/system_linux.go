package system

import (
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Linux implements the boot primitives against the running kernel.
type Linux struct {
	self string
	args []string
	sigs chan os.Signal
	tick time.Duration
}

// New returns the primitives for the current process.
func New() *Linux {
	self, err := os.Executable()
	if err != nil {
		// /proc is not mounted yet when running as PID 1.
		self = os.Args[0]
	}
	return &Linux{
		self: self,
		args: slices.Clone(os.Args),
		sigs: make(chan os.Signal, 32),
		tick: 5 * time.Second,
	}
}

// Getpid returns the process ID.
func (l *Linux) Getpid() int {
	return unix.Getpid()
}

// Getppid returns the parent's process ID.
func (l *Linux) Getppid() int {
	return unix.Getppid()
}

// Sysinfo returns uptime and memory figures.
func (l *Linux) Sysinfo() (Info, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return Info{}, fmt.Errorf("sysinfo: %w", err)
	}
	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	return Info{
		Uptime:   time.Duration(si.Uptime) * time.Second,
		TotalRAM: uint64(si.Totalram) * unit,
		FreeRAM:  uint64(si.Freeram) * unit,
		Procs:    int(si.Procs),
	}, nil
}

// BlockSignals routes every catchable signal to an internal channel so none
// of them can take the process down across the fork. The channel also wakes
// Pause on SIGCHLD.
func (l *Linux) BlockSignals() {
	signal.Notify(l.sigs)
}

// UnblockSignals restores default dispositions.
func (l *Linux) UnblockSignals() {
	signal.Reset()
}

// Pause blocks until a signal arrives or the fallback tick elapses.
func (l *Linux) Pause() {
	select {
	case <-l.sigs:
	case <-time.After(l.tick):
	}
}

// Fork starts the child branch: a copy of this binary with the same
// environment and the stage marker appended to argv. It returns the child's
// PID.
func (l *Linux) Fork() (int, error) {
	pid, err := syscall.ForkExec(l.self, stageArgs(l.args), &syscall.ProcAttr{
		Env:   os.Environ(),
		Files: stdio(),
	})
	if err != nil {
		return -1, fmt.Errorf("re-exec %s: %w", l.self, err)
	}
	return pid, nil
}

// Setsid starts a new session with this process as its leader.
func (l *Linux) Setsid() error {
	_, err := unix.Setsid()
	return err
}

// Setpgid sets the process group of pid.
func (l *Linux) Setpgid(pid, pgid int) error {
	return unix.Setpgid(pid, pgid)
}

// Spawn forks and executes path with argv and env, sharing stdio. An error is
// either a failed fork (EAGAIN, ENOMEM) or the errno of the failed execve in
// the child, which has already been reaped.
func (l *Linux) Spawn(path string, argv, env []string) (int, error) {
	return syscall.ForkExec(path, argv, &syscall.ProcAttr{
		Env:   env,
		Files: stdio(),
	})
}

// Wait blocks until any child terminates and returns its PID and exit code.
// The error is the raw errno, so callers can match unix.ECHILD and unix.EINTR.
func (l *Linux) Wait() (int, int, error) {
	var ws unix.WaitStatus
	pid, err := unix.Wait4(-1, &ws, 0, nil)
	if err != nil {
		return 0, 0, err
	}
	return pid, ExitCode(ws.Exited(), ws.ExitStatus(), ws.Signaled(), int(ws.Signal())), nil
}

// Exec replaces the process image. It only returns on failure.
func (l *Linux) Exec(path string, argv, env []string) error {
	signal.Reset()
	if err := unix.Exec(path, argv, env); err != nil {
		return fmt.Errorf("execve %s: %w", path, err)
	}
	return nil
}

// LinkUp sets the named network link up.
func (l *Linux) LinkUp(name string) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("lookup link %s: %w", name, err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("set link %s up: %w", name, err)
	}
	return nil
}

func stdio() []uintptr {
	return []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()}
}
