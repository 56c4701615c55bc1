// Package boot implements the PID-1 supervision core: the identity guard, the
// reaper fork, the setup-action runner, the batch orchestrator and the final
// hand-off to the shell.
//
// The process model is fork-based and strictly sequential:
//
//	GUARD -> REAP_FORK -> SETUP_BATCH_1 -> JOIN_1 -> SETUP_BATCH_2 -> JOIN_2 -> HANDOFF
//
// The parent of the reaper fork never leaves the reap loop. Everything after
// REAP_FORK runs in the child branch. Nothing is retried.
package boot

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/onkernel/templeinit/lib/bootconfig"
	"github.com/onkernel/templeinit/lib/logger"
	"github.com/onkernel/templeinit/lib/system"
)

const initPID = 1

// Exit statuses recorded for actions that never produced a wait status.
const (
	// StatusExecFailed is recorded when the program image could not be loaded.
	StatusExecFailed = 255
	// StatusForkFailed is recorded when no child process could be created.
	StatusForkFailed = -1
)

// System is the set of process primitives the orchestrator drives.
// system.Linux implements it against the kernel.
type System interface {
	Getpid() int
	Getppid() int
	Sysinfo() (system.Info, error)

	BlockSignals()
	UnblockSignals()
	// Pause blocks until a signal arrives, or a fallback timeout.
	Pause()

	// Fork returns the child's PID in the parent and 0 in the child.
	Fork() (int, error)
	Setsid() error
	Setpgid(pid, pgid int) error

	// Spawn forks and executes one program, returning the child's PID.
	Spawn(path string, argv, env []string) (int, error)
	// Wait blocks until any child terminates. Errors are raw errnos.
	Wait() (pid, status int, err error)
	// Exec replaces the process image and only returns on failure.
	Exec(path string, argv, env []string) error

	LinkUp(name string) error
}

// Decorator renders decorative console text.
type Decorator interface {
	Render(text string)
}

// State names a step of the boot state machine.
type State string

const (
	StateGuard        State = "GUARD"
	StateReapFork     State = "REAP_FORK"
	StateReaping      State = "REAPING"
	StateHandoff      State = "HANDOFF"
	StateShellRunning State = "SHELL_RUNNING"
	StateFatalExit    State = "FATAL_EXIT"
)

func setupState(i int) State { return State(fmt.Sprintf("SETUP_BATCH_%d", i+1)) }
func joinState(i int) State  { return State(fmt.Sprintf("JOIN_%d", i+1)) }

// Booter runs the boot sequence.
type Booter struct {
	sys    System
	out    Decorator
	stderr io.Writer
	seq    bootconfig.Sequence

	history []State
	// reapLimit bounds the reap loop; 0 means forever.
	reapLimit int
}

// Option configures a Booter.
type Option func(*Booter)

// WithStderr sets where diagnostics are printed.
func WithStderr(w io.Writer) Option {
	return func(b *Booter) { b.stderr = w }
}

// New creates a Booter for seq. The sequence is copied.
func New(sys System, out Decorator, seq bootconfig.Sequence, opts ...Option) (*Booter, error) {
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("boot sequence: %w", err)
	}
	b := &Booter{
		sys:    sys,
		out:    out,
		stderr: os.Stderr,
		seq:    seq.Clone(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Booter) enter(ctx context.Context, s State) {
	b.history = append(b.history, s)
	logger.FromContext(ctx).Debug("entering state", "state", string(s))
}

func (b *Booter) diag(text string) {
	fmt.Fprint(b.stderr, text)
}
