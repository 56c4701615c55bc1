// Package bootconfig defines the fixed boot sequence the init process runs.
//
// Nothing here is read at runtime: the sequence is enumerated once by
// Default and handed to the orchestrator by value, so the whole boot can be
// inspected and tested without spawning processes.
package bootconfig

import (
	"errors"
	"fmt"

	"github.com/onkernel/templeinit/lib/paths"
	"github.com/samber/lo"
)

// ErrInvalidAction is returned by Validate for an action that cannot be spawned.
var ErrInvalidAction = errors.New("invalid setup action")

// Action is one external program run to completion during boot.
// The environment is not part of the action: every spawn uses Sequence.Env.
type Action struct {
	Name string
	Path string
	Argv []string

	// Console lines. Info is printed when the action is dispatched, Start
	// right before the program image is loaded, Failure when it cannot be.
	Info    string
	Start   string
	Failure string
}

// Batch is a group of actions dispatched together and joined together.
type Batch struct {
	Name    string
	Actions []Action
	Success string
	Failure string
}

// EnvVar is a single KEY=VALUE pair.
type EnvVar struct {
	Key   string
	Value string
}

// Env is an ordered environment vector.
type Env []EnvVar

// Environ formats the environment the way execve expects it.
func (e Env) Environ() []string {
	return lo.Map(e, func(v EnvVar, _ int) string {
		return v.Key + "=" + v.Value
	})
}

// Sequence is the complete boot: the shared environment, the setup batches in
// order, and the shell the process is replaced with.
type Sequence struct {
	Env     Env
	Batches []Batch
	Shell   Action
}

// Validate checks that every action has a program and an argument vector.
func (s Sequence) Validate() error {
	for _, b := range s.Batches {
		for _, a := range b.Actions {
			if err := a.validate(); err != nil {
				return fmt.Errorf("batch %s: %w", b.Name, err)
			}
		}
	}
	if err := s.Shell.validate(); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}

func (a Action) validate() error {
	if a.Path == "" {
		return fmt.Errorf("%w: %q has no program path", ErrInvalidAction, a.Name)
	}
	if len(a.Argv) == 0 {
		return fmt.Errorf("%w: %q has no argument vector", ErrInvalidAction, a.Name)
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias the slices of another holder.
func (s Sequence) Clone() Sequence {
	out := Sequence{
		Env:   append(Env(nil), s.Env...),
		Shell: s.Shell.clone(),
	}
	out.Batches = lo.Map(s.Batches, func(b Batch, _ int) Batch {
		b.Actions = lo.Map(b.Actions, func(a Action, _ int) Action { return a.clone() })
		return b
	})
	return out
}

func (a Action) clone() Action {
	a.Argv = append([]string(nil), a.Argv...)
	return a
}

// Identity used for LOGNAME and the prompt.
const (
	LogName = "[l2e_init]"
	Prompt  = "TEMPLE DOS #| "
)

// Default returns the boot sequence for the filesystem rooted at p.
func Default(p *paths.Paths) Sequence {
	busybox := p.Busybox()
	mountOpts := "nosuid,noexec,nodev"

	return Sequence{
		Env: Env{
			{"HOME", p.Home()},
			{"TERM", "linux"},
			{"PATH", "/:/bin"},
			{"TZ", "UTC0"},
			{"USER", "root"},
			{"LOGNAME", LogName},
			{"ENV", p.ShellInit()},
			{"PS1", Prompt},
		},
		Batches: []Batch{
			{
				Name: "userspace",
				Actions: []Action{
					{
						Name:    "userspace",
						Path:    busybox,
						Argv:    []string{busybox, "--install", "-s", p.BinDir()},
						Info:    "  *** Info: Create Userspace\n",
						Start:   "  *** Action: Create Userspace...\n",
						Failure: "  *** Userspace creation failed! ***\n",
					},
					{
						Name:    "procfs",
						Path:    busybox,
						Argv:    []string{busybox, "mount", "proc", "-t", "proc", "-o", mountOpts, p.Proc()},
						Info:    "  *** Info: Mount procfs\n",
						Start:   "  *** Action: Mounting procfs\n",
						Failure: "  *** Mounting procfs failed! ***\n",
					},
				},
				Success: "  *** Success: Userspace and procfs ready!\n",
				Failure: "  *** Userspace or procfs failed! ***\n",
			},
			{
				Name: "sysfs",
				Actions: []Action{
					{
						Name:    "sysfs",
						Path:    busybox,
						Argv:    []string{busybox, "mount", "sysfs", "-t", "sysfs", "-o", mountOpts, p.Sys()},
						Info:    "  *** Info: Mount sysfs\n",
						Start:   "  *** Action: Mounting sysfs\n",
						Failure: "  *** Mounting sysfs failed! ***\n",
					},
				},
				Success: "  *** Success: All actions succeeded!\n",
				Failure: "  *** Actions failed! ***\n",
			},
		},
		Shell: Action{
			Name: "shell",
			Path: busybox,
			Argv: []string{busybox, "setsid", "-c", busybox, "ash"},
		},
	}
}
