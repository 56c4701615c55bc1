package boot

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/onkernel/templeinit/lib/bootconfig"
	"github.com/onkernel/templeinit/lib/logger"
	"github.com/onkernel/templeinit/lib/paths"
	"github.com/onkernel/templeinit/lib/system"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// fakeSystem records every primitive call in order. Spawned children are
// reaped first-in first-out; once none are left Wait reports ECHILD.
type fakeSystem struct {
	pid     int
	ppid    int
	info    system.Info
	infoErr error

	forkPID int
	forkErr error

	// spawnErr and exitStatus are keyed by the last argv element, which is
	// unique per setup action (/bin, /proc, /sys).
	spawnErr   map[string]error
	exitStatus map[string]int
	nextPID    int
	children   []int
	status     map[int]int

	// waitFn replaces the default Wait behaviour when set.
	waitFn func() (int, int, error)

	execErr error
	// execReturnsNil makes Exec return nil instead of ending the goroutine.
	execReturnsNil bool

	linkErr    error
	setpgidErr error

	calls []string
	envs  [][]string
}

func newFakeSystem(pid int, uptime time.Duration) *fakeSystem {
	return &fakeSystem{
		pid:        pid,
		info:       system.Info{Uptime: uptime, TotalRAM: 512 << 20, FreeRAM: 256 << 20, Procs: 1},
		spawnErr:   map[string]error{},
		exitStatus: map[string]int{},
		status:     map[int]int{},
		nextPID:    100,
	}
}

func (f *fakeSystem) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeSystem) Getpid() int {
	f.record("getpid")
	return f.pid
}

func (f *fakeSystem) Getppid() int {
	f.record("getppid")
	return f.ppid
}

func (f *fakeSystem) Sysinfo() (system.Info, error) {
	f.record("sysinfo")
	return f.info, f.infoErr
}

func (f *fakeSystem) BlockSignals()   { f.record("block") }
func (f *fakeSystem) UnblockSignals() { f.record("unblock") }
func (f *fakeSystem) Pause()          { f.record("pause") }

func (f *fakeSystem) Fork() (int, error) {
	f.record("fork")
	return f.forkPID, f.forkErr
}

func (f *fakeSystem) Setsid() error {
	f.record("setsid")
	return nil
}

func (f *fakeSystem) Setpgid(pid, pgid int) error {
	f.record("setpgid")
	return f.setpgidErr
}

func (f *fakeSystem) Spawn(path string, argv, env []string) (int, error) {
	key := argv[len(argv)-1]
	f.record("spawn:" + key)
	f.envs = append(f.envs, slices.Clone(env))
	if err := f.spawnErr[key]; err != nil {
		return 0, err
	}
	pid := f.nextPID
	f.nextPID++
	f.children = append(f.children, pid)
	f.status[pid] = f.exitStatus[key]
	return pid, nil
}

func (f *fakeSystem) Wait() (int, int, error) {
	f.record("wait")
	if f.waitFn != nil {
		return f.waitFn()
	}
	if len(f.children) == 0 {
		return 0, 0, unix.ECHILD
	}
	pid := f.children[0]
	f.children = f.children[1:]
	return pid, f.status[pid], nil
}

func (f *fakeSystem) Exec(path string, argv, env []string) error {
	f.record("exec")
	f.envs = append(f.envs, slices.Clone(env))
	if f.execErr != nil {
		return f.execErr
	}
	if f.execReturnsNil {
		return nil
	}
	// A successful exec never returns to the caller.
	runtime.Goexit()
	return nil
}

func (f *fakeSystem) LinkUp(name string) error {
	f.record("linkup:" + name)
	return f.linkErr
}

func (f *fakeSystem) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeSystem) index(name string) int {
	return slices.Index(f.calls, name)
}

func (f *fakeSystem) firstSpawn() int {
	return slices.IndexFunc(f.calls, func(c string) bool { return strings.HasPrefix(c, "spawn:") })
}

// only returns the recorded calls whose name starts with one of prefixes.
func (f *fakeSystem) only(prefixes ...string) []string {
	var out []string
	for _, c := range f.calls {
		for _, p := range prefixes {
			if strings.HasPrefix(c, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

type recorder struct {
	strings.Builder
}

func (r *recorder) Render(text string) {
	r.WriteString(text)
}

type harness struct {
	sys    *fakeSystem
	out    *recorder
	stderr *bytes.Buffer
	booter *Booter
}

func newHarness(t *testing.T, sys *fakeSystem) *harness {
	t.Helper()
	h := &harness{sys: sys, out: &recorder{}, stderr: &bytes.Buffer{}}
	b, err := New(sys, h.out, bootconfig.Default(paths.New("/")), WithStderr(h.stderr))
	require.NoError(t, err)
	h.booter = b
	return h
}

func testContext() context.Context {
	return logger.AddToContext(context.Background(), logger.New(io.Discard, logger.Options{Level: slog.LevelDebug}))
}

// call runs f on its own goroutine so that a successful exec, which ends the
// goroutine, can be observed. returned is false if f never returned.
func call(f func(context.Context) int) (code int, returned bool) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		code = f(testContext())
		returned = true
	}()
	<-done
	return code, returned
}
