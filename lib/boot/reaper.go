package boot

import (
	"context"
	"errors"

	"github.com/onkernel/templeinit/lib/logger"
	"golang.org/x/sys/unix"
)

// forkReaper blocks signals and forks exactly once. A failed fork is fatal:
// without a reaper nothing would ever collect orphans.
func (b *Booter) forkReaper(ctx context.Context) int {
	log := logger.FromContext(ctx).With("phase", "reaper")

	b.enter(ctx, StateReapFork)
	b.sys.BlockSignals()

	pid, err := b.sys.Fork()
	switch {
	case err != nil:
		log.Error("fork failed", "error", err)
		b.diag(forkFailedText)
		b.enter(ctx, StateFatalExit)
		return 1
	case pid == 0:
		return b.Boot(ctx)
	default:
		log.Debug("boot child started", "pid", pid)
		b.enter(ctx, StateReaping)
		b.reap(ctx)
		return 0
	}
}

// reap waits for any child forever. When there is nothing to wait for it
// pauses until the next signal instead of spinning.
func (b *Booter) reap(ctx context.Context) {
	log := logger.FromContext(ctx).With("phase", "reaper")

	for n := 0; b.reapLimit == 0 || n < b.reapLimit; n++ {
		pid, status, err := b.sys.Wait()
		switch {
		case err == nil:
			log.Debug("reaped", "pid", pid, "status", status)
		case errors.Is(err, unix.EINTR):
		case errors.Is(err, unix.ECHILD):
			b.sys.Pause()
		default:
			log.Warn("wait failed", "error", err)
			b.sys.Pause()
		}
	}
}
