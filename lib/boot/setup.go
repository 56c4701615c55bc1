package boot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/onkernel/templeinit/lib/bootconfig"
	"github.com/onkernel/templeinit/lib/logger"
	"github.com/samber/lo"
	"golang.org/x/sys/unix"
)

// Boot is the child branch of the reaper fork. It takes session and process
// group leadership, runs every setup batch, and hands off to the shell. It
// only returns when the hand-off fails.
func (b *Booter) Boot(ctx context.Context) int {
	ctx = logger.AddToContext(ctx, logger.FromContext(ctx).With("phase", "boot"))
	log := logger.FromContext(ctx)

	b.sys.UnblockSignals()
	if err := b.sys.Setsid(); err != nil {
		log.Warn("setsid failed", "error", err)
	}
	// A session leader already leads its own group; EPERM is expected then.
	if err := b.sys.Setpgid(0, 0); err != nil && !errors.Is(err, unix.EPERM) {
		log.Warn("setpgid failed", "error", err)
	}

	info := b.sysinfo(ctx)
	b.out.Render(greeting)
	if info.TotalRAM > 0 {
		b.out.Render(memoryText(info.FreeRAM, info.TotalRAM))
	}

	for i, batch := range b.seq.Batches {
		b.runBatch(ctx, i, batch)
	}

	b.loopback(ctx)

	b.out.Render(banner)
	b.out.Render(bootedText(uptimeSeconds(info)))
	return b.handoff(ctx)
}

// statusPending marks a spawned child that has not been reaped.
const statusPending = -2

// outcome is the result of one setup action.
type outcome struct {
	action string
	pid    int
	status int
}

// runBatch dispatches every action of the batch, then joins them all. The
// batch succeeds only if every action started and every reaped child exited
// with status 0. Failures are reported but never stop the boot.
func (b *Booter) runBatch(ctx context.Context, i int, batch bootconfig.Batch) bool {
	log := logger.FromContext(ctx).With("batch", batch.Name)
	env := b.seq.Env.Environ()

	b.enter(ctx, setupState(i))
	var outcomes []outcome
	byPID := make(map[int]int)
	for _, a := range batch.Actions {
		o := b.spawn(ctx, a, env)
		if o.pid > 0 {
			byPID[o.pid] = len(outcomes)
		}
		outcomes = append(outcomes, o)
	}

	b.enter(ctx, joinState(i))
	for pid, status := range b.drain(ctx) {
		idx, ok := byPID[pid]
		if !ok {
			log.Warn("reaped unexpected child", "pid", pid, "status", status)
			outcomes = append(outcomes, outcome{pid: pid, status: status})
			continue
		}
		outcomes[idx].status = status
	}

	ok := lo.EveryBy(outcomes, func(o outcome) bool { return o.status == 0 })
	if ok {
		log.Debug("batch succeeded")
		b.out.Render(batch.Success)
	} else {
		failed := lo.FilterMap(outcomes, func(o outcome, _ int) (string, bool) {
			return o.action, o.status != 0
		})
		log.Error("batch failed", "actions", failed)
		b.diag(batch.Failure)
	}
	return ok
}

// spawn runs one setup action without waiting for it. A fork failure skips the
// action, an exec failure records StatusExecFailed. Either way the caller
// carries on with the next action.
func (b *Booter) spawn(ctx context.Context, a bootconfig.Action, env []string) outcome {
	log := logger.FromContext(ctx).With("action", a.Name)

	b.out.Render(a.Info)
	b.out.Render(a.Start)

	pid, err := b.sys.Spawn(a.Path, a.Argv, env)
	if err != nil {
		b.diag(a.Failure)
		if isForkFailure(err) {
			log.Error("fork failed, skipping action", "error", err)
			return outcome{action: a.Name, status: StatusForkFailed}
		}
		log.Error("exec failed", "path", a.Path, "error", err, "status", StatusExecFailed)
		return outcome{action: a.Name, status: StatusExecFailed}
	}

	log.Debug("spawned", "pid", pid, slog.Any("argv", a.Argv))
	return outcome{action: a.Name, pid: pid, status: statusPending}
}

func isForkFailure(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.ENOMEM)
}

// drain waits for children until none remain and returns every exit status
// keyed by PID.
func (b *Booter) drain(ctx context.Context) map[int]int {
	log := logger.FromContext(ctx)
	statuses := make(map[int]int)

	for {
		pid, status, err := b.sys.Wait()
		switch {
		case err == nil:
			log.Debug("reaped", "pid", pid, "status", status)
			statuses[pid] = status
		case errors.Is(err, unix.EINTR):
		case errors.Is(err, unix.ECHILD):
			return statuses
		default:
			log.Warn("wait failed", "error", err)
			return statuses
		}
	}
}

// loopback brings up the loopback link so the shell has a working 127.0.0.1.
// This step is not part of the action table: it talks netlink directly and
// never fails the boot.
func (b *Booter) loopback(ctx context.Context) {
	log := logger.FromContext(ctx)
	if err := b.sys.LinkUp("lo"); err != nil {
		log.Warn("loopback unavailable", "error", err)
		return
	}
	log.Debug("loopback up")
}
