package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/onkernel/templeinit/lib/logger"
	"github.com/onkernel/templeinit/lib/system"
)

// Run is the entry point of the process the kernel starts. It refuses to do
// anything unless it is PID 1, then forks once: the parent reaps orphans
// forever and the child runs Boot.
//
// Run returns 1 when the process is not PID 1 or the fork fails. In the child
// branch it returns whatever Boot returns. The parent branch does not return.
func (b *Booter) Run(ctx context.Context) int {
	log := logger.FromContext(ctx).With("phase", "guard")

	b.enter(ctx, StateGuard)
	info := b.sysinfo(ctx)
	if pid := b.sys.Getpid(); pid != initPID {
		log.Warn("refusing to boot", "pid", pid)
		return b.refuse(ctx, info)
	}

	return b.forkReaper(ctx)
}

// Resume is the entry point of a process started with the reaper fork's stage
// marker. The marker is only a request: the process must be a direct child of
// PID 1 to boot, anything else is refused like a non-init invocation. PID 1
// itself ignores the marker and starts from Run.
func (b *Booter) Resume(ctx context.Context) int {
	log := logger.FromContext(ctx).With("phase", "guard")

	pid := b.sys.Getpid()
	if pid == initPID {
		log.Warn("ignoring stage marker on PID 1")
		return b.Run(ctx)
	}

	b.enter(ctx, StateGuard)
	if ppid := b.sys.Getppid(); ppid != initPID {
		log.Warn("refusing to resume boot", "pid", pid, "ppid", ppid)
		return b.refuse(ctx, b.sysinfo(ctx))
	}

	log.Debug("resuming as reaper child", "pid", pid)
	return b.Boot(ctx)
}

func (b *Booter) refuse(ctx context.Context, info system.Info) int {
	b.out.Render(banner)
	b.diag(notInitText)
	b.out.Render(referenceText(uptimeSeconds(info)))
	b.enter(ctx, StateFatalExit)
	return 1
}

// sysinfo queries the kernel. A failure is reported and yields a zero Info,
// which reads as uptime 0.
func (b *Booter) sysinfo(ctx context.Context) system.Info {
	log := logger.FromContext(ctx)

	info, err := b.sys.Sysinfo()
	if err != nil {
		b.diag(fmt.Sprintf("sysinfo: %v\n", err))
		log.Error("sysinfo failed", "error", err)
		return system.Info{}
	}
	log.Debug("sysinfo",
		"uptime", info.Uptime,
		"total_ram", datasize.ByteSize(info.TotalRAM).HR(),
		"free_ram", datasize.ByteSize(info.FreeRAM).HR(),
		"procs", info.Procs)
	return info
}

// uptimeSeconds is the uptime in seconds modulo 60.
func uptimeSeconds(info system.Info) int64 {
	return int64(info.Uptime/time.Second) % 60
}
