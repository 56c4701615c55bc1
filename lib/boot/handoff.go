package boot

import (
	"context"
	"errors"

	"github.com/onkernel/templeinit/lib/logger"
)

var errExecReturned = errors.New("exec returned without replacing the process image")

// handoff replaces the process with the interactive shell, passing the same
// environment every setup action received. There is no fallback: if the exec
// fails the system is left without a shell.
func (b *Booter) handoff(ctx context.Context) int {
	log := logger.FromContext(ctx)
	sh := b.seq.Shell

	b.enter(ctx, StateHandoff)
	log.Debug("exec shell", "path", sh.Path, "argv", sh.Argv)

	err := b.sys.Exec(sh.Path, sh.Argv, b.seq.Env.Environ())
	if err == nil {
		err = errExecReturned
	}

	log.Error("shell hand-off failed", "path", sh.Path, "error", err)
	b.diag(handoffFailedText)
	b.enter(ctx, StateFatalExit)
	return 1
}
