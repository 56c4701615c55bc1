// Package main implements templeinit, the PID 1 of the Temple DOS image.
//
// The kernel starts this binary directly. It checks that it really is PID 1,
// forks a reaper that collects orphans forever, and in the child mounts the
// pseudo-filesystems through busybox before exec'ing an interactive shell.
//
// Go cannot fork a running runtime, so the reaper fork re-executes this binary
// with a stage marker appended to argv. The re-executed copy enters through
// Booter.Resume, which boots only if its parent is PID 1.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/onkernel/templeinit/cmd/init/config"
	"github.com/onkernel/templeinit/lib/boot"
	"github.com/onkernel/templeinit/lib/bootconfig"
	"github.com/onkernel/templeinit/lib/logger"
	"github.com/onkernel/templeinit/lib/paths"
	"github.com/onkernel/templeinit/lib/rainbow"
	"github.com/onkernel/templeinit/lib/system"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := logger.New(logger.OpenConsole(cfg.Console), logger.Options{
		Level:   level,
		NoColor: rainbow.ParseColorMode(cfg.Color) == rainbow.ColorNever,
	})
	slog.SetDefault(log)
	ctx := logger.AddToContext(context.Background(), log)

	out := rainbow.New(os.Stdout, rainbow.Options{
		Offset:    -1,
		TrueColor: cfg.TrueColor,
		Color:     rainbow.ParseColorMode(cfg.Color),
		Lang:      cfg.Lang,
	})

	b, err := boot.New(system.New(), out, bootconfig.Default(paths.New("/")), boot.WithStderr(os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "templeinit: %v\n", err)
		return 1
	}

	if system.IsForkedChild(os.Args) {
		return b.Resume(ctx)
	}
	return b.Run(ctx)
}
