// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/epochfarm/farm/log"
)

func fatal(args ...interface{}) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func logLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return log.LevelError
	case verbosity == 1:
		return log.LevelWarn
	case verbosity == 2:
		return log.LevelInfo
	case verbosity == 3:
		return log.LevelDebug
	default:
		return log.LevelTrace
	}
}

func initLogger(ctx *cli.Context) {
	level := new(slog.LevelVar)
	level.Set(logLevel(ctx.Int(verbosityFlag.Name)))

	// Logfmt on a terminal, JSON when redirected or asked for.
	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) || !isatty.IsTerminal(os.Stderr.Fd()) {
		handler = log.JSONHandlerWithLevel(os.Stderr, level)
	} else {
		handler = log.LogfmtHandlerWithLevel(os.Stderr, level)
	}
	log.SetDefault(handler)
}

func handleExitSignal() <-chan os.Signal {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)
	return exitSignalCh
}
