// Package main is the entry point for modrinth-updater.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/sharkusmanch/modrinth-updater/internal/cli"
	"github.com/sharkusmanch/modrinth-updater/internal/diag"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			report(err, debug.Stack())
			code = 1
		}
	}()

	err := cli.Execute(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	if !errors.Is(err, cli.ErrRunFailures) {
		report(err, nil)
	}
	return 1
}

// report appends err to the diagnostic file and tells the user where it is.
func report(err error, stack []byte) {
	w := diag.New(cli.DiagPath())
	if w.Path() == "" {
		return
	}
	if werr := w.Record("modrinth-updater", err, stack); werr != nil {
		fmt.Fprintln(os.Stderr, "failed to write diagnostics:", werr)
		return
	}
	fmt.Fprintf(os.Stderr, "Details were written to %s\n", w.Path())
}
