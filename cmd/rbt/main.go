// Command rbt is the reaction biocatalysis toolkit.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/interfaces/cli"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(errors.ExitStatusForError(err))
}

//Personal.AI order the ending
