// Package main provides the entry point for the oasforge CLI tool.
package main

import (
	"context"
	"os"

	"github.com/oasforge/oasforge/cmd/oasforge/app"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		application.Logger().Error().Err(err).Msg("Generation failed")
		os.Exit(1)
	}
}
