package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx := context.Background()

	app := &cli.Command{
		Name:  "mixcraft-engine",
		Usage: "Automatic DJ analysis, cue planning, and session sequencing",
		Commands: []*cli.Command{
			analyzeCommand(),
			planCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
