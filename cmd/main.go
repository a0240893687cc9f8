package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/bloomly/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	err := runner.app().Run(context.Background(), os.Args)
	runner.Close()

	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Error("application error", "error", err, "class", shared.Classify(err))
		os.Exit(1)
	}
}

// app builds the root command. Each call returns a fresh command tree.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "bloomly",
		Usage:     "Search plants, grow a garden and listen to ambient music",
		Version:   "0.1.0",
		Writer:    r.output,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("BLOOMLY_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Path to the stored session (default ~/.bloomly/session.json)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}
