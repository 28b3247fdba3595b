package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/opspilot/platform/internal/app"
	"github.com/opspilot/platform/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := getSystemCommands(version)
	return append(cmds, getEmployeeCommands()...)
}

// withContainer loads the configuration, builds a container for one command
// and shuts it down afterwards. Commands that sign tokens pass validate so a
// weak JWT_SECRET fails before any work is done.
func withContainer(ctx context.Context, validate bool, run func(*app.Container) error) error {
	cfg := config.Load()
	if validate {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	container := app.NewContainer(cfg)
	defer func() {
		if err := container.Shutdown(ctx); err != nil {
			container.Logger().Warn("failed to shut down container", slog.Any("error", err))
		}
	}()

	return run(container)
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func emailFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "email",
		Aliases:  []string{"e"},
		Required: true,
		Usage:    usage,
	}
}
