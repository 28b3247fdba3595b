package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/opspilot/platform/cmd/app/commands"
	"github.com/opspilot/platform/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the API server, the metrics server and by default the outbox worker",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "with-worker",
					Aliases: []string{"w"},
					Value:   true,
					Usage:   "Run the outbox worker in this process (--with-worker=false to disable)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version, cmd.Bool("with-worker"))
			},
		},
		{
			Name:  "worker",
			Usage: "Relay pending outbox events until interrupted",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunWorker(ctx)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply the SQL migrations for DB_DRIVER",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, false, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "clean-outbox",
			Usage: "Delete processed outbox events older than --days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Age in days; pending and failed events are never deleted",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, false, func(container *app.Container) error {
					outboxRepo, err := container.OutboxRepository()
					if err != nil {
						return err
					}
					return commands.RunCleanOutbox(
						ctx,
						outboxRepo,
						container.Logger(),
						commands.DefaultIO().Writer,
						time.Now(),
						int(cmd.Int("days")),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
