package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/opspilot/platform/cmd/app/commands"
	"github.com/opspilot/platform/internal/app"
)

func getEmployeeCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-employee",
			Usage: "Create an employee with any role, e.g. the first ADMIN",
			Flags: []cli.Flag{
				emailFlag("Login email"),
				&cli.StringFlag{
					Name:     "full-name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Display name",
				},
				&cli.StringFlag{
					Name:    "role",
					Aliases: []string{"r"},
					Value:   "VIEWER",
					Usage:   "Role: ADMIN, OPERATOR or VIEWER",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Password (omit to read it from stdin)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, false, func(container *app.Container) error {
					employeeUseCase, err := container.EmployeeUseCase()
					if err != nil {
						return err
					}
					return commands.RunCreateEmployee(
						ctx,
						employeeUseCase,
						container.Logger(),
						commands.DefaultIO(),
						commands.CreateEmployeeInput{
							Email:    cmd.String("email"),
							Password: cmd.String("password"),
							FullName: cmd.String("full-name"),
							Role:     cmd.String("role"),
							Format:   cmd.String("format"),
						},
					)
				})
			},
		},
		{
			Name:  "set-employee-active",
			Usage: "Activate or deactivate an employee",
			Flags: []cli.Flag{
				emailFlag("Login email of the employee"),
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "New active state (use --active=false to deactivate)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, false, func(container *app.Container) error {
					employeeUseCase, err := container.EmployeeUseCase()
					if err != nil {
						return err
					}
					return commands.RunSetEmployeeActive(
						ctx,
						employeeUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("email"),
						cmd.Bool("active"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "issue-token",
			Usage: "Print a bearer token for an active employee without their password",
			Flags: []cli.Flag{
				emailFlag("Login email of the employee"),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, true, func(container *app.Container) error {
					authUseCase, err := container.AuthUseCase()
					if err != nil {
						return err
					}
					return commands.RunIssueToken(
						ctx,
						authUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("email"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
