package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"orderflow/cmd"
	"orderflow/internal/adapters/out/postgres/migrations"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (cmd.Config, error) {
	return cmd.LoadConfig(c.String("env-file"))
}

func overrideCommand(open connector) *cli.Command {
	return &cli.Command{
		Name:  "override",
		Usage: "force an order into a state, bypassing the transition graph",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "order", Required: true, Usage: "order id"},
			&cli.StringFlag{Name: "admin", Required: true, Usage: "id of the admin performing the override"},
			&cli.StringFlag{Name: "state", Usage: "target order state, e.g. READY_FOR_DISPATCH"},
			&cli.StringFlag{Name: "delivery-state", Usage: "target delivery state, e.g. PACKED"},
			&cli.StringFlag{Name: "reason", Required: true, Usage: "why the override is needed"},
		},
		Action: func(c *cli.Context) error {
			overrideCmd, err := parseOverride(c)
			if err != nil {
				return err
			}

			config, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := open(config)
			if err != nil {
				return err
			}

			root := cmd.NewCompositionRoot(config, db, prometheus.NewRegistry(), cliLogger())
			defer func() {
				_ = root.Close()
			}()
			res, err := root.CreateManualOverrideCommandHandler().Handle(c.Context, overrideCmd)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(c.App.ErrWriter, "warning:", w)
			}
			fmt.Fprintf(c.App.Writer, "order %s is now %s / %s\n",
				res.Order.ID(), res.Order.State(), res.Order.DeliveryState())
			return nil
		},
	}
}

func parseOverride(c *cli.Context) (commands.ManualOverrideCommand, error) {
	orderID, err := kernel.UUIDFromString(c.String("order"))
	if err != nil {
		return commands.ManualOverrideCommand{}, fmt.Errorf("--order: %w", err)
	}
	adminID, err := kernel.UUIDFromString(c.String("admin"))
	if err != nil {
		return commands.ManualOverrideCommand{}, fmt.Errorf("--admin: %w", err)
	}
	admin, err := kernel.NewActor(kernel.RoleAdmin, &adminID)
	if err != nil {
		return commands.ManualOverrideCommand{}, err
	}

	var (
		state    *order.State
		delivery *order.DeliveryState
	)
	if name := c.String("state"); name != "" {
		s, err := order.ParseState(strings.ToUpper(name))
		if err != nil {
			return commands.ManualOverrideCommand{}, fmt.Errorf("--state: %w", err)
		}
		state = &s
	}
	if name := c.String("delivery-state"); name != "" {
		d, err := order.ParseDeliveryState(strings.ToUpper(name))
		if err != nil {
			return commands.ManualOverrideCommand{}, fmt.Errorf("--delivery-state: %w", err)
		}
		delivery = &d
	}

	return commands.NewManualOverrideCommand(orderID, admin, state, delivery, c.String("reason"))
}

func trailCommand(open connector) *cli.Command {
	return &cli.Command{
		Name:      "trail",
		Usage:     "print the audit trail of an order and where it replays to",
		ArgsUsage: "ORDER_ID",
		Action: func(c *cli.Context) error {
			orderID, err := kernel.UUIDFromString(c.Args().First())
			if err != nil {
				return fmt.Errorf("order id: %w", err)
			}
			query, err := queries.NewGetAuditTrailQuery(orderID, kernel.SystemActor())
			if err != nil {
				return err
			}

			config, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := open(config)
			if err != nil {
				return err
			}

			root := cmd.NewCompositionRoot(config, db, prometheus.NewRegistry(), cliLogger())
			defer func() {
				_ = root.Close()
			}()
			trail, err := root.CreateGetAuditTrailQueryHandler().Handle(c.Context, query)
			if err != nil {
				return err
			}
			return printTrail(c.App.Writer, trail)
		},
	}
}

func printTrail(out io.Writer, trail queries.GetAuditTrailQueryResponse) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tAT\tACTOR\tOUTCOME\tMACHINE\tFROM\tTO\tREASON")
	for _, e := range trail.Events {
		actor := e.ActorRole.String()
		if e.ActorID != nil {
			actor += ":" + e.ActorID.String()
		}
		from := e.From
		if from == "" {
			from = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Seq, e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"), actor, e.Outcome, e.Machine, from, e.To, e.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	switch {
	case trail.ReplayErr != nil:
		_, err := fmt.Fprintf(out, "\nreplay failed: %v\n", trail.ReplayErr)
		return err
	case trail.Replay != nil:
		_, err := fmt.Fprintf(out, "\nreplays to %s / %s (%d transitions, %d overrides, %d denied)\n",
			trail.Replay.State, trail.Replay.DeliveryState,
			trail.Replay.Transitions, trail.Replay.Overrides, trail.Replay.Denied)
		return err
	}
	return nil
}

func migrateCommand() *cli.Command {
	dsn := func(c *cli.Context) (string, error) {
		config, err := loadConfig(c)
		if err != nil {
			return "", err
		}
		return config.DSN(), nil
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					url, err := dsn(c)
					if err != nil {
						return err
					}
					return migrations.Up(url)
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{&cli.IntFlag{Name: "steps", Value: 1}},
				Action: func(c *cli.Context) error {
					if c.Int("steps") < 1 {
						return fmt.Errorf("--steps must be at least 1")
					}
					url, err := dsn(c)
					if err != nil {
						return err
					}
					return migrations.Down(url, c.Int("steps"))
				},
			},
			{
				Name:  "version",
				Usage: "print the applied schema version",
				Action: func(c *cli.Context) error {
					url, err := dsn(c)
					if err != nil {
						return err
					}
					v, dirty, err := migrations.Version(url)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(c.App.Writer, "version %d dirty=%t\n", v, dirty)
					return err
				},
			},
		},
	}
}

func cliLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
