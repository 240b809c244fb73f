// Command orderctl is the operator tool for orderflow: manual overrides, audit
// trail inspection and schema migrations.
package main

import (
	"fmt"
	"os"

	"orderflow/cmd"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := newApp(connect).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "orderctl:", err)
		os.Exit(1)
	}
}

// connector opens the database described by the loaded configuration.
type connector func(c cmd.Config) (*gorm.DB, error)

func connect(c cmd.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DSN()), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func newApp(open connector) *cli.App {
	return &cli.App{
		Name:  "orderflow",
		Usage: "operate the order workflow engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
		},
		Commands: []*cli.Command{
			overrideCommand(open),
			trailCommand(open),
			migrateCommand(),
		},
	}
}
