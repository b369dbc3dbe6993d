package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pocketnavi/pocketnavi/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pocketnavi:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pocketnavi",
		Usage:   "Architectural catalog search API",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Configuration environment (local, dev, prod)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override logging level (debug, info, warn, error)",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "Override http.port",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Run one search and print the page as JSON",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "page",
						Aliases: []string{"p"},
						Usage:   "1-indexed result page",
						Value:   1,
					},
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Multi-term strategy (strict_and, fast_and)",
					},
				},
			},
			{
				Name:      "seed",
				Usage:     "Import a JSON dataset into the SQLite store",
				ArgsUsage: "<dataset.json>",
				Action:    seedCommand,
			},
			{
				Name:  "migrate",
				Usage: "Manage the SQLite schema",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "Apply pending migrations", Action: migrateUpCommand},
					{Name: "down", Usage: "Revert the last migration", Action: migrateDownCommand},
					{Name: "version", Usage: "Print the schema version", Action: migrateVersionCommand},
				},
			},
		},
	}
}
