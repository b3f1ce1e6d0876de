// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// convertCommand runs one playlist conversion from the command line.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "convert",
		Aliases: []string{"conv"},
		Usage:   "Convert a playlist to the other service",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "url",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "direction",
				Usage: "Conversion direction (apple-music:spotify or spotify:apple-music, inferred from the URL by default)",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show interactive progress UI",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the result as JSON",
			},
			&cli.StringFlag{
				Name:  "report-dir",
				Usage: "Write a Markdown conversion report into this directory",
			},
			&cli.StringFlag{
				Name:  "missed-csv",
				Usage: "Write missed tracks to this CSV file",
			},
		},
		Action: r.Convert,
	}
}

// authCommand handles service authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage service authentication",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthSpotify,
			},
			{
				Name:    "apple-music",
				Aliases: []string{"apple"},
				Usage:   "Store an Apple Music user token",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "token",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthAppleMusic,
			},
			{
				Name:   "status",
				Usage:  "Show which services have credentials configured",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// workerCommand runs the queue consumer and job publisher.
func workerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Background conversion worker",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Consume conversion jobs from the queue",
				Flags:  []cli.Flag{configFlag()},
				Action: r.WorkerRun,
			},
			{
				Name:  "enqueue",
				Usage: "Publish a conversion job to the queue",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.WorkerEnqueue,
			},
		},
	}
}

// cacheCommand inspects and clears the caches.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect track mappings and the result cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show track mapping and counter statistics",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Clear the in-memory result cache",
				Action: r.CacheClear,
			},
		},
	}
}

// historyCommand lists recorded conversions.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent conversions",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of conversions to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize configuration and database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}
