// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/bloomly/internal/formatter"
	"github.com/urfave/cli/v3"
)

func formatFlag() cli.Flag {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   fmt.Sprintf("Output format (%s)", strings.Join(names, ", ")),
		Value:   string(formatter.Text),
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "status",
						Usage: "List migrations and whether they are applied",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml template to the --config path",
				Action: r.SetupConfig,
			},
		},
	}
}

// loginCommand signs in with a password or with Google.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and store a session for later commands",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "email",
				Aliases: []string{"e"},
				Usage:   "Account email",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password",
				Sources: cli.EnvVars("BLOOMLY_PASSWORD"),
			},
			&cli.BoolFlag{
				Name:  "google",
				Usage: "Sign in with Google in the browser",
			},
			&cli.IntFlag{
				Name:  "callback-port",
				Usage: "Port for the local Google callback server (0 picks a free port)",
				Value: 0,
			},
		},
		Action: r.Login,
	}
}

// logoutCommand removes the stored session.
func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and remove the stored session",
		Action: r.Logout,
	}
}

// registerCommand creates a password account.
func registerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "register",
		Aliases: []string{"signup"},
		Usage:   "Create an account and sign in",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Display name",
			},
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "Account email",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Usage:    "Password (at least 6 characters)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "confirm",
				Usage:    "Password confirmation",
				Required: true,
			},
		},
		Action: r.Register,
	}
}

// whoamiCommand prints the signed-in user.
func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Whoami,
	}
}

// searchCommand queries the plant catalog.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the plant catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Search,
	}
}

// saveCommand adds a search result to the garden.
func saveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a plant from a search to your garden",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "query",
				Aliases:  []string{"q"},
				Usage:    "Search query the plant appears in",
				Required: true,
			},
		},
		Action: r.Save,
	}
}

// gardenCommand manages saved plants.
func gardenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "garden",
		Usage: "Manage the plants in your garden",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List saved plants",
				Flags:   []cli.Flag{formatFlag()},
				Action:  r.GardenList,
			},
			{
				Name:  "rename",
				Usage: "Give a saved plant a custom name",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
					&cli.StringArg{
						Name: "name",
					},
				},
				Action: r.GardenRename,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a saved plant",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.GardenRemove,
			},
		},
	}
}

// tracksCommand lists the ambient track list.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tracks",
		Usage:  "List the ambient music tracks",
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Tracks,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where the TUI writes its log",
				Value: "./tmp/bloomly-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// serveCommand runs the web front end.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the Bloomly web app",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "secure-cookies",
				Usage: "Mark cookies Secure when served behind TLS",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the app in the default browser",
			},
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "Allow the template session secret (local development only)",
			},
		},
		Action: r.Serve,
	}
}
