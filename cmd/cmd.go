// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func groupFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "group",
		Usage: "Group type (wedding-dress, vest, bride-engage, groom-engage, tone-color); default: all",
	}
}

func formatFlag(value string, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   usage,
		Value:   value,
	}
}

// setupCommand handles setup operations for the config file and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication against the backend
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password, or in the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Usage:   "Account email",
						Sources: cli.EnvVars("WEDX_EMAIL"),
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Account password",
						Sources: cli.EnvVars("WEDX_PASSWORD"),
					},
					&cli.BoolFlag{
						Name:  "browser",
						Usage: "Use the authorization code flow in the system browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Delete the saved token and clear the local draft",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the saved token and check backend health",
				Action: r.AuthStatus,
			},
			{
				Name:  "import-curl",
				Usage: "Save the bearer token from a cURL command copied from the browser",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImportCurl,
			},
		},
	}
}

// catalogCommand handles the local catalog cache
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Browse and cache catalog items",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Fetch catalog items from the backend into the local cache",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "category",
						Usage: "Category to sync (repeatable; default: all)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent fetches",
						Value: 4,
					},
				},
				Action: r.CatalogSync,
			},
			{
				Name:  "list",
				Usage: "List the items of a category",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "category",
						Usage:    "Category to list",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Skip the cache and fetch from the backend",
					},
					formatFlag("text", "Output format: text, csv or json"),
				},
				Action: r.CatalogList,
			},
		},
	}
}

// selectionCommand edits the draft selection
func selectionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "selection",
		Aliases: []string{"sel"},
		Usage:   "Show and edit the draft selection",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the current selection",
				Flags: []cli.Flag{
					formatFlag("text", "Output format: text, markdown or json"),
					&cli.BoolFlag{
						Name:  "names",
						Usage: "Resolve ids to names from the catalog cache",
					},
				},
				Action: r.SelectionShow,
			},
			{
				Name:      "toggle",
				Usage:     "Select items, or deselect those already selected",
				ArgsUsage: "<category> <id> [id...]",
				Action:    r.SelectionToggle,
			},
			{
				Name:   "save",
				Usage:  "Rewrite the pinned selection of every non-empty group",
				Flags:  []cli.Flag{groupFlag()},
				Action: r.SelectionSave,
			},
			{
				Name:   "clear",
				Usage:  "Delete pinned selections",
				Flags:  []cli.Flag{groupFlag()},
				Action: r.SelectionClear,
			},
		},
	}
}

// albumCommand handles album creation and history
func albumCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "album",
		Usage: "Create and list albums",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an album from a group's selection",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "group"},
				},
				Action: r.AlbumCreate,
			},
			{
				Name:  "list",
				Usage: "List albums on the backend",
				Flags: []cli.Flag{
					formatFlag("text", "Output format: text, csv or json"),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the listing to a file instead of stdout",
					},
				},
				Action: r.AlbumList,
			},
			{
				Name:  "history",
				Usage: "List albums created from this machine",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "group",
						Usage: "Only show albums of this group type",
					},
					formatFlag("text", "Output format: text, csv or json"),
				},
				Action: r.AlbumHistory,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "dump",
				Usage: "Full backend state dump (health, pinned selections, albums)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
						Value: false,
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive picking.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive picker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "Serve Prometheus metrics on this address while the TUI runs",
			},
		},
		Action: r.TUI,
	}
}
