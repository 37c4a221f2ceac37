// submodule cmd contains command definitions
package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

const envUser = "VIDHUB_USER"

// app builds the root command. Config is loaded in Before; the database is closed in After.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "vidhub",
		Usage:   "Ingest YouTube playlists into a local video library",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Email of the acting user",
				Sources: cli.EnvVars(envUser),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, r.loadConfig(cmd.String("config"))
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			return r.close()
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, userCommand, playlistCommand, videoCommand, libraryCommand, proxyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// setupCommand handles configuration and database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Flags:  jsonFlags(),
				Action: r.SetupStatus,
			},
		},
	}
}

// authCommand handles YouTube credentials.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage YouTube credentials",
		Commands: []*cli.Command{
			{
				Name:  "youtube",
				Usage: "Authorize read access to YouTube with OAuth2 and save the token",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: authTimeout,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the consent URL instead of opening it",
					},
				},
				Action: r.AuthYouTube,
			},
			{
				Name:   "status",
				Usage:  "Show which YouTube credentials are configured",
				Action: r.AuthStatus,
			},
		},
	}
}

// userCommand manages console users. It acts as the local operator and ignores --user.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users and their levels",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a user",
				Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.StringFlag{
						Name:  "level",
						Usage: "admin, uploader or viewer",
						Value: "viewer",
					},
				},
				Action: r.UserAdd,
			},
			{
				Name:      "level",
				Usage:     "Change a user's level",
				Arguments: []cli.Argument{&cli.StringArg{Name: "email"}, &cli.StringArg{Name: "level"}},
				Action:    r.UserLevel,
			},
			{
				Name:   "list",
				Usage:  "List users",
				Flags:  jsonFlags(),
				Action: r.UserList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a user with their playlists and library",
				Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
				Action:    r.UserDelete,
			},
		},
	}
}

// playlistCommand handles playlist ingestion.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Check, save and refresh YouTube playlists",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Resolve a playlist URL without saving it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Flags:     jsonFlags(),
				Action:    r.PlaylistCheck,
			},
			{
				Name:      "add",
				Usage:     "Check a playlist URL and save it with all its items",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Flags:     jsonFlags(),
				Action:    r.PlaylistAdd,
			},
			{
				Name:      "refresh",
				Usage:     "Re-check a saved playlist and append its items",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.PlaylistRefresh,
			},
			{
				Name:  "list",
				Usage: "List saved playlists",
				Flags: append(jsonFlags(), &cli.BoolFlag{
					Name:  "all",
					Usage: "List every user's playlists (admin only)",
				}),
				Action: r.PlaylistList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved playlist and its items",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.PlaylistDelete,
			},
			{
				Name:      "open",
				Usage:     "Open a saved playlist in the browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.PlaylistOpen,
			},
		},
	}
}

// videoCommand handles stored playlist items.
func videoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "video",
		Usage: "Browse and export stored playlist items",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List a playlist's items, newest first",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
				Flags: append(jsonFlags(), &cli.IntFlag{
					Name:  "limit",
					Usage: "Maximum number of items to show (0 shows all)",
				}),
				Action: r.VideoList,
			},
			{
				Name:      "delete",
				Usage:     "Delete one stored item",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.VideoDelete,
			},
			{
				Name:      "open",
				Usage:     "Open a stored item in the browser",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.VideoOpen,
			},
			{
				Name:      "export",
				Usage:     "Export playlists with their items to files",
				ArgsUsage: "[playlist ids...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every playlist of the acting user",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, markdown or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: vidhub_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist loads per second (0 is unlimited)",
					},
				},
				Action: r.VideoExport,
			},
		},
	}
}

// libraryCommand handles the video library.
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Manage the video library",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a YouTube video by URL",
				Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "captions",
						Usage: "Store the transcript from the caption proxy",
					},
				},
				Action: r.LibraryAdd,
			},
			{
				Name:      "upload",
				Usage:     "Upload a local video file",
				Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Title (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Description",
					},
				},
				Action: r.LibraryUpload,
			},
			{
				Name:   "list",
				Usage:  "List the acting user's library",
				Flags:  jsonFlags(),
				Action: r.LibraryList,
			},
			{
				Name:      "remove",
				Usage:     "Remove a library video",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.LibraryRemove,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist ingestion",
		Action:  r.TUI,
	}
}
