// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func init() {
	// -v is taken by --verbose
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

func playlistFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "playlist",
		Aliases: []string{"p"},
		Usage:   "Playlist name (defaults to the default playlist)",
	}
}

func trackFlagDef() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "track",
		Aliases: []string{"t"},
		Usage:   "Track link, URI or ID",
	}
}

func positionFlag(usage string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "position",
		Usage: usage,
	}
}

func replaceFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "replace",
		Usage: "Drop the pin already holding the position instead of failing",
	}
}

// App builds the root command.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:    "spotpin",
		Usage:   "Keep tracks pinned at fixed positions in Spotify playlists",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) []*cli.Command){
		pinCommands, playlistCommands, syncCommands, setupCommands,
	} {
		commands = append(commands, fn(r)...)
	}

	return commands
}

// pinCommands edit the pins of one playlist
func pinCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "pin-list",
			Usage:  "Show pins for a playlist",
			Flags:  []cli.Flag{playlistFlag()},
			Action: r.PinList,
		},
		{
			Name:  "pin-add",
			Usage: "Pin a track at a position",
			Flags: []cli.Flag{
				playlistFlag(),
				trackFlagDef(),
				positionFlag("Position, 1-based"),
				replaceFlag(),
			},
			Action: r.PinAdd,
		},
		{
			Name:   "pin-remove",
			Usage:  "Remove the pin of a track",
			Flags:  []cli.Flag{playlistFlag(), trackFlagDef()},
			Action: r.PinRemove,
		},
		{
			Name:  "pin-move",
			Usage: "Move a pin to a different position",
			Flags: []cli.Flag{
				playlistFlag(),
				trackFlagDef(),
				positionFlag("New position, 1-based"),
				replaceFlag(),
			},
			Action: r.PinMove,
		},
		{
			Name:  "sort-pins",
			Usage: "Store pins in ascending position order",
			Flags: []cli.Flag{
				playlistFlag(),
				&cli.BoolFlag{Name: "all", Usage: "Sort the pins of every managed playlist"},
			},
			Action: r.SortPins,
		},
		{
			Name:  "track-select",
			Usage: "Pick a track from the playlist and pin it",
			Flags: []cli.Flag{
				playlistFlag(),
				positionFlag("Position, 1-based"),
				replaceFlag(),
			},
			Action: r.TrackSelect,
		},
	}
}

// playlistCommands manage the registry of playlists
func playlistCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "playlist-create",
			Usage: "Register one of your playlists",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Usage: "Playlist link, URI or ID (pick interactively when omitted)"},
				&cli.StringFlag{Name: "name", Usage: "Local name (defaults to the playlist name, file-safe)"},
				&cli.BoolFlag{Name: "overwrite", Usage: "Replace an existing config of the same name"},
			},
			Action: r.PlaylistCreate,
		},
		{
			Name:  "playlist-list",
			Usage: "List managed playlists",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				&cli.BoolFlag{Name: "remote", Usage: "List your playlists on Spotify instead of managed ones"},
			},
			Action: r.PlaylistList,
		},
		{
			Name:   "playlist-set-default",
			Usage:  "Set the default playlist",
			Flags:  []cli.Flag{playlistFlag()},
			Action: r.PlaylistSetDefault,
		},
		{
			Name:  "playlist-delete",
			Usage: "Delete a playlist configuration",
			Flags: []cli.Flag{
				playlistFlag(),
				&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Don't ask for confirmation"},
			},
			Action: r.PlaylistDelete,
		},
	}
}

// syncCommands talk to Spotify
func syncCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "sync",
			Usage: "Apply pins to playlists",
			Flags: []cli.Flag{
				playlistFlag(),
				&cli.BoolFlag{Name: "all", Usage: "Sync every managed playlist"},
				&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "Show the plan without changing playlists"},
			},
			Action: r.Sync,
		},
		{
			Name:  "export-csv",
			Usage: "Export the current playlist order to CSV",
			Flags: []cli.Flag{
				playlistFlag(),
				&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default <name>_export.csv)"},
			},
			Action: r.ExportCSV,
		},
		{
			Name:  "cache-tracks",
			Usage: "Store track metadata of playlists in the local database",
			Flags: []cli.Flag{
				playlistFlag(),
				&cli.BoolFlag{Name: "all", Usage: "Cache every managed playlist"},
			},
			Action: r.CacheTracks,
		},
		{
			Name:  "history",
			Usage: "Show recent sync runs",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "playlist", Aliases: []string{"p"}, Usage: "Only runs of this playlist"},
				&cli.IntFlag{Name: "limit", Usage: "Maximum number of runs", Value: 20},
				&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			},
			Action: r.History,
		},
	}
}

// setupCommands bootstrap credentials, config and database
func setupCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "Authorize with Spotify and obtain a refresh token",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "save", Usage: "Write the credentials to the .env file"},
				&cli.StringFlag{Name: "env-file", Usage: "Path of the .env file", Value: ".env"},
				&cli.BoolFlag{Name: "no-browser", Usage: "Print the authorization URL instead of opening a browser"},
			},
			Action: r.Login,
		},
		{
			Name:   "setup",
			Usage:  "Create config.toml and initialize the database",
			Action: r.Setup,
		},
	}
}
