package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/spotpin/internal/formatter"
	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/desertthunder/spotpin/internal/ui"
	"github.com/urfave/cli/v3"
)

// PlaylistCreate registers a playlist owned by the current user.
//
// Without --id the owned playlists are offered in a picker.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	var playlist *models.Playlist
	if raw := cmd.String("id"); raw != "" {
		id, err := shared.NormalizePlaylistID(raw)
		if err != nil {
			return err
		}
		if playlist, err = svc.GetPlaylist(ctx, id); err != nil {
			return err
		}
	} else {
		owned, err := svc.OwnedPlaylists(ctx)
		if err != nil {
			return err
		}
		if len(owned) == 0 {
			return fmt.Errorf("%w: you have no owned playlists", shared.ErrPlaylistNotFound)
		}
		item, err := r.pick(ctx, "Choose a playlist to manage", ui.PlaylistItems(owned))
		if err != nil {
			return err
		}
		for i := range owned {
			if owned[i].ID == item.Key {
				playlist = &owned[i]
				break
			}
		}
	}

	name := cmd.String("name")
	if name == "" {
		name = shared.SafeName(playlist.Name)
	}
	if name == "" {
		return fmt.Errorf("%w: cannot derive a name from %q, pass --name", shared.ErrInvalidArgument, playlist.Name)
	}

	_, err = r.store.Load(name)
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
	case cmd.Bool("overwrite"):
		r.logger.Warn("overwriting playlist config", "playlist", name)
	case err == nil:
		return fmt.Errorf("%w: %s (pass --overwrite to replace it)", shared.ErrPlaylistExists, name)
	default:
		return err
	}

	cfg := &models.PlaylistConfig{
		Name:        name,
		PlaylistID:  playlist.ID,
		DisplayName: playlist.Name,
		Pins:        models.PinSet{},
	}
	if err := r.store.Save(name, cfg); err != nil {
		return err
	}

	r.logger.Info("playlist registered", "playlist", name, "id", playlist.ID)
	r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Created playlist config: %s", name)))
	r.writePlain("   Display name: %s\n", playlist.Name)
	if def, err := r.store.Default(); err == nil && def == name {
		r.writePlain("   Default playlist\n")
	}
	return nil
}

// PlaylistList prints the registry, or with --remote the playlists the user owns on Spotify.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("remote") {
		return r.remotePlaylists(ctx, cmd.Bool("json"))
	}

	entries, err := r.store.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}
	if len(entries) == 0 {
		return r.writePlain("No playlists configured.\n")
	}
	formatter.PlaylistTable(r.output, entries)
	return nil
}

func (r *Runner) remotePlaylists(ctx context.Context, asJSON bool) error {
	svc, err := r.spotify(ctx)
	if err != nil {
		return err
	}
	owned, err := svc.OwnedPlaylists(ctx)
	if err != nil {
		return err
	}
	slices.SortFunc(owned, func(a, b models.Playlist) int { return strings.Compare(a.Name, b.Name) })

	if asJSON {
		return r.writeJSON(owned, true)
	}
	if len(owned) == 0 {
		return r.writePlain("You don't own any playlists.\n")
	}
	formatter.RemotePlaylistTable(r.output, owned)
	return nil
}

// PlaylistSetDefault marks a registered playlist as the default.
func (r *Runner) PlaylistSetDefault(ctx context.Context, cmd *cli.Command) error {
	name, err := r.choosePlaylist(ctx, cmd, "Choose the default playlist")
	if err != nil {
		return err
	}
	if err := r.store.SetDefault(name); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Set default playlist: %s", name)))
}

// PlaylistDelete removes a playlist config and its registry entry after confirmation.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	name, err := r.choosePlaylist(ctx, cmd, "Choose a playlist to delete")
	if err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		ok, err := r.confirm("This will delete playlist '%s' and its configuration. Are you sure?", name)
		if err != nil {
			return err
		}
		if !ok {
			return r.writePlain("Cancelled.\n")
		}
	}

	if err := r.store.Delete(name); err != nil {
		return err
	}
	r.logger.Info("playlist deleted", "playlist", name)
	r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Deleted playlist: %s", name)))

	if def, err := r.store.Default(); err == nil {
		r.writePlain("   Default playlist: %s\n", def)
	}
	return nil
}

// choosePlaylist returns --playlist or asks the user to pick a registered playlist.
func (r *Runner) choosePlaylist(ctx context.Context, cmd *cli.Command, title string) (string, error) {
	if name := cmd.String("playlist"); name != "" {
		return name, nil
	}
	entries, err := r.store.List()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%w: no playlists configured (create one with 'playlist-create')", shared.ErrPlaylistNotFound)
	}
	item, err := r.pick(ctx, title, ui.RegistryItems(entries))
	if err != nil {
		return "", err
	}
	return item.Key, nil
}
