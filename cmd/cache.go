package main

import (
	"context"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/repositories"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheTracks stores track metadata of one or all playlists so pin commands can name tracks offline.
func (r *Runner) CacheTracks(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	cache := repositories.NewTrackRepository(db)

	var configs []*models.PlaylistConfig
	if cmd.Bool("all") {
		entries, err := r.store.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			cfg, err := r.store.Load(e.Name)
			if err != nil {
				return err
			}
			configs = append(configs, cfg)
		}
	} else {
		name, err := r.resolvePlaylist(cmd)
		if err != nil {
			return err
		}
		cfg, err := r.store.Load(name)
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
	}

	svc, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	for _, cfg := range configs {
		tracks, err := svc.PlaylistTracks(ctx, cfg.PlaylistID)
		if err != nil {
			return shared.NewSyncError(cfg.PlaylistID, "fetch", err)
		}
		if err := cache.Put(tracks...); err != nil {
			return err
		}
		r.logger.Info("tracks cached", "playlist", cfg.Name, "tracks", len(tracks))
		r.writePlain("✓ %s: %d tracks cached\n", cfg.Name, len(tracks))
	}

	total, err := cache.Count()
	if err != nil {
		return err
	}
	return r.writePlain("Cache holds %d tracks\n", total)
}
