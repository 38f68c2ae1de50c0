package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotpin/internal/formatter"
	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/repositories"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/desertthunder/spotpin/internal/tasks"
	"github.com/desertthunder/spotpin/internal/ui"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// Sync applies pins to one playlist (--playlist or the default) or every playlist (--all).
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	var history tasks.HistoryRecorder
	if h := r.history(); h != nil {
		history = h
	}
	engine := tasks.NewSyncEngine(r.store, svc, history, r.logger)
	opts := tasks.SyncOpts{DryRun: cmd.Bool("dry-run")}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.SyncBatch:
				r.writePlain("\n%s\n", update.Message)
			case tasks.SyncComplete:
				r.writePlain("%s\n", update.Message)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	if cmd.Bool("all") {
		batch, err := engine.SyncAll(ctx, opts, progressCh)
		close(progressCh)
		<-done
		if err != nil {
			return err
		}
		return r.reportBatch(batch, opts)
	}

	name, err := r.resolvePlaylist(cmd)
	if err != nil {
		close(progressCh)
		<-done
		return err
	}
	result, err := engine.Sync(ctx, name, opts, progressCh)
	close(progressCh)
	<-done
	if err != nil {
		return err
	}

	if opts.DryRun && result.Changed() {
		cfg, err := r.store.Load(name)
		if err != nil {
			return err
		}
		formatter.PlanTable(r.output, result.Current, result.Target, cfg.Pins, false)
	}
	return nil
}

func (r *Runner) reportBatch(batch *tasks.BatchResult, opts tasks.SyncOpts) error {
	if len(batch.Outcomes) == 0 {
		return r.writePlain("No playlists configured.\n")
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Synced %d playlist(s): %d ok, %d failed\n", len(batch.Outcomes), batch.Succeeded, batch.Failed)
	r.writePlain("═══════════════════════════════════════\n")
	for _, o := range batch.Outcomes {
		if o.Err != nil {
			r.writePlain("%s\n", ui.Failure(fmt.Sprintf("✗ %s [%s]: %v", o.Name, shared.ErrorKind(o.Err), o.Err)))
		}
	}

	if err := batch.Err(); err != nil {
		return fmt.Errorf("%w: %d of %d playlists failed", shared.ErrSync, batch.Failed, len(batch.Outcomes))
	}
	return nil
}

// ExportCSV writes the playlist's current order, with pin state and genres, to a CSV file.
func (r *Runner) ExportCSV(ctx context.Context, cmd *cli.Command) error {
	name, err := r.resolvePlaylist(cmd)
	if err != nil {
		return err
	}
	cfg, err := r.store.Load(name)
	if err != nil {
		return err
	}
	svc, err := r.spotify(ctx)
	if err != nil {
		return err
	}

	r.writePlain("📡 Loading tracks of %s...\n", displayName(cfg))
	tracks, err := svc.PlaylistTracks(ctx, cfg.PlaylistID)
	if err != nil {
		return shared.NewSyncError(cfg.PlaylistID, "fetch", err)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("%w: playlist %s has no tracks", shared.ErrTrackNotFound, name)
	}

	artistIDs := lo.Uniq(lo.FlatMap(tracks, func(t models.Track, _ int) []string { return t.ArtistIDs }))
	genres, err := svc.ArtistGenres(ctx, artistIDs)
	if err != nil {
		r.logger.Warn("could not get genre information", "error", err)
		genres = map[string][]string{}
	}

	rows := formatter.BuildExportRows(tracks, cfg.Pins, genres)
	for i := range tracks {
		tracks[i].Genres = rows[i].Genres
	}
	r.cacheTracks(tracks)

	output := cmd.String("output")
	if output == "" {
		output = fmt.Sprintf("%s_export.csv", name)
	}
	if err := formatter.WriteCSVExport(output, rows); err != nil {
		return err
	}

	r.logger.Info("playlist exported", "playlist", name, "tracks", len(rows), "path", output)
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Exported %d tracks (%d pinned) to %s", len(rows), len(cfg.Pins), output)))
}

// History prints recent sync runs.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewSyncRunRepository(db)

	runs, err := repo.List(map[string]any{
		"playlist_name": cmd.String("playlist"),
		"limit":         int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}
	if len(runs) == 0 {
		return r.writePlain("No sync runs recorded.\n")
	}
	formatter.HistoryTable(r.output, runs)
	return nil
}
