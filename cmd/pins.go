package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotpin/internal/formatter"
	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/pins"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/desertthunder/spotpin/internal/ui"
	"github.com/urfave/cli/v3"
)

const unknownTrack = "Unknown Track"

// PinList prints the pins of a playlist in ascending position order.
func (r *Runner) PinList(ctx context.Context, cmd *cli.Command) error {
	name, err := r.resolvePlaylist(cmd)
	if err != nil {
		return err
	}
	cfg, err := r.store.Load(name)
	if err != nil {
		return err
	}

	if len(cfg.Pins) == 0 {
		return r.writePlain("No pins for playlist '%s'.\n", name)
	}

	r.writePlain("Pins for playlist: %s\n", displayName(cfg))
	formatter.PinTable(r.output, cfg.Pins)
	return nil
}

// PinAdd pins a track at a position. --replace evicts the pin holding that position.
func (r *Runner) PinAdd(ctx context.Context, cmd *cli.Command) error {
	name, err := r.resolvePlaylist(cmd)
	if err != nil {
		return err
	}
	track, err := trackFlag(cmd)
	if err != nil {
		return err
	}
	pos, err := position(cmd)
	if err != nil {
		return err
	}

	cfg, err := r.store.Load(name)
	if err != nil {
		return err
	}

	set := cfg.Pins.Clone()
	evicted, replaced := r.evict(cmd, &set, pos, track)
	if err := pins.Add(&set, models.Pin{Track: track, Position: pos}); err != nil {
		return err
	}
	set[len(set)-1].Name = r.trackName(ctx, track)

	cfg.Pins = set
	if err := r.store.Save(name, cfg); err != nil {
		return err
	}

	r.logger.Info("pin added", "playlist", name, "track", track, "position", pos+1)
	if replaced {
		r.writePlain("%s\n", ui.Warning(fmt.Sprintf("Replaced pin at position %d: %s", pos+1, pinLabel(evicted))))
	}
	r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Pinned %s at position %d (playlist %s)", set[len(set)-1].Name, pos+1, name)))
	return r.writePlain("   %s\n", ui.Muted(shared.TrackURL(track.String())))
}

// PinRemove deletes the pin of a track.
func (r *Runner) PinRemove(ctx context.Context, cmd *cli.Command) error {
	name, err := r.resolvePlaylist(cmd)
	if err != nil {
		return err
	}
	track, err := trackFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := r.store.Load(name)
	if err != nil {
		return err
	}

	set := cfg.Pins.Clone()
	removed, err := pins.Remove(&set, track)
	if err != nil {
		return err
	}
	cfg.Pins = set
	if err := r.store.Save(name, cfg); err != nil {
		return err
	}

	r.logger.Info("pin removed", "playlist", name, "track", track)
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Removed pin: %s", pinLabel(removed))))
}

// PinMove changes the position of an existing pin.
func (r *Runner) PinMove(ctx context.Context, cmd *cli.Command) error {
	name, err := r.resolvePlaylist(cmd)
	if err != nil {
		return err
	}
	track, err := trackFlag(cmd)
	if err != nil {
		return err
	}
	pos, err := position(cmd)
	if err != nil {
		return err
	}
	cfg, err := r.store.Load(name)
	if err != nil {
		return err
	}

	set := cfg.Pins.Clone()
	if !set.Contains(track) {
		return fmt.Errorf("%w: %s (add it first with 'pin-add')", shared.ErrPinNotFound, track)
	}
	evicted, replaced := r.evict(cmd, &set, pos, track)
	if err := pins.Move(&set, track, pos); err != nil {
		return err
	}

	i := set.IndexOfTrack(track)
	if set[i].Name == "" {
		set[i].Name = r.trackName(ctx, track)
	}

	cfg.Pins = set
	if err := r.store.Save(name, cfg); err != nil {
		return err
	}

	r.logger.Info("pin moved", "playlist", name, "track", track, "position", pos+1)
	if replaced {
		r.writePlain("%s\n", ui.Warning(fmt.Sprintf("Replaced pin at position %d: %s", pos+1, pinLabel(evicted))))
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Moved pin: %s → position %d", pinLabel(set[i]), pos+1)))
}

// SortPins rewrites stored pins in ascending position order.
func (r *Runner) SortPins(ctx context.Context, cmd *cli.Command) error {
	var names []string
	if cmd.Bool("all") {
		entries, err := r.store.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			names = append(names, e.Name)
		}
	} else {
		name, err := r.resolvePlaylist(cmd)
		if err != nil {
			return err
		}
		names = []string{name}
	}

	for _, name := range names {
		cfg, err := r.store.Load(name)
		if err != nil {
			return err
		}
		if pins.IsSorted(cfg.Pins) {
			r.writePlain("✓ %s: pins already sorted\n", name)
			continue
		}
		pins.Sort(&cfg.Pins)
		if err := r.store.Save(name, cfg); err != nil {
			return err
		}
		r.logger.Debug("pins sorted", "playlist", name, "pins", len(cfg.Pins))
		r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ %s: sorted %d pins", name, len(cfg.Pins))))
	}
	return nil
}

// TrackSelect picks a track from the playlist interactively and pins it.
// An already pinned track is moved.
func (r *Runner) TrackSelect(ctx context.Context, cmd *cli.Command) error {
	name, err := r.resolvePlaylist(cmd)
	if err != nil {
		return err
	}
	pos, err := position(cmd)
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
	tracks, err := svc.PlaylistTracks(ctx, cfg.PlaylistID)
	if err != nil {
		return shared.NewSyncError(cfg.PlaylistID, "fetch", err)
	}
	r.cacheTracks(tracks)

	item, err := r.pick(ctx, fmt.Sprintf("Pin a track of %s at position %d", displayName(cfg), pos+1), ui.TrackItems(tracks, cfg.Pins))
	if err != nil {
		return err
	}
	track := models.TrackRef(item.Key)
	label := unknownTrack
	for _, t := range tracks {
		if t.URI == track {
			label = t.Label()
			break
		}
	}

	set := cfg.Pins.Clone()
	r.evict(cmd, &set, pos, track)
	if set.Contains(track) {
		err = pins.Move(&set, track, pos)
	} else {
		err = pins.Add(&set, models.Pin{Track: track, Position: pos, Name: label})
	}
	if err != nil {
		return err
	}

	cfg.Pins = set
	if err := r.store.Save(name, cfg); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Pinned %s at position %d (playlist %s)", label, pos+1, name)))
}

// evict applies --replace: the pin at pos is dropped unless it belongs to track.
func (r *Runner) evict(cmd *cli.Command, set *models.PinSet, pos int, track models.TrackRef) (models.Pin, bool) {
	if !cmd.Bool("replace") {
		return models.Pin{}, false
	}
	evicted, ok := pins.Evict(set, pos, track)
	if ok {
		r.logger.Debug("evicted pin", "track", evicted.Track, "position", pos+1)
	}
	return evicted, ok
}

// trackName resolves a display label for track from the cache, then the service.
func (r *Runner) trackName(ctx context.Context, track models.TrackRef) string {
	cache := r.trackCache()
	if cache != nil {
		if t, err := cache.Get(track); err == nil {
			return t.Label()
		}
	}

	svc, err := r.spotify(ctx)
	if err != nil {
		r.logger.Warn("cannot resolve track name", "track", track, "error", err)
		return unknownTrack
	}
	t, err := svc.Track(ctx, track)
	if err != nil {
		r.logger.Warn("cannot resolve track name", "track", track, "error", err)
		return unknownTrack
	}
	if cache != nil {
		if err := cache.Put(*t); err != nil {
			r.logger.Debug("failed to cache track", "track", track, "error", err)
		}
	}
	return t.Label()
}

// cacheTracks stores metadata when the database is available.
func (r *Runner) cacheTracks(tracks []models.Track) {
	cache := r.trackCache()
	if cache == nil {
		return
	}
	if err := cache.Put(tracks...); err != nil {
		r.logger.Warn("failed to cache tracks", "error", err)
	}
}

func pinLabel(p models.Pin) string {
	if p.Name != "" {
		return fmt.Sprintf("%s (%s)", p.Name, p.Track)
	}
	return p.Track.String()
}

func displayName(cfg *models.PlaylistConfig) string {
	if cfg.DisplayName != "" {
		return cfg.DisplayName
	}
	return cfg.Name
}
