// package tasks implements pin synchronization against the streaming service.
//
// The core abstraction is SyncEngine, which reconciles one playlist or every registered playlist.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/pins"
	"github.com/desertthunder/spotpin/internal/shared"
)

// PlaylistService is the remote surface needed to sync a playlist.
type PlaylistService interface {
	FetchTracks(ctx context.Context, playlistID string) ([]models.TrackRef, error)
	ReplaceTracks(ctx context.Context, playlistID string, tracks []models.TrackRef) error
}

// HistoryRecorder persists sync attempts (repositories.SyncRunRepository).
//
// Record is called once when a run starts and again when it finishes.
type HistoryRecorder interface {
	Record(run *models.SyncRun) error
}

// SyncOpts controls a sync.
type SyncOpts struct {
	DryRun bool // compute and report the plan without mutating the playlist
}

// SyncResult describes one reconciled playlist.
type SyncResult struct {
	Name       string
	PlaylistID string
	Current    []models.TrackRef
	Target     []models.TrackRef
	Operations []pins.Operation
	Placements []pins.Placement
	DryRun     bool
	Applied    bool
	Run        *models.SyncRun
}

// Changed reports whether the playlist order differs from the target.
func (r *SyncResult) Changed() bool {
	return len(r.Operations) > 0
}

// PlaylistOutcome is the result of one playlist within a batch.
type PlaylistOutcome struct {
	Name   string
	Result *SyncResult
	Err    error
}

// BatchResult collects the outcomes of [SyncEngine.SyncAll].
type BatchResult struct {
	Outcomes  []PlaylistOutcome
	Succeeded int
	Failed    int
}

// Err joins every per-playlist failure, or returns nil when all succeeded.
func (b *BatchResult) Err() error {
	var errs []error
	for _, o := range b.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.Name, o.Err))
		}
	}
	return errors.Join(errs...)
}

// SyncEngine reconciles stored pins with remote playlists.
type SyncEngine struct {
	store   models.ConfigStore
	service PlaylistService
	history HistoryRecorder
	logger  *log.Logger
}

// NewSyncEngine creates a SyncEngine. history may be nil to skip recording.
func NewSyncEngine(store models.ConfigStore, service PlaylistService, history HistoryRecorder, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncEngine{store: store, service: service, history: history, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// record stores run when a recorder is configured. Failures are logged only.
func (e *SyncEngine) record(run *models.SyncRun) {
	if e.history == nil {
		return
	}
	if err := e.history.Record(run); err != nil {
		e.logger.Warn("failed to record sync history", "playlist", run.PlaylistName, "error", err)
	}
}

// Sync reconciles the named playlist: fetch the current order, compute the target, apply it.
//
// Config errors are returned as-is. Fetch and replace failures are [*shared.SyncError].
func (e *SyncEngine) Sync(ctx context.Context, name string, opts SyncOpts, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: playlist service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, loadConfigUpdate(name))
	cfg, err := e.store.Load(name)
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(e.logger, "playlist", name)
	result := &SyncResult{Name: name, PlaylistID: cfg.PlaylistID, DryRun: opts.DryRun}

	run := models.NewSyncRun(name, cfg.PlaylistID, len(cfg.Pins))
	run.DryRun = opts.DryRun
	result.Run = run
	e.record(run)

	fail := func(err error) (*SyncResult, error) {
		run.Finish(models.SyncFailed, err)
		e.record(run)
		logger.Error("sync failed", "error", err)
		return result, err
	}

	e.sendProgress(progress, fetchTracksUpdate(cfg))
	current, err := e.service.FetchTracks(ctx, cfg.PlaylistID)
	if err != nil {
		return fail(shared.NewSyncError(cfg.PlaylistID, "fetch", err))
	}
	result.Current = current
	run.TracksBefore = len(current)
	logger.Debug("fetched tracks", "tracks", len(current), "pins", len(cfg.Pins))

	e.sendProgress(progress, reconcileUpdate(len(current), len(cfg.Pins)))
	target, err := pins.Reconcile(current, cfg.Pins)
	if err != nil {
		return fail(err)
	}
	result.Target = target
	result.Operations = pins.Plan(current, target)
	result.Placements = pins.Placements(target, cfg.Pins)
	run.TracksAfter = len(target)

	for _, p := range result.Placements {
		if !p.Exact() {
			logger.Warn("pin placed before its position", "track", p.Pin.Track, "position", p.Pin.DisplayPosition(), "actual", p.Actual+1)
		}
	}

	switch {
	case !result.Changed():
		run.Finish(models.SyncUnchanged, nil)
		logger.Info("playlist already in order", "tracks", len(target))
	case opts.DryRun:
		run.Finish(models.SyncPlanned, nil)
		logger.Info("dry run, playlist not modified", "tracks", len(target), "operations", len(result.Operations))
	default:
		e.sendProgress(progress, applyUpdate(result.Operations))
		if err := pins.Apply(ctx, e.service, cfg.PlaylistID, result.Operations); err != nil {
			return fail(err)
		}
		result.Applied = true
		run.Finish(models.SyncReplaced, nil)
		logger.Info("playlist reordered", "tracks", len(target))
	}

	e.record(run)
	e.sendProgress(progress, syncCompleteUpdate(result))
	return result, nil
}

// SyncAll syncs every registered playlist in registry order.
//
// A failing playlist is logged and collected and the rest still run. The returned error is non-nil
// only when the registry cannot be read or ctx is cancelled; check [BatchResult.Err] for failures.
func (e *SyncEngine) SyncAll(ctx context.Context, opts SyncOpts, progress chan<- ProgressUpdate) (*BatchResult, error) {
	entries, err := e.store.List()
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{Outcomes: make([]PlaylistOutcome, 0, len(entries))}
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		e.sendProgress(progress, batchUpdate(i+1, len(entries), entry.Name))
		res, err := e.Sync(ctx, entry.Name, opts, progress)

		batch.Outcomes = append(batch.Outcomes, PlaylistOutcome{Name: entry.Name, Result: res, Err: err})
		if err != nil {
			batch.Failed++
			e.logger.Error("playlist sync failed, continuing", "playlist", entry.Name, "kind", shared.ErrorKind(err), "error", err)
			continue
		}
		batch.Succeeded++
	}

	e.logger.Info("sync complete", "playlists", len(entries), "succeeded", batch.Succeeded, "failed", batch.Failed)
	return batch, nil
}
