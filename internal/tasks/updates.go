package tasks

import (
	"fmt"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/pins"
)

// ProgressUpdate represents a progress event during a sync.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadConfig Phase = iota
	FetchTracks
	Reconcile
	ApplyChanges
	SyncComplete
	SyncBatch
)

func (p Phase) String() string {
	switch p {
	case LoadConfig:
		return "load_config"
	case FetchTracks:
		return "fetch_tracks"
	case Reconcile:
		return "reconcile"
	case ApplyChanges:
		return "apply"
	case SyncComplete:
		return "complete"
	case SyncBatch:
		return "batch"
	default:
		return ""
	}
}

func loadConfigUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadConfig,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loading pins for %s...", name),
	}
}

func fetchTracksUpdate(cfg *models.PlaylistConfig) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching tracks of %s...", cfg.DisplayName),
		Data:    cfg,
	}
}

func reconcileUpdate(tracks, pinCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Placing %d pins among %d tracks...", pinCount, tracks),
	}
}

func applyUpdate(ops []pins.Operation) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyChanges,
		Step:    1,
		Total:   len(ops),
		Message: fmt.Sprintf("Applying %d operation(s)...", len(ops)),
		Data:    ops,
	}
}

func syncCompleteUpdate(res *SyncResult) ProgressUpdate {
	msg := fmt.Sprintf("✓ %s already in order", res.Name)
	switch {
	case res.Applied:
		msg = fmt.Sprintf("✓ %s reordered (%d tracks)", res.Name, len(res.Target))
	case res.Changed():
		msg = fmt.Sprintf("• %s would be reordered (%d tracks)", res.Name, len(res.Target))
	}
	return ProgressUpdate{
		Phase:   SyncComplete,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    res,
	}
}

func batchUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Syncing %s...", step, total, name),
	}
}
