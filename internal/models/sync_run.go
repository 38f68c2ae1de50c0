package models

import (
	"fmt"
	"time"
)

// SyncStatus is the outcome of a sync attempt.
type SyncStatus string

const (
	SyncRunning   SyncStatus = "running"
	SyncUnchanged SyncStatus = "unchanged"
	SyncReplaced  SyncStatus = "replaced"
	SyncPlanned   SyncStatus = "planned"
	SyncFailed    SyncStatus = "failed"
)

// SyncRun records one sync attempt of one playlist.
type SyncRun struct {
	id           string
	Sequence     int
	PlaylistName string
	PlaylistID   string
	Status       SyncStatus
	DryRun       bool
	Pins         int
	TracksBefore int
	TracksAfter  int
	Error        string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// NewSyncRun starts a run for the named playlist.
func NewSyncRun(name, playlistID string, pins int) *SyncRun {
	return &SyncRun{
		PlaylistName: name,
		PlaylistID:   playlistID,
		Status:       SyncRunning,
		Pins:         pins,
		StartedAt:    time.Now().UTC(),
	}
}

func (r *SyncRun) ID() string           { return r.id }
func (r *SyncRun) SetID(id string)      { r.id = id }
func (r *SyncRun) CreatedAt() time.Time { return r.StartedAt }

func (r *SyncRun) UpdatedAt() time.Time {
	if r.CompletedAt != nil {
		return *r.CompletedAt
	}
	return r.StartedAt
}

// Finish sets the final status and completion time. A non-nil err forces [SyncFailed].
func (r *SyncRun) Finish(status SyncStatus, err error) {
	now := time.Now().UTC()
	r.CompletedAt = &now
	r.Status = status
	if err != nil {
		r.Status = SyncFailed
		r.Error = err.Error()
	}
}

// Duration is the elapsed time of a completed run.
func (r *SyncRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

func (r *SyncRun) Validate() error {
	if r.PlaylistName == "" {
		return fmt.Errorf("playlist name is required")
	}
	if r.PlaylistID == "" {
		return fmt.Errorf("playlist id is required")
	}
	switch r.Status {
	case SyncRunning, SyncUnchanged, SyncReplaced, SyncPlanned, SyncFailed:
	default:
		return fmt.Errorf("unknown status %q", r.Status)
	}
	return nil
}
