package pins

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
)

// OpKind enumerates remote mutations.
type OpKind int

const (
	// ReplaceAll overwrites the whole playlist with Tracks.
	ReplaceAll OpKind = iota
)

func (k OpKind) String() string {
	switch k {
	case ReplaceAll:
		return "replace_all"
	default:
		return "unknown"
	}
}

// Operation is a single remote mutation.
type Operation struct {
	Kind   OpKind
	Tracks []models.TrackRef
}

func (o Operation) String() string {
	return fmt.Sprintf("%s(%d tracks)", o.Kind, len(o.Tracks))
}

// TrackReplacer overwrites a playlist's contents.
type TrackReplacer interface {
	ReplaceTracks(ctx context.Context, playlistID string, tracks []models.TrackRef) error
}

// Plan returns the operations that turn current into target: none when the ordered sequences are
// equal, otherwise a single [ReplaceAll].
func Plan(current, target []models.TrackRef) []Operation {
	if models.SameSequence(current, target) {
		return []Operation{}
	}
	tracks := make([]models.TrackRef, len(target))
	copy(tracks, target)
	return []Operation{{Kind: ReplaceAll, Tracks: tracks}}
}

// Apply executes ops in order against playlistID.
// The first failure stops execution and is returned as a [*shared.SyncError].
func Apply(ctx context.Context, r TrackReplacer, playlistID string, ops []Operation) error {
	for _, op := range ops {
		switch op.Kind {
		case ReplaceAll:
			if err := r.ReplaceTracks(ctx, playlistID, op.Tracks); err != nil {
				return shared.NewSyncError(playlistID, op.Kind.String(), err)
			}
		default:
			return shared.NewSyncError(playlistID, op.Kind.String(), fmt.Errorf("%w: operation %d", shared.ErrNotImplemented, op.Kind))
		}
	}
	return nil
}
