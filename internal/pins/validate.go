package pins

import (
	"fmt"
	"slices"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
)

// Add appends p to set.
//
// It fails with [shared.ErrInvalidPosition] for a negative position, [shared.ErrDuplicateTrack]
// when the track is already pinned and [shared.ErrDuplicatePosition] when the slot is taken.
func Add(set *models.PinSet, p models.Pin) error {
	if p.Position < 0 {
		return fmt.Errorf("%w: %d", shared.ErrInvalidPosition, p.Position)
	}
	if i := set.IndexOfTrack(p.Track); i >= 0 {
		return fmt.Errorf("%w: %s at position %d", shared.ErrDuplicateTrack, p.Track, (*set)[i].DisplayPosition())
	}
	if i := set.IndexOfPosition(p.Position); i >= 0 {
		return fmt.Errorf("%w: position %d held by %s", shared.ErrDuplicatePosition, p.DisplayPosition(), (*set)[i].Track)
	}
	*set = append(*set, p)
	return nil
}

// Remove deletes the pin for track and returns it.
func Remove(set *models.PinSet, track models.TrackRef) (models.Pin, error) {
	i := set.IndexOfTrack(track)
	if i < 0 {
		return models.Pin{}, fmt.Errorf("%w: %s", shared.ErrPinNotFound, track)
	}
	removed := (*set)[i]
	*set = slices.Delete(*set, i, i+1)
	return removed, nil
}

// Move changes the position of the pin for track.
// Moving a pin onto its current position is a no-op.
func Move(set *models.PinSet, track models.TrackRef, position int) error {
	i := set.IndexOfTrack(track)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrPinNotFound, track)
	}
	if position < 0 {
		return fmt.Errorf("%w: %d", shared.ErrInvalidPosition, position)
	}
	if j := set.IndexOfPosition(position); j >= 0 && j != i {
		return fmt.Errorf("%w: position %d held by %s", shared.ErrDuplicatePosition, position+1, (*set)[j].Track)
	}
	(*set)[i].Position = position
	return nil
}

// Evict removes the pin at position unless it belongs to keep.
// It reports the evicted pin and whether anything was removed.
func Evict(set *models.PinSet, position int, keep models.TrackRef) (models.Pin, bool) {
	i := set.IndexOfPosition(position)
	if i < 0 || (*set)[i].Track == keep {
		return models.Pin{}, false
	}
	evicted := (*set)[i]
	*set = slices.Delete(*set, i, i+1)
	return evicted, true
}

// Sort orders the set by ascending position.
func Sort(set *models.PinSet) {
	slices.SortStableFunc(*set, func(a, b models.Pin) int { return a.Position - b.Position })
}

// IsSorted reports whether the set is already in position order.
func IsSorted(set models.PinSet) bool {
	return slices.IsSortedFunc(set, func(a, b models.Pin) int { return a.Position - b.Position })
}
