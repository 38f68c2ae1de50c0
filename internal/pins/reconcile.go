package pins

import (
	"fmt"
	"slices"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/samber/lo"
)

// Reconcile computes the target sequence for current with pins applied.
//
// Each pinned track is placed at its position and the unpinned tracks of current fill the
// remaining slots in their original relative order. Slots nothing can fill are removed, so a pin
// beyond the end of the playlist lands right after the last track instead of leaving a gap.
func Reconcile(current []models.TrackRef, pins models.PinSet) ([]models.TrackRef, error) {
	if err := Validate(pins); err != nil {
		return nil, err
	}

	unique := lo.Uniq(current)
	pinned := lo.SliceToMap(pins, func(p models.Pin) (models.TrackRef, struct{}) {
		return p.Track, struct{}{}
	})
	free := lo.Filter(unique, func(t models.TrackRef, _ int) bool {
		_, ok := pinned[t]
		return !ok
	})

	// Sized so every free track fits; pinned tracks absent from current would otherwise evict them.
	size := len(free) + len(pins)
	for _, p := range pins {
		size = max(size, p.Position+1)
	}

	slots := make([]models.TrackRef, size)
	filled := make([]bool, size)
	for _, p := range pins {
		slots[p.Position] = p.Track
		filled[p.Position] = true
	}

	next := 0
	for i := range slots {
		if filled[i] || next >= len(free) {
			continue
		}
		slots[i] = free[next]
		filled[i] = true
		next++
	}

	target := make([]models.TrackRef, 0, size)
	for i, t := range slots {
		if filled[i] {
			target = append(target, t)
		}
	}
	return target, nil
}

// Validate checks the pin set invariants: non-negative positions, unique positions, unique tracks.
//
// Two pins sharing a position is reported as [shared.ErrPinConflict].
func Validate(pins models.PinSet) error {
	positions := make(map[int]models.TrackRef, len(pins))
	tracks := make(map[models.TrackRef]struct{}, len(pins))

	for _, p := range pins {
		if p.Position < 0 {
			return fmt.Errorf("%w: %d for %s", shared.ErrInvalidPosition, p.Position, p.Track)
		}
		if other, ok := positions[p.Position]; ok {
			return fmt.Errorf("%w: %s and %s both pinned at position %d", shared.ErrPinConflict, other, p.Track, p.Position)
		}
		if _, ok := tracks[p.Track]; ok {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateTrack, p.Track)
		}
		positions[p.Position] = p.Track
		tracks[p.Track] = struct{}{}
	}
	return nil
}

// Placement reports where each pin actually landed in target.
type Placement struct {
	Pin    models.Pin
	Actual int
}

// Exact reports whether the pin sits at its configured position.
func (p Placement) Exact() bool { return p.Pin.Position == p.Actual }

// Placements locates every pin in target, sorted by configured position.
// Pins beyond the end of the playlist are compacted and show a smaller Actual index.
func Placements(target []models.TrackRef, pins models.PinSet) []Placement {
	out := make([]Placement, 0, len(pins))
	for _, p := range pins {
		out = append(out, Placement{Pin: p, Actual: slices.Index(target, p.Track)})
	}
	slices.SortStableFunc(out, func(a, b Placement) int { return a.Pin.Position - b.Pin.Position })
	return out
}
