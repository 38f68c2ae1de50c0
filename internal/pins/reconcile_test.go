package pins

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
)

func refs(names ...string) []models.TrackRef {
	return models.Refs(names...)
}

func pin(track string, position int) models.Pin {
	return models.Pin{Track: models.TrackRef(track), Position: position}
}

func TestReconcile(t *testing.T) {
	tc := []struct {
		name    string
		current []models.TrackRef
		pins    models.PinSet
		want    []models.TrackRef
	}{
		{
			name:    "pin moves existing track to front",
			current: refs("A", "B", "C", "D"),
			pins:    models.PinSet{pin("C", 0)},
			want:    refs("C", "A", "B", "D"),
		},
		{
			name:    "no pins removes duplicates",
			current: refs("A", "B", "A", "C"),
			want:    refs("A", "B", "C"),
		},
		{
			name:    "pin beyond end is compacted",
			current: refs("A", "B"),
			pins:    models.PinSet{pin("Z", 3)},
			want:    refs("A", "B", "Z"),
		},
		{
			name: "empty playlist yields pins in position order",
			pins: models.PinSet{pin("Y", 4), pin("X", 1)},
			want: refs("X", "Y"),
		},
		{
			name:    "empty playlist and no pins",
			current: nil,
			want:    refs(),
		},
		{
			name:    "pin already in place is unchanged",
			current: refs("A", "B", "C"),
			pins:    models.PinSet{pin("B", 1)},
			want:    refs("A", "B", "C"),
		},
		{
			name:    "multiple pins interleave with free tracks",
			current: refs("A", "B", "C", "D", "E"),
			pins:    models.PinSet{pin("E", 0), pin("A", 2)},
			want:    refs("E", "B", "A", "C", "D"),
		},
		{
			name:    "duplicated pinned track appears once",
			current: refs("A", "C", "B", "C"),
			pins:    models.PinSet{pin("C", 2)},
			want:    refs("A", "B", "C"),
		},
		{
			name:    "pin to last slot",
			current: refs("A", "B", "C"),
			pins:    models.PinSet{pin("A", 2)},
			want:    refs("B", "C", "A"),
		},
		{
			name:    "absent pinned track is inserted",
			current: refs("A", "B", "C"),
			pins:    models.PinSet{pin("Z", 1)},
			want:    refs("A", "Z", "B", "C"),
		},
		{
			name:    "absent pinned tracks keep every free track",
			current: refs("A", "B", "C"),
			pins:    models.PinSet{pin("Z", 0), pin("Y", 2)},
			want:    refs("Z", "A", "Y", "B", "C"),
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.current, tt.pins)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	t.Run("does not mutate inputs", func(t *testing.T) {
		current := refs("A", "B", "A")
		pins := models.PinSet{pin("B", 0)}
		if _, err := Reconcile(current, pins); err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(current, refs("A", "B", "A")) {
			t.Errorf("current was mutated: %v", current)
		}
		if pins[0] != pin("B", 0) {
			t.Errorf("pins were mutated: %v", pins)
		}
	})
}

func TestReconcileErrors(t *testing.T) {
	t.Run("two pins at one position", func(t *testing.T) {
		_, err := Reconcile(refs("A", "B", "C"), models.PinSet{pin("A", 1), pin("B", 1)})
		if !errors.Is(err, shared.ErrPinConflict) {
			t.Errorf("expected ErrPinConflict, got %v", err)
		}
	})

	t.Run("negative position", func(t *testing.T) {
		_, err := Reconcile(refs("A"), models.PinSet{pin("A", -1)})
		if !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition, got %v", err)
		}
	})

	t.Run("same track pinned twice", func(t *testing.T) {
		_, err := Reconcile(refs("A"), models.PinSet{pin("A", 0), pin("A", 2)})
		if !errors.Is(err, shared.ErrDuplicateTrack) {
			t.Errorf("expected ErrDuplicateTrack, got %v", err)
		}
	})
}

// randomCase builds a playlist over a small alphabet so duplicates and absent pins are common.
func randomCase(r *rand.Rand) ([]models.TrackRef, models.PinSet) {
	alphabet := refs("A", "B", "C", "D", "E", "F", "G", "H")

	current := make([]models.TrackRef, r.IntN(10))
	for i := range current {
		current[i] = alphabet[r.IntN(len(alphabet))]
	}

	var pins models.PinSet
	for _, i := range r.Perm(len(alphabet))[:r.IntN(4)] {
		position := r.IntN(12)
		if pins.IndexOfPosition(position) >= 0 {
			continue
		}
		pins = append(pins, models.Pin{Track: alphabet[i], Position: position})
	}
	return current, pins
}

func TestReconcileProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))

	for i := range 500 {
		current, pins := randomCase(r)
		name := fmt.Sprintf("case %d %v %v", i, current, pins)

		target, err := Reconcile(current, pins)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}

		again, err := Reconcile(target, pins)
		if err != nil {
			t.Fatalf("%s: unexpected error on second pass: %v", name, err)
		}
		if !slices.Equal(again, target) {
			t.Errorf("%s: not idempotent: %v then %v", name, target, again)
		}

		seen := map[models.TrackRef]bool{}
		for _, tr := range target {
			if seen[tr] {
				t.Errorf("%s: duplicate %s in %v", name, tr, target)
			}
			seen[tr] = true
		}

		for _, p := range pins {
			if !compacted(target, pins, p) && target[p.Position] != p.Track {
				t.Errorf("%s: pin %v not honored in %v", name, p, target)
			}
		}

		var free []models.TrackRef
		for _, tr := range target {
			if !pins.Contains(tr) {
				free = append(free, tr)
			}
		}
		var wantFree []models.TrackRef
		for _, tr := range current {
			if !pins.Contains(tr) && !slices.Contains(wantFree, tr) {
				wantFree = append(wantFree, tr)
			}
		}
		if !slices.Equal(free, wantFree) {
			t.Errorf("%s: free order %v, want %v", name, free, wantFree)
		}

		if len(Plan(target, again)) != 0 {
			t.Errorf("%s: expected empty plan for reconciled playlist", name)
		}
	}
}

// compacted reports whether p was shifted left because an earlier slot could not be filled.
func compacted(target []models.TrackRef, pins models.PinSet, p models.Pin) bool {
	free := 0
	for _, tr := range target {
		if !pins.Contains(tr) {
			free++
		}
	}
	pinnedBefore := 0
	for _, other := range pins {
		if other.Position < p.Position {
			pinnedBefore++
		}
	}
	return free+pinnedBefore < p.Position
}

func TestPlacements(t *testing.T) {
	pins := models.PinSet{pin("Z", 5), pin("C", 0)}
	target, err := Reconcile(refs("A", "B", "C"), pins)
	if err != nil {
		t.Fatal(err)
	}

	got := Placements(target, pins)
	if len(got) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(got))
	}
	if got[0].Pin.Track != "C" || !got[0].Exact() {
		t.Errorf("expected C placed exactly, got %+v", got[0])
	}
	if got[1].Pin.Track != "Z" || got[1].Exact() || got[1].Actual != 3 {
		t.Errorf("expected Z compacted to index 3, got %+v", got[1])
	}
}
