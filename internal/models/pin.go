package models

import (
	"slices"
	"strings"
	"time"
)

// Pin fixes a track at a 0-based position within a playlist.
// Name is a cosmetic label captured when the pin was created.
type Pin struct {
	Track    TrackRef
	Position int
	Name     string
}

// DisplayPosition is the 1-based slot shown to users and stored on disk.
func (p Pin) DisplayPosition() int { return p.Position + 1 }

// PinSet holds the pins of one playlist in insertion order.
type PinSet []Pin

// Clone returns an independent copy of the set.
func (s PinSet) Clone() PinSet {
	return slices.Clone(s)
}

// IndexOfTrack returns the index of the pin for track, or -1.
func (s PinSet) IndexOfTrack(track TrackRef) int {
	return slices.IndexFunc(s, func(p Pin) bool { return p.Track == track })
}

// IndexOfPosition returns the index of the pin at position, or -1.
func (s PinSet) IndexOfPosition(position int) int {
	return slices.IndexFunc(s, func(p Pin) bool { return p.Position == position })
}

// Tracks returns the pinned tracks in set order.
func (s PinSet) Tracks() []TrackRef {
	refs := make([]TrackRef, len(s))
	for i, p := range s {
		refs[i] = p.Track
	}
	return refs
}

// Contains reports whether track is pinned.
func (s PinSet) Contains(track TrackRef) bool {
	return s.IndexOfTrack(track) >= 0
}

// PlaylistConfig is the pin configuration of one managed playlist.
type PlaylistConfig struct {
	Name        string
	PlaylistID  string
	DisplayName string
	Pins        PinSet
}

// RegistryEntry points from a playlist name to its config file.
type RegistryEntry struct {
	Name        string
	PlaylistID  string
	DisplayName string
	ConfigPath  string
	Created     time.Time
	Default     bool
}

// Registry maps playlist names to their entries and records the default name.
type Registry struct {
	Playlists map[string]RegistryEntry
	Default   string
}

// Names returns registered names ordered by creation time, then name.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.Playlists))
	for name := range r.Playlists {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := r.Playlists[a].Created.Compare(r.Playlists[b].Created); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return names
}
