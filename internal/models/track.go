package models

import (
	"fmt"
	"slices"
	"strings"
)

// TrackRef is an opaque track identity, the Spotify URI of a track.
// Two refs are the same track exactly when the strings are equal.
type TrackRef string

func (t TrackRef) String() string { return string(t) }

// ID returns the last segment of the URI.
func (t TrackRef) ID() string {
	s := string(t)
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Refs converts URI strings to track refs.
func Refs(uris ...string) []TrackRef {
	refs := make([]TrackRef, len(uris))
	for i, u := range uris {
		refs[i] = TrackRef(u)
	}
	return refs
}

// Track is track metadata used for display and export.
type Track struct {
	URI        TrackRef
	Title      string
	Artists    []string
	ArtistIDs  []string
	Album      string
	Popularity int
	DurationMS int
	Genres     []string
}

// Label formats the track as "Title - Artist1, Artist2".
func (t Track) Label() string {
	if len(t.Artists) == 0 {
		return t.Title
	}
	return fmt.Sprintf("%s - %s", t.Title, strings.Join(t.Artists, ", "))
}

// ArtistTitle formats the track as "Artist1, Artist2 - Title".
func (t Track) ArtistTitle() string {
	if len(t.Artists) == 0 {
		return t.Title
	}
	return fmt.Sprintf("%s - %s", strings.Join(t.Artists, ", "), t.Title)
}

// Playlist is playlist metadata from the remote service.
type Playlist struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	TrackCount  int
	Public      bool
}

// SameSequence reports whether a and b hold the same refs in the same order.
func SameSequence(a, b []TrackRef) bool {
	return slices.Equal(a, b)
}
