package shared

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	trackURIPrefix    = "spotify:track:"
	playlistURIPrefix = "spotify:playlist:"
)

var (
	bareIDPattern      = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)
	trackURIPattern    = regexp.MustCompile(`^spotify:track:([A-Za-z0-9]{22})$`)
	trackURLPattern    = regexp.MustCompile(`open\.spotify\.com/(?:intl-[a-z]+/)?track/([A-Za-z0-9]{22})`)
	playlistURIPattern = regexp.MustCompile(`^spotify:playlist:([A-Za-z0-9]{22})$`)
	playlistURLPattern = regexp.MustCompile(`open\.spotify\.com/(?:intl-[a-z]+/)?playlist/([A-Za-z0-9]{22})`)
)

// NormalizeTrackRef accepts a track URL, URI or bare ID and returns the canonical "spotify:track:<id>" URI.
func NormalizeTrackRef(input string) (string, error) {
	id, err := extractID(input, trackURIPattern, trackURLPattern)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTrack, input)
	}
	return trackURIPrefix + id, nil
}

// NormalizePlaylistID accepts a playlist URL, URI or bare ID and returns the bare ID.
func NormalizePlaylistID(input string) (string, error) {
	id, err := extractID(input, playlistURIPattern, playlistURLPattern)
	if err != nil {
		return "", fmt.Errorf("%w: playlist %q", ErrInvalidArgument, input)
	}
	return id, nil
}

// IsTrackURI reports whether s is a canonical track URI.
func IsTrackURI(s string) bool {
	return trackURIPattern.MatchString(s)
}

// TrackURL returns the open.spotify.com link for a track URI.
func TrackURL(uri string) string {
	return "https://open.spotify.com/track/" + strings.TrimPrefix(uri, trackURIPrefix)
}

// PlaylistURI returns the URI form of a bare playlist ID.
func PlaylistURI(id string) string {
	return playlistURIPrefix + id
}

func extractID(input string, uri, url *regexp.Regexp) (string, error) {
	s := strings.TrimSpace(input)
	switch {
	case bareIDPattern.MatchString(s):
		return s, nil
	case uri.MatchString(s):
		return uri.FindStringSubmatch(s)[1], nil
	case url.MatchString(s):
		return url.FindStringSubmatch(s)[1], nil
	}
	return "", fmt.Errorf("no id in %q", input)
}
