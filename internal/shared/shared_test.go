package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeName(t *testing.T) {
	tc := []struct {
		name    string
		display string
		want    string
	}{
		{name: "spaces become underscores", display: "Road Trip", want: "road_trip"},
		{name: "punctuation dropped", display: "Mike's Mix!! (2024)", want: "mikes_mix_2024"},
		{name: "dash and underscore kept", display: "lo-fi_beats", want: "lo-fi_beats"},
		{name: "surrounding space trimmed", display: "  Chill  ", want: "chill"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeName(tt.display); got != tt.want {
				t.Errorf("SafeName(%q) = %q, want %q", tt.display, got, tt.want)
			}
		})
	}
}

func TestNormalizeTrackRef(t *testing.T) {
	const id = "4uLU6hMCjMI75M1A2tKUQC"
	want := "spotify:track:" + id

	tc := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "bare id", input: id},
		{name: "uri", input: "spotify:track:" + id},
		{name: "url", input: "https://open.spotify.com/track/" + id + "?si=abc"},
		{name: "intl url", input: "https://open.spotify.com/intl-de/track/" + id},
		{name: "padded", input: "  " + id + "\n"},
		{name: "too short", input: "abc", wantErr: true},
		{name: "playlist uri", input: "spotify:playlist:" + id, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTrackRef(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTrack) {
					t.Errorf("expected ErrInvalidTrack, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("expected %s, got %s", want, got)
			}
		})
	}
}

func TestNormalizePlaylistID(t *testing.T) {
	const id = "37i9dQZF1DXcBWIGoYBM5M"

	for _, input := range []string{id, "spotify:playlist:" + id, "https://open.spotify.com/playlist/" + id + "?si=x"} {
		got, err := NormalizePlaylistID(input)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", input, err)
		}
		if got != id {
			t.Errorf("expected %s, got %s", id, got)
		}
	}

	if _, err := NormalizePlaylistID("https://example.com/playlist/x"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSyncError(t *testing.T) {
	cause := fmt.Errorf("%w: boom", ErrAPIRequest)
	err := NewSyncError("road_trip", "replace", cause)

	if !errors.Is(err, ErrSync) {
		t.Error("expected SyncError to match ErrSync")
	}
	if !errors.Is(err, ErrAPIRequest) {
		t.Error("expected SyncError to unwrap to its cause")
	}
	if again := NewSyncError("other", "fetch", err); again != err {
		t.Error("expected existing SyncError to be returned unchanged")
	}
	if NewSyncError("x", "y", nil) != nil {
		t.Error("expected nil for nil cause")
	}
	if got := err.Error(); got != "sync road_trip (replace): API request failed: boom" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestErrorKind(t *testing.T) {
	tc := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("%w: x", ErrPlaylistNotFound), want: "config"},
		{err: fmt.Errorf("%w: pos 3", ErrDuplicatePosition), want: "validation"},
		{err: ErrPinConflict, want: "conflict"},
		{err: ErrMissingCredentials, want: "auth"},
		{err: NewSyncError("p", "replace", errors.New("x")), want: "sync"},
		{err: errors.New("other"), want: "error"},
		{err: nil, want: ""},
	}

	for _, tt := range tc {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewTeeLogger without path", func(t *testing.T) {
		logger, f, err := NewTeeLogger("")
		if err != nil || logger == nil || f != nil {
			t.Errorf("expected stderr logger and nil file, got %v %v %v", logger, f, err)
		}
	})

	t.Run("NewFileLogger writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "pins.log")
		logger, f, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("hello", "playlist", "road_trip")
		f.Close()

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(content), "road_trip") {
			t.Error("expected log file to contain output")
		}
	})
}
