package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrConfig            = fmt.Errorf("configuration error")
	ErrMissingConfig     = fmt.Errorf("%w: configuration not found", ErrConfig)
	ErrInvalidConfig     = fmt.Errorf("%w: invalid configuration", ErrConfig)
	ErrPlaylistNotFound  = fmt.Errorf("%w: playlist not found", ErrConfig)
	ErrPlaylistExists    = fmt.Errorf("%w: playlist already exists", ErrConfig)
	ErrNoDefaultPlaylist = fmt.Errorf("%w: no default playlist set", ErrConfig)

	// Pin validation errors
	ErrValidation        = fmt.Errorf("validation error")
	ErrDuplicateTrack    = fmt.Errorf("%w: track already pinned", ErrValidation)
	ErrDuplicatePosition = fmt.Errorf("%w: position already taken", ErrValidation)
	ErrInvalidPosition   = fmt.Errorf("%w: invalid position", ErrValidation)
	ErrPinNotFound       = fmt.Errorf("%w: pin not found", ErrValidation)
	ErrInvalidTrack      = fmt.Errorf("%w: invalid track reference", ErrValidation)
	ErrMissingArgument   = fmt.Errorf("%w: missing required argument", ErrValidation)
	ErrInvalidArgument   = fmt.Errorf("%w: invalid argument", ErrValidation)

	// ErrPinConflict is returned by the reconciler when two pins claim one slot.
	ErrPinConflict = fmt.Errorf("pin conflict")

	// Authentication errors
	ErrAuth               = fmt.Errorf("authentication failed")
	ErrMissingCredentials = fmt.Errorf("%w: missing credentials", ErrAuth)
	ErrTokenRefresh       = fmt.Errorf("%w: token refresh failed", ErrAuth)
	ErrTimeout            = fmt.Errorf("%w: operation timed out", ErrAuth)

	// API and sync errors
	ErrSync                = fmt.Errorf("sync failed")
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")
	ErrUnsupportedPlaylist = fmt.Errorf("unsupported playlist")
	ErrTrackNotFound       = fmt.Errorf("track not found")
)

// SyncError reports a failed remote mutation or fetch for a single playlist.
//
// It matches [ErrSync] with [errors.Is] and unwraps to the underlying cause.
type SyncError struct {
	Playlist string
	Op       string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s (%s): %v", e.Playlist, e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

func (e *SyncError) Is(target error) bool { return target == ErrSync }

// NewSyncError wraps err for playlist and op. An existing [SyncError] is returned unchanged.
func NewSyncError(playlist, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *SyncError
	if errors.As(err, &se) {
		return err
	}
	return &SyncError{Playlist: playlist, Op: op, Err: err}
}

// ErrorKind names the taxonomy bucket of err for user-facing reports.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return "config"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrPinConflict):
		return "conflict"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrSync):
		return "sync"
	default:
		return "error"
	}
}
