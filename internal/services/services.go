// package services defines interface Service for interacting with the streaming API
package services

import (
	"context"

	"github.com/desertthunder/spotpin/internal/models"
)

// Service defines the remote operations needed to manage pinned playlists.
type Service interface {
	// Authenticate exchanges the stored refresh token for an access token.
	// Returns an error wrapping [shared.ErrAuth] if authentication fails.
	Authenticate(ctx context.Context) error

	// CurrentUserID returns the ID of the authenticated user.
	CurrentUserID(ctx context.Context) (string, error)

	// OwnedPlaylists retrieves all playlists owned by the authenticated user.
	OwnedPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves playlist metadata by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// FetchTracks returns the playlist's current ordering as track refs.
	FetchTracks(ctx context.Context, playlistID string) ([]models.TrackRef, error)

	// ReplaceTracks overwrites the playlist contents with tracks, in order.
	ReplaceTracks(ctx context.Context, playlistID string, tracks []models.TrackRef) error

	// PlaylistTracks returns the playlist's tracks with metadata.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// Track retrieves metadata for a single track.
	Track(ctx context.Context, ref models.TrackRef) (*models.Track, error)

	// ArtistGenres maps artist IDs to their genres.
	ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
