// Spotify Web API implementation of [Service]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
	"github.com/samber/lo"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	pageSize       = 100 // playlist items per page and per mutation request
	artistPageSize = 50
	trackPrefix    = "spotify:track:"
)

// SpotifyOptions overrides endpoints and collaborators of [SpotifyService].
type SpotifyOptions struct {
	BaseURL    string       // API base URL ending in "/", defaults to the public API
	TokenURL   string       // token endpoint, defaults to [spotifyauth.TokenURL]
	HTTPClient *http.Client // client used for token refresh and as the base transport
	Logger     *log.Logger
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] refresh-token authentication and a rate limited transport.
type SpotifyService struct {
	config  *oauth2.Config
	refresh string
	limiter *rate.Limiter
	opts    SpotifyOptions
	logger  *log.Logger
	client  *spotify.Client
}

// NewSpotifyService creates a new Spotify service from configured credentials.
func NewSpotifyService(cfg shared.SpotifyConfig, opts SpotifyOptions) (*SpotifyService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyauth.TokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := max(cfg.Burst, 1)

	return &SpotifyService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: opts.TokenURL,
			},
		},
		refresh: cfg.RefreshToken,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		opts:    opts,
		logger:  opts.Logger,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate refreshes an access token and builds the API client.
// Later refreshes happen transparently through the token source.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.opts.HTTPClient)
	ts := oauth2.ReuseTokenSource(nil, s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: s.refresh}))

	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTokenRefresh, err)
	}

	base := s.opts.HTTPClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   &rateLimitedTransport{base: base, limiter: s.limiter},
		},
	}

	clientOpts := []spotify.ClientOption{spotify.WithRetry(true)}
	if s.opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(s.opts.BaseURL))
	}
	s.client = spotify.New(httpClient, clientOpts...)
	s.logger.Debug("authenticated with spotify")
	return nil
}

func (s *SpotifyService) api() (*spotify.Client, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: not authenticated, call Authenticate first", shared.ErrAuth)
	}
	return s.client, nil
}

// CurrentUserID returns the ID of the authenticated user.
func (s *SpotifyService) CurrentUserID(ctx context.Context) (string, error) {
	c, err := s.api()
	if err != nil {
		return "", err
	}
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return "", classify("get current user", err)
	}
	return user.ID, nil
}

// OwnedPlaylists retrieves the user's playlists, dropping those owned by someone else.
func (s *SpotifyService) OwnedPlaylists(ctx context.Context) ([]models.Playlist, error) {
	userID, err := s.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, _ := s.api()
	page, err := c.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, classify("list playlists", err)
	}

	var playlists []models.Playlist
	for {
		for _, p := range page.Playlists {
			if p.Owner.ID != userID {
				continue
			}
			playlists = append(playlists, convertSimplePlaylist(p))
		}

		err = c.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, classify("list playlists", err)
		}
	}

	return playlists, nil
}

// GetPlaylist retrieves playlist metadata by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	p, err := c.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, classify("get playlist", err)
	}

	return &models.Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.Owner.ID,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
	}, nil
}

// playlistItems reads every page of the playlist.
// A local file anywhere in the playlist makes it unsupported because a replace cannot re-add it.
func (s *SpotifyService) playlistItems(ctx context.Context, playlistID string) ([]spotify.PlaylistItem, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	page, err := c.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(pageSize))
	if err != nil {
		return nil, classify("fetch playlist items", err)
	}

	var items []spotify.PlaylistItem
	for {
		for _, item := range page.Items {
			if item.IsLocal {
				return nil, fmt.Errorf("%w: playlist %s contains local files", shared.ErrUnsupportedPlaylist, playlistID)
			}
			if item.Track.Track == nil && item.Track.Episode == nil {
				s.logger.Debug("skipping unavailable playlist item", "playlist", playlistID, "position", len(items))
				continue
			}
			items = append(items, item)
		}

		err = c.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, classify("fetch playlist items", err)
		}
	}

	s.logger.Debug("fetched playlist items", "playlist", playlistID, "count", len(items))
	return items, nil
}

// FetchTracks returns the playlist's current ordering as track refs.
func (s *SpotifyService) FetchTracks(ctx context.Context, playlistID string) ([]models.TrackRef, error) {
	items, err := s.playlistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(item spotify.PlaylistItem, _ int) models.TrackRef {
		return itemRef(item)
	}), nil
}

// PlaylistTracks returns the playlist's tracks with metadata, without genres.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	items, err := s.playlistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(item spotify.PlaylistItem, _ int) models.Track {
		if item.Track.Track != nil {
			return convertTrack(item.Track.Track)
		}
		return models.Track{URI: itemRef(item), Title: item.Track.Episode.Name}
	}), nil
}

// ReplaceTracks overwrites the playlist with tracks.
//
// The first 100 items replace the playlist and the rest are appended in batches of 100.
// Items past the first 100 must be tracks because appends address tracks by ID.
func (s *SpotifyService) ReplaceTracks(ctx context.Context, playlistID string, tracks []models.TrackRef) error {
	c, err := s.api()
	if err != nil {
		return err
	}

	head, tail := tracks, []models.TrackRef(nil)
	if len(tracks) > pageSize {
		head, tail = tracks[:pageSize], tracks[pageSize:]
	}

	if bad, found := lo.Find(tail, func(t models.TrackRef) bool { return !strings.HasPrefix(t.String(), trackPrefix) }); found {
		return fmt.Errorf("%w: %s cannot be appended past position %d", shared.ErrUnsupportedPlaylist, bad, pageSize)
	}

	uris := lo.Map(head, func(t models.TrackRef, _ int) spotify.URI { return spotify.URI(t) })
	if _, err := c.ReplacePlaylistItems(ctx, spotify.ID(playlistID), uris...); err != nil {
		return classify("replace playlist items", err)
	}

	for i, batch := range lo.Chunk(tail, pageSize) {
		ids := lo.Map(batch, func(t models.TrackRef, _ int) spotify.ID { return spotify.ID(t.ID()) })
		if _, err := c.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
			start := pageSize + i*pageSize
			return classify(fmt.Sprintf("add tracks %d-%d", start+1, start+len(batch)), err)
		}
	}

	s.logger.Debug("replaced playlist items", "playlist", playlistID, "count", len(tracks))
	return nil
}

// Track retrieves metadata for a single track.
func (s *SpotifyService) Track(ctx context.Context, ref models.TrackRef) (*models.Track, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	t, err := c.GetTrack(ctx, spotify.ID(ref.ID()))
	if err != nil {
		if status, ok := apiStatus(err); ok && (status == http.StatusNotFound || status == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, ref)
		}
		return nil, classify("get track", err)
	}

	track := convertTrack(t)
	return &track, nil
}

// ArtistGenres maps artist IDs to their genres, 50 artists per request.
func (s *SpotifyService) ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	genres := make(map[string][]string, len(artistIDs))
	ids := lo.Uniq(lo.Compact(artistIDs))
	for _, batch := range lo.Chunk(ids, artistPageSize) {
		artists, err := c.GetArtists(ctx, lo.Map(batch, func(id string, _ int) spotify.ID { return spotify.ID(id) })...)
		if err != nil {
			return nil, classify("get artists", err)
		}
		for _, a := range artists {
			if a == nil {
				continue
			}
			genres[string(a.ID)] = a.Genres
		}
	}

	return genres, nil
}

func itemRef(item spotify.PlaylistItem) models.TrackRef {
	if item.Track.Track != nil {
		return models.TrackRef(item.Track.Track.URI)
	}
	return models.TrackRef(item.Track.Episode.URI)
}

func convertTrack(t *spotify.FullTrack) models.Track {
	return models.Track{
		URI:        models.TrackRef(t.URI),
		Title:      t.Name,
		Artists:    lo.Map(t.Artists, func(a spotify.SimpleArtist, _ int) string { return a.Name }),
		ArtistIDs:  lo.Map(t.Artists, func(a spotify.SimpleArtist, _ int) string { return string(a.ID) }),
		Album:      t.Album.Name,
		Popularity: int(t.Popularity),
		DurationMS: int(t.Duration),
	}
}

func convertSimplePlaylist(p spotify.SimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.Owner.ID,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
	}
}

// apiStatus extracts the HTTP status from a Web API error.
func apiStatus(err error) (int, bool) {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, true
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Status, true
	}
	return 0, false
}

// classify maps client errors onto the shared error taxonomy.
func classify(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %s: %v", shared.ErrTokenRefresh, op, err)
	}

	status, ok := apiStatus(err)
	switch {
	case !ok:
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s: %v", shared.ErrAuth, op, err)
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway:
		return fmt.Errorf("%w: %s: %v", shared.ErrServiceUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %v (status %d)", shared.ErrAPIRequest, op, err, status)
	}
}
