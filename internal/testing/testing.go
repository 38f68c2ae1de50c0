// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
)

// MockService is an in-memory test double for [services.Service].
//
// Playlists maps playlist IDs to their current track order. ReplaceTracks rewrites that order.
type MockService struct {
	mu sync.Mutex

	UserID    string
	Meta      map[string]models.Playlist
	Playlists map[string][]models.TrackRef
	Tracks    map[models.TrackRef]models.Track
	Genres    map[string][]string

	AuthErr    error
	FetchErr   map[string]error // per playlist ID
	ReplaceErr map[string]error // per playlist ID
	GenresErr  error

	FetchCalls   int
	ReplaceCalls int
	TrackCalls   int
}

// NewMockService creates a MockService owned by "user1".
func NewMockService() *MockService {
	return &MockService{
		UserID:     "user1",
		Meta:       map[string]models.Playlist{},
		Playlists:  map[string][]models.TrackRef{},
		Tracks:     map[models.TrackRef]models.Track{},
		Genres:     map[string][]string{},
		FetchErr:   map[string]error{},
		ReplaceErr: map[string]error{},
	}
}

// AddPlaylist registers a playlist with name and contents, adding placeholder metadata for each track.
func (m *MockService) AddPlaylist(id, name string, uris ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	refs := models.Refs(uris...)
	m.Playlists[id] = refs
	m.Meta[id] = models.Playlist{ID: id, Name: name, OwnerID: m.UserID, TrackCount: len(refs)}
	for _, r := range refs {
		if _, ok := m.Tracks[r]; !ok {
			m.Tracks[r] = models.Track{
				URI:        r,
				Title:      "Title " + r.ID(),
				Artists:    []string{"Artist " + r.ID()},
				ArtistIDs:  []string{"artist-" + r.ID()},
				Popularity: 50,
			}
		}
	}
}

// Order returns a copy of the current order of playlist id.
func (m *MockService) Order(id string) []models.TrackRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.TrackRef(nil), m.Playlists[id]...)
}

func (m *MockService) Authenticate(ctx context.Context) error { return m.AuthErr }

func (m *MockService) CurrentUserID(ctx context.Context) (string, error) {
	if m.AuthErr != nil {
		return "", m.AuthErr
	}
	return m.UserID, nil
}

func (m *MockService) OwnedPlaylists(ctx context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Playlist
	for _, p := range m.Meta {
		if p.OwnerID == m.UserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Meta[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrAPIRequest, playlistID)
	}
	return &p, nil
}

func (m *MockService) FetchTracks(ctx context.Context, playlistID string) ([]models.TrackRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls++
	if err := m.FetchErr[playlistID]; err != nil {
		return nil, err
	}
	refs, ok := m.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrAPIRequest, playlistID)
	}
	return append([]models.TrackRef(nil), refs...), nil
}

func (m *MockService) ReplaceTracks(ctx context.Context, playlistID string, tracks []models.TrackRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReplaceCalls++
	if err := m.ReplaceErr[playlistID]; err != nil {
		return err
	}
	m.Playlists[playlistID] = append([]models.TrackRef(nil), tracks...)
	return nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	refs, err := m.FetchTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	tracks := make([]models.Track, len(refs))
	for i, r := range refs {
		tracks[i] = m.Tracks[r]
		tracks[i].URI = r
	}
	return tracks, nil
}

func (m *MockService) Track(ctx context.Context, ref models.TrackRef) (*models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TrackCalls++
	t, ok := m.Tracks[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, ref)
	}
	return &t, nil
}

func (m *MockService) ArtistGenres(ctx context.Context, artistIDs []string) (map[string][]string, error) {
	if m.GenresErr != nil {
		return nil, m.GenresErr
	}
	out := map[string][]string{}
	for _, id := range artistIDs {
		if g, ok := m.Genres[id]; ok {
			out[id] = g
		}
	}
	return out, nil
}

func (m *MockService) Name() string { return "mock" }

// MockRecorder captures recorded sync runs.
type MockRecorder struct {
	Runs []models.SyncRun
	Err  error
}

func (r *MockRecorder) Record(run *models.SyncRun) error {
	r.Runs = append(r.Runs, *run)
	return r.Err
}

// Last returns the most recently recorded run state.
func (r *MockRecorder) Last() models.SyncRun {
	if len(r.Runs) == 0 {
		return models.SyncRun{}
	}
	return r.Runs[len(r.Runs)-1]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
