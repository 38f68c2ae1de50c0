package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
)

// fakeSpotify serves the token endpoint and the subset of the Web API used by [SpotifyService].
type fakeSpotify struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	items    []string // playlist contents as URIs
	local    bool
	status   int // forced status for API requests when non-zero
	tokenErr bool
	replaced [][]string
	added    [][]string
}

func newFakeSpotify(t *testing.T, uris ...string) *fakeSpotify {
	t.Helper()
	f := &fakeSpotify{t: t, items: uris}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", f.token)
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, map[string]any{"id": "user1", "display_name": "User One"})
	})
	mux.HandleFunc("GET /v1/me/playlists", f.userPlaylists)
	mux.HandleFunc("GET /v1/playlists/{id}", f.playlist)
	mux.HandleFunc("GET /v1/playlists/{id}/tracks", f.playlistItems)
	mux.HandleFunc("PUT /v1/playlists/{id}/tracks", f.replace)
	mux.HandleFunc("POST /v1/playlists/{id}/tracks", f.add)
	mux.HandleFunc("GET /v1/tracks/{id}", f.track)
	mux.HandleFunc("GET /v1/artists", f.artists)

	f.srv = httptest.NewServer(f.guard(mux))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSpotify) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 && strings.HasPrefix(r.URL.Path, "/v1/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			fmt.Fprintf(w, `{"error":{"status":%d,"message":"forced failure"}}`, f.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeSpotify) json(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("failed to encode response: %v", err)
	}
}

func (f *fakeSpotify) token(w http.ResponseWriter, r *http.Request) {
	if f.tokenErr {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"invalid_grant","error_description":"Invalid refresh token"}`)
		return
	}
	f.json(w, map[string]any{"access_token": "access", "token_type": "Bearer", "expires_in": 3600})
}

func (f *fakeSpotify) userPlaylists(w http.ResponseWriter, r *http.Request) {
	f.json(w, map[string]any{
		"items": []map[string]any{
			{"id": "mine", "name": "Mine", "owner": map[string]any{"id": "user1"}, "public": true, "tracks": map[string]any{"total": 3}},
			{"id": "theirs", "name": "Theirs", "owner": map[string]any{"id": "user2"}, "tracks": map[string]any{"total": 9}},
		},
		"total": 2,
		"next":  nil,
	})
}

func (f *fakeSpotify) playlist(w http.ResponseWriter, r *http.Request) {
	f.json(w, map[string]any{
		"id":          r.PathValue("id"),
		"name":        "Mine",
		"description": "pinned",
		"owner":       map[string]any{"id": "user1"},
		"public":      true,
		"tracks":      map[string]any{"total": len(f.items), "items": []any{}},
	})
}

func trackJSON(uri string) map[string]any {
	id := models.TrackRef(uri).ID()
	return map[string]any{
		"type":        "track",
		"id":          id,
		"uri":         uri,
		"name":        "Song " + id,
		"popularity":  42,
		"duration_ms": 1000,
		"album":       map[string]any{"name": "Album " + id},
		"artists":     []map[string]any{{"id": "artist-" + id, "name": "Artist " + id}},
	}
}

func (f *fakeSpotify) playlistItems(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	offset := 0
	fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &offset)
	end := min(offset+100, len(f.items))

	items := []map[string]any{}
	for i, uri := range f.items[offset:end] {
		items = append(items, map[string]any{"is_local": f.local && offset+i == 0, "track": trackJSON(uri)})
	}

	var next any
	if end < len(f.items) {
		next = fmt.Sprintf("%s%s?offset=%d&limit=100", f.srv.URL, r.URL.Path, end)
	}
	f.json(w, map[string]any{"items": items, "total": len(f.items), "limit": 100, "offset": offset, "next": next})
}

// requestURIs reads uris from the JSON body or the query string.
func requestURIs(r *http.Request) []string {
	var body struct {
		URIs []string `json:"uris"`
	}
	data, _ := io.ReadAll(r.Body)
	if len(data) > 0 && json.Unmarshal(data, &body) == nil && body.URIs != nil {
		return body.URIs
	}
	if q := r.URL.Query().Get("uris"); q != "" {
		return strings.Split(q, ",")
	}
	return []string{}
}

func (f *fakeSpotify) replace(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uris := requestURIs(r)
	f.replaced = append(f.replaced, uris)
	f.items = uris
	f.json(w, map[string]any{"snapshot_id": "snap"})
}

func (f *fakeSpotify) add(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uris := requestURIs(r)
	f.added = append(f.added, uris)
	f.items = append(f.items, uris...)
	f.json(w, map[string]any{"snapshot_id": "snap"})
}

func (f *fakeSpotify) track(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "missing" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"status":404,"message":"Non existing id"}}`)
		return
	}
	f.json(w, trackJSON("spotify:track:"+id))
}

func (f *fakeSpotify) artists(w http.ResponseWriter, r *http.Request) {
	artists := []map[string]any{}
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		artists = append(artists, map[string]any{"id": id, "name": id, "genres": []string{"genre-" + id}})
	}
	f.json(w, map[string]any{"artists": artists})
}

func (f *fakeSpotify) service(t *testing.T) *SpotifyService {
	t.Helper()
	svc, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:          "client",
		ClientSecret:      "secret",
		RefreshToken:      "refresh",
		RequestsPerSecond: 1000,
		Burst:             100,
	}, SpotifyOptions{
		BaseURL:    f.srv.URL + "/v1/",
		TokenURL:   f.srv.URL + "/token",
		HTTPClient: f.srv.Client(),
		Logger:     log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func (f *fakeSpotify) authenticated(t *testing.T) *SpotifyService {
	t.Helper()
	svc := f.service(t)
	if err := svc.Authenticate(context.Background()); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return svc
}

func numberedURIs(n int) []string {
	uris := make([]string, n)
	for i := range uris {
		uris[i] = fmt.Sprintf("spotify:track:t%03d", i)
	}
	return uris
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("Missing Credentials", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "client"}, SpotifyOptions{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
			if !errors.Is(err, shared.ErrAuth) {
				t.Errorf("expected error to wrap ErrAuth, got %v", err)
			}
		})

		t.Run("Name", func(t *testing.T) {
			svc := newFakeSpotify(t).service(t)
			if svc.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", svc.Name())
			}
		})

		t.Run("Service Interface", func(t *testing.T) {
			var _ Service = newFakeSpotify(t).service(t)
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("refreshes token", func(t *testing.T) {
			f := newFakeSpotify(t)
			svc := f.authenticated(t)

			id, err := svc.CurrentUserID(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if id != "user1" {
				t.Errorf("expected user1, got %s", id)
			}
		})

		t.Run("rejected refresh token", func(t *testing.T) {
			f := newFakeSpotify(t)
			f.tokenErr = true

			err := f.service(t).Authenticate(ctx)
			if !errors.Is(err, shared.ErrTokenRefresh) {
				t.Errorf("expected ErrTokenRefresh, got %v", err)
			}
		})

		t.Run("requires authentication before calls", func(t *testing.T) {
			_, err := newFakeSpotify(t).service(t).FetchTracks(ctx, "pl")
			if !errors.Is(err, shared.ErrAuth) {
				t.Errorf("expected ErrAuth, got %v", err)
			}
		})
	})

	t.Run("FetchTracks", func(t *testing.T) {
		t.Run("single page", func(t *testing.T) {
			f := newFakeSpotify(t, "spotify:track:a", "spotify:track:b")
			got, err := f.authenticated(t).FetchTracks(ctx, "pl")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			want := models.Refs("spotify:track:a", "spotify:track:b")
			if !models.SameSequence(got, want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})

		t.Run("follows pages", func(t *testing.T) {
			uris := numberedURIs(250)
			f := newFakeSpotify(t, uris...)
			got, err := f.authenticated(t).FetchTracks(ctx, "pl")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !models.SameSequence(got, models.Refs(uris...)) {
				t.Errorf("expected %d tracks in order, got %d", len(uris), len(got))
			}
		})

		t.Run("local files are unsupported", func(t *testing.T) {
			f := newFakeSpotify(t, "spotify:track:a")
			f.local = true
			_, err := f.authenticated(t).FetchTracks(ctx, "pl")
			if !errors.Is(err, shared.ErrUnsupportedPlaylist) {
				t.Errorf("expected ErrUnsupportedPlaylist, got %v", err)
			}
		})

		t.Run("unauthorized", func(t *testing.T) {
			f := newFakeSpotify(t, "spotify:track:a")
			svc := f.authenticated(t)
			f.status = http.StatusUnauthorized

			_, err := svc.FetchTracks(ctx, "pl")
			if !errors.Is(err, shared.ErrAuth) {
				t.Errorf("expected ErrAuth, got %v", err)
			}
		})

		t.Run("forbidden", func(t *testing.T) {
			f := newFakeSpotify(t, "spotify:track:a")
			svc := f.authenticated(t)
			f.status = http.StatusForbidden

			_, err := svc.FetchTracks(ctx, "pl")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("ReplaceTracks", func(t *testing.T) {
		t.Run("small playlist uses one replace", func(t *testing.T) {
			f := newFakeSpotify(t, "spotify:track:a", "spotify:track:b")
			err := f.authenticated(t).ReplaceTracks(ctx, "pl", models.Refs("spotify:track:b", "spotify:track:a"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(f.replaced) != 1 || len(f.added) != 0 {
				t.Fatalf("expected 1 replace and 0 adds, got %d and %d", len(f.replaced), len(f.added))
			}
			if strings.Join(f.items, ",") != "spotify:track:b,spotify:track:a" {
				t.Errorf("expected reordered playlist, got %v", f.items)
			}
		})

		t.Run("large playlist appends in batches", func(t *testing.T) {
			uris := numberedURIs(250)
			f := newFakeSpotify(t)
			err := f.authenticated(t).ReplaceTracks(ctx, "pl", models.Refs(uris...))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(f.replaced) != 1 {
				t.Errorf("expected 1 replace, got %d", len(f.replaced))
			}
			if len(f.added) != 2 {
				t.Fatalf("expected 2 add batches, got %d", len(f.added))
			}
			if len(f.added[0]) != 100 || len(f.added[1]) != 50 {
				t.Errorf("expected batches of 100 and 50, got %d and %d", len(f.added[0]), len(f.added[1]))
			}
			if strings.Join(f.items, ",") != strings.Join(uris, ",") {
				t.Error("expected final playlist to match requested order")
			}
		})

		t.Run("empty sequence clears playlist", func(t *testing.T) {
			f := newFakeSpotify(t, "spotify:track:a")
			if err := f.authenticated(t).ReplaceTracks(ctx, "pl", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(f.items) != 0 {
				t.Errorf("expected empty playlist, got %v", f.items)
			}
		})

		t.Run("episodes past first page are unsupported", func(t *testing.T) {
			uris := append(numberedURIs(100), "spotify:episode:e1")
			f := newFakeSpotify(t)
			err := f.authenticated(t).ReplaceTracks(ctx, "pl", models.Refs(uris...))
			if !errors.Is(err, shared.ErrUnsupportedPlaylist) {
				t.Errorf("expected ErrUnsupportedPlaylist, got %v", err)
			}
			if len(f.replaced) != 0 {
				t.Error("expected no mutation before validation failure")
			}
		})
	})

	t.Run("Metadata", func(t *testing.T) {
		f := newFakeSpotify(t, "spotify:track:a")
		svc := f.authenticated(t)

		t.Run("Track", func(t *testing.T) {
			track, err := svc.Track(ctx, "spotify:track:x1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track.Title != "Song x1" || track.Album != "Album x1" || track.Popularity != 42 {
				t.Errorf("unexpected track metadata: %+v", track)
			}
			if track.Label() != "Song x1 - Artist x1" {
				t.Errorf("expected label 'Song x1 - Artist x1', got %s", track.Label())
			}
		})

		t.Run("Track not found", func(t *testing.T) {
			_, err := svc.Track(ctx, "spotify:track:missing")
			if !errors.Is(err, shared.ErrTrackNotFound) {
				t.Errorf("expected ErrTrackNotFound, got %v", err)
			}
		})

		t.Run("PlaylistTracks", func(t *testing.T) {
			tracks, err := svc.PlaylistTracks(ctx, "pl")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 || tracks[0].ArtistIDs[0] != "artist-a" {
				t.Errorf("unexpected tracks: %+v", tracks)
			}
		})

		t.Run("ArtistGenres", func(t *testing.T) {
			genres, err := svc.ArtistGenres(ctx, []string{"a1", "a2", "a1", ""})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(genres) != 2 {
				t.Fatalf("expected 2 artists, got %d", len(genres))
			}
			if genres["a2"][0] != "genre-a2" {
				t.Errorf("expected genre-a2, got %v", genres["a2"])
			}
		})

		t.Run("OwnedPlaylists", func(t *testing.T) {
			playlists, err := svc.OwnedPlaylists(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(playlists) != 1 || playlists[0].ID != "mine" {
				t.Errorf("expected only owned playlist, got %+v", playlists)
			}
		})

		t.Run("GetPlaylist", func(t *testing.T) {
			p, err := svc.GetPlaylist(ctx, "mine")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if p.Name != "Mine" || p.OwnerID != "user1" || p.TrackCount != 1 {
				t.Errorf("unexpected playlist: %+v", p)
			}
		})
	})
}

func TestNewAuthenticator(t *testing.T) {
	t.Run("builds auth URL with scopes", func(t *testing.T) {
		auth, err := NewAuthenticator(shared.SpotifyConfig{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURI:  "http://127.0.0.1:8888/callback",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		u := auth.AuthURL("state123")
		for _, want := range []string{"accounts.spotify.com", "client", "state123", "playlist-modify-private"} {
			if !strings.Contains(u, want) {
				t.Errorf("expected auth URL to contain %q, got %s", want, u)
			}
		}
	})

	t.Run("requires client credentials", func(t *testing.T) {
		_, err := NewAuthenticator(shared.SpotifyConfig{ClientID: "client"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
