package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/samber/lo"
)

// listSeparator joins artists and genres in a single column; neither contains it in practice.
const listSeparator = "\x1f"

// TrackRepository caches track metadata keyed by track URI.
//
// The cache backs pin labels and CSV genres when the API cannot be reached.
type TrackRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db, now: time.Now}
}

// Put inserts or replaces the cached metadata for each track.
func (r *TrackRepository) Put(tracks ...models.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO tracks (uri, title, artists, album, popularity, duration_ms, genres, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			title = excluded.title,
			artists = excluded.artists,
			album = excluded.album,
			popularity = excluded.popularity,
			duration_ms = excluded.duration_ms,
			genres = CASE WHEN excluded.genres = '' THEN tracks.genres ELSE excluded.genres END,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := r.now().UTC()
	for _, t := range tracks {
		if t.URI == "" {
			continue
		}
		_, err := stmt.Exec(t.URI.String(), t.Title, joinList(t.Artists), t.Album, t.Popularity, t.DurationMS, joinList(t.Genres), now)
		if err != nil {
			return fmt.Errorf("failed to cache track %s: %w", t.URI, err)
		}
	}

	return tx.Commit()
}

// Get returns the cached metadata for uri.
func (r *TrackRepository) Get(uri models.TrackRef) (*models.Track, error) {
	row := r.db.QueryRow(`SELECT uri, title, artists, album, popularity, duration_ms, genres FROM tracks WHERE uri = ?`, uri.String())

	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("track not cached: %s", uri)
	}
	return t, err
}

// GetMany returns cached metadata for every uri present in the cache, keyed by uri.
func (r *TrackRepository) GetMany(uris []models.TrackRef) (map[models.TrackRef]models.Track, error) {
	found := make(map[models.TrackRef]models.Track, len(uris))

	for _, chunk := range lo.Chunk(lo.Uniq(uris), 500) {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := lo.Map(chunk, func(u models.TrackRef, _ int) any { return u.String() })

		rows, err := r.db.Query(`SELECT uri, title, artists, album, popularity, duration_ms, genres FROM tracks WHERE uri IN (`+placeholders+`)`, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query tracks: %w", err)
		}

		for rows.Next() {
			t, err := scanTrack(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			found[t.URI] = *t
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("row iteration error: %w", err)
		}
	}

	return found, nil
}

// Count returns the number of cached tracks.
func (r *TrackRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

func scanTrack(s scanner) (*models.Track, error) {
	var (
		t       models.Track
		uri     string
		artists string
		genres  string
	)
	if err := s.Scan(&uri, &t.Title, &artists, &t.Album, &t.Popularity, &t.DurationMS, &genres); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	t.URI = models.TrackRef(uri)
	t.Artists = splitList(artists)
	t.Genres = splitList(genres)
	return &t, nil
}

func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
