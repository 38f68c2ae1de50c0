package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/shared"
)

// ErrRunNotFound is returned when a sync run ID does not exist.
var ErrRunNotFound = errors.New("sync run not found")

// SyncRunRepository implements [models.Repository] for [models.SyncRun] history rows.
type SyncRunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.SyncRun] = (*SyncRunRepository)(nil)

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

const syncRunColumns = `id, sequence, playlist_name, playlist_id, status, dry_run, pins, tracks_before, tracks_after, error, started_at, completed_at`

// Create inserts run with a generated ID and sequence number.
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	_, err = r.db.Exec(`INSERT INTO sync_runs (`+syncRunColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sequence, run.PlaylistName, run.PlaylistID, string(run.Status), run.DryRun, run.Pins,
		run.TracksBefore, run.TracksAfter, run.Error, run.StartedAt, nullTime(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	run.SetID(id)
	run.Sequence = sequence
	return nil
}

// Get retrieves a sync run by ID.
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	row := r.db.QueryRow(`SELECT `+syncRunColumns+` FROM sync_runs WHERE id = ?`, id)
	run, err := scanSyncRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Update stores the outcome fields of an existing run.
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result, err := r.db.Exec(`
		UPDATE sync_runs
		SET status = ?, dry_run = ?, pins = ?, tracks_before = ?, tracks_after = ?, error = ?, completed_at = ?
		WHERE id = ?`,
		string(run.Status), run.DryRun, run.Pins, run.TracksBefore, run.TracksAfter, run.Error, nullTime(run.CompletedAt), run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}
	return requireAffected(result, run.ID())
}

// Delete removes a run by ID.
func (r *SyncRunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sync_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}
	return requireAffected(result, id)
}

// List returns runs newest first.
//
// Supported criteria: "playlist_name" (string), "status" (string or [models.SyncStatus]), "limit" (int).
func (r *SyncRunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE 1 = 1`
	args := []any{}

	if name, ok := criteria["playlist_name"].(string); ok && name != "" {
		query += " AND playlist_name = ?"
		args = append(args, name)
	}

	switch status := criteria["status"].(type) {
	case string:
		query += " AND status = ?"
		args = append(args, status)
	case models.SyncStatus:
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

// Record implements the sync engine's history hook: it inserts new runs and updates known ones.
func (r *SyncRunRepository) Record(run *models.SyncRun) error {
	if run.ID() == "" {
		return r.Create(run)
	}
	return r.Update(run)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSyncRun(s scanner) (*models.SyncRun, error) {
	var (
		run       models.SyncRun
		id        string
		status    string
		completed sql.NullTime
	)

	err := s.Scan(&id, &run.Sequence, &run.PlaylistName, &run.PlaylistID, &status, &run.DryRun, &run.Pins,
		&run.TracksBefore, &run.TracksAfter, &run.Error, &run.StartedAt, &completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run.SetID(id)
	run.Status = models.SyncStatus(status)
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
