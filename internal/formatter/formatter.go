// package formatter renders pinned playlist data as CSV exports and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/pins"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

// ExportRow is one track of a CSV export.
type ExportRow struct {
	Position    int // 1-based
	URI         models.TrackRef
	ArtistTitle string
	Popularity  int
	Pinned      bool
	Genres      []string
}

// CSVHeader lists the export columns in order.
var CSVHeader = []string{"Position", "Track URI", "Artist - Title", "Popularity Score", "Pinned", "Genre"}

// BuildExportRows pairs tracks, in playlist order, with their pin state and genres.
//
// genres maps artist IDs to genres; a track's genres are the union of its artists' genres.
// Tracks that already carry genres keep them.
func BuildExportRows(tracks []models.Track, set models.PinSet, genres map[string][]string) []ExportRow {
	rows := make([]ExportRow, 0, len(tracks))
	for i, track := range tracks {
		trackGenres := track.Genres
		if len(trackGenres) == 0 {
			trackGenres = lo.Uniq(lo.FlatMap(track.ArtistIDs, func(id string, _ int) []string {
				return genres[id]
			}))
		}
		rows = append(rows, ExportRow{
			Position:    i + 1,
			URI:         track.URI,
			ArtistTitle: track.ArtistTitle(),
			Popularity:  track.Popularity,
			Pinned:      set.Contains(track.URI),
			Genres:      trackGenres,
		})
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func genreString(genres []string) string {
	if len(genres) == 0 {
		return "Unknown"
	}
	return strings.Join(genres, ", ")
}

// ExportToCSV converts rows to CSV with [CSVHeader] as the first record.
func ExportToCSV(rows []ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Position),
			row.URI.String(),
			row.ArtistTitle,
			strconv.Itoa(row.Popularity),
			yesNo(row.Pinned),
			genreString(row.Genres),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes rows to a CSV file at the given path
func WriteCSVExport(path string, rows []ExportRow) error {
	data, err := ExportToCSV(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

// PinTable renders the pins of one playlist in ascending position order.
func PinTable(w io.Writer, set models.PinSet) {
	sorted := set.Clone()
	pins.Sort(&sorted)

	t := newTable(w, table.Row{"Position", "Track", "URI"})
	for _, p := range sorted {
		name := p.Name
		if name == "" {
			name = "-"
		}
		t.AppendRow(table.Row{p.DisplayPosition(), name, p.Track})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d pinned", len(set)), ""})
	t.Render()
}

// PlaylistTable renders registry entries with the default marked.
func PlaylistTable(w io.Writer, entries []models.RegistryEntry) {
	t := newTable(w, table.Row{"", "Name", "Display Name", "Playlist ID", "Created"})
	for _, e := range entries {
		mark := ""
		if e.Default {
			mark = "*"
		}
		t.AppendRow(table.Row{mark, e.Name, e.DisplayName, e.PlaylistID, e.Created.Local().Format(time.DateTime)})
	}
	t.Render()
}

// RemotePlaylistTable renders playlists fetched from the service.
func RemotePlaylistTable(w io.Writer, playlists []models.Playlist) {
	t := newTable(w, table.Row{"#", "Name", "Tracks", "Playlist ID"})
	for i, p := range playlists {
		t.AppendRow(table.Row{i + 1, p.Name, p.TrackCount, p.ID})
	}
	t.Render()
}

// HistoryTable renders sync runs, newest first as given.
func HistoryTable(w io.Writer, runs []*models.SyncRun) {
	t := newTable(w, table.Row{"#", "Playlist", "Status", "Pins", "Tracks", "Started", "Duration", "Error"})
	for _, r := range runs {
		status := string(r.Status)
		if r.DryRun {
			status += " (dry run)"
		}
		t.AppendRow(table.Row{
			r.Sequence,
			r.PlaylistName,
			status,
			r.Pins,
			fmt.Sprintf("%d → %d", r.TracksBefore, r.TracksAfter),
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Millisecond),
			r.Error,
		})
	}
	t.Render()
}

// PlanTable renders the target order with each position's previous slot.
// Rows whose track did not move are omitted unless all is set.
func PlanTable(w io.Writer, current, target []models.TrackRef, set models.PinSet, all bool) {
	was := make(map[models.TrackRef]int, len(current))
	for i, ref := range current {
		if _, ok := was[ref]; !ok {
			was[ref] = i + 1
		}
	}

	t := newTable(w, table.Row{"Position", "Was", "Track", "Pinned"})
	moved := 0
	for i, ref := range target {
		prev, ok := was[ref]
		if ok && prev == i+1 && !all {
			continue
		}
		prevCell := "new"
		if ok {
			prevCell = strconv.Itoa(prev)
		}
		if !ok || prev != i+1 {
			moved++
		}
		pinned := ""
		if set.Contains(ref) {
			pinned = "*"
		}
		t.AppendRow(table.Row{i + 1, prevCell, ref, pinned})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d of %d tracks move", moved, len(target)), ""})
	t.Render()
}
