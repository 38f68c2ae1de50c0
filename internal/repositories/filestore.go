package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/spotpin/internal/models"
	"github.com/desertthunder/spotpin/internal/pins"
	"github.com/desertthunder/spotpin/internal/shared"
)

const (
	registryFile  = "playlists.json"
	createdLayout = "2006-01-02 15:04:05"
)

// registryRecord is the on-disk shape of playlists.json.
type registryRecord struct {
	Playlists map[string]registryEntryRecord `json:"playlists"`
	Default   *string                        `json:"default"`
}

type registryEntryRecord struct {
	PlaylistID  string `json:"playlist_id"`
	DisplayName string `json:"display_name"`
	ConfigPath  string `json:"config_path,omitempty"`
	Created     string `json:"created"`
}

// playlistRecord is the on-disk shape of config_<name>.json. Positions are 1-based.
type playlistRecord struct {
	PlaylistName        string      `json:"playlist_name"`
	PlaylistID          string      `json:"playlist_id"`
	PlaylistDisplayName string      `json:"playlist_display_name"`
	Pins                []pinRecord `json:"pins"`
}

type pinRecord struct {
	TrackID   string `json:"track_id"`
	Position  int    `json:"position"`
	TrackName string `json:"track_name,omitempty"`
}

// FileStore implements [models.ConfigStore] with JSON files in a directory:
// a playlists.json registry plus one config_<name>.json per playlist.
type FileStore struct {
	dir string
	now func() time.Time
}

var _ models.ConfigStore = (*FileStore)(nil)

// NewFileStore creates a [FileStore] rooted at dir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir, now: time.Now}
}

// ConfigPath returns the config file location for name.
func (s *FileStore) ConfigPath(name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("config_%s.json", name))
}

// Load reads and validates the config for a registered playlist.
func (s *FileStore) Load(name string) (*models.PlaylistConfig, error) {
	reg, err := s.readRegistry()
	if err != nil {
		return nil, err
	}
	if _, ok := reg.Playlists[name]; !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}

	path := s.ConfigPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var rec playlistRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidConfig, path, err)
	}

	cfg, err := rec.toModel(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Save writes cfg as the config for name and registers it.
// The first registered playlist becomes the default.
func (s *FileStore) Save(name string, cfg *models.PlaylistConfig) error {
	if name == "" || name != shared.SafeName(name) {
		return fmt.Errorf("%w: playlist name %q", shared.ErrInvalidArgument, name)
	}
	if err := pins.Validate(cfg.Pins); err != nil {
		return err
	}

	rec, err := fromModel(name, cfg)
	if err != nil {
		return err
	}
	if err := writeJSON(s.ConfigPath(name), rec); err != nil {
		return err
	}

	reg, err := s.readRegistry()
	if err != nil {
		return err
	}

	entry, ok := reg.Playlists[name]
	if !ok {
		entry.Created = s.now().Format(createdLayout)
	}
	entry.PlaylistID = rec.PlaylistID
	entry.DisplayName = rec.PlaylistDisplayName
	entry.ConfigPath = filepath.Base(s.ConfigPath(name))
	reg.Playlists[name] = entry

	if reg.Default == nil || *reg.Default == "" {
		reg.Default = &name
	}
	return writeJSON(s.registryPath(), reg)
}

// Delete removes the config file and registry entry for name.
// When name was the default, the first remaining playlist becomes the default.
func (s *FileStore) Delete(name string) error {
	reg, err := s.readRegistry()
	if err != nil {
		return err
	}
	if _, ok := reg.Playlists[name]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}

	if err := os.Remove(s.ConfigPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove config: %w", err)
	}
	delete(reg.Playlists, name)

	if reg.Default != nil && *reg.Default == name {
		reg.Default = nil
		if names := reg.names(); len(names) > 0 {
			reg.Default = &names[0]
		}
	}
	return writeJSON(s.registryPath(), reg)
}

// List returns registered playlists ordered by creation time, then name.
func (s *FileStore) List() ([]models.RegistryEntry, error) {
	reg, err := s.Registry()
	if err != nil {
		return nil, err
	}

	names := reg.Names()
	entries := make([]models.RegistryEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, reg.Playlists[name])
	}
	return entries, nil
}

// Registry returns the whole registry with bare playlist IDs.
func (s *FileStore) Registry() (*models.Registry, error) {
	rec, err := s.readRegistry()
	if err != nil {
		return nil, err
	}

	reg := &models.Registry{Playlists: make(map[string]models.RegistryEntry, len(rec.Playlists))}
	if rec.Default != nil {
		reg.Default = *rec.Default
	}
	for name, entry := range rec.Playlists {
		id, err := shared.NormalizePlaylistID(entry.PlaylistID)
		if err != nil {
			return nil, fmt.Errorf("%w: registry entry %s: %v", shared.ErrInvalidConfig, name, err)
		}
		reg.Playlists[name] = models.RegistryEntry{
			Name:        name,
			PlaylistID:  id,
			DisplayName: entry.DisplayName,
			ConfigPath:  s.ConfigPath(name),
			Created:     parseCreated(entry.Created),
			Default:     reg.Default == name,
		}
	}
	return reg, nil
}

// Default returns the default playlist name.
func (s *FileStore) Default() (string, error) {
	reg, err := s.readRegistry()
	if err != nil {
		return "", err
	}
	if reg.Default == nil || *reg.Default == "" {
		return "", shared.ErrNoDefaultPlaylist
	}
	return *reg.Default, nil
}

// SetDefault marks name as the default playlist.
func (s *FileStore) SetDefault(name string) error {
	reg, err := s.readRegistry()
	if err != nil {
		return err
	}
	if _, ok := reg.Playlists[name]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	reg.Default = &name
	return writeJSON(s.registryPath(), reg)
}

func (s *FileStore) registryPath() string {
	return filepath.Join(s.dir, registryFile)
}

// readRegistry loads playlists.json. A missing file is an empty registry.
func (s *FileStore) readRegistry() (*registryRecord, error) {
	reg := &registryRecord{Playlists: map[string]registryEntryRecord{}}

	data, err := os.ReadFile(s.registryPath())
	if errors.Is(err, os.ErrNotExist) {
		return reg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	if err := json.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidConfig, s.registryPath(), err)
	}
	if reg.Playlists == nil {
		reg.Playlists = map[string]registryEntryRecord{}
	}
	if reg.Default != nil && *reg.Default != "" {
		if _, ok := reg.Playlists[*reg.Default]; !ok {
			return nil, fmt.Errorf("%w: default %q is not a registered playlist", shared.ErrInvalidConfig, *reg.Default)
		}
	}
	return reg, nil
}

func (r *registryRecord) names() []string {
	reg := models.Registry{Playlists: make(map[string]models.RegistryEntry, len(r.Playlists))}
	for name, entry := range r.Playlists {
		reg.Playlists[name] = models.RegistryEntry{Name: name, Created: parseCreated(entry.Created)}
	}
	return reg.Names()
}

func parseCreated(s string) time.Time {
	for _, layout := range []string{createdLayout, time.RFC3339Nano, "2006-01-02T15:04:05.999999"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// toModel validates the record and converts 1-based file positions to 0-based pins.
func (r playlistRecord) toModel(name string) (*models.PlaylistConfig, error) {
	if r.PlaylistName != "" && r.PlaylistName != name {
		return nil, fmt.Errorf("playlist_name %q does not match %q", r.PlaylistName, name)
	}
	id, err := shared.NormalizePlaylistID(r.PlaylistID)
	if err != nil {
		return nil, fmt.Errorf("playlist_id: %v", err)
	}

	cfg := &models.PlaylistConfig{
		Name:        name,
		PlaylistID:  id,
		DisplayName: r.PlaylistDisplayName,
		Pins:        make(models.PinSet, 0, len(r.Pins)),
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = name
	}

	for i, p := range r.Pins {
		uri, err := shared.NormalizeTrackRef(p.TrackID)
		if err != nil {
			return nil, fmt.Errorf("pins[%d]: %v", i, err)
		}
		if p.Position < 1 {
			return nil, fmt.Errorf("pins[%d]: position %d must be 1 or greater", i, p.Position)
		}
		cfg.Pins = append(cfg.Pins, models.Pin{
			Track:    models.TrackRef(uri),
			Position: p.Position - 1,
			Name:     strings.TrimSpace(p.TrackName),
		})
	}

	if err := pins.Validate(cfg.Pins); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromModel(name string, cfg *models.PlaylistConfig) (*playlistRecord, error) {
	id, err := shared.NormalizePlaylistID(cfg.PlaylistID)
	if err != nil {
		return nil, err
	}

	rec := &playlistRecord{
		PlaylistName:        name,
		PlaylistID:          shared.PlaylistURI(id),
		PlaylistDisplayName: cfg.DisplayName,
		Pins:                make([]pinRecord, 0, len(cfg.Pins)),
	}
	for _, p := range cfg.Pins {
		rec.Pins = append(rec.Pins, pinRecord{
			TrackID:   p.Track.String(),
			Position:  p.DisplayPosition(),
			TrackName: p.Name,
		})
	}
	return rec, nil
}

// writeJSON writes v as indented JSON through a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
