// package models defines the data model for pinned playlists
package models

import (
	"time"
)

// Model defines the base interface for persistent records kept in the local database.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ConfigStore persists per-playlist pin configuration and the registry of managed playlists.
type ConfigStore interface {
	Load(name string) (*PlaylistConfig, error)   // Load reads and validates the named playlist config
	Save(name string, cfg *PlaylistConfig) error // Save writes the config and registers the name
	Delete(name string) error                    // Delete removes the config and its registry entry
	List() ([]RegistryEntry, error)              // List returns registry entries in insertion order
	Default() (string, error)                    // Default returns the default playlist name
	SetDefault(name string) error                // SetDefault marks a registered playlist as default
}
